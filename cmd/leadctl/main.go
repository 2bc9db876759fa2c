// Command leadctl submits a contact form from the terminal. It runs the same
// local checks as the website before posting.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iglloo/lead-intake/internal/form"
	"github.com/iglloo/lead-intake/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] != "submit" {
		fmt.Fprintln(stderr, "usage: leadctl submit -endpoint URL -name NAME -email EMAIL -message TEXT [-phone P] [-country C]")
		return 2
	}

	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	endpoint := fs.String("endpoint", envOr("LEADCTL_ENDPOINT", "http://localhost:8080"+form.DefaultEndpoint), "intake endpoint URL")
	name := fs.String("name", "", "visitor name")
	email := fs.String("email", "", "visitor email")
	phone := fs.String("phone", "", "visitor phone")
	country := fs.String("country", "", "visitor country")
	message := fs.String("message", "", "inquiry text")
	timeout := fs.Duration("timeout", 15*time.Second, "request timeout")
	verbose := fs.Bool("v", false, "log request failures")
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	submitter, err := form.NewHTTPSubmitter(*endpoint, nil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	level := "error"
	if *verbose {
		level = "debug"
	}
	ctrl := form.NewController(submitter, form.WithLogger(logging.NewWithWriter(level, "text", stderr)))

	fields := []struct{ field, value string }{
		{form.FieldName, *name},
		{form.FieldEmail, *email},
		{form.FieldPhone, *phone},
		{form.FieldCountry, *country},
		{form.FieldMessage, *message},
	}
	for _, f := range fields {
		if err := ctrl.OnFieldChange(f.field, f.value); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	view := ctrl.OnSubmit(ctx)
	switch view.State {
	case form.StateSuccess:
		fmt.Fprintln(stdout, view.Message)
		return 0
	default:
		fmt.Fprintln(stderr, view.Message)
		return 1
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
