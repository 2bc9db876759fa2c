// Package commentary produces short operator notes about an inquiry using a
// hosted language model.
package commentary

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iglloo/lead-intake/internal/leads"
)

// MaxCommentaryRunes bounds the note appended to notifications.
const MaxCommentaryRunes = 600

const systemPrompt = `You assist a retirement-relocation concierge team. Read one website inquiry and write a short internal note for the person who will reply.
Summarise what the visitor wants, the destinations or timelines they mention and any practical questions to raise (visas, healthcare, budget, housing).
If the inquiry looks automated or promotional, say so plainly.
Answer in plain text, at most four sentences, no greeting and no sign-off.`

// Advisor writes commentary for an accepted lead.
type Advisor interface {
	Comment(ctx context.Context, in Input) (string, error)
}

// Input is the subset of a lead shown to the model.
type Input struct {
	Name           string
	Country        string
	VisitorCountry string
	Message        string
	SpamScore      float64
	SpamSignals    []string
}

// InputFromLead copies the fields the prompt uses.
func InputFromLead(lead *leads.Lead) Input {
	if lead == nil {
		return Input{}
	}
	in := Input{
		Name:        lead.Name,
		Country:     lead.Country,
		Message:     lead.Message,
		SpamScore:   lead.SpamScore,
		SpamSignals: append([]string(nil), lead.SpamSignals...),
	}
	if lead.VisitorCountry != nil {
		in.VisitorCountry = *lead.VisitorCountry
	}
	return in
}

func buildPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", in.Name)
	if in.Country != "" {
		fmt.Fprintf(&b, "Country of interest: %s\n", in.Country)
	}
	if in.VisitorCountry != "" {
		fmt.Fprintf(&b, "Writing from: %s\n", in.VisitorCountry)
	}
	fmt.Fprintf(&b, "Heuristic spam score: %.2f", in.SpamScore)
	if len(in.SpamSignals) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(in.SpamSignals, ", "))
	}
	b.WriteString("\n\nMessage:\n")
	b.WriteString(in.Message)
	return b.String()
}

// capOutput trims s and cuts it to MaxCommentaryRunes on a rune boundary.
func capOutput(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxCommentaryRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:MaxCommentaryRunes-1])) + "…"
}
