package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/iglloo/lead-intake/internal/leads"
)

const notProvided = "(not provided)"

var leadHTML = template.Must(template.New("lead").Funcs(template.FuncMap{
	"lines": htmlLines,
}).Parse(`<h2>New inquiry from Iglloo website</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Country:</strong> {{.Country}}</p>
{{- if .VisitorCountry}}
<p><strong>Visitor country:</strong> {{.VisitorCountry}}</p>
{{- end}}
<p><strong>Spam score:</strong> {{.SpamScore}}</p>
<p><strong>Message:</strong></p>
<p>{{lines .Message}}</p>
{{- if .Notes}}
<h3>Notes</h3>
<p>{{lines .Notes}}</p>
{{- end}}
`))

type leadView struct {
	Name           string
	Email          string
	Phone          string
	Country        string
	VisitorCountry string
	SpamScore      string
	Message        string
	Notes          string
}

// RenderLead builds the notification sent to both channels. Reply-To points
// at the submitter so the inbox can answer directly.
func RenderLead(lead *leads.Lead, commentary string) EmailMessage {
	if lead == nil {
		return EmailMessage{}
	}
	view := leadView{
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     orNotProvided(lead.Phone),
		Country:   orNotProvided(lead.Country),
		SpamScore: formatScore(lead.SpamScore, lead.SpamSignals),
		Message:   lead.Message,
		Notes:     strings.TrimSpace(commentary),
	}
	if lead.VisitorCountry != nil {
		view.VisitorCountry = *lead.VisitorCountry
	}

	var html bytes.Buffer
	if err := leadHTML.Execute(&html, view); err != nil {
		html.Reset()
	}

	return EmailMessage{
		Subject: "New inquiry from " + lead.Name,
		Body:    renderText(view),
		HTML:    html.String(),
		ReplyTo: lead.Email,
	}
}

func renderText(v leadView) string {
	var b strings.Builder
	b.WriteString("New inquiry from Iglloo website\n\n")
	fmt.Fprintf(&b, "Name: %s\n", v.Name)
	fmt.Fprintf(&b, "Email: %s\n", v.Email)
	fmt.Fprintf(&b, "Phone: %s\n", v.Phone)
	fmt.Fprintf(&b, "Country: %s\n", v.Country)
	if v.VisitorCountry != "" {
		fmt.Fprintf(&b, "Visitor country: %s\n", v.VisitorCountry)
	}
	fmt.Fprintf(&b, "Spam score: %s\n", v.SpamScore)
	b.WriteString("\nMessage:\n")
	b.WriteString(v.Message)
	b.WriteString("\n")
	if v.Notes != "" {
		b.WriteString("\nNotes:\n")
		b.WriteString(v.Notes)
		b.WriteString("\n")
	}
	return b.String()
}

// htmlLines escapes s and turns newlines into <br />.
func htmlLines(s string) template.HTML {
	parts := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, p := range parts {
		parts[i] = template.HTMLEscapeString(p)
	}
	return template.HTML(strings.Join(parts, "<br />"))
}

func orNotProvided(v string) string {
	if strings.TrimSpace(v) == "" {
		return notProvided
	}
	return v
}

func formatScore(score float64, signals []string) string {
	out := fmt.Sprintf("%.2f", score)
	if len(signals) > 0 {
		out += " (" + strings.Join(signals, ", ") + ")"
	}
	return out
}
