package notify

import (
	"strings"
	"testing"

	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/stretchr/testify/assert"
)

func TestRenderLead(t *testing.T) {
	country := "Portugal"
	lead := &leads.Lead{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Country:        "Thailand",
		Message:        "Line one\nLine two",
		SpamScore:      0.05,
		VisitorCountry: &country,
	}

	msg := RenderLead(lead, "")

	assert.Equal(t, "New inquiry from Jane Doe", msg.Subject)
	assert.Equal(t, "jane@example.com", msg.ReplyTo)
	assert.Contains(t, msg.Body, "Name: Jane Doe\n")
	assert.Contains(t, msg.Body, "Phone: (not provided)\n")
	assert.Contains(t, msg.Body, "Country: Thailand\n")
	assert.Contains(t, msg.Body, "Visitor country: Portugal\n")
	assert.Contains(t, msg.Body, "Spam score: 0.05\n")
	assert.Contains(t, msg.Body, "Message:\nLine one\nLine two\n")
	assert.NotContains(t, msg.Body, "Notes:")

	assert.Contains(t, msg.HTML, "<strong>Phone:</strong> (not provided)")
	assert.Contains(t, msg.HTML, "Line one<br />Line two")
	assert.NotContains(t, msg.HTML, "Notes")
}

func TestRenderLeadEscapesHTML(t *testing.T) {
	lead := &leads.Lead{
		Name:    `<script>alert("x")</script>`,
		Email:   "jane@example.com",
		Phone:   "+66 81 234 5678",
		Message: "<b>bold</b>\n& more",
	}

	msg := RenderLead(lead, "Warm lead <ask about visas>")

	assert.False(t, strings.Contains(msg.HTML, "<script>"), msg.HTML)
	assert.Contains(t, msg.HTML, "&lt;b&gt;bold&lt;/b&gt;<br />&amp; more")
	assert.Contains(t, msg.HTML, "<h3>Notes</h3>")
	assert.Contains(t, msg.HTML, "Warm lead &lt;ask about visas&gt;")
	assert.Contains(t, msg.Body, "Phone: +66 81 234 5678\n")
	assert.Contains(t, msg.Body, "\nNotes:\nWarm lead <ask about visas>\n")
}

func TestRenderLeadSignals(t *testing.T) {
	lead := &leads.Lead{Name: "J", Email: "j@x.io", Message: "hi", SpamScore: 0.3, SpamSignals: []string{"short_message", "suspicious_name"}}
	msg := RenderLead(lead, "")
	assert.Contains(t, msg.Body, "Spam score: 0.30 (short_message, suspicious_name)")
}

func TestRenderLeadNil(t *testing.T) {
	assert.Equal(t, EmailMessage{}, RenderLead(nil, "notes"))
}
