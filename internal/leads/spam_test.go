package leads

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioA() Submission {
	return Submission{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Country: "Thailand",
		Message: "We are planning to retire within two years and want to explore Chiang Mai.",
	}
}

func TestScoreGenuineInquiryIsLow(t *testing.T) {
	result := Score(scenarioA())
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 0.2)
	assert.Empty(t, result.Signals)
}

func TestScoreSpammyInquiryIsHigh(t *testing.T) {
	sub := scenarioA()
	sub.Message = "Free money! Click here: https://spam.example/a and www.spam.example/b. " +
		"free money, click here. FREE MONEY and click here now."
	result := Score(sub)

	baseline := Score(scenarioA())
	assert.Greater(t, result.Score, 0.5)
	assert.Greater(t, result.Score, baseline.Score)
	assert.Contains(t, result.Signals, SignalKeyword)
	assert.Contains(t, result.Signals, SignalLinks)
}

func TestScoreSignals(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Submission)
		signal string
		score  float64
	}{
		{"short message", func(s *Submission) { s.Message = "Retire soon please" }, SignalShort, 0.1},
		{"canned reply", func(s *Submission) { s.Message = "Hello!" }, SignalCanned, 0.3},
		{"canned opener", func(s *Submission) { s.Message = "Dear sir, we can boost your traffic with our team." }, SignalCanned, 0.2},
		{"vowelless name", func(s *Submission) { s.Name = "Xkcd Brnt" }, SignalName, 0.15},
		{"one letter name", func(s *Submission) { s.Name = "J" }, SignalName, 0.15},
		{"disposable domain", func(s *Submission) { s.Email = "bot@mailinator.com" }, SignalDisposable, 0.3},
		{"disposable subdomain", func(s *Submission) { s.Email = "bot@eu.yopmail.com" }, SignalDisposable, 0.3},
		{"shouting", func(s *Submission) { s.Message = "WE WANT TO RETIRE IN THAILAND NEXT YEAR" }, SignalShouting, 0.15},
		{"missing country", func(s *Submission) { s.Country = "" }, SignalNoCountry, 0.05},
		{"links are capped", func(s *Submission) {
			s.Message += " http://a.example http://b.example http://c.example http://d.example http://e.example"
		}, SignalLinks, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := scenarioA()
			tt.mutate(&sub)
			result := Score(sub)
			assert.Contains(t, result.Signals, tt.signal)
			assert.InDelta(t, tt.score, result.Score, 0.0001)
		})
	}
}

func TestScoreCannedPrefixNeedsWordBoundary(t *testing.T) {
	sub := scenarioA()
	sub.Message = "Dear sirs and madams of the relocation team, we plan to move."
	assert.NotContains(t, Score(sub).Signals, SignalCanned)

	sub.Message = "Hi, my wife and I would like to retire in Portugal in 2026."
	assert.NotContains(t, Score(sub).Signals, SignalCanned)
}

func TestScoreBoundsAndDeterminism(t *testing.T) {
	inputs := []Submission{
		{},
		scenarioA(),
		{Name: "x", Email: "a@mailinator.com", Message: strings.Repeat("FREE MONEY CLICK HERE http://x.example ", 40)},
		{Name: "Ünal Çelik", Email: "u@example.com.tr", Country: "Türkiye", Message: "Emekliliğimi Antalya'da geçirmek istiyorum."},
	}
	for _, sub := range inputs {
		first := Score(sub)
		second := Score(sub)
		require.Equal(t, first, second)
		assert.GreaterOrEqual(t, first.Score, 0.0)
		assert.LessOrEqual(t, first.Score, 1.0)
	}
}

func TestScoreMonotonicInKeywords(t *testing.T) {
	bases := []string{
		"We are planning to retire within two years and want to explore Chiang Mai.",
		"Hello",
		"WE WANT TO RETIRE IN THAILAND NEXT YEAR",
	}
	for _, base := range bases {
		sub := scenarioA()
		sub.Message = base
		prev := Score(sub).Score
		for i := 0; i < 8; i++ {
			sub.Message += " free money"
			next := Score(sub).Score
			require.GreaterOrEqualf(t, next, prev, "score dropped after %d keywords on %q", i+1, base)
			prev = next
		}
	}
}

func TestScoreKeywordsKeepShapeSignals(t *testing.T) {
	sub := scenarioA()
	sub.Message = "testing"
	base := Score(sub)
	require.Contains(t, base.Signals, SignalShort)
	require.Contains(t, base.Signals, SignalCanned)

	for _, suffix := range []string{" investment opportunity", " CASINO", " click here buy now"} {
		sub.Message = "testing" + suffix
		next := Score(sub)
		assert.Greaterf(t, next.Score, base.Score, "score for %q", sub.Message)
		assert.Contains(t, next.Signals, SignalKeyword)
		assert.Contains(t, next.Signals, SignalShort)
		assert.Contains(t, next.Signals, SignalCanned)
	}
}

func TestScoreIsRoundedToTwoDecimals(t *testing.T) {
	sub := scenarioA()
	sub.Country = ""
	sub.Name = "J"
	result := Score(sub)
	assert.Equal(t, 0.2, result.Score)
}
