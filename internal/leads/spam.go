package leads

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

// Spam signal names recorded alongside the score.
const (
	SignalKeyword    = "keyword"
	SignalLinks      = "links"
	SignalShort      = "short_message"
	SignalCanned     = "canned_phrase"
	SignalName       = "suspicious_name"
	SignalDisposable = "disposable_email"
	SignalShouting   = "all_caps"
	SignalNoCountry  = "missing_country"
)

const (
	keywordWeight    = 0.20
	linkWeight       = 0.10
	linkCap          = 0.30
	shortWeight      = 0.10
	cannedWeight     = 0.20
	nameWeight       = 0.15
	disposableWeight = 0.30
	shoutingWeight   = 0.15
	noCountryWeight  = 0.05

	shortMessageRunes = 20
	shoutingMinLetter = 20
)

var spamKeywords = []string{
	"free money",
	"click here",
	"casino",
	"viagra",
	"cialis",
	"crypto",
	"bitcoin",
	"forex",
	"lottery",
	"jackpot",
	"payday loan",
	"investment opportunity",
	"make money fast",
	"earn money",
	"work from home",
	"seo services",
	"backlinks",
	"escort",
	"adult dating",
	"xxx",
	"porn",
	"100% free",
	"risk-free",
	"act now",
	"limited time offer",
	"buy now",
}

// cannedReplies only count as an exact match; cannedOpeners also count when
// the message starts with them.
var cannedReplies = []string{
	"hello",
	"hi",
	"hey",
	"test",
	"testing",
	"greetings",
	"interested",
	"i am interested",
	"info",
	"more info",
}

var cannedOpeners = []string{
	"dear sir",
	"dear sir/madam",
	"dear website owner",
	"check out my website",
	"nice website",
	"i saw your website",
	"we can help you rank",
}

var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"guerrillamail.com": {},
	"guerrillamail.net": {},
	"sharklasers.com":   {},
	"10minutemail.com":  {},
	"tempmail.com":      {},
	"temp-mail.org":     {},
	"tempmailo.com":     {},
	"yopmail.com":       {},
	"trashmail.com":     {},
	"getnada.com":       {},
	"dispostable.com":   {},
	"maildrop.cc":       {},
	"fakeinbox.com":     {},
	"throwawaymail.com": {},
	"mintemail.com":     {},
	"mohmal.com":        {},
	"emailondeck.com":   {},
}

var linkPattern = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)

var keywordPattern = compileKeywords(spamKeywords)

func compileKeywords(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// SpamResult is the advisory spam estimate for a submission.
type SpamResult struct {
	Score   float64
	Signals []string
}

// Score computes a deterministic heuristic spam score in [0, 1]. It never
// calls out to anything and never rejects a submission on its own.
func Score(sub Submission) SpamResult {
	sub = sub.Normalize()
	lowerMsg := strings.ToLower(sub.Message)

	var total float64
	var signals []string
	add := func(signal string, weight float64) {
		if weight <= 0 {
			return
		}
		total += weight
		signals = append(signals, signal)
	}

	hits := 0
	for _, kw := range spamKeywords {
		hits += strings.Count(lowerMsg, kw)
	}
	add(SignalKeyword, float64(hits)*keywordWeight)

	links := len(linkPattern.FindAllString(sub.Message, -1))
	add(SignalLinks, math.Min(float64(links)*linkWeight, linkCap))

	// Shape signals ignore keyword text so adding a keyword never clears them.
	shape := stripKeywords(sub.Message)
	if utf8.RuneCountInString(shape) < shortMessageRunes {
		add(SignalShort, shortWeight)
	}
	if isCanned(strings.ToLower(shape)) {
		add(SignalCanned, cannedWeight)
	}
	if suspiciousName(sub.Name) {
		add(SignalName, nameWeight)
	}
	if isDisposable(sub.Email) {
		add(SignalDisposable, disposableWeight)
	}
	if isShouting(shape) {
		add(SignalShouting, shoutingWeight)
	}
	if utf8.RuneCountInString(sub.Country) < 3 {
		add(SignalNoCountry, noCountryWeight)
	}

	return SpamResult{Score: clampScore(total), Signals: signals}
}

func stripKeywords(msg string) string {
	return strings.Join(strings.Fields(keywordPattern.ReplaceAllString(msg, " ")), " ")
}

func clampScore(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return math.Round(v*100) / 100
}

func isCanned(lowerMsg string) bool {
	msg := strings.TrimRight(lowerMsg, ".!? ")
	for _, phrase := range cannedReplies {
		if msg == phrase {
			return true
		}
	}
	for _, phrase := range cannedOpeners {
		rest, ok := strings.CutPrefix(msg, phrase)
		if !ok {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(rest); rest == "" || !unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func suspiciousName(name string) bool {
	if utf8.RuneCountInString(name) < 2 {
		return true
	}
	letters := 0
	for _, r := range strings.ToLower(name) {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if strings.ContainsRune("aeiouy", r) {
			return false
		}
		// Non-Latin scripts have no vowels in this sense.
		if r > unicode.MaxLatin1 {
			return false
		}
	}
	return letters >= 4
}

func isDisposable(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	if _, ok := disposableDomains[domain]; ok {
		return true
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return false
	}
	_, ok := disposableDomains[registrable]
	return ok
}

func isShouting(msg string) bool {
	letters := 0
	for _, r := range msg {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		letters++
	}
	return letters >= shoutingMinLetter
}
