package figures

import (
	"regexp"
	"strconv"
	"strings"
)

// Scale is a named power-of-ten multiplier such as Million = 1,000,000
type Scale struct {
	Label  string `json:"label" yaml:"label"`
	Factor int64  `json:"factor" yaml:"factor"`
}

var (
	Thousand = Scale{Label: "Thousand", Factor: 1_000}
	Million  = Scale{Label: "Million", Factor: 1_000_000}
	Billion  = Scale{Label: "Billion", Factor: 1_000_000_000}
	Trillion = Scale{Label: "Trillion", Factor: 1_000_000_000_000}
)

// scaleWord maps a case-insensitive pattern of scale words to its Scale.
// Adding a row here extends every header and inline pattern below.
type scaleWord struct {
	pattern string
	scale   Scale
}

var scaleVocabulary = []scaleWord{
	{`thousands?|k`, Thousand},
	{`millions?|m`, Million},
	{`billions?|b`, Billion},
	{`trillions?|t`, Trillion},
}

var (
	scaleMatchers = compileScaleMatchers()

	// alternation of every scale word and abbreviation
	scaleAlternation = joinScalePatterns(func(scaleWord) bool { return true })

	// alternation of the full scale words only, abbreviations excluded
	scaleWordAlternation = joinScalePatterns(func(w scaleWord) bool { return len(w.pattern) > 2 })

	headerUnitPatterns = []*regexp.Regexp{
		// (Dollars in Millions), (Amounts in Thousands)
		regexp.MustCompile(`(?i)\(\w+\s+in\s+(` + scaleAlternation + `)\)`),
		// ($ IN MILLIONS)
		regexp.MustCompile(`(?i)\(\s*\$\s+IN\s+(` + scaleAlternation + `)\)`),
		// ($ Millions), ($Millions), ($ M)
		regexp.MustCompile(`(?i)\(\$\s*(` + scaleAlternation + `)\)`),
		// Cash ($M), Financial Performance ( $ M )
		regexp.MustCompile(`(?i)\(\s*\$\s*(` + scaleAlternation + `)\s*\)`),
	}

	// accounting numbers: 8,137.477  (48.843)  169,611.1. At least one digit
	// is required, so "," or "(,)" is not a number.
	numberPattern = regexp.MustCompile(`^\s*\(?\s*[\d,]*\d[\d,]*\.?\d*\s*\)?\s*$`)

	// what is left after parentheses and separators are stripped
	decimalPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)
)

func compileScaleMatchers() []*regexp.Regexp {
	matchers := make([]*regexp.Regexp, len(scaleVocabulary))
	for i, w := range scaleVocabulary {
		matchers[i] = regexp.MustCompile(`(?i)^(?:` + w.pattern + `)$`)
	}
	return matchers
}

func joinScalePatterns(keep func(scaleWord) bool) string {
	var parts []string
	for _, w := range scaleVocabulary {
		if keep(w) {
			parts = append(parts, w.pattern)
		}
	}
	return strings.Join(parts, "|")
}

// IsNumber reports whether text has the shape of an accounting number.
// It does not parse the value.
func IsNumber(text string) bool {
	return numberPattern.MatchString(text)
}

// ParseNumber parses an accounting-formatted number. Parenthesized values
// are negative and thousands separators are ignored. The second result is
// false when nothing numeric remains.
func (e *Extractor) ParseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	negative := strings.Contains(text, "(") && strings.Contains(text, ")")
	cleaned := strings.NewReplacer("(", "", ")", "", ",", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)

	if !decimalPattern.MatchString(cleaned) {
		e.logger.Debug("parse number failed", "text", text)
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		e.logger.Debug("parse number failed", "text", text, "error", err)
		return 0, false
	}
	if negative {
		value = -value
	}
	return value, true
}

// ResolveMultiplier matches a whole scale word or abbreviation
// ("million", "Millions", "M") and returns its Scale, or nil.
func ResolveMultiplier(text string) *Scale {
	text = strings.TrimSpace(text)
	for i, m := range scaleMatchers {
		if m.MatchString(text) {
			s := scaleVocabulary[i].scale
			return &s
		}
	}
	return nil
}

// FindHeaderMultiplier searches text for a parenthetical scale declaration
// such as "(Dollars in Millions)" or "Cash ($M)". The first matching
// pattern wins.
func FindHeaderMultiplier(text string) *Scale {
	for _, p := range headerUnitPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return ResolveMultiplier(m[1])
		}
	}
	return nil
}

// ParseScale reads a user supplied scale: a bare word ("millions", "K"), a
// declaration ("(Dollars in Millions)") or one without its parentheses
// ("$M", "dollars in thousands"). It returns nil when no scale is named.
func ParseScale(text string) *Scale {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if s := ResolveMultiplier(text); s != nil {
		return s
	}
	if s := FindHeaderMultiplier(text); s != nil {
		return s
	}
	return FindHeaderMultiplier("(" + text + ")")
}

// IsPureScaleDeclaration reports whether text declares a scale and holds
// nothing else, like a heading that reads only "($M)".
func IsPureScaleDeclaration(text string) bool {
	if FindHeaderMultiplier(text) == nil {
		return false
	}
	stripped := text
	for _, p := range headerUnitPatterns {
		stripped = p.ReplaceAllString(stripped, "")
	}
	return strings.TrimSpace(stripped) == ""
}

// hasNumericCell reports whether any cell starts with a recognized number
func hasNumericCell(row Row) bool {
	for _, cell := range row {
		if cell == nil || *cell == "" {
			continue
		}
		first, _, _ := strings.Cut(*cell, "\n")
		if IsNumber(first) {
			return true
		}
	}
	return false
}
