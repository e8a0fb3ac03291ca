package figures

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// $9.6 billion, $ 9.6 billion, $6M, $6.5B
	inlineDollarPattern = regexp.MustCompile(`(?i)\$\s*([\d,]+\.?\d*)\s*(` + scaleAlternation + `)\b`)

	// 2.0 million, 9.6 billion. Abbreviations are left out: "3 m" is usually meters.
	inlineBarePattern = regexp.MustCompile(`(?i)([\d,]+\.?\d*)\s+(` + scaleWordAlternation + `)\b`)
)

type span struct {
	start, end int
}

func (s span) contains(i int) bool {
	return s.start <= i && i < s.end
}

// ExtractInlineNumbers finds scaled figures written into prose, such as
// "$9.6 billion", "$6M" or "2.0 million". Dollar-prefixed matches come
// first; a bare match starting inside one of them is dropped so no figure
// is counted twice.
func (e *Extractor) ExtractInlineNumbers(text string) []ExtractedNumber {
	var found []ExtractedNumber
	var dollarSpans []span

	for _, loc := range inlineDollarPattern.FindAllStringSubmatchIndex(text, -1) {
		n, ok := e.inlineMatch(text, loc)
		if !ok {
			continue
		}
		found = append(found, n)
		dollarSpans = append(dollarSpans, span{loc[0], loc[1]})
	}

	for _, loc := range inlineBarePattern.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(dollarSpans, loc[0]) {
			continue
		}
		if n, ok := e.inlineMatch(text, loc); ok {
			found = append(found, n)
		}
	}

	return found
}

func overlapsAny(spans []span, start int) bool {
	for _, s := range spans {
		if s.contains(start) {
			return true
		}
	}
	return false
}

// inlineMatch turns one submatch index set (number in group 1, scale word
// in group 2) into a narrative record.
func (e *Extractor) inlineMatch(text string, loc []int) (ExtractedNumber, bool) {
	scale := ResolveMultiplier(text[loc[4]:loc[5]])
	if scale == nil {
		return ExtractedNumber{}, false
	}
	value, ok := e.ParseNumber(strings.ReplaceAll(text[loc[2]:loc[3]], ",", ""))
	if !ok {
		return ExtractedNumber{}, false
	}

	raw := strings.TrimSpace(text[loc[0]:loc[1]])
	context := e.contextAround(text, loc[0], loc[1])
	return newNumber(value, raw, scale, inlineRowLabel, narrativeColumn,
		SourceNarrative, Provenance{}, &context), true
}

// contextAround returns the text window around [start, end) with line
// breaks flattened to spaces.
// The window is measured in characters, not bytes.
func (e *Extractor) contextAround(text string, start, end int) string {
	from := start
	for i := 0; i < e.contextWindow && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for i := 0; i < e.contextWindow && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return strings.TrimSpace(strings.ReplaceAll(text[from:to], "\n", " "))
}

// ExtractFromText extracts inline figures from narrative text and tags
// them with prov.
func (e *Extractor) ExtractFromText(text string, prov Provenance) []ExtractedNumber {
	inline := e.ExtractInlineNumbers(text)
	results := make([]ExtractedNumber, 0, len(inline))
	for _, n := range inline {
		results = append(results, n.withProvenance(prov))
	}
	return results
}
