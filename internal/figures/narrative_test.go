package figures

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInlineNumbers(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		value    float64
		adjusted float64
		label    string
	}{
		{"dollar billion", "budget is $9.6 billion for FY2025", 9.6, 9_600_000_000, "Billion"},
		{"dollar compact", "allocated $6M for the project", 6, 6_000_000, "Million"},
		{"dollar spaced", "a $ 12 thousand grant", 12, 12_000, "Thousand"},
		{"dollar with comma", "total of $1,234.5 million allocated", 1234.5, 1_234_500_000, "Million"},
		{"bare million", "approximately 2.0 million units", 2, 2_000_000, "Million"},
		{"bare plural", "some 3 trillions of dollars", 3, 3_000_000_000_000, "Trillion"},
		{"case insensitive", "ABOUT $4.5 BILLION", 4.5, 4_500_000_000, "Billion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := ExtractInlineNumbers(tt.text)
			require.Len(t, results, 1)

			r := results[0]
			assert.Equal(t, tt.value, r.Value)
			assert.Equal(t, tt.adjusted, r.AdjustedValue)
			require.NotNil(t, r.MultiplierLabel)
			assert.Equal(t, tt.label, *r.MultiplierLabel)
			assert.Equal(t, SourceNarrative, r.SourceType)
			assert.Equal(t, "inline", r.RowLabel)
			assert.Equal(t, "narrative", r.Column)
		})
	}
}

func TestExtractInlineNumbers_NoMatch(t *testing.T) {
	for _, text := range []string{"no numbers here", "", "3 m of cable", "FY2025 request", "1,500 units"} {
		assert.Empty(t, ExtractInlineNumbers(text), text)
	}
}

func TestExtractInlineNumbers_DollarNotDoubleCounted(t *testing.T) {
	results := ExtractInlineNumbers("$9.6 billion")
	require.Len(t, results, 1)
	assert.Equal(t, "$9.6 billion", results[0].Raw)
}

func TestExtractInlineNumbers_MultipleMatches(t *testing.T) {
	results := ExtractInlineNumbers("Revenue was $5.2 billion and expenses were $3.1 million")
	require.Len(t, results, 2)

	values := []float64{results[0].AdjustedValue, results[1].AdjustedValue}
	sort.Float64s(values)
	assert.Equal(t, []float64{3_100_000, 5_200_000_000}, values)
}

func TestExtractInlineNumbers_DollarMatchesComeFirst(t *testing.T) {
	results := ExtractInlineNumbers("about 2 million people received $40 billion")
	require.Len(t, results, 2)
	assert.Equal(t, "$40 billion", results[0].Raw)
	assert.Equal(t, "2 million", results[1].Raw)
}

func TestExtractInlineNumbers_Context(t *testing.T) {
	results := ExtractInlineNumbers("The total budget is $9.6 billion for defense")
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Context)
	assert.Contains(t, *results[0].Context, "billion")
	assert.Equal(t, "The total budget is $9.6 billion for defense", *results[0].Context)
}

func TestExtractInlineNumbers_ContextWindow(t *testing.T) {
	text := strings.Repeat("x", 50) + "\nspent $2 million\non" + strings.Repeat("y", 50)

	e := New(Options{ContextWindow: 5})
	results := e.ExtractInlineNumbers(text)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Context)
	assert.Equal(t, "pent $2 million onyy", *results[0].Context)
	assert.Equal(t, 5, e.ContextWindow())
}

func TestExtractInlineNumbers_ContextWindowIsRuneAware(t *testing.T) {
	e := New(Options{ContextWindow: 2})
	results := e.ExtractInlineNumbers("€€€ $1 billion ééé")
	require.Len(t, results, 1)
	assert.Equal(t, "€ $1 billion é", *results[0].Context)
}

func TestExtractFromText_Provenance(t *testing.T) {
	prov := Provenance{Section: ptr("Defense"), Page: ptr(3), Source: ptr("budget.pdf")}

	results := ExtractFromText("allocated $5.2 billion", prov)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "Defense", *r.Section)
	assert.Equal(t, 3, *r.Page)
	assert.Equal(t, "budget.pdf", *r.Source)
	assert.Equal(t, "inline", r.RowLabel)
	assert.Equal(t, "narrative", r.Column)
	assert.Equal(t, 5_200_000_000.0, r.AdjustedValue)
}

func TestExtractFromText_NoInlineNumbers(t *testing.T) {
	results := ExtractFromText("no numbers", Provenance{Section: ptr("Intro"), Page: ptr(1)})
	assert.Empty(t, results)
}
