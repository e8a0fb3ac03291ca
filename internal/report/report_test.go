package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/a3tai/mcp-pdf-figures/internal/figures"
)

func sampleNumbers() []figures.ExtractedNumber {
	page := 3
	section := "Operating Budget"
	source := "budget.pdf"
	prov := figures.Provenance{Section: &section, Page: &page, Source: &source}

	rows := figures.Rows(
		[]string{"Item", "FY2025"},
		[]string{"Parks", "1,500.0"},
		[]string{"Staff", "42"},
	)
	numbers := figures.ExtractFromTable(rows, figures.TableOptions{Scale: &figures.Million, Provenance: prov})
	numbers = append(numbers, figures.ExtractFromText("Grants of $2 billion were awarded.", prov)...)
	return numbers
}

func TestNew(t *testing.T) {
	r := New("budget.pdf", sampleNumbers())

	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)
	assert.Equal(t, "budget.pdf", r.Source)
	assert.Equal(t, 3, r.Count)
	assert.False(t, r.GeneratedAt.IsZero())

	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "no multiplier for '42' Staff / FY2025 [page 3, Operating Budget]", r.Warnings[0])
	require.Len(t, r.Unscaled(), 1)

	require.NotNil(t, r.LargestRaw)
	assert.Equal(t, "1,500.0", r.LargestRaw.Raw)
	require.NotNil(t, r.LargestAdjusted)
	assert.Equal(t, "$2 billion", r.LargestAdjusted.Raw)
}

func TestNew_Empty(t *testing.T) {
	r := New("empty.json", nil)
	assert.Equal(t, 0, r.Count)
	assert.NotNil(t, r.Numbers)
	assert.Nil(t, r.LargestRaw)
	assert.Nil(t, r.LargestAdjusted)
	assert.Contains(t, r.Text(), "Extracted 0 numbers from empty.json")
	assert.NotContains(t, r.Text(), "Largest")
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatText,
		"text":     FormatText,
		"JSON":     FormatJSON,
		"yml":      FormatYAML,
		"yaml":     FormatYAML,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWrite_JSON(t *testing.T) {
	r := New("budget.pdf", sampleNumbers())

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.RunID, decoded["run_id"])
	assert.EqualValues(t, 3, decoded["count"])

	numbers, ok := decoded["numbers"].([]any)
	require.True(t, ok)
	first := numbers[0].(map[string]any)
	assert.Equal(t, "Million", first["multiplier_label"])
	assert.EqualValues(t, 1_500_000_000, first["adjusted_value"])
	assert.Equal(t, "table", first["source_type"])
}

func TestWrite_YAML(t *testing.T) {
	r := New("budget.pdf", sampleNumbers())

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatYAML))

	var decoded struct {
		Source  string `yaml:"source"`
		Numbers []struct {
			Raw        string `yaml:"raw"`
			RowLabel   string `yaml:"row_label"`
			Multiplier int64  `yaml:"multiplier"`
		} `yaml:"numbers"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "budget.pdf", decoded.Source)
	require.Len(t, decoded.Numbers, 3)
	assert.Equal(t, "Staff", decoded.Numbers[1].RowLabel)
	assert.Equal(t, int64(1), decoded.Numbers[1].Multiplier)
}

func TestMarkdown(t *testing.T) {
	md := New("budget.pdf", sampleNumbers()).Markdown()
	lines := strings.Split(md, "\n")

	assert.Equal(t, "# Extracted Numbers", lines[0])
	assert.Contains(t, md, "- **1,500.0** (x1,000,000, adjusted=1,500,000,000) — Parks / FY2025 [page 3, Operating Budget]")
	assert.Contains(t, md, "- **42** (NO MULTIPLIER) — Staff / FY2025 [page 3, Operating Budget]")
	assert.Contains(t, md, "- **$2 billion** (x1,000,000,000, adjusted=2,000,000,000) — inline / narrative [page 3, Operating Budget]")
	assert.Contains(t, md, "  > ...Grants of $2 billion were awarded....")
}

func TestText(t *testing.T) {
	text := New("budget.pdf", sampleNumbers()).Text()

	assert.Contains(t, text, "  WARNING: no multiplier for '42'")
	assert.Contains(t, text, "Extracted 3 numbers from budget.pdf")
	assert.Contains(t, text, "Largest raw: 1,500.0 [page 3]")
	assert.Contains(t, text, "Largest adjusted: 2,000,000,000 [page 3]")
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, New("x", nil).Write(&buf, Format("pdf")))
}
