package figures

import "strings"

// SourceType identifies which extractor produced an ExtractedNumber
type SourceType string

const (
	SourceTable          SourceType = "table"
	SourceNarrative      SourceType = "narrative"
	SourceTableNarrative SourceType = "table_narrative"
)

const (
	inlineRowLabel        = "inline"
	narrativeColumn       = "narrative"
	tableNarrativeColumn  = "table narrative"
	unknownTableName      = "unknown"
	defaultContextWindow  = 30
	headerPartSeparator   = " / "
	fallbackColumnPattern = "col_%d"
)

// ExtractedNumber is a single numeric fact found in a document.
// Values are built once by newNumber and never modified afterwards.
type ExtractedNumber struct {
	Value           float64    `json:"value" yaml:"value"`
	Raw             string     `json:"raw" yaml:"raw"`
	MultiplierLabel *string    `json:"multiplier_label" yaml:"multiplier_label"`
	Multiplier      int64      `json:"multiplier" yaml:"multiplier"`
	AdjustedValue   float64    `json:"adjusted_value" yaml:"adjusted_value"`
	RowLabel        string     `json:"row_label" yaml:"row_label"`
	Column          string     `json:"column" yaml:"column"`
	Section         *string    `json:"section" yaml:"section"`
	Page            *int       `json:"page" yaml:"page"`
	Source          *string    `json:"source" yaml:"source"`
	SourceType      SourceType `json:"source_type" yaml:"source_type"`
	Context         *string    `json:"context" yaml:"context"`
}

// HasMultiplier reports whether a scale was applied to the value
func (n ExtractedNumber) HasMultiplier() bool {
	return n.MultiplierLabel != nil
}

// Provenance locates a number inside a document
type Provenance struct {
	Section *string
	Page    *int
	Source  *string
}

func newNumber(value float64, raw string, scale *Scale, rowLabel, column string,
	sourceType SourceType, prov Provenance, context *string,
) ExtractedNumber {
	n := ExtractedNumber{
		Value:      value,
		Raw:        raw,
		Multiplier: 1,
		RowLabel:   rowLabel,
		Column:     column,
		Section:    prov.Section,
		Page:       prov.Page,
		Source:     prov.Source,
		SourceType: sourceType,
		Context:    context,
	}
	if scale != nil {
		label := scale.Label
		n.MultiplierLabel = &label
		n.Multiplier = scale.Factor
	}
	n.AdjustedValue = n.Value * float64(n.Multiplier)
	return n
}

// withProvenance returns a copy of n carrying prov
func (n ExtractedNumber) withProvenance(prov Provenance) ExtractedNumber {
	n.Section = prov.Section
	n.Page = prov.Page
	n.Source = prov.Source
	return n
}

// BoxClass is the layout classification of a Box
type BoxClass string

const (
	BoxText          BoxClass = "text"
	BoxSectionHeader BoxClass = "section-header"
	BoxTable         BoxClass = "table"
)

// Span is a run of text inside a line
type Span struct {
	Text string `json:"text"`
}

// TextLine is one line of a box
type TextLine struct {
	Spans []Span `json:"spans"`
}

// Row is one table row. A nil cell is absent, which is not the same as empty.
type Row []*string

// Table is a possibly jagged grid of optional cell strings
type Table struct {
	Rows []Row `json:"extract"`
}

// Box is a positioned region of a page. Smaller Y0 is higher on the page.
type Box struct {
	Class BoxClass   `json:"boxclass"`
	Y0    float64    `json:"y0"`
	Lines []TextLine `json:"textlines,omitempty"`
	Table *Table     `json:"table,omitempty"`
}

// Page is one page of a laid-out document
type Page struct {
	Number int   `json:"page_number"`
	Boxes  []Box `json:"boxes"`
}

// Text returns all text of the box: span text first, then table cells,
// joined by single spaces.
func (b Box) Text() string {
	var parts []string
	for _, line := range b.Lines {
		for _, span := range line.Spans {
			parts = append(parts, span.Text)
		}
	}
	if b.Table != nil {
		for _, row := range b.Table.Rows {
			for _, cell := range row {
				if cell != nil && *cell != "" {
					parts = append(parts, *cell)
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

// Cell returns a present cell holding s
func Cell(s string) *string {
	return &s
}

// Rows builds a grid where every cell is present
func Rows(grid ...[]string) []Row {
	rows := make([]Row, 0, len(grid))
	for _, r := range grid {
		row := make(Row, len(r))
		for i := range r {
			row[i] = Cell(r[i])
		}
		rows = append(rows, row)
	}
	return rows
}

func cellText(c *string) string {
	if c == nil {
		return ""
	}
	return *c
}

func ptr[T any](v T) *T {
	return &v
}
