package figures

import (
	"fmt"
	"strings"
)

// TableOptions carries the table-wide scale and provenance for ExtractFromTable
type TableOptions struct {
	// Scale applies to decimal-valued cells. Nil means unscaled.
	Scale *Scale
	Provenance
}

// ExtractFromTable extracts every numeric cell of a table grid.
//
// Column 0 is the row label. A row label that declares its own scale, such
// as "(Hours in Thousands)", scales all of that row's values. Otherwise only
// values written with a decimal point take the table scale; whole numbers
// are treated as counts and stay unscaled. Cells holding several values on
// separate lines produce one record per line.
//
// Every cell is also scanned for narrative figures, reported as
// table_narrative records.
func (e *Extractor) ExtractFromTable(rows []Row, opts TableOptions) []ExtractedNumber {
	headers := ResolveColumnHeaders(rows)
	if headers == nil {
		return nil
	}

	var results []ExtractedNumber
	for _, row := range rows[dataStartRow(rows):] {
		results = append(results, e.extractRow(row, headers, opts)...)
	}

	for _, row := range rows {
		for _, cell := range row {
			if cell == nil || *cell == "" {
				continue
			}
			for _, n := range e.ExtractInlineNumbers(*cell) {
				n.RowLabel = inlineRowLabel
				n.Column = tableNarrativeColumn
				n.SourceType = SourceTableNarrative
				results = append(results, n.withProvenance(opts.Provenance))
			}
		}
	}

	return results
}

func (e *Extractor) extractRow(row Row, headers []string, opts TableOptions) []ExtractedNumber {
	if len(row) == 0 {
		return nil
	}
	rowLabel := flattenCell(cellText(row[0]))
	rowScale := FindHeaderMultiplier(rowLabel)

	// Line breaks in the label are already flattened, so every sub-row
	// shares the combined label.
	subLabels := strings.Split(rowLabel, "\n")

	var results []ExtractedNumber
	for col := 1; col < len(row); col++ {
		cell := row[col]
		if cell == nil || *cell == "" {
			continue
		}
		column := columnHeader(headers, col)

		for i, sub := range strings.Split(*cell, "\n") {
			sub = strings.TrimSpace(sub)
			if !IsNumber(sub) {
				continue
			}
			value, ok := e.ParseNumber(sub)
			if !ok {
				continue
			}
			results = append(results, newNumber(value, sub, effectiveScale(sub, rowScale, opts.Scale),
				subLabel(subLabels, i), column, SourceTable, opts.Provenance, nil))
		}
	}
	return results
}

// effectiveScale applies the decimal heuristic: a row-level declaration
// always wins, the table scale only reaches values with a decimal point.
func effectiveScale(raw string, rowScale, tableScale *Scale) *Scale {
	switch {
	case rowScale != nil:
		return rowScale
	case strings.Contains(raw, "."):
		return tableScale
	default:
		return nil
	}
}

// subLabel aligns the i-th sub-value with its label, reusing the last label
// when there are more values than labels.
func subLabel(labels []string, i int) string {
	if i < len(labels) {
		return strings.TrimSpace(labels[i])
	}
	return strings.TrimSpace(labels[len(labels)-1])
}

func columnHeader(headers []string, col int) string {
	if col < len(headers) {
		return headers[col]
	}
	return fmt.Sprintf(fallbackColumnPattern, col)
}
