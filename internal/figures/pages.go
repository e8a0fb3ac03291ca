package figures

import (
	"sort"
	"strings"
)

// ScaleDeclaration is a scale stated at a vertical position on a page
type ScaleDeclaration struct {
	Y     float64
	Scale Scale
}

// ScaleDeclarations is the ordered list of declarations seen on one page
type ScaleDeclarations []ScaleDeclaration

// Add appends a declaration
func (d *ScaleDeclarations) Add(y float64, s Scale) {
	*d = append(*d, ScaleDeclaration{Y: y, Scale: s})
}

// NearestAbove returns the last declaration positioned at or above y, or
// nil when every declaration is below it.
func (d ScaleDeclarations) NearestAbove(y float64) *Scale {
	var found *Scale
	for i := range d {
		if d[i].Y <= y {
			s := d[i].Scale
			found = &s
		}
	}
	return found
}

// pageState is the per-page traversal state. It never outlives one page.
type pageState struct {
	section *string
	decls   ScaleDeclarations
}

// ExtractFromPages walks every page's boxes top to bottom and extracts
// narrative and table figures with section, page and source attached.
//
// Scale declarations in text, such as "(Dollars in Millions)", apply to
// tables below them on the same page. A table carrying a declaration but no
// numeric data is a banner: it yields nothing and its scale is promoted to
// the tables that follow.
func (e *Extractor) ExtractFromPages(pages []Page, source string) []ExtractedNumber {
	var results []ExtractedNumber
	for _, page := range pages {
		results = append(results, e.ExtractPage(page, source)...)
	}
	return results
}

// ExtractPage extracts a single page. Section and scale state start empty.
func (e *Extractor) ExtractPage(page Page, source string) []ExtractedNumber {
	boxes := make([]Box, len(page.Boxes))
	copy(boxes, page.Boxes)
	// At equal position text and headers come before tables, so a declaration
	// level with a table still reaches it.
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Y0 != boxes[j].Y0 {
			return boxes[i].Y0 < boxes[j].Y0
		}
		return boxes[i].Class != BoxTable && boxes[j].Class == BoxTable
	})

	var (
		state   pageState
		results []ExtractedNumber
		pageNum = page.Number
	)

	for _, box := range boxes {
		prov := Provenance{Section: state.section, Page: &pageNum, Source: &source}

		switch box.Class {
		case BoxSectionHeader:
			text := box.Text()
			if s := FindHeaderMultiplier(text); s != nil {
				state.decls.Add(box.Y0, *s)
			}
			if !IsPureScaleDeclaration(text) {
				state.section = ptr(text)
			}

		case BoxText:
			text := box.Text()
			if s := FindHeaderMultiplier(text); s != nil {
				state.decls.Add(box.Y0, *s)
			}
			results = append(results, e.ExtractFromText(text, prov)...)

		case BoxTable:
			results = append(results, e.extractTableBox(box, &state, prov)...)
		}
	}

	return results
}

func (e *Extractor) extractTableBox(box Box, state *pageState, prov Provenance) []ExtractedNumber {
	if box.Table == nil || len(box.Table.Rows) == 0 {
		return nil
	}
	rows := box.Table.Rows

	tableScale := FindHeaderMultiplier(tableText(rows))
	if tableScale != nil && !tableHasData(rows) {
		state.decls.Add(box.Y0, *tableScale)
		return nil
	}

	scale := tableScale
	if scale == nil {
		scale = state.decls.NearestAbove(box.Y0)
	}
	if scale == nil {
		e.logger.Info("no multiplier for table",
			"table", tableName(rows),
			"page", *prov.Page,
		)
	}

	return e.ExtractFromTable(rows, TableOptions{Scale: scale, Provenance: prov})
}

func tableHasData(rows []Row) bool {
	return dataStartRow(rows) >= 0
}

func tableText(rows []Row) string {
	var parts []string
	for _, row := range rows {
		for _, cell := range row {
			if cell != nil && *cell != "" {
				parts = append(parts, *cell)
			}
		}
	}
	return strings.Join(parts, " ")
}

// tableName names a table in diagnostics by its first non-empty label cell
func tableName(rows []Row) string {
	for _, row := range rows {
		if len(row) > 0 && row[0] != nil && *row[0] != "" {
			return flattenCell(*row[0])
		}
	}
	return unknownTableName
}
