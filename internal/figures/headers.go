package figures

import (
	"fmt"
	"strings"
)

// dataStartRow returns the index of the first row holding a recognized
// number, judged by the first line of each cell, or -1.
func dataStartRow(rows []Row) int {
	for i, row := range rows {
		if hasNumericCell(row) {
			return i
		}
	}
	return -1
}

func maxRowWidth(rows []Row) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

func flattenCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// ResolveColumnHeaders rebuilds one header string per column from the rows
// above the first numeric row. Multi-row headers are merged so a parent
// spanning several sub-columns yields "FY2023 / Qty", "FY2023 / Cost".
//
// It returns nil when the table has no header rows, either because no row
// holds data or because data starts in the first row.
func ResolveColumnHeaders(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}

	start := dataStartRow(rows)
	if start <= 0 {
		return nil
	}
	headerRows := rows[:start]

	if len(headerRows) == 1 {
		headers := make([]string, len(headerRows[0]))
		for j, cell := range headerRows[0] {
			headers[j] = flattenCell(cellText(cell))
		}
		return headers
	}

	width := maxRowWidth(rows)

	// Pad every header row and forward-fill absent or blank cells so merged
	// spans repeat across the columns they cover.
	filled := make([][]string, len(headerRows))
	for i, row := range headerRows {
		out := make([]string, width)
		last := ""
		for j := 0; j < width; j++ {
			var cell *string
			if j < len(row) {
				cell = row[j]
			}
			if cell != nil && strings.TrimSpace(*cell) != "" {
				last = flattenCell(*cell)
			}
			out[j] = last
		}
		filled[i] = out
	}

	headers := make([]string, width)
	for j := 0; j < width; j++ {
		var parts []string
		seen := make(map[string]bool)
		for _, row := range filled {
			v := strings.TrimSpace(row[j])
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			parts = append(parts, v)
		}
		if len(parts) == 0 {
			headers[j] = fmt.Sprintf(fallbackColumnPattern, j)
			continue
		}
		headers[j] = strings.Join(parts, headerPartSeparator)
	}
	return headers
}
