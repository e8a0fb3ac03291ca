package layout

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/mcp-pdf-figures/internal/figures"
)

// normalizeText folds compatibility characters so the number patterns see
// plain ASCII: non-breaking spaces, full-width digits and parentheses.
func normalizeText(s string) string {
	return norm.NFKC.String(s)
}

// collapseSpaces trims each line and squeezes runs of blanks inside it,
// keeping line breaks that separate stacked values.
func collapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// normalizePages applies normalizeText to every string in pages, in place
func normalizePages(pages []figures.Page) {
	for p := range pages {
		for b := range pages[p].Boxes {
			box := &pages[p].Boxes[b]
			for l := range box.Lines {
				for s := range box.Lines[l].Spans {
					box.Lines[l].Spans[s].Text = normalizeText(box.Lines[l].Spans[s].Text)
				}
			}
			if box.Table == nil {
				continue
			}
			for _, row := range box.Table.Rows {
				for c, cell := range row {
					if cell != nil {
						row[c] = figures.Cell(normalizeText(*cell))
					}
				}
			}
		}
	}
}
