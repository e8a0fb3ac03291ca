package layout

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/a3tai/mcp-pdf-figures/internal/figures"
)

const htmlBlockSelector = "h1, h2, h3, h4, h5, h6, p, li, table"

// maxColspan caps the absent cells a single colspan can add.
const maxColspan = 1000

// ReadHTML lays out an HTML document as a single page. Headings become
// section headers and paragraphs or list items become text boxes. Tables
// keep their grid, and a table caption becomes a text box just above it so
// a unit caption scales the table. Position is document order.
//
// A cell spanning n columns is followed by n-1 absent cells so the header
// resolver can forward-fill the span, up to maxColspan. <br> inside a cell
// separates stacked values. A nested table is left out of its enclosing
// cell and row set.
func ReadHTML(r io.Reader) ([]figures.Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &Error{Format: FormatHTML, Op: "parse", Err: err}
	}

	page := figures.Page{Number: 1}
	position := 0

	doc.Find(htmlBlockSelector).Each(func(_ int, s *goquery.Selection) {
		// Content inside tables is read as part of the table grid.
		if s.ParentsFiltered("table").Length() > 0 {
			return
		}

		var box figures.Box
		switch goquery.NodeName(s) {
		case "table":
			if caption := textBox(figures.BoxText, s.ChildrenFiltered("caption").Text()); caption.Text() != "" {
				caption.Y0 = float64(position)
				position++
				page.Boxes = append(page.Boxes, caption)
			}
			box = figures.Box{Class: figures.BoxTable, Table: readHTMLTable(s)}
		case "h1", "h2", "h3", "h4", "h5", "h6":
			box = textBox(figures.BoxSectionHeader, s.Text())
		default:
			box = textBox(figures.BoxText, s.Text())
		}
		box.Y0 = float64(position)
		position++

		if box.Class != figures.BoxTable && box.Text() == "" {
			return
		}
		page.Boxes = append(page.Boxes, box)
	})

	return []figures.Page{page}, nil
}

func textBox(class figures.BoxClass, text string) figures.Box {
	text = strings.Join(strings.Fields(normalizeText(text)), " ")
	if text == "" {
		return figures.Box{Class: class}
	}
	return figures.Box{
		Class: class,
		Lines: []figures.TextLine{{Spans: []figures.Span{{Text: text}}}},
	}
}

func readHTMLTable(table *goquery.Selection) *figures.Table {
	t := &figures.Table{}

	// Rows of nested tables belong to the nested grid, not this one.
	rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})

	rows.Each(func(_ int, tr *goquery.Selection) {
		var row figures.Row
		tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			content := cell.Clone()
			content.Find("table").Remove()
			content.Find("br").ReplaceWithHtml("\n")
			row = append(row, figures.Cell(collapseSpaces(normalizeText(content.Text()))))

			span, err := strconv.Atoi(strings.TrimSpace(cell.AttrOr("colspan", "1")))
			span = min(span, maxColspan)
			for i := 1; err == nil && i < span; i++ {
				row = append(row, nil)
			}
		})
		if len(row) > 0 {
			t.Rows = append(t.Rows, row)
		}
	})

	return t
}
