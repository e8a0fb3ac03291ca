package layout

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/mcp-pdf-figures/internal/figures"
)

// PDFOptions tunes the row based PDF layout
type PDFOptions struct {
	// HeaderFontRatio is how much larger than the page's median font a row
	// must be to count as a section header.
	HeaderFontRatio float64

	// MaxHeaderLength caps the length of a section header row
	MaxHeaderLength int
}

// DefaultPDFOptions returns the layout defaults
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		HeaderFontRatio: 1.2,
		MaxHeaderLength: 200,
	}
}

// ReadPDF lays out a PDF as one text box per visual row. Rows set in a
// noticeably larger font become section headers. Tables are not detected,
// so figures come from narrative patterns only; feed layout JSON from a
// table-aware layout tool for tabular extraction.
func ReadPDF(path string, opts PDFOptions) ([]figures.Page, error) {
	heights, err := pageHeights(path)
	if err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &Error{Format: FormatPDF, Op: "open", Err: err}
	}
	defer f.Close()

	var pages []figures.Page
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, &Error{Format: FormatPDF, Op: "read_rows", Err: fmt.Errorf("page %d: %w", i, err)}
		}

		height := 0.0
		if i-1 < len(heights) {
			height = heights[i-1]
		}
		pages = append(pages, rowsToPage(i, rows, height, opts))
	}

	return pages, nil
}

// pageHeights validates the file with pdfcpu and returns each page's height
func pageHeights(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &Error{Format: FormatPDF, Op: "open", Err: err}
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, &Error{Format: FormatPDF, Op: "read_context", Err: err}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &Error{Format: FormatPDF, Op: "page_count", Err: err}
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, &Error{Format: FormatPDF, Op: "page_dims", Err: err}
	}

	heights := make([]float64, len(dims))
	for i, d := range dims {
		heights[i] = d.Height
	}
	return heights, nil
}

// PageCount returns the number of pages according to pdfcpu
func PageCount(path string) (int, error) {
	heights, err := pageHeights(path)
	if err != nil {
		return 0, err
	}
	return len(heights), nil
}

type textRow struct {
	y        float64
	text     string
	fontSize float64
}

func rowsToPage(number int, rows pdf.Rows, height float64, opts PDFOptions) figures.Page {
	var textRows []textRow
	var sizes []float64
	for _, row := range rows {
		tr := joinRow(row.Content)
		if tr.text == "" {
			continue
		}
		// PDF space grows upwards; boxes are ordered top down.
		tr.y = height - float64(row.Position)
		textRows = append(textRows, tr)
		sizes = append(sizes, tr.fontSize)
	}

	median := medianOf(sizes)
	page := figures.Page{Number: number}
	for _, tr := range textRows {
		class := figures.BoxText
		if median > 0 && tr.fontSize >= median*opts.HeaderFontRatio && len(tr.text) <= opts.MaxHeaderLength {
			class = figures.BoxSectionHeader
		}
		box := textBox(class, tr.text)
		box.Y0 = tr.y
		page.Boxes = append(page.Boxes, box)
	}
	return page
}

// joinRow concatenates the glyph runs of a row, inserting a space where
// the horizontal gap suggests one.
func joinRow(content pdf.TextHorizontal) textRow {
	var sb strings.Builder
	var out textRow
	var prevEnd float64
	for i, t := range content {
		if i > 0 && t.X-prevEnd > t.FontSize*0.25 && !strings.HasSuffix(sb.String(), " ") {
			sb.WriteString(" ")
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
		if t.FontSize > out.fontSize {
			out.fontSize = t.FontSize
		}
	}
	out.text = strings.TrimSpace(sb.String())
	return out
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
