// Package figures extracts scale-normalized numeric facts from documents that
// have already been laid out into pages of positioned text and table boxes.
//
// The package keeps no state between calls. Compiled patterns are package
// level and read-only, so an Extractor may be shared between goroutines.
package figures

import (
	"log/slog"
)

// Options configures an Extractor
type Options struct {
	// ContextWindow is the number of characters captured on each side of
	// an inline narrative match.
	ContextWindow int

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the package level functions
func DefaultOptions() Options {
	return Options{
		ContextWindow: defaultContextWindow,
	}
}

// Extractor runs the extraction heuristics with a fixed configuration
type Extractor struct {
	contextWindow int
	logger        *slog.Logger
}

// New creates an Extractor. A negative context window is treated as zero.
func New(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	window := opts.ContextWindow
	if window < 0 {
		window = 0
	}
	return &Extractor{
		contextWindow: window,
		logger:        logger,
	}
}

// ContextWindow returns the configured narrative context width
func (e *Extractor) ContextWindow() int {
	return e.contextWindow
}

func defaultExtractor() *Extractor {
	return New(DefaultOptions())
}

// ParseNumber parses text with the default extractor
func ParseNumber(text string) (float64, bool) {
	return defaultExtractor().ParseNumber(text)
}

// ExtractInlineNumbers scans text with the default extractor
func ExtractInlineNumbers(text string) []ExtractedNumber {
	return defaultExtractor().ExtractInlineNumbers(text)
}

// ExtractFromText scans narrative text with the default extractor
func ExtractFromText(text string, prov Provenance) []ExtractedNumber {
	return defaultExtractor().ExtractFromText(text, prov)
}

// ExtractFromTable extracts a table with the default extractor
func ExtractFromTable(rows []Row, opts TableOptions) []ExtractedNumber {
	return defaultExtractor().ExtractFromTable(rows, opts)
}

// ExtractFromPages extracts whole pages with the default extractor
func ExtractFromPages(pages []Page, source string) []ExtractedNumber {
	return defaultExtractor().ExtractFromPages(pages, source)
}
