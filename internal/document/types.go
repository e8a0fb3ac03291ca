package document

import (
	"github.com/a3tai/mcp-pdf-figures/internal/figures"
	"github.com/a3tai/mcp-pdf-figures/internal/layout"
)

// Document is a file laid out into pages
type Document struct {
	Path   string         `json:"path"`
	Source string         `json:"source"`
	Format layout.Format  `json:"format"`
	Pages  []figures.Page `json:"pages"`
}

// ValidationResult is the outcome of checking one file
type ValidationResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Format  string `json:"format,omitempty"`
	Pages   int    `json:"pages,omitempty"` // PDFs only
	Message string `json:"message"`
}

// FileInfo describes a loadable file found in the configured directory
type FileInfo struct {
	Path   string        `json:"path"`
	Name   string        `json:"name"`
	Size   int64         `json:"size"`
	Format layout.Format `json:"format"`
}
