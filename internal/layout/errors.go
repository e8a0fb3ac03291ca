package layout

import (
	"errors"
	"fmt"
)

// Format names an input representation that can be turned into pages
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Error reports a failure while laying out a document
type Error struct {
	Format Format `json:"format"`
	Op     string `json:"operation"`
	Err    error  `json:"error"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s layout error in %s: %v", e.Format, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrUnsupportedFormat is returned for files no reader understands
var ErrUnsupportedFormat = errors.New("unsupported document format")
