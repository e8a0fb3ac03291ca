package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/mcp-pdf-figures/internal/layout"
)

// extensions maps a lower-case file extension to the layout reader for it
var extensions = map[string]layout.Format{
	".pdf":  layout.FormatPDF,
	".json": layout.FormatJSON,
	".html": layout.FormatHTML,
	".htm":  layout.FormatHTML,
}

// SupportedExtensions lists the file extensions Load understands
func SupportedExtensions() []string {
	return []string{".pdf", ".json", ".html", ".htm"}
}

// FormatOf returns the layout format for path's extension
func FormatOf(path string) (layout.Format, error) {
	format, ok := extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s", layout.ErrUnsupportedFormat, filepath.Base(path))
	}
	return format, nil
}

// Validator checks files before they are laid out
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator enforcing maxFileSize bytes
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile reports whether path can be loaded. Problems with the file are
// returned in the result, not as an error.
func (v *Validator) ValidateFile(path string) *ValidationResult {
	result := &ValidationResult{Path: path}

	format, err := v.validate(path)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.Valid = true
	result.Format = string(format)
	result.Message = "file can be processed"
	if format == layout.FormatPDF {
		if pages, err := layout.PageCount(path); err == nil {
			result.Pages = pages
		}
	}
	return result
}

func (v *Validator) validate(path string) (layout.Format, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return "", fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.validateInfo(path, info); err != nil {
		return "", err
	}

	format, err := FormatOf(path)
	if err != nil {
		return "", err
	}

	if format == layout.FormatPDF {
		if err := validatePDF(path); err != nil {
			return "", err
		}
	}
	return format, nil
}

func (v *Validator) validateInfo(path string, info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if info.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), v.maxFileSize)
	}
	return nil
}

// validatePDF runs pdfcpu's relaxed structural validation
func validatePDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(f, conf); err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	return nil
}
