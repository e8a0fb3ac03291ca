// Package document loads files from the configured directory, lays them out
// into pages and runs figure extraction over them.
package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/a3tai/mcp-pdf-figures/internal/document/security"
	"github.com/a3tai/mcp-pdf-figures/internal/figures"
	"github.com/a3tai/mcp-pdf-figures/internal/layout"
	"github.com/a3tai/mcp-pdf-figures/internal/report"
)

// Options configures a Service
type Options struct {
	Directory     string
	MaxFileSize   int64
	ContextWindow int
	Workers       int
	PDF           layout.PDFOptions
	Logger        *slog.Logger
}

// Service ties path checks, layout readers and the extractor together
type Service struct {
	maxFileSize   int64
	workers       int
	pdfOptions    layout.PDFOptions
	validator     *Validator
	pathValidator *security.PathValidator
	extractor     *figures.Extractor
	logger        *slog.Logger
}

// NewService creates a document service rooted at opts.Directory
func NewService(opts Options) (*Service, error) {
	pathValidator, err := security.NewPathValidator(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	pdfOptions := opts.PDF
	if pdfOptions == (layout.PDFOptions{}) {
		pdfOptions = layout.DefaultPDFOptions()
	}

	return &Service{
		maxFileSize:   opts.MaxFileSize,
		workers:       workers,
		pdfOptions:    pdfOptions,
		validator:     NewValidator(opts.MaxFileSize),
		pathValidator: pathValidator,
		extractor: figures.New(figures.Options{
			ContextWindow: opts.ContextWindow,
			Logger:        logger,
		}),
		logger: logger,
	}, nil
}

// Extractor returns the configured figure extractor
func (s *Service) Extractor() *figures.Extractor {
	return s.extractor
}

// Directory returns the configured document directory
func (s *Service) Directory() string {
	return s.pathValidator.Root()
}

// MaxFileSize returns the file size limit in bytes
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// ValidateFile checks that path is inside the directory and loadable
func (s *Service) ValidateFile(path string) (*ValidationResult, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	result := s.validator.ValidateFile(resolved)
	result.Path = path
	return result, nil
}

// Load lays out the file at path. The reader is chosen by extension.
func (s *Service) Load(path string) (*Document, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	format, err := s.validator.validate(resolved)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pages, err := s.readPages(resolved, format)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("document laid out",
		"path", resolved,
		"format", format,
		"pages", len(pages),
		"elapsed", time.Since(start),
	)

	return &Document{
		Path:   resolved,
		Source: filepath.Base(resolved),
		Format: format,
		Pages:  pages,
	}, nil
}

func (s *Service) readPages(path string, format layout.Format) ([]figures.Page, error) {
	if format == layout.FormatPDF {
		return layout.ReadPDF(path, s.pdfOptions)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	switch format {
	case layout.FormatJSON:
		return layout.DecodeJSON(f)
	case layout.FormatHTML:
		return layout.ReadHTML(f)
	default:
		return nil, fmt.Errorf("%w: %s", layout.ErrUnsupportedFormat, format)
	}
}

// ExtractFile loads path and extracts every figure from it
func (s *Service) ExtractFile(ctx context.Context, path string) (*report.Report, error) {
	doc, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	return s.ExtractDocument(ctx, doc)
}

// ExtractDocument extracts figures from an already loaded document
func (s *Service) ExtractDocument(ctx context.Context, doc *Document) (*report.Report, error) {
	start := time.Now()
	numbers, err := s.extractor.ExtractFromPagesConcurrent(ctx, doc.Pages, doc.Source, s.workers)
	if err != nil {
		return nil, fmt.Errorf("extraction cancelled: %w", err)
	}

	s.logger.Debug("figures extracted",
		"source", doc.Source,
		"numbers", len(numbers),
		"elapsed", time.Since(start),
	)
	return report.New(doc.Source, numbers), nil
}

// FindDocuments lists loadable files under the configured directory, at most
// limit of them when limit is positive.
func (s *Service) FindDocuments(limit int) ([]FileInfo, error) {
	root := s.pathValidator.Root()
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return []FileInfo{}, nil
	}

	files := []FileInfo{}
	errLimit := errors.New("limit reached")

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped.
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		format, err := FormatOf(path)
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		files = append(files, FileInfo{Path: path, Name: d.Name(), Size: info.Size(), Format: format})
		if limit > 0 && len(files) >= limit {
			return errLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return nil, fmt.Errorf("failed to search directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
