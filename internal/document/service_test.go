package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-figures/internal/figures"
	"github.com/a3tai/mcp-pdf-figures/internal/layout"
)

const layoutJSON = `{"pages": [{"page_number": 2, "boxes": [
  {"boxclass": "section-header", "y0": 10, "textlines": [{"spans": [{"text": "Transit"}]}]},
  {"boxclass": "text", "y0": 20, "textlines": [{"spans": [{"text": "(Dollars in Thousands)"}]}]},
  {"boxclass": "table", "y0": 30, "table": {"extract": [["Line", "FY2024"], ["Buses", "310.25"]]}}
]}]}`

const budgetHTML = `<h1>Libraries</h1><p>Branch upgrades cost $12 million.</p>`

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "transit.json"), []byte(layoutJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.html"), []byte(budgetHTML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), nil, 0o600))

	svc, err := NewService(Options{Directory: dir, MaxFileSize: 1024 * 1024, ContextWindow: 30, Workers: 2})
	require.NoError(t, err)
	return svc, dir
}

func TestNewService(t *testing.T) {
	_, err := NewService(Options{})
	assert.Error(t, err)

	svc, err := NewService(Options{Directory: "/tmp/figures", MaxFileSize: 10})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/figures", svc.Directory())
	assert.Equal(t, int64(10), svc.MaxFileSize())
	assert.NotNil(t, svc.Extractor())
}

func TestService_Load(t *testing.T) {
	svc, dir := newTestService(t)

	doc, err := svc.Load("transit.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "transit.json"), doc.Path)
	assert.Equal(t, "transit.json", doc.Source)
	assert.Equal(t, layout.FormatJSON, doc.Format)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 2, doc.Pages[0].Number)

	doc, err = svc.Load(filepath.Join(dir, "library.html"))
	require.NoError(t, err)
	assert.Equal(t, layout.FormatHTML, doc.Format)
	require.Len(t, doc.Pages, 1)
}

func TestService_LoadRejects(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		path string
	}{
		{name: "outside directory", path: "../elsewhere.json"},
		{name: "missing file", path: "missing.json"},
		{name: "unsupported extension", path: "notes.txt"},
		{name: "empty file", path: "empty.json"},
		{name: "empty path", path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Load(tt.path)
			assert.Error(t, err)
		})
	}

	_, err := svc.Load("notes.txt")
	assert.True(t, errors.Is(err, layout.ErrUnsupportedFormat))
}

func TestService_LoadTooLarge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.json"), []byte(layoutJSON), 0o600))

	svc, err := NewService(Options{Directory: dir, MaxFileSize: 16})
	require.NoError(t, err)

	_, err = svc.Load("big.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}

func TestService_ExtractFile(t *testing.T) {
	svc, _ := newTestService(t)

	r, err := svc.ExtractFile(context.Background(), "transit.json")
	require.NoError(t, err)
	assert.Equal(t, "transit.json", r.Source)
	require.Equal(t, 1, r.Count)

	n := r.Numbers[0]
	assert.Equal(t, "310.25", n.Raw)
	assert.Equal(t, "Buses", n.RowLabel)
	assert.Equal(t, "FY2024", n.Column)
	assert.InDelta(t, 310_250, n.AdjustedValue, 0.001)
	require.NotNil(t, n.Source)
	assert.Equal(t, "transit.json", *n.Source)
	require.NotNil(t, n.Section)
	assert.Equal(t, "Transit", *n.Section)

	r, err = svc.ExtractFile(context.Background(), "library.html")
	require.NoError(t, err)
	require.Equal(t, 1, r.Count)
	assert.Equal(t, figures.SourceNarrative, r.Numbers[0].SourceType)
	assert.InDelta(t, 12_000_000, r.Numbers[0].AdjustedValue, 0.001)
}

func TestService_ExtractDocumentCancelled(t *testing.T) {
	svc, _ := newTestService(t)
	doc, err := svc.Load("transit.json")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.ExtractDocument(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_ValidateFile(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.ValidateFile("transit.json")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "json", result.Format)
	assert.Equal(t, "transit.json", result.Path)

	result, err = svc.ValidateFile("notes.txt")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Message)

	_, err = svc.ValidateFile("../../etc/passwd")
	assert.Error(t, err)
}

func TestService_FindDocuments(t *testing.T) {
	svc, dir := newTestService(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "archive"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archive", "old.htm"), []byte("<p>x</p>"), 0o600))

	files, err := svc.FindDocuments(0)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"old.htm", "empty.json", "library.html", "transit.json"}, names)

	limited, err := svc.FindDocuments(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]layout.Format{
		"a.pdf":  layout.FormatPDF,
		"B.PDF":  layout.FormatPDF,
		"c.json": layout.FormatJSON,
		"d.html": layout.FormatHTML,
		"e.HTM":  layout.FormatHTML,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatOf("budget.xlsx")
	assert.ErrorIs(t, err, layout.ErrUnsupportedFormat)
}
