package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-pdf-figures/internal/config"
	"github.com/a3tai/mcp-pdf-figures/internal/descriptions"
	"github.com/a3tai/mcp-pdf-figures/internal/document"
	"github.com/a3tai/mcp-pdf-figures/internal/figures"
	"github.com/a3tai/mcp-pdf-figures/internal/httpapi"
	"github.com/a3tai/mcp-pdf-figures/internal/layout"
	"github.com/a3tai/mcp-pdf-figures/internal/report"
)

const (
	defaultToolFormat = report.FormatMarkdown

	serverInfoFileLimit = 100
	serverInfoScanLimit = 2 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *document.Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, svc *document.Service) (*Server, error) {
	if svc == nil {
		return nil, errors.New("document service cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		service:   svc,
		mcpServer: mcpServer,
		logger:    slog.Default().With("component", "mcp"),
	}

	s.registerTools()

	return s, nil
}

func formatOption() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Output format: markdown (default), text, json or yaml"),
		mcp.Enum("markdown", "text", "json", "yaml"),
	)
}

func provenanceOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("section", mcp.Description("Section the figures belong to")),
		mcp.WithNumber("page", mcp.Description("Page number the figures were found on")),
		mcp.WithString("source", mcp.Description("Source document identifier")),
	}
}

var rowsSchema = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": []string{"string", "null"}},
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractFileTool := mcp.NewTool(
		descriptions.ToolExtractFile,
		mcp.WithDescription(descriptions.ExtractFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a .pdf, layout .json or .html file, absolute or relative to the document directory"),
		),
		formatOption(),
	)
	s.mcpServer.AddTool(extractFileTool, s.handleExtractFile)

	extractPagesTool := mcp.NewTool(
		descriptions.ToolExtractPages,
		mcp.WithDescription(descriptions.ExtractPagesDescription),
		mcp.WithString("layout",
			mcp.Required(),
			mcp.Description("Layout JSON document with a pages array"),
		),
		mcp.WithString("source", mcp.Description("Source document identifier")),
		formatOption(),
	)
	s.mcpServer.AddTool(extractPagesTool, s.handleExtractPages)

	textOpts := []mcp.ToolOption{
		mcp.WithDescription(descriptions.ExtractTextDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Narrative text to scan"),
		),
		formatOption(),
	}
	s.mcpServer.AddTool(
		mcp.NewTool(descriptions.ToolExtractText, append(textOpts, provenanceOptions()...)...),
		s.handleExtractText,
	)

	tableOpts := []mcp.ToolOption{
		mcp.WithDescription(descriptions.ExtractTableDescription),
		mcp.WithArray("rows",
			mcp.Required(),
			mcp.Description("Table rows, each an array of cell strings or null"),
			mcp.Items(rowsSchema),
		),
		mcp.WithString("scale",
			mcp.Description("Table scale such as millions, $K or (Dollars in Thousands)"),
		),
		formatOption(),
	}
	s.mcpServer.AddTool(
		mcp.NewTool(descriptions.ToolExtractTable, append(tableOpts, provenanceOptions()...)...),
		s.handleExtractTable,
	)

	resolveHeadersTool := mcp.NewTool(
		descriptions.ToolResolveHeaders,
		mcp.WithDescription(descriptions.ResolveHeadersDescription),
		mcp.WithArray("rows",
			mcp.Required(),
			mcp.Description("Table rows, each an array of cell strings or null"),
			mcp.Items(rowsSchema),
		),
	)
	s.mcpServer.AddTool(resolveHeadersTool, s.handleResolveHeaders)

	validateFileTool := mcp.NewTool(
		descriptions.ToolValidateFile,
		mcp.WithDescription(descriptions.ValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the document to check"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)

	listFilesTool := mcp.NewTool(
		descriptions.ToolListFiles,
		mcp.WithDescription(descriptions.ListFilesDescription),
	)
	s.mcpServer.AddTool(listFilesTool, s.handleListFiles)

	serverInfoTool := mcp.NewTool(
		descriptions.ToolServerInfo,
		mcp.WithDescription(descriptions.ServerInfoDescription),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := requestFormat(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := s.service.ExtractFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.reportResult(rep, format)
}

func (s *Server) handleExtractPages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("layout")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := requestFormat(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pages, err := layout.DecodeJSON(strings.NewReader(raw))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc := &document.Document{
		Source: stringArg(request, "source"),
		Format: layout.FormatJSON,
		Pages:  pages,
	}
	rep, err := s.service.ExtractDocument(ctx, doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.reportResult(rep, format)
}

func (s *Server) handleExtractText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := requestFormat(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	prov := requestProvenance(request)
	numbers := s.service.Extractor().ExtractFromText(text, prov)
	return s.reportResult(report.New(stringArg(request, "source"), numbers), format)
}

func (s *Server) handleExtractTable(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := requestRows(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := requestFormat(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	scaleText := stringArg(request, "scale")
	scale := figures.ParseScale(scaleText)
	if scaleText != "" && scale == nil {
		return mcp.NewToolResultError(fmt.Sprintf("unrecognized scale %q", scaleText)), nil
	}

	opts := figures.TableOptions{Scale: scale, Provenance: requestProvenance(request)}
	numbers := s.service.Extractor().ExtractFromTable(rows, opts)
	return s.reportResult(report.New(stringArg(request, "source"), numbers), format)
}

func (s *Server) handleResolveHeaders(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := requestRows(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	headers := figures.ResolveColumnHeaders(rows)
	if len(headers) == 0 {
		return mcp.NewToolResultText("No header rows found: the table has no data rows or data starts in the first row"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Resolved %d column header(s):\n", len(headers))
	for i, h := range headers {
		fmt.Fprintf(&sb, "%d. %s\n", i, h)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ValidateFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("File %s is valid (%s) and can be processed", result.Path, result.Format)
		if result.Pages > 0 {
			responseText += fmt.Sprintf("\nPages: %d", result.Pages)
		}
	} else {
		responseText = fmt.Sprintf("Validation failed for %s: %s", result.Path, result.Message)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleListFiles(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.service.FindDocuments(0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(files) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No supported documents found in directory: %s", s.service.Directory())), nil
	}
	return mcp.NewToolResultText(s.formatFileList(files)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, truncated := s.scanDirectory(ctx)
	return mcp.NewToolResultText(s.formatServerInfo(files, truncated)), nil
}

// scanDirectory lists documents for server info without letting a large
// directory stall the call. The second result is true when the scan was cut
// short by the file or time limit.
func (s *Server) scanDirectory(ctx context.Context) ([]document.FileInfo, bool) {
	type scanResult struct {
		files []document.FileInfo
		err   error
	}

	ctx, cancel := context.WithTimeout(ctx, serverInfoScanLimit)
	defer cancel()

	done := make(chan scanResult, 1)
	go func() {
		files, err := s.service.FindDocuments(serverInfoFileLimit)
		done <- scanResult{files: files, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			s.logger.Warn("directory scan failed", "directory", s.service.Directory(), "error", res.err)
			return nil, false
		}
		return res.files, len(res.files) >= serverInfoFileLimit
	case <-ctx.Done():
		s.logger.Warn("directory scan timed out", "directory", s.service.Directory())
		return nil, true
	}
}

// Argument helpers

func requestFormat(request mcp.CallToolRequest) (report.Format, error) {
	name := stringArg(request, "format")
	if name == "" {
		return defaultToolFormat, nil
	}
	return report.ParseFormat(name)
}

func stringArg(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func requestProvenance(request mcp.CallToolRequest) figures.Provenance {
	var prov figures.Provenance
	if section := stringArg(request, "section"); section != "" {
		prov.Section = &section
	}
	if source := stringArg(request, "source"); source != "" {
		prov.Source = &source
	}
	// JSON numbers arrive as float64
	if page, ok := request.GetArguments()["page"].(float64); ok {
		p := int(page)
		prov.Page = &p
	}
	return prov
}

// requestRows reads the rows argument, given either as a JSON array or as a
// string holding one.
func requestRows(request mcp.CallToolRequest) ([]figures.Row, error) {
	v, ok := request.GetArguments()["rows"]
	if !ok || v == nil {
		return nil, errors.New("required argument \"rows\" not found")
	}

	var data []byte
	switch t := v.(type) {
	case string:
		data = []byte(t)
	default:
		encoded, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("invalid rows: %w", err)
		}
		data = encoded
	}

	var rows []figures.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("invalid rows: expected an array of arrays of strings or null: %w", err)
	}
	return rows, nil
}

// Formatting methods

func (s *Server) reportResult(rep *report.Report, format report.Format) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	if err := rep.Write(&sb, format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if format == report.FormatMarkdown && len(rep.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range rep.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) formatFileList(files []document.FileInfo) string {
	text := fmt.Sprintf("Found %d document(s) in directory: %s\n\nFiles:\n", len(files), s.service.Directory())
	for i, file := range files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Format: %s\n", file.Format)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		if i < len(files)-1 {
			text += "\n"
		}
	}
	return text
}

func (s *Server) formatServerInfo(files []document.FileInfo, truncated bool) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", s.service.Directory())
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", s.service.MaxFileSize()/(1024*1024))
	text += fmt.Sprintf("🔎 Context Window: %d characters\n", s.service.Extractor().ContextWindow())
	text += fmt.Sprintf("⚙️  Workers: %d\n\n", s.config.Workers)

	if len(files) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d documents found):\n", len(files))
		for i, file := range files {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(files)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%s, %d bytes)\n", i+1, file.Name, file.Format, file.Size)
		}
		if truncated {
			text += "   (listing truncated)\n"
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No supported documents found in default directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, name := range descriptions.GetAllToolNames() {
		summary, _, _ := strings.Cut(descriptions.GetToolDescription(name), "\n")
		text += fmt.Sprintf("• %s: %s\n", name, summary)
	}

	text += "\n📄 Supported Formats: " + strings.Join(document.SupportedExtensions(), ", ") + "\n"

	formats := make([]string, len(report.Formats))
	for i, f := range report.Formats {
		formats[i] = string(f)
	}
	text += "🧾 Output Formats: " + strings.Join(formats, ", ") + "\n"

	return text
}

// Run starts the server in the configured mode and returns when ctx is
// cancelled or the transport stops.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin and stdout
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debug("starting stdio mode", "directory", s.service.Directory())

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the HTTP JSON API until ctx is cancelled
func (s *Server) runServerMode(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		Handler:           httpapi.NewRouter(s.service, slog.Default(), s.config.ServerName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "address", httpServer.Addr, "directory", s.service.Directory())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
