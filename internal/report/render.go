package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/a3tai/mcp-pdf-figures/internal/figures"
)

// Format selects how a report is rendered
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported output format
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown}

// ParseFormat maps a user supplied name to a Format. "md" and "yml" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want one of %v)", s, Formats)
	}
}

// numbers are grouped the way budget documents print them: 1,250,000
var printer = message.NewPrinter(language.English)

// Write renders r to w in the given format
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, r.Markdown())
		return err
	case FormatText, "":
		_, err := io.WriteString(w, r.Text())
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Markdown renders one bullet per number with its scale, location and
// narrative context.
func (r *Report) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Extracted Numbers\n")
	if r.Source != "" {
		fmt.Fprintf(&sb, "\nSource: `%s`\n", r.Source)
	}
	sb.WriteString("\n")

	for _, n := range r.Numbers {
		fmt.Fprintf(&sb, "- **%s** (%s) — %s\n", n.Raw, scaleText(n), locate(n))
		if n.Context != nil && *n.Context != "" {
			fmt.Fprintf(&sb, "  > ...%s...\n", *n.Context)
		}
	}
	return sb.String()
}

// Text renders the console summary: warnings, count and largest values
func (r *Report) Text() string {
	var sb strings.Builder
	for _, warning := range r.Warnings {
		fmt.Fprintf(&sb, "  WARNING: %s\n", warning)
	}

	fmt.Fprintf(&sb, "Extracted %d numbers from %s\n", r.Count, r.Source)
	if r.LargestRaw != nil {
		fmt.Fprintf(&sb, "\nLargest raw: %s [page %s]\n", r.LargestRaw.Raw, pageText(r.LargestRaw.Page))
	}
	if r.LargestAdjusted != nil {
		sb.WriteString(printer.Sprintf("Largest adjusted: %.0f [page %s]\n",
			r.LargestAdjusted.AdjustedValue, pageText(r.LargestAdjusted.Page)))
	}
	return sb.String()
}

func scaleText(n figures.ExtractedNumber) string {
	if !n.HasMultiplier() {
		return "NO MULTIPLIER"
	}
	text := printer.Sprintf("x%d", n.Multiplier)
	if n.AdjustedValue != 0 {
		text += printer.Sprintf(", adjusted=%.0f", n.AdjustedValue)
	}
	return text
}
