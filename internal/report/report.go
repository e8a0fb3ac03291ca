// Package report summarizes an extraction run and renders it for people and
// programs.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/mcp-pdf-figures/internal/figures"
)

// Report is the outcome of extracting one document
type Report struct {
	RunID           string                    `json:"run_id" yaml:"run_id"`
	Source          string                    `json:"source" yaml:"source"`
	GeneratedAt     time.Time                 `json:"generated_at" yaml:"generated_at"`
	Count           int                       `json:"count" yaml:"count"`
	Numbers         []figures.ExtractedNumber `json:"numbers" yaml:"numbers"`
	Warnings        []string                  `json:"warnings" yaml:"warnings"`
	LargestRaw      *figures.ExtractedNumber  `json:"largest_raw,omitempty" yaml:"largest_raw,omitempty"`
	LargestAdjusted *figures.ExtractedNumber  `json:"largest_adjusted,omitempty" yaml:"largest_adjusted,omitempty"`
}

// New builds a report for numbers extracted from source
func New(source string, numbers []figures.ExtractedNumber) *Report {
	if numbers == nil {
		numbers = []figures.ExtractedNumber{}
	}

	r := &Report{
		RunID:       uuid.NewString(),
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Count:       len(numbers),
		Numbers:     numbers,
		Warnings:    []string{},
	}

	for i := range numbers {
		n := &numbers[i]
		if !n.HasMultiplier() {
			r.Warnings = append(r.Warnings, fmt.Sprintf("no multiplier for '%s' %s", n.Raw, locate(*n)))
		}
		if r.LargestRaw == nil || math.Abs(n.Value) > math.Abs(r.LargestRaw.Value) {
			r.LargestRaw = n
		}
		if r.LargestAdjusted == nil || math.Abs(n.AdjustedValue) > math.Abs(r.LargestAdjusted.AdjustedValue) {
			r.LargestAdjusted = n
		}
	}

	return r
}

// Unscaled returns the records that carry no multiplier
func (r *Report) Unscaled() []figures.ExtractedNumber {
	var out []figures.ExtractedNumber
	for _, n := range r.Numbers {
		if !n.HasMultiplier() {
			out = append(out, n)
		}
	}
	return out
}

// locate renders "row / column [page p, section]"
func locate(n figures.ExtractedNumber) string {
	return fmt.Sprintf("%s / %s [page %s, %s]", n.RowLabel, n.Column, pageText(n.Page), strOrNone(n.Section))
}

func pageText(p *int) string {
	if p == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *p)
}

func strOrNone(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "none"
	}
	return *s
}
