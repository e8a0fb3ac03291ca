package figures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumnHeaders_SingleRow(t *testing.T) {
	rows := Rows(
		[]string{"Item", "FY2023", "FY2024"},
		[]string{"Widget", "100.0", "200.0"},
	)
	assert.Equal(t, []string{"Item", "FY2023", "FY2024"}, ResolveColumnHeaders(rows))
}

func TestResolveColumnHeaders_SingleRowFlattensLines(t *testing.T) {
	rows := []Row{
		{Cell("Line\nItem"), Cell(" FY 2023\nRequest "), nil},
		{Cell("Widget"), Cell("1.0"), Cell("2.0")},
	}
	assert.Equal(t, []string{"Line Item", "FY 2023 Request", ""}, ResolveColumnHeaders(rows))
}

func TestResolveColumnHeaders_MultiRow(t *testing.T) {
	rows := Rows(
		[]string{"", "FY2023", "FY2023", "FY2024", "FY2024"},
		[]string{"Item", "Qty", "Cost", "Qty", "Cost"},
		[]string{"Widget", "10", "100.0", "20", "200.0"},
	)

	headers := ResolveColumnHeaders(rows)
	require.Len(t, headers, 5)
	assert.Equal(t, []string{
		"Item",
		"FY2023 / Qty",
		"FY2023 / Cost",
		"FY2024 / Qty",
		"FY2024 / Cost",
	}, headers)
}

func TestResolveColumnHeaders_ForwardFillsAbsentSpans(t *testing.T) {
	// A merged parent cell arrives as one value followed by absent cells.
	rows := []Row{
		{nil, Cell("FY2025 Request"), nil, nil},
		{Cell("Program"), Cell("Base"), Cell("OCO"), Cell("Total")},
		{Cell("Aircraft"), Cell("1.5"), Cell("2.5"), Cell("4.0")},
	}

	assert.Equal(t, []string{
		"Program",
		"FY2025 Request / Base",
		"FY2025 Request / OCO",
		"FY2025 Request / Total",
	}, ResolveColumnHeaders(rows))
}

func TestResolveColumnHeaders_DeduplicatesAndPads(t *testing.T) {
	rows := []Row{
		{Cell("Item"), Cell("Amount")},
		{Cell("Item"), Cell("Amount"), nil},
		{Cell("Widget"), Cell("1.0"), Cell("2.0")},
	}

	// Column 2 inherits "Amount" from its left neighbour on both header rows.
	assert.Equal(t, []string{"Item", "Amount", "Amount"}, ResolveColumnHeaders(rows))
}

func TestResolveColumnHeaders_EmptyColumnFallback(t *testing.T) {
	rows := []Row{
		{nil, nil, Cell("FY2023")},
		{nil, nil, Cell("Cost")},
		{Cell("Widget"), Cell("x"), Cell("1.0")},
	}

	assert.Equal(t, []string{"col_0", "col_1", "FY2023 / Cost"}, ResolveColumnHeaders(rows))
}

func TestResolveColumnHeaders_NoHeaders(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
	}{
		{"empty", nil},
		{"no data rows", Rows([]string{"Header A", "Header B"})},
		{"data in first row", Rows([]string{"100", "200"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ResolveColumnHeaders(tt.rows))
		})
	}
}

func TestResolveColumnHeaders_DataStartUsesFirstLine(t *testing.T) {
	rows := Rows(
		[]string{"Item", "Note\n12"},
		[]string{"Widget", "12\nfootnote"},
	)
	assert.Equal(t, []string{"Item", "Note 12"}, ResolveColumnHeaders(rows))
}
