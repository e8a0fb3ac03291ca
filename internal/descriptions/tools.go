package descriptions

import "sort"

// Tool names exposed over MCP
const (
	ToolExtractFile    = "figures_extract_file"
	ToolExtractPages   = "figures_extract_pages"
	ToolExtractText    = "figures_extract_text"
	ToolExtractTable   = "figures_extract_table"
	ToolResolveHeaders = "figures_resolve_headers"
	ToolValidateFile   = "figures_validate_file"
	ToolListFiles      = "figures_list_files"
	ToolServerInfo     = "figures_server_info"
)

const (
	ExtractFileDescription = `Extract every financial figure from a budget document with its scale applied.

**When to use:** You have a budget, appropriation or financial report (.pdf, layout .json or .html) and need the numbers in it as structured records.

**Why it's useful:** Budget tables print "1,250.5" under a "(Dollars in Millions)" banner. This tool finds that declaration, applies it, and reports adjusted_value = 1,250,500,000 together with the row label, column header, section and page.

**Examples:**
• "List all figures in fy2025-budget.pdf"
• "Which line item in capital-plan.json has the largest adjusted value?"

**Scaling rules:**
1. A row label such as "(Hours in Thousands)" scales that row.
2. Otherwise a table's own or nearest preceding declaration scales values written with a decimal point.
3. Whole numbers under a table declaration are treated as counts and left unscaled.
4. Narrative phrases such as "$4.2 million" carry their own scale.

**Best practices:** Layout JSON with table boxes gives the best table results; plain PDFs are read row by row and only narrative figures are found in them. Records with multiplier 1 and no multiplier_label had no scale and are listed as warnings.`

	ExtractPagesDescription = `Extract figures from an already laid-out document passed inline as layout JSON.

**When to use:** A layout tool has already produced pages of positioned boxes and you want figures without writing a file.

**Input shape:** {"pages":[{"page_number":1,"boxes":[{"boxclass":"text|section-header|table","y0":72.0,"textlines":[{"spans":[{"text":"..."}]}],"table":{"extract":[["Item","FY2025"],["Roads","12.5"]]}}]}]}

**Best practices:** Smaller y0 is higher on the page. Scale declarations only reach tables below them on the same page.`

	ExtractTextDescription = `Find inline figures in narrative text such as "$2.5 billion" or "300 thousand".

**When to use:** You have prose from a report, press release or footnote and want its stated amounts as numbers.

**Examples:**
• "The department spent $2.5 billion on infrastructure" gives value 2.5, multiplier 1,000,000,000
• "about 300 thousand residents" gives value 300, multiplier 1,000

**Best practices:** Abbreviations (K, M, B) are only recognized after a dollar sign.`

	ExtractTableDescription = `Extract figures from one table grid given as JSON rows.

**When to use:** You already have a table as rows of cells and know, or want to supply, its scale.

**Input:** rows is a JSON array of arrays of strings; null marks an absent cell (for example the columns covered by a merged header). scale is optional: "thousands", "millions", "$M" or a header such as "(Dollars in Millions)".

**Best practices:** Header rows are everything above the first row that holds a number. Multi-row headers are merged as "FY2025 / Base".`

	ResolveHeadersDescription = `Rebuild one header per column from a table's header rows.

**When to use:** To check how a table with merged or multi-row headers will be labeled before extracting it.

**Output:** One string per column. Absent cells inherit the header to their left, distinct parts are joined with " / " and columns with no header become col_N.`

	ValidateFileDescription = `Check that a document can be processed before extracting from it.

**When to use:** Before figures_extract_file on an unknown file, or to diagnose a failed extraction.

**Checks:** Inside the configured directory, supported extension, non-empty, within the size limit, and for PDFs a relaxed structural validation.`

	ListFilesDescription = `List the documents in the configured directory that can be processed.

**When to use:** To discover which budget documents are available before extracting from them.`

	ServerInfoDescription = `Get server configuration, available tools, supported formats and the documents found in the default directory.

**When to use:** At the start of a session to learn what the server can do and where its documents live.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ToolExtractFile:    ExtractFileDescription,
	ToolExtractPages:   ExtractPagesDescription,
	ToolExtractText:    ExtractTextDescription,
	ToolExtractTable:   ExtractTableDescription,
	ToolResolveHeaders: ResolveHeadersDescription,
	ToolValidateFile:   ValidateFileDescription,
	ToolListFiles:      ListFilesDescription,
	ToolServerInfo:     ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns every tool name in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
