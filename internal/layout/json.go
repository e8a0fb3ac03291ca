package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/a3tai/mcp-pdf-figures/internal/figures"
)

const layoutSchemaURL = "layout.schema.json"

// layoutSchema describes the page/box JSON produced by the layout step.
// Unknown keys such as bbox or x0 are allowed and ignored.
const layoutSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["page_number"],
        "properties": {
          "page_number": {"type": "integer"},
          "boxes": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "required": ["boxclass", "y0"],
              "properties": {
                "boxclass": {"type": "string"},
                "y0": {"type": "number"},
                "textlines": {
                  "type": ["array", "null"],
                  "items": {
                    "type": "object",
                    "properties": {
                      "spans": {
                        "type": ["array", "null"],
                        "items": {
                          "type": "object",
                          "properties": {"text": {"type": ["string", "null"]}}
                        }
                      }
                    }
                  }
                },
                "table": {
                  "type": ["object", "null"],
                  "properties": {
                    "extract": {
                      "type": ["array", "null"],
                      "items": {
                        "type": "array",
                        "items": {"type": ["string", "null"]}
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var (
	schemaOnce    sync.Once
	schema        *jsonschema.Schema
	schemaLoadErr error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaLoadErr = jsonschema.CompileString(layoutSchemaURL, layoutSchema)
	})
	return schema, schemaLoadErr
}

// Document is the top level of the layout JSON
type Document struct {
	Pages []figures.Page `json:"pages"`
}

// DecodeJSON reads layout JSON, validates it against the layout schema and
// returns its pages with text normalized.
func DecodeJSON(r io.Reader) ([]figures.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Format: FormatJSON, Op: "read", Err: err}
	}

	if err := ValidateJSON(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Format: FormatJSON, Op: "decode", Err: err}
	}

	normalizePages(doc.Pages)
	return doc.Pages, nil
}

// ValidateJSON checks raw layout JSON against the layout schema
func ValidateJSON(data []byte) error {
	s, err := loadSchema()
	if err != nil {
		return &Error{Format: FormatJSON, Op: "schema", Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return &Error{Format: FormatJSON, Op: "decode", Err: err}
	}

	if err := s.Validate(v); err != nil {
		return &Error{Format: FormatJSON, Op: "validate", Err: fmt.Errorf("layout does not match schema: %w", err)}
	}
	return nil
}

// EncodeJSON writes pages in the layout JSON shape
func EncodeJSON(w io.Writer, pages []figures.Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Pages: pages}); err != nil {
		return &Error{Format: FormatJSON, Op: "encode", Err: err}
	}
	return nil
}
