// Package convert turns tables into other representations: the JSON export format,
// chart definitions and XLSX workbooks.
package convert

import (
	"encoding/json"

	"github.com/celerix-dev/mobidash/pkg/schema"
)

// TableExport is the shape produced by TableToJSON.
type TableExport struct {
	Type  string    `json:"type"`
	Title string    `json:"title,omitempty"`
	Data  TableData `json:"data"`
}

// TableData holds the grid of an exported table.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// TableToJSON renders a table as {type:"table", title, data:{headers, rows}}
// with two-space indentation.
func TableToJSON(t schema.TableDefinition) ([]byte, error) {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return json.MarshalIndent(TableExport{
		Type:  "table",
		Title: t.Title,
		Data:  TableData{Headers: t.Headers, Rows: rows},
	}, "", "  ")
}
