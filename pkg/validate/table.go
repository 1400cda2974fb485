package validate

import (
	"strconv"

	"github.com/celerix-dev/mobidash/pkg/schema"
)

const (
	MaxTableColumns = 256
	MaxTableRows    = 10000
)

// ValidateHeaders accepts 1..MaxTableColumns string headers.
func ValidateHeaders(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, shapeErr("headers must be an array")
	}
	if len(items) == 0 {
		return nil, rangeErr("headers cannot be empty")
	}
	if len(items) > MaxTableColumns {
		return nil, rangeErr("headers exceed the limit of %d columns", MaxTableColumns)
	}

	headers := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, shapeErr("all headers must be strings")
		}
		headers[i] = s
	}
	return headers, nil
}

// ValidateRows accepts up to MaxTableRows rows of exactly width cells.
// Scalar cells are rendered to text; a missing value yields no rows.
func ValidateRows(v any, width int) ([][]string, error) {
	if v == nil {
		return [][]string{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, shapeErr("rows must be an array")
	}
	if len(items) > MaxTableRows {
		return nil, rangeErr("rows exceed the limit of %d", MaxTableRows)
	}

	rows := make([][]string, len(items))
	for i, item := range items {
		index := i + 1
		cells, ok := item.([]any)
		if !ok {
			return nil, shapeErr("row %d must be an array", index)
		}
		if len(cells) != width {
			return nil, consistencyErr(
				"row %d has %d cells, but there are %d headers. They must have the same length.",
				index, len(cells), width)
		}
		row := make([]string, width)
		for j, cell := range cells {
			text, ok := cellText(cell)
			if !ok {
				return nil, shapeErr("row %d contains invalid cell values", index)
			}
			row[j] = text
		}
		rows[i] = row
	}
	return rows, nil
}

func cellText(v any) (string, bool) {
	switch c := v.(type) {
	case nil:
		return "", true
	case string:
		return c, true
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(c), true
	default:
		return "", false
	}
}

// ValidateTableJSON parses a decoded JSON value into a table definition.
// Both the flat {title, headers, rows} shape and the exported
// {type: "table", title, data: {headers, rows}} shape are accepted.
func ValidateTableJSON(v any) (schema.TableDefinition, error) {
	if _, isArray := v.([]any); isArray {
		return schema.TableDefinition{}, shapeErr("invalid JSON: root object cannot be an array")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return schema.TableDefinition{}, shapeErr("invalid JSON: must be an object")
	}

	body := m
	if data, ok := m["data"]; ok {
		body, ok = data.(map[string]any)
		if !ok {
			return schema.TableDefinition{}, shapeErr("table 'data' must be an object")
		}
	}

	headers, err := ValidateHeaders(body["headers"])
	if err != nil {
		return schema.TableDefinition{}, err
	}
	rows, err := ValidateRows(body["rows"], len(headers))
	if err != nil {
		return schema.TableDefinition{}, err
	}

	title, _ := m["title"].(string)
	return schema.TableDefinition{Title: title, Headers: headers, Rows: rows}, nil
}

// ValidateTable applies the table rules to an already typed definition.
func ValidateTable(d schema.TableDefinition) error {
	switch {
	case len(d.Headers) == 0:
		return rangeErr("headers cannot be empty")
	case len(d.Headers) > MaxTableColumns:
		return rangeErr("headers exceed the limit of %d columns", MaxTableColumns)
	case len(d.Rows) > MaxTableRows:
		return rangeErr("rows exceed the limit of %d", MaxTableRows)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return consistencyErr(
				"row %d has %d cells, but there are %d headers. They must have the same length.",
				i+1, len(row), len(d.Headers))
		}
	}
	return nil
}
