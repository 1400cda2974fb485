package convert

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/validate"
	"github.com/xuri/excelize/v2"
)

// ErrEmptySheet is returned when a worksheet holds no cells.
var ErrEmptySheet = errors.New("worksheet is empty")

const defaultSheet = "Sheet1"

// TableToXLSX writes the table as a single-sheet workbook: headers in bold on
// row 1, one row per table row below. Numeric cells are stored as numbers.
func TableToXLSX(t schema.TableDefinition, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Title)
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	if len(t.Headers) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("create header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return fmt.Errorf("style headers: %w", err)
		}
	}

	for r, row := range t.Rows {
		values := make([]any, len(row))
		for c, v := range row {
			values[c] = cellValue(v)
		}
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// TableFromXLSX reads a worksheet into a table. An empty sheet name selects the
// first sheet. The first non-empty row supplies the headers; blank rows are
// skipped and short rows are padded so every row matches the header width.
func TableFromXLSX(r io.Reader, sheet string) (schema.TableDefinition, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return schema.TableDefinition{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return schema.TableDefinition{}, ErrEmptySheet
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return schema.TableDefinition{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var grid [][]string
	width := 0
	for _, row := range rows {
		if blank(row) {
			continue
		}
		grid = append(grid, row)
		width = max(width, len(row))
	}
	if len(grid) == 0 {
		return schema.TableDefinition{}, ErrEmptySheet
	}

	headers := pad(grid[0], width)
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			headers[i] = "Column " + strconv.Itoa(i+1)
		}
	}

	body := make([][]string, 0, len(grid)-1)
	for _, row := range grid[1:] {
		body = append(body, pad(row, width))
	}

	def := schema.TableDefinition{Title: sheet, Headers: headers, Rows: body}
	if err := validate.ValidateTable(def); err != nil {
		return schema.TableDefinition{}, err
	}
	return def, nil
}

// sheetName makes a title usable as a worksheet name.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	if name == "" {
		return defaultSheet
	}
	return name
}

// cellValue stores canonical numbers as numbers so they read back unchanged.
// "007" or "+1" stay text.
func cellValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	return s
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func pad(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
