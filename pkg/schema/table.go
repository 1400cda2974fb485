package schema

import "time"

// TableDefinition is the caller-supplied part of a table.
// Every row holds exactly len(Headers) cells.
type TableDefinition struct {
	Title   string     `json:"title,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Table is a persisted table record.
type Table struct {
	ID string `json:"id"`
	TableDefinition
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (d TableDefinition) Clone() TableDefinition {
	out := d
	out.Headers = append([]string(nil), d.Headers...)
	out.Rows = make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// NewTableDefinition returns the editor's starting table: one column, no rows.
func NewTableDefinition(title string) TableDefinition {
	return TableDefinition{
		Title:   title,
		Headers: []string{labelName("Column", 1)},
		Rows:    [][]string{},
	}
}

// AddColumn appends "Column N" and pads every row with an empty cell.
func (d *TableDefinition) AddColumn() {
	d.Headers = append(d.Headers, labelName("Column", len(d.Headers)+1))
	for i := range d.Rows {
		for len(d.Rows[i]) < len(d.Headers) {
			d.Rows[i] = append(d.Rows[i], "")
		}
	}
}

// RemoveColumn removes header i and cell i of every row.
func (d *TableDefinition) RemoveColumn(i int) error {
	if len(d.Headers) <= 1 {
		return ErrLastColumn
	}
	if i < 0 || i >= len(d.Headers) {
		return ErrIndexOutOfRange
	}
	d.Headers = append(d.Headers[:i], d.Headers[i+1:]...)
	for k, row := range d.Rows {
		if i < len(row) {
			d.Rows[k] = append(row[:i], row[i+1:]...)
		}
	}
	return nil
}

// AddRow appends a row of empty cells.
func (d *TableDefinition) AddRow() error {
	if len(d.Headers) == 0 {
		return ErrNoColumns
	}
	d.Rows = append(d.Rows, make([]string, len(d.Headers)))
	return nil
}

// RemoveRow removes row i.
func (d *TableDefinition) RemoveRow(i int) error {
	if i < 0 || i >= len(d.Rows) {
		return ErrIndexOutOfRange
	}
	d.Rows = append(d.Rows[:i], d.Rows[i+1:]...)
	return nil
}

// SetCell replaces the value at row r, column c.
func (d *TableDefinition) SetCell(r, c int, value string) error {
	if r < 0 || r >= len(d.Rows) || c < 0 || c >= len(d.Headers) || c >= len(d.Rows[r]) {
		return ErrIndexOutOfRange
	}
	d.Rows[r][c] = value
	return nil
}
