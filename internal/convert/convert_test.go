package convert

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var day = time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

func values(ds schema.Dataset) []float64 {
	out := make([]float64, len(ds.Data))
	for i, p := range ds.Data {
		out[i], _ = p.Y()
	}
	return out
}

func labelTexts(labels []schema.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.String()
	}
	return out
}

func TestTableToJSON(t *testing.T) {
	out, err := TableToJSON(schema.TableDefinition{
		Title:   "People",
		Headers: []string{"name", "age"},
		Rows:    [][]string{{"ana", "31"}},
	})
	require.NoError(t, err)

	want := `{
  "type": "table",
  "title": "People",
  "data": {
    "headers": [
      "name",
      "age"
    ],
    "rows": [
      [
        "ana",
        "31"
      ]
    ]
  }
}`
	assert.Equal(t, want, string(out))

	// The export reads back through the table validator.
	var v any
	require.NoError(t, json.Unmarshal(out, &v))
	def, err := validate.ValidateTableJSON(v)
	require.NoError(t, err)
	assert.Equal(t, "People", def.Title)
	assert.Equal(t, [][]string{{"ana", "31"}}, def.Rows)
}

func TestTableToJSONEmptyRows(t *testing.T) {
	out, err := TableToJSON(schema.TableDefinition{Headers: []string{"a"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"table","data":{"headers":["a"],"rows":[]}}`, string(out))
}

func TestTableToChartLabelColumn(t *testing.T) {
	def, err := TableToChart(schema.TableDefinition{
		Title:   "Sales",
		Headers: []string{"month", "north", "south"},
		Rows:    [][]string{{"jan", "10", "3kg"}, {"feb", "n/a", "4.5"}},
	}, day)
	require.NoError(t, err)

	assert.Equal(t, schema.ChartBar, def.Type)
	assert.Equal(t, "Sales - 2024-03-09", def.Title)
	assert.Equal(t, []string{"jan", "feb"}, labelTexts(def.Labels))
	require.Len(t, def.Datasets, 2)
	assert.Equal(t, "north", def.Datasets[0].Label)
	assert.Equal(t, []float64{10, 0}, values(def.Datasets[0]))
	assert.Equal(t, []float64{3, 4.5}, values(def.Datasets[1]))
	assert.NoError(t, validate.ValidateChart(def))
}

func TestTableToChartNumericFirstColumn(t *testing.T) {
	def, err := TableToChart(schema.TableDefinition{
		Headers: []string{"year", "value"},
		Rows:    [][]string{{"2020", "1"}, {" 2021 ", "2"}},
	}, day)
	require.NoError(t, err)

	assert.Equal(t, "Chart - 2024-03-09", def.Title)
	assert.Equal(t, []string{"Item 1", "Item 2"}, labelTexts(def.Labels))
	require.Len(t, def.Datasets, 1)
	assert.Equal(t, "value", def.Datasets[0].Label)
	assert.Equal(t, []float64{1, 2}, values(def.Datasets[0]))
}

func TestTableToChartSingleColumn(t *testing.T) {
	def, err := TableToChart(schema.TableDefinition{
		Headers: []string{""},
		Rows:    [][]string{{"7"}, {"x"}},
	}, day)
	require.NoError(t, err)

	assert.Equal(t, []string{"Item 1", "Item 2"}, labelTexts(def.Labels))
	require.Len(t, def.Datasets, 1)
	assert.Equal(t, "Values", def.Datasets[0].Label)
	assert.Equal(t, []float64{7, 0}, values(def.Datasets[0]))
}

func TestTableToChartErrors(t *testing.T) {
	_, err := TableToChart(schema.TableDefinition{}, day)
	assert.ErrorIs(t, err, ErrNoColumns)

	_, err = TableToChart(schema.TableDefinition{Headers: []string{"a"}}, day)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestLeadingNumber(t *testing.T) {
	cases := map[string]float64{
		"12":    12,
		" 3.5 ": 3.5,
		"12abc": 12,
		"-4e2x": -400,
		".5":    0.5,
		"abc":   0,
		"":      0,
		"1,5":   1,
	}
	for in, want := range cases {
		assert.Equal(t, want, leadingNumber(in), in)
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	def := schema.TableDefinition{
		Title:   "Q1/Q2 report",
		Headers: []string{"name", "score", "code"},
		Rows:    [][]string{{"ana", "31", "007"}, {"bo", "27.5", ""}},
	}

	var buf bytes.Buffer
	require.NoError(t, TableToXLSX(def, &buf))

	got, err := TableFromXLSX(bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)
	assert.Equal(t, "Q1_Q2 report", got.Title)
	assert.Equal(t, def.Headers, got.Headers)
	assert.Equal(t, def.Rows, got.Rows)
}

func TestTableFromXLSXPadsAndSkipsBlankRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "city"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Lisbon"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 12))
	require.NoError(t, f.SetCellValue("Sheet1", "A4", "Porto"))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	got, err := TableFromXLSX(&buf, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "Column 2"}, got.Headers)
	assert.Equal(t, [][]string{{"Lisbon", "12"}, {"Porto", ""}}, got.Rows)
}

func TestTableFromXLSXErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	_, err = TableFromXLSX(bytes.NewReader(buf.Bytes()), "")
	assert.ErrorIs(t, err, ErrEmptySheet)

	_, err = TableFromXLSX(bytes.NewReader(buf.Bytes()), "Missing")
	assert.Error(t, err)

	_, err = TableFromXLSX(bytes.NewReader([]byte("not a zip")), "")
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", sheetName("  "))
	assert.Equal(t, "a_b_c", sheetName("a[b]c"))
	assert.Len(t, []rune(sheetName("abcdefghijklmnopqrstuvwxyz0123456789")), 31)
}
