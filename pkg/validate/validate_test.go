package validate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func series(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func chartInput(labels int, data ...int) map[string]any {
	datasets := make([]any, len(data))
	for i, n := range data {
		datasets[i] = map[string]any{"label": "series", "data": series(n)}
	}
	return map[string]any{"type": "bar", "labels": series(labels), "datasets": datasets}
}

func TestValidateChartJSONAccepts(t *testing.T) {
	def, err := ValidateChartJSON(decode(t, `{"type":"bar","labels":["a","b"],"datasets":[{"label":"x","data":[1,2]}]}`))
	require.NoError(t, err)

	assert.Equal(t, schema.ChartBar, def.Type)
	assert.Equal(t, []schema.Label{schema.TextLabel("a"), schema.TextLabel("b")}, def.Labels)
	require.Len(t, def.Datasets, 1)
	assert.Equal(t, "x", def.Datasets[0].Label)
	assert.Equal(t, []schema.DataPoint{schema.NumberPoint(1), schema.NumberPoint(2)}, def.Datasets[0].Data)
}

func TestValidateChartJSONMismatch(t *testing.T) {
	_, err := ValidateChartJSON(decode(t, `{"type":"bar","labels":["a","b"],"datasets":[{"label":"x","data":[1]}]}`))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConsistency))
	assert.Contains(t, err.Error(), "has 1 data points")
	assert.Contains(t, err.Error(), "there are 2 labels")
}

func TestValidateChartJSONRoot(t *testing.T) {
	for name, in := range map[string]string{
		"array":  `[1,2]`,
		"null":   `null`,
		"string": `"bar"`,
		"number": `3`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateChartJSON(decode(t, in))
			require.Error(t, err)
			assert.True(t, IsKind(err, KindShape))
			assert.True(t, strings.HasPrefix(err.Error(), "invalid JSON"))
		})
	}
}

func TestValidateChartJSONOrder(t *testing.T) {
	// Bad type and bad labels: the type error wins.
	_, err := ValidateChartJSON(decode(t, `{"type":"area","labels":"x","datasets":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid chart type")

	// Bad labels and bad datasets: labels first.
	_, err = ValidateChartJSON(decode(t, `{"type":"line","labels":[],"datasets":"x"}`))
	require.Error(t, err)
	assert.Equal(t, "labels cannot be empty", err.Error())
}

func TestValidateChartType(t *testing.T) {
	got, err := ValidateChartType("POLARAREA")
	require.NoError(t, err)
	assert.Equal(t, schema.ChartPolarArea, got)

	_, err = ValidateChartType("area")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line")

	_, err = ValidateChartType(nil)
	require.Error(t, err)
	_, err = ValidateChartType(4.0)
	require.Error(t, err)
}

func TestValidateLabels(t *testing.T) {
	labels, err := ValidateLabels([]any{"jan", 2.0})
	require.NoError(t, err)
	assert.Equal(t, []schema.Label{schema.TextLabel("jan"), schema.NumberLabel(2)}, labels)

	_, err = ValidateLabels([]any{"a", true})
	assert.True(t, IsKind(err, KindShape))

	_, err = ValidateLabels(map[string]any{})
	assert.EqualError(t, err, "labels must be an array")
}

func TestValidateDataset(t *testing.T) {
	ds, err := ValidateDataset(decode(t, `{"label":"pts","data":[{"x":1,"y":2},{"y":3},4]}`), 1)
	require.NoError(t, err)
	require.Len(t, ds.Data, 3)
	assert.True(t, ds.Data[0].IsPoint())
	y, ok := ds.Data[1].Y()
	assert.True(t, ok)
	assert.Equal(t, 3.0, y)
	assert.False(t, ds.Data[2].IsPoint())

	cases := map[string]string{
		`"x"`:                                        "dataset 3 is not a valid object",
		`{"data":[1]}`:                               "dataset 3 must have a 'label' property of type string",
		`{"label":"","data":[1]}`:                    "dataset 3 must have a 'label' property of type string",
		`{"label":"a"}`:                              "dataset 3 must have a 'data' property of type array",
		`{"label":"a","data":[]}`:                    "dataset 3 cannot have empty data",
		`{"label":"a","data":["1"]}`:                 "dataset 3 contains invalid data values",
		`{"label":"a","data":[{"r":1}]}`:             "dataset 3 contains invalid data values",
		`{"label":"a","data":[{"x":null,"y":null}]}`: "dataset 3 contains invalid data values",
	}
	for in, msg := range cases {
		_, err := ValidateDataset(decode(t, in), 3)
		assert.EqualError(t, err, msg, in)
	}
}

func TestValidateDatasetsReportsPosition(t *testing.T) {
	_, err := ValidateDatasets(decode(t, `[{"label":"a","data":[1]},{"label":"b","data":[]}]`))
	assert.EqualError(t, err, "dataset 2 cannot have empty data")

	_, err = ValidateDatasets([]any{})
	assert.True(t, IsKind(err, KindRange))
}

func TestBounds(t *testing.T) {
	_, err := ValidateChartJSON(chartInput(MaxDataPoints, MaxDataPoints))
	assert.NoError(t, err)

	_, err = ValidateChartJSON(chartInput(MaxDataPoints+1, MaxDataPoints+1))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRange))

	_, err = ValidateDataset(map[string]any{"label": "a", "data": series(MaxDataPoints + 1)}, 1)
	assert.True(t, IsKind(err, KindRange))

	ten := make([]int, MaxDatasets)
	for i := range ten {
		ten[i] = 2
	}
	_, err = ValidateChartJSON(chartInput(2, ten...))
	assert.NoError(t, err)

	_, err = ValidateChartJSON(chartInput(2, append(ten, 2)...))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRange))
	assert.Equal(t, "number of datasets exceeds the limit of 10", err.Error())
}

func TestValidateChartTyped(t *testing.T) {
	def := schema.NewChartDefinition(schema.ChartLine)
	require.NoError(t, ValidateChart(def))

	def.Labels = def.Labels[:2]
	err := ValidateChart(def)
	assert.True(t, IsKind(err, KindConsistency))

	def = schema.NewChartDefinition("area")
	assert.Error(t, ValidateChart(def))

	def = schema.NewChartDefinition(schema.ChartBar)
	def.Datasets[0].Label = ""
	assert.True(t, IsKind(ValidateChart(def), KindShape))
}

func TestValidateFileExtension(t *testing.T) {
	assert.NoError(t, ValidateFileExtension("data.json"))
	assert.NoError(t, ValidateFileExtension("DATA.JSON"))
	assert.NoError(t, ValidateFileExtension("archive.tar.json"))

	assert.EqualError(t, ValidateFileExtension("data.csv"), "only .json files are allowed")
	assert.EqualError(t, ValidateFileExtension("data.json.csv"), "only .json files are allowed")
	assert.EqualError(t, ValidateFileExtension("data"), "only .json files are allowed")
	assert.EqualError(t, ValidateFileExtension("data."), "file has no extension")
	assert.EqualError(t, ValidateFileExtension(""), "file name not provided")
}

func TestValidateFileSize(t *testing.T) {
	assert.NoError(t, ValidateFileSize(FileMeta{"a.json", 1}))
	assert.NoError(t, ValidateFileSize(FileMeta{"a.json", MaxFileSize}))
	assert.EqualError(t, ValidateFileSize(FileMeta{"a.json", MaxFileSize + 1}), "file too large. Maximum size: 5.00MB")
	assert.EqualError(t, ValidateFileSize(FileMeta{"a.json", 0}), "file is empty")
	assert.EqualError(t, ValidateFileSize(nil), "file not provided")
}

func TestValidateJSONStructure(t *testing.T) {
	_, err := ValidateJSONStructure("{not json")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindParse))

	var v any
	parserErr := json.Unmarshal([]byte("{not json"), &v)
	assert.Contains(t, err.Error(), parserErr.Error())

	_, err = ValidateJSONStructure("   \n")
	assert.EqualError(t, err, "file is empty")

	got, err := ValidateJSONStructure(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0}, got)
}

func TestValidateCompleteChartFile(t *testing.T) {
	content := `{"type":"pie","title":"Share","labels":["a","b"],"datasets":[{"label":"x","data":[1,2]}]}`

	def, err := ValidateCompleteChartFile(FileMeta{"share.json", int64(len(content))}, content)
	require.NoError(t, err)
	assert.Equal(t, "Share", def.Title)
	assert.Equal(t, schema.ChartPie, def.Type)

	// Size is checked before the extension.
	_, err = ValidateCompleteChartFile(FileMeta{"share.csv", 0}, content)
	assert.EqualError(t, err, "file is empty")

	_, err = ValidateCompleteChartFile(FileMeta{"share.csv", 10}, content)
	assert.EqualError(t, err, "only .json files are allowed")

	_, err = ValidateCompleteChartFile(FileMeta{"share.json", 10}, "[1]")
	assert.EqualError(t, err, "invalid JSON: root object cannot be an array")
}

func TestValidateCompleteChartFileFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.json")
	content := `{"type":"scatter","labels":[1,2],"datasets":[{"label":"p","data":[{"x":1,"y":1},{"x":2,"y":4}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	def, err := ValidateCompleteChartFile(info, content)
	require.NoError(t, err)
	assert.Equal(t, schema.ChartScatter, def.Type)
}

func TestValidateTableJSON(t *testing.T) {
	def, err := ValidateTableJSON(decode(t, `{"title":"T","headers":["a","b"],"rows":[["1",2],[true,null]]}`))
	require.NoError(t, err)
	assert.Equal(t, "T", def.Title)
	assert.Equal(t, [][]string{{"1", "2"}, {"true", ""}}, def.Rows)

	exported, err := ValidateTableJSON(decode(t, `{"type":"table","title":"T","data":{"headers":["a"],"rows":[["x"]]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, exported.Headers)

	empty, err := ValidateTableJSON(decode(t, `{"headers":["a"]}`))
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)

	_, err = ValidateTableJSON(decode(t, `{"headers":["a","b"],"rows":[["1"]]}`))
	assert.True(t, IsKind(err, KindConsistency))
	assert.EqualError(t, err, "row 1 has 1 cells, but there are 2 headers. They must have the same length.")

	_, err = ValidateTableJSON(decode(t, `{"headers":[],"rows":[]}`))
	assert.EqualError(t, err, "headers cannot be empty")

	_, err = ValidateTableJSON(decode(t, `{"headers":["a"],"rows":[[{"x":1}]]}`))
	assert.EqualError(t, err, "row 1 contains invalid cell values")

	_, err = ValidateTableJSON(decode(t, `[]`))
	assert.True(t, IsKind(err, KindShape))
}

func TestValidateTableTyped(t *testing.T) {
	def := schema.NewTableDefinition("t")
	require.NoError(t, def.AddRow())
	assert.NoError(t, ValidateTable(def))

	def.Rows[0] = append(def.Rows[0], "extra")
	assert.True(t, IsKind(ValidateTable(def), KindConsistency))

	assert.Error(t, ValidateTable(schema.TableDefinition{}))
}

func TestNewResult(t *testing.T) {
	chartType, err := ValidateChartType("bar")
	ok := NewResult(chartType, err)
	assert.True(t, ok.Valid)
	require.NotNil(t, ok.Data)
	assert.Equal(t, schema.ChartBar, *ok.Data)

	chartType, err = ValidateChartType("nope")
	bad := NewResult(chartType, err)
	assert.False(t, bad.Valid)
	assert.Nil(t, bad.Data)
	assert.Contains(t, bad.Error, "invalid chart type")
}

// Validation never mutates its input and always gives the same answer.
func TestValidationIsIdempotent(t *testing.T) {
	f := func(labels, data uint8) bool {
		in := chartInput(int(labels%20)+1, int(data%20)+1)
		before := decodeCopy(in)

		_, err1 := ValidateChartJSON(in)
		_, err2 := ValidateChartJSON(in)

		if !reflect.DeepEqual(before, decodeCopy(in)) {
			return false
		}
		if (err1 == nil) != (err2 == nil) {
			return false
		}
		return err1 == nil || err1.Error() == err2.Error()
	}
	require.NoError(t, quick.Check(f, nil))
}

// Every accepted chart has one value per label in every dataset.
func TestAcceptedChartsAreConsistent(t *testing.T) {
	f := func(labels, a, b uint8) bool {
		nl, na, nb := int(labels%15)+1, int(a%15)+1, int(b%15)+1
		def, err := ValidateChartJSON(chartInput(nl, na, nb))
		if nl == na && nl == nb {
			if err != nil {
				return false
			}
			for _, ds := range def.Datasets {
				if len(ds.Data) != len(def.Labels) {
					return false
				}
			}
			return true
		}
		return IsKind(err, KindConsistency)
	}
	require.NoError(t, quick.Check(f, nil))
}

func decodeCopy(v any) any {
	b, _ := json.Marshal(v)
	var out any
	_ = json.Unmarshal(b, &out)
	return out
}
