package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChartType(t *testing.T) {
	for _, in := range []string{"bar", "BAR", "polararea", "PolarArea", "scatter"} {
		got, ok := ParseChartType(in)
		require.True(t, ok, in)
		assert.NotEmpty(t, got)
	}

	got, _ := ParseChartType("POLARAREA")
	assert.Equal(t, ChartPolarArea, got)

	_, ok := ParseChartType("histogram")
	assert.False(t, ok)
	assert.Equal(t, "line, bar, pie, doughnut, radar, polarArea, bubble, scatter", ChartTypeNames())
}

func TestChartJSONShape(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c := Chart{
		ID: "abc",
		ChartDefinition: ChartDefinition{
			Type:   ChartScatter,
			Title:  "t",
			Labels: []Label{TextLabel("a"), NumberLabel(2)},
			Datasets: []Dataset{{
				Label: "x",
				Data:  []DataPoint{NumberPoint(1.5), XYPoint(1, 2)},
			}},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "abc",
		"type": "scatter",
		"title": "t",
		"labels": ["a", 2],
		"datasets": [{"label": "x", "data": [1.5, {"x": 1, "y": 2}]}],
		"createdAt": "2024-01-02T03:04:05Z",
		"updatedAt": "2024-01-02T03:04:05Z"
	}`, string(b))

	var back Chart
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c.ID, back.ID)
	assert.Equal(t, c.Labels, back.Labels)
	y, ok := back.Datasets[0].Data[1].Y()
	assert.True(t, ok)
	assert.Equal(t, 2.0, y)
}

func TestDataPointRejectsOtherShapes(t *testing.T) {
	var p DataPoint
	assert.Error(t, json.Unmarshal([]byte(`"12"`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"z": 1}`), &p))
	assert.NoError(t, json.Unmarshal([]byte(`{"y": 3}`), &p))
	assert.True(t, p.IsPoint())

	var l Label
	assert.Error(t, json.Unmarshal([]byte(`true`), &l))
}

func TestNullValuesAreRejected(t *testing.T) {
	var labels []Label
	assert.Error(t, json.Unmarshal([]byte(`[null, "b"]`), &labels))

	var data []DataPoint
	assert.Error(t, json.Unmarshal([]byte(`[null, 2]`), &data))
	assert.Error(t, json.Unmarshal([]byte(`[{"x": null, "y": null}]`), &data))

	_, ok := PointFromMap(map[string]any{"x": nil, "y": nil})
	assert.False(t, ok)
	pt, ok := PointFromMap(map[string]any{"x": nil, "y": 3.0})
	require.True(t, ok)
	assert.Equal(t, 3.0, pt.Y)
}

func TestChartEditorLockStep(t *testing.T) {
	d := NewChartDefinition(ChartBar)
	d.AddDataset()
	d.AddLabel()

	require.Len(t, d.Labels, 4)
	assert.Equal(t, "Label 4", d.Labels[3].String())
	for _, ds := range d.Datasets {
		assert.Len(t, ds.Data, 4)
	}
	assert.Equal(t, "Dataset 2", d.Datasets[1].Label)

	require.NoError(t, d.RemoveLabel(0))
	assert.Equal(t, "Label 2", d.Labels[0].String())
	for _, ds := range d.Datasets {
		assert.Len(t, ds.Data, 3)
	}
	assert.Equal(t, 20.0, d.Datasets[0].Data[0].Value)

	require.NoError(t, d.RemoveDataset(1))
	assert.ErrorIs(t, d.RemoveDataset(0), ErrLastDataset)
	assert.ErrorIs(t, d.RemoveLabel(7), ErrIndexOutOfRange)

	d.Labels = d.Labels[:1]
	d.Datasets[0].Data = d.Datasets[0].Data[:1]
	assert.ErrorIs(t, d.RemoveLabel(0), ErrLastLabel)
}

func TestTableEditorLockStep(t *testing.T) {
	d := NewTableDefinition("People")
	d.AddColumn()
	require.NoError(t, d.AddRow())
	require.NoError(t, d.AddRow())
	require.NoError(t, d.SetCell(0, 1, "b0"))
	require.NoError(t, d.SetCell(1, 0, "a1"))

	d.AddColumn()
	assert.Equal(t, []string{"Column 1", "Column 2", "Column 3"}, d.Headers)
	assert.Equal(t, []string{"", "b0", ""}, d.Rows[0])

	require.NoError(t, d.RemoveColumn(0))
	assert.Equal(t, []string{"Column 2", "Column 3"}, d.Headers)
	assert.Equal(t, []string{"b0", ""}, d.Rows[0])
	assert.Equal(t, []string{"", ""}, d.Rows[1])

	require.NoError(t, d.RemoveRow(0))
	assert.Len(t, d.Rows, 1)
	assert.ErrorIs(t, d.RemoveRow(3), ErrIndexOutOfRange)
	assert.ErrorIs(t, d.SetCell(0, 9, "x"), ErrIndexOutOfRange)

	require.NoError(t, d.RemoveColumn(1))
	assert.ErrorIs(t, d.RemoveColumn(0), ErrLastColumn)

	empty := TableDefinition{}
	assert.ErrorIs(t, empty.AddRow(), ErrNoColumns)
}

func TestCloneDoesNotAlias(t *testing.T) {
	d := NewChartDefinition(ChartLine)
	c := d.Clone()
	c.Datasets[0].Data[0] = NumberPoint(99)
	c.Labels[0] = TextLabel("changed")
	assert.Equal(t, 10.0, d.Datasets[0].Data[0].Value)
	assert.Equal(t, "Label 1", d.Labels[0].String())

	td := TableDefinition{Headers: []string{"a"}, Rows: [][]string{{"1"}}}
	tc := td.Clone()
	tc.Rows[0][0] = "2"
	assert.Equal(t, "1", td.Rows[0][0])
}

func TestToggleTheme(t *testing.T) {
	assert.Equal(t, ThemeLight, Preferences{Theme: ThemeDark}.ToggleTheme().Theme)
	assert.Equal(t, ThemeDark, Preferences{Theme: ThemeLight}.ToggleTheme().Theme)
	assert.Equal(t, ThemeDark, Preferences{}.ToggleTheme().Theme)
	assert.True(t, ValidTheme(ThemeDark))
	assert.False(t, ValidTheme("neon"))
}
