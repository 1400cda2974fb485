package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func definition(t schema.ChartType, datasets int) schema.ChartDefinition {
	def := schema.ChartDefinition{
		Type:   t,
		Title:  "Test",
		Labels: []schema.Label{schema.TextLabel("a"), schema.TextLabel("b"), schema.NumberLabel(3)},
	}
	for i := 0; i < datasets; i++ {
		def.Datasets = append(def.Datasets, schema.Dataset{
			Label: "series",
			Data: []schema.DataPoint{
				schema.NumberPoint(float64(i + 1)),
				schema.NumberPoint(float64(i + 4)),
				schema.NumberPoint(float64(i + 2)),
			},
		})
	}
	return def
}

func TestRenderEveryType(t *testing.T) {
	for _, ct := range schema.ChartTypes {
		t.Run(string(ct), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, definition(ct, 2), PNG, 320, 200))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func constant(t schema.ChartType, labels int, v float64) schema.ChartDefinition {
	def := schema.ChartDefinition{Type: t, Title: "Flat", Datasets: []schema.Dataset{{Label: "series"}}}
	for i := 0; i < labels; i++ {
		def.Labels = append(def.Labels, schema.NumberLabel(float64(i+1)))
		def.Datasets[0].Data = append(def.Datasets[0].Data, schema.NumberPoint(v))
	}
	return def
}

func TestRenderFlatValues(t *testing.T) {
	for name, def := range map[string]schema.ChartDefinition{
		"bar all equal":    constant(schema.ChartBar, 3, 5),
		"bar all zero":     constant(schema.ChartBar, 3, 0),
		"bar all negative": constant(schema.ChartBar, 2, -2),
		"bar single label": constant(schema.ChartBar, 1, 7),
		"line all zero":    constant(schema.ChartLine, 3, 0),
		"scatter flat":     constant(schema.ChartScatter, 3, 4),
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, def, PNG, 320, 200))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}

	for _, ct := range []schema.ChartType{schema.ChartPie, schema.ChartDoughnut, schema.ChartPolarArea} {
		t.Run(string(ct)+" all zero", func(t *testing.T) {
			var buf bytes.Buffer
			assert.ErrorIs(t, Render(&buf, constant(ct, 3, 0), PNG, 320, 200), ErrNoData)
		})
	}
}

func TestRenderSingleDatasetBar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, definition(schema.ChartBar, 1), PNG, 0, 0))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, definition(schema.ChartLine, 1), SVG, 400, 300))
	assert.True(t, strings.Contains(buf.String(), "<svg"))
}

func TestRenderScatterPoints(t *testing.T) {
	def := schema.ChartDefinition{
		Type:   schema.ChartScatter,
		Labels: []schema.Label{schema.TextLabel("p1"), schema.TextLabel("p2")},
		Datasets: []schema.Dataset{{
			Label: "pts",
			Data:  []schema.DataPoint{schema.XYPoint(1, 2), schema.XYPoint(3, 5)},
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, def, PNG, 300, 300))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderSinglePoint(t *testing.T) {
	def := schema.ChartDefinition{
		Type:     schema.ChartLine,
		Labels:   []schema.Label{schema.TextLabel("only")},
		Datasets: []schema.Dataset{{Label: "x", Data: []schema.DataPoint{schema.NumberPoint(7)}}},
	}
	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, def, PNG, 200, 200))
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, schema.ChartDefinition{Type: schema.ChartBar}, PNG, 0, 0), ErrNoData)

	def := definition("area", 1)
	assert.Error(t, Render(&buf, def, PNG, 0, 0))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)

	f, err = ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = ParseFormat("gif")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, DefaultWidth, clamp(0, DefaultWidth))
	assert.Equal(t, DefaultWidth, clamp(maxDimension+1, DefaultWidth))
	assert.Equal(t, 500, clamp(500, DefaultWidth))
}
