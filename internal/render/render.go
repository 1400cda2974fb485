// Package render draws chart definitions as PNG or SVG images.
//
// Rendering is a collaborator of the Store: it only reads definitions and its
// failures never touch stored data.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/celerix-dev/mobidash/pkg/schema"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 400
	maxDimension  = 4096
)

var (
	ErrUnknownFormat = errors.New("unknown image format")
	ErrNoData        = errors.New("chart has no data to draw")
)

// ParseFormat accepts "png" or "svg", ignoring case. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

var palette = []drawing.Color{
	chart.ColorBlue, chart.ColorGreen, chart.ColorRed, chart.ColorOrange,
	chart.ColorCyan, chart.ColorYellow, chart.ColorAlternateGray, chart.ColorBlack,
	chart.ColorAlternateBlue, chart.ColorAlternateGreen,
}

// Render draws def to w. Zero or out-of-range sizes fall back to the defaults.
//
// bar draws bars (stacked when there are several datasets), pie/doughnut/polarArea
// draw slices of the first dataset, line/radar draw one line per dataset over the
// labels, and scatter/bubble draw points.
func Render(w io.Writer, def schema.ChartDefinition, format Format, width, height int) error {
	if len(def.Labels) == 0 || len(def.Datasets) == 0 {
		return ErrNoData
	}
	width, height = clamp(width, DefaultWidth), clamp(height, DefaultHeight)

	var r renderable
	switch def.Type {
	case schema.ChartBar:
		r = barChart(def, width, height)
	case schema.ChartPie, schema.ChartPolarArea, schema.ChartDoughnut:
		values := sliceValues(def)
		if !anyPositive(values) {
			return fmt.Errorf("%w: every slice is zero or negative", ErrNoData)
		}
		if def.Type == schema.ChartDoughnut {
			r = &chart.DonutChart{Title: def.Title, Width: width, Height: height, Values: values}
		} else {
			r = &chart.PieChart{Title: def.Title, Width: width, Height: height, Values: values}
		}
	case schema.ChartLine, schema.ChartRadar:
		r = lineChart(def, width, height)
	case schema.ChartScatter, schema.ChartBubble:
		r = pointChart(def, width, height)
	default:
		return fmt.Errorf("unsupported chart type %q", def.Type)
	}

	if err := r.Render(format.provider(), w); err != nil {
		return fmt.Errorf("render %s chart: %w", def.Type, err)
	}
	return nil
}

func clamp(v, def int) int {
	if v <= 0 || v > maxDimension {
		return def
	}
	return v
}

func yValue(p schema.DataPoint) float64 {
	y, _ := p.Y()
	return y
}

func barChart(def schema.ChartDefinition, width, height int) renderable {
	if len(def.Datasets) == 1 {
		bars := make([]chart.Value, len(def.Labels))
		lo, hi := math.Inf(1), math.Inf(-1)
		for i, l := range def.Labels {
			v := yValue(def.Datasets[0].Data[i])
			bars[i] = chart.Value{Label: l.String(), Value: v}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		bc := &chart.BarChart{
			Title:    def.Title,
			Width:    width,
			Height:   height,
			BarWidth: max(4, width/(2*len(bars)+1)),
			Bars:     bars,
		}
		if r := flatRange(lo, hi); r != nil {
			bc.YAxis.Range = r
		}
		return bc
	}

	stacks := make([]chart.StackedBar, len(def.Labels))
	for i, l := range def.Labels {
		values := make([]chart.Value, len(def.Datasets))
		for j, ds := range def.Datasets {
			values[j] = chart.Value{
				Label: ds.Label,
				Value: yValue(ds.Data[i]),
				Style: chart.Style{FillColor: palette[j%len(palette)]},
			}
		}
		stacks[i] = chart.StackedBar{Name: l.String(), Values: values}
	}
	return &chart.StackedBarChart{Title: def.Title, Width: width, Height: height, Bars: stacks}
}

func sliceValues(def schema.ChartDefinition) []chart.Value {
	values := make([]chart.Value, len(def.Labels))
	for i, l := range def.Labels {
		values[i] = chart.Value{Label: l.String(), Value: yValue(def.Datasets[0].Data[i])}
	}
	return values
}

// flatRange returns an explicit y range when every value is the same; go-chart
// cannot scale a zero-height range.
func flatRange(lo, hi float64) *chart.ContinuousRange {
	if lo != hi || math.IsInf(lo, 0) {
		return nil
	}
	return &chart.ContinuousRange{Min: math.Min(0, lo), Max: math.Max(hi, lo+1)}
}

// yBounds is the smallest and largest y over every series.
func yBounds(series []chart.Series) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, y := range s.(chart.ContinuousSeries).YValues {
			lo, hi = math.Min(lo, y), math.Max(hi, y)
		}
	}
	return lo, hi
}

// anyPositive reports whether a pie has something to draw; go-chart drops
// slices that are not positive.
func anyPositive(values []chart.Value) bool {
	for _, v := range values {
		if v.Value > 0 {
			return true
		}
	}
	return false
}

func lineChart(def schema.ChartDefinition, width, height int) renderable {
	ticks := make([]chart.Tick, len(def.Labels))
	for i, l := range def.Labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: l.String()}
	}

	series := make([]chart.Series, 0, len(def.Datasets))
	for j, ds := range def.Datasets {
		xs := make([]float64, len(ds.Data))
		ys := make([]float64, len(ds.Data))
		for i, p := range ds.Data {
			xs[i], ys[i] = float64(i), yValue(p)
		}
		xs, ys = padSingle(xs, ys)
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: palette[j%len(palette)], StrokeWidth: 2},
		})
	}

	ch := &chart.Chart{
		Title:  def.Title,
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Ticks: ticks},
		Series: series,
	}
	if r := flatRange(yBounds(series)); r != nil {
		ch.YAxis.Range = r
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch
}

func pointChart(def schema.ChartDefinition, width, height int) renderable {
	series := make([]chart.Series, 0, len(def.Datasets))
	for j, ds := range def.Datasets {
		xs := make([]float64, 0, len(ds.Data))
		ys := make([]float64, 0, len(ds.Data))
		for i, p := range ds.Data {
			y, ok := p.Y()
			if !ok {
				continue
			}
			x, ok := p.X()
			if !ok {
				x = float64(i)
			}
			xs, ys = append(xs, x), append(ys, y)
		}
		if len(xs) == 0 {
			continue
		}
		xs, ys = padSingle(xs, ys)
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(palette[j%len(palette)]),
		})
	}

	ch := &chart.Chart{Title: def.Title, Width: width, Height: height, Series: series}
	if r := flatRange(yBounds(series)); r != nil {
		ch.YAxis.Range = r
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch
}

// pointStyle draws dots without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// padSingle widens a one-point series; a zero-width x range cannot be drawn.
func padSingle(xs, ys []float64) ([]float64, []float64) {
	if len(xs) != 1 {
		return xs, ys
	}
	return []float64{xs[0], xs[0] + 1}, []float64{ys[0], ys[0]}
}
