package convert

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/celerix-dev/mobidash/pkg/schema"
)

var (
	ErrNoColumns = errors.New("invalid table: it has no columns")
	ErrNoRows    = errors.New("the table has no data. Add rows before creating a chart")
)

// TableToChart derives a bar chart from a table.
//
// When every first-column cell is numeric and there are other columns, labels are
// "Item N" and each remaining column becomes a dataset. Otherwise the first column
// supplies the labels and the remaining columns the datasets. A single-column
// table becomes one dataset named after its header, labelled "Item N".
// Cells that do not start with a number count as 0.
func TableToChart(t schema.TableDefinition, at time.Time) (schema.ChartDefinition, error) {
	if len(t.Headers) == 0 {
		return schema.ChartDefinition{}, ErrNoColumns
	}
	if len(t.Rows) == 0 {
		return schema.ChartDefinition{}, ErrNoRows
	}

	var (
		labels   []schema.Label
		datasets []schema.Dataset
	)

	switch {
	case len(t.Headers) == 1:
		labels = itemLabels(len(t.Rows))
		name := t.Headers[0]
		if name == "" {
			name = "Values"
		}
		datasets = []schema.Dataset{{Label: name, Data: column(t.Rows, 0)}}
	case firstColumnNumeric(t.Rows):
		labels = itemLabels(len(t.Rows))
		datasets = columnDatasets(t)
	default:
		labels = make([]schema.Label, len(t.Rows))
		for i, row := range t.Rows {
			labels[i] = schema.TextLabel(cell(row, 0))
		}
		datasets = columnDatasets(t)
	}

	title := t.Title
	if title == "" {
		title = "Chart"
	}

	return schema.ChartDefinition{
		Type:     schema.ChartBar,
		Title:    fmt.Sprintf("%s - %s", title, at.Format(time.DateOnly)),
		Labels:   labels,
		Datasets: datasets,
	}, nil
}

func itemLabels(n int) []schema.Label {
	labels := make([]schema.Label, n)
	for i := range labels {
		labels[i] = schema.TextLabel("Item " + strconv.Itoa(i+1))
	}
	return labels
}

func columnDatasets(t schema.TableDefinition) []schema.Dataset {
	datasets := make([]schema.Dataset, 0, len(t.Headers)-1)
	for c := 1; c < len(t.Headers); c++ {
		datasets = append(datasets, schema.Dataset{Label: t.Headers[c], Data: column(t.Rows, c)})
	}
	return datasets
}

func column(rows [][]string, c int) []schema.DataPoint {
	data := make([]schema.DataPoint, len(rows))
	for i, row := range rows {
		data[i] = schema.NumberPoint(leadingNumber(cell(row, c)))
	}
	return data
}

func cell(row []string, c int) string {
	if c < len(row) {
		return row[c]
	}
	return ""
}

func firstColumnNumeric(rows [][]string) bool {
	for _, row := range rows {
		f, err := strconv.ParseFloat(strings.TrimSpace(cell(row, 0)), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return false
		}
	}
	return true
}

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// leadingNumber reads the number a cell starts with, e.g. "12kg" is 12. No number is 0.
func leadingNumber(s string) float64 {
	m := numberPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}
