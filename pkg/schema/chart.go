// Package schema defines the records persisted by the dashboard: charts, tables and user data.
package schema

import (
	"strings"
	"time"
)

// ChartType is one of the chart kinds the renderer understands.
type ChartType string

const (
	ChartLine      ChartType = "line"
	ChartBar       ChartType = "bar"
	ChartPie       ChartType = "pie"
	ChartDoughnut  ChartType = "doughnut"
	ChartRadar     ChartType = "radar"
	ChartPolarArea ChartType = "polarArea"
	ChartBubble    ChartType = "bubble"
	ChartScatter   ChartType = "scatter"
)

// ChartTypes lists every supported kind in display order.
var ChartTypes = []ChartType{
	ChartLine, ChartBar, ChartPie, ChartDoughnut,
	ChartRadar, ChartPolarArea, ChartBubble, ChartScatter,
}

// ParseChartType matches s case-insensitively and returns the canonical spelling.
func ParseChartType(s string) (ChartType, bool) {
	for _, t := range ChartTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// ChartTypeNames returns the canonical names joined for messages.
func ChartTypeNames() string {
	names := make([]string, len(ChartTypes))
	for i, t := range ChartTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// Dataset is one named series, positionally aligned with the chart labels.
type Dataset struct {
	Label string      `json:"label"`
	Data  []DataPoint `json:"data"`
}

// ChartDefinition is the caller-supplied part of a chart.
type ChartDefinition struct {
	Type     ChartType `json:"type"`
	Title    string    `json:"title,omitempty"`
	Labels   []Label   `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Chart is a persisted chart record.
type Chart struct {
	ID string `json:"id"`
	ChartDefinition
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (d ChartDefinition) Clone() ChartDefinition {
	out := d
	out.Labels = append([]Label(nil), d.Labels...)
	out.Datasets = make([]Dataset, len(d.Datasets))
	for i, ds := range d.Datasets {
		out.Datasets[i] = Dataset{Label: ds.Label, Data: append([]DataPoint(nil), ds.Data...)}
	}
	return out
}

// --- Editor operations ---
//
// These mirror the chart editor: labels and dataset values move in lock-step.

// AddLabel appends "Label N" and pads every dataset with a zero value.
func (d *ChartDefinition) AddLabel() {
	d.Labels = append(d.Labels, TextLabel(labelName("Label", len(d.Labels)+1)))
	for i := range d.Datasets {
		for len(d.Datasets[i].Data) < len(d.Labels) {
			d.Datasets[i].Data = append(d.Datasets[i].Data, NumberPoint(0))
		}
	}
}

// RemoveLabel removes label i and the matching value of every dataset.
func (d *ChartDefinition) RemoveLabel(i int) error {
	if len(d.Labels) <= 1 {
		return ErrLastLabel
	}
	if i < 0 || i >= len(d.Labels) {
		return ErrIndexOutOfRange
	}
	d.Labels = append(d.Labels[:i], d.Labels[i+1:]...)
	for k := range d.Datasets {
		if i < len(d.Datasets[k].Data) {
			data := d.Datasets[k].Data
			d.Datasets[k].Data = append(data[:i], data[i+1:]...)
		}
	}
	return nil
}

// AddDataset appends "Dataset N" filled with zeros, one per label.
func (d *ChartDefinition) AddDataset() {
	data := make([]DataPoint, len(d.Labels))
	for i := range data {
		data[i] = NumberPoint(0)
	}
	d.Datasets = append(d.Datasets, Dataset{
		Label: labelName("Dataset", len(d.Datasets)+1),
		Data:  data,
	})
}

// RemoveDataset removes dataset i; a chart always keeps one dataset.
func (d *ChartDefinition) RemoveDataset(i int) error {
	if len(d.Datasets) <= 1 {
		return ErrLastDataset
	}
	if i < 0 || i >= len(d.Datasets) {
		return ErrIndexOutOfRange
	}
	d.Datasets = append(d.Datasets[:i], d.Datasets[i+1:]...)
	return nil
}

// NewChartDefinition returns the editor's starting chart.
func NewChartDefinition(t ChartType) ChartDefinition {
	return ChartDefinition{
		Type:   t,
		Labels: []Label{TextLabel("Label 1"), TextLabel("Label 2"), TextLabel("Label 3")},
		Datasets: []Dataset{{
			Label: "Dataset 1",
			Data:  []DataPoint{NumberPoint(10), NumberPoint(20), NumberPoint(30)},
		}},
	}
}
