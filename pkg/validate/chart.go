package validate

import (
	"github.com/celerix-dev/mobidash/pkg/schema"
)

const (
	// MaxDatasets is the largest number of datasets a chart may carry.
	MaxDatasets = 10
	// MaxDataPoints bounds both the label count and every dataset's length.
	MaxDataPoints = 1000
)

// ValidateChartType accepts a string naming one of the supported kinds, ignoring case.
func ValidateChartType(v any) (schema.ChartType, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", shapeErr("chart type not specified or invalid")
	}
	t, ok := schema.ParseChartType(s)
	if !ok {
		return "", shapeErr("invalid chart type. Valid types: %s", schema.ChartTypeNames())
	}
	return t, nil
}

// ValidateLabels accepts a sequence of 1..MaxDataPoints strings or numbers.
func ValidateLabels(v any) ([]schema.Label, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, shapeErr("labels must be an array")
	}
	if len(items) == 0 {
		return nil, rangeErr("labels cannot be empty")
	}
	if len(items) > MaxDataPoints {
		return nil, rangeErr("labels exceed the limit of %d points", MaxDataPoints)
	}

	labels := make([]schema.Label, len(items))
	for i, item := range items {
		switch l := item.(type) {
		case string:
			labels[i] = schema.TextLabel(l)
		case float64:
			labels[i] = schema.NumberLabel(l)
		default:
			return nil, shapeErr("all labels must be strings or numbers")
		}
	}
	return labels, nil
}

// ValidateDataset checks one dataset; index is the 1-based position used in messages.
func ValidateDataset(v any, index int) (schema.Dataset, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return schema.Dataset{}, shapeErr("dataset %d is not a valid object", index)
	}

	label, ok := m["label"].(string)
	if !ok || label == "" {
		return schema.Dataset{}, shapeErr("dataset %d must have a 'label' property of type string", index)
	}

	items, ok := m["data"].([]any)
	if !ok {
		return schema.Dataset{}, shapeErr("dataset %d must have a 'data' property of type array", index)
	}
	if len(items) == 0 {
		return schema.Dataset{}, rangeErr("dataset %d cannot have empty data", index)
	}
	if len(items) > MaxDataPoints {
		return schema.Dataset{}, rangeErr("dataset %d exceeds the limit of %d points", index, MaxDataPoints)
	}

	data := make([]schema.DataPoint, len(items))
	for i, item := range items {
		switch val := item.(type) {
		case float64:
			data[i] = schema.NumberPoint(val)
		case map[string]any:
			pt, ok := schema.PointFromMap(val)
			if !ok {
				return schema.Dataset{}, shapeErr("dataset %d contains invalid data values", index)
			}
			data[i] = schema.DataPoint{Point: pt}
		default:
			return schema.Dataset{}, shapeErr("dataset %d contains invalid data values", index)
		}
	}

	return schema.Dataset{Label: label, Data: data}, nil
}

// ValidateDatasets accepts 1..MaxDatasets datasets and stops at the first invalid one.
func ValidateDatasets(v any) ([]schema.Dataset, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, shapeErr("datasets must be an array")
	}
	if len(items) == 0 {
		return nil, rangeErr("there must be at least one dataset")
	}
	if len(items) > MaxDatasets {
		return nil, rangeErr("number of datasets exceeds the limit of %d", MaxDatasets)
	}

	datasets := make([]schema.Dataset, len(items))
	for i, item := range items {
		ds, err := ValidateDataset(item, i+1)
		if err != nil {
			return nil, err
		}
		datasets[i] = ds
	}
	return datasets, nil
}

// ValidateDataConsistency requires every dataset to hold exactly one value per label.
func ValidateDataConsistency(labels []schema.Label, datasets []schema.Dataset) error {
	for i, ds := range datasets {
		if len(ds.Data) != len(labels) {
			return consistencyErr(
				"dataset %d has %d data points, but there are %d labels. They must have the same length.",
				i+1, len(ds.Data), len(labels))
		}
	}
	return nil
}

// ValidateChartJSON parses a decoded JSON value into a chart definition.
// Checks run in a fixed order (shape, type, labels, datasets, consistency) and stop
// at the first failure so the reported message is deterministic.
func ValidateChartJSON(v any) (schema.ChartDefinition, error) {
	if _, isArray := v.([]any); isArray {
		return schema.ChartDefinition{}, shapeErr("invalid JSON: root object cannot be an array")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return schema.ChartDefinition{}, shapeErr("invalid JSON: must be an object")
	}

	chartType, err := ValidateChartType(m["type"])
	if err != nil {
		return schema.ChartDefinition{}, err
	}

	labels, err := ValidateLabels(m["labels"])
	if err != nil {
		return schema.ChartDefinition{}, err
	}

	datasets, err := ValidateDatasets(m["datasets"])
	if err != nil {
		return schema.ChartDefinition{}, err
	}

	if err := ValidateDataConsistency(labels, datasets); err != nil {
		return schema.ChartDefinition{}, err
	}

	title, _ := m["title"].(string)
	return schema.ChartDefinition{
		Type:     chartType,
		Title:    title,
		Labels:   labels,
		Datasets: datasets,
	}, nil
}

// ValidateChart applies the same rules to an already typed definition.
// Used for data that arrives through the editor or API rather than a file.
func ValidateChart(d schema.ChartDefinition) error {
	if _, err := ValidateChartType(string(d.Type)); err != nil {
		return err
	}

	switch {
	case len(d.Labels) == 0:
		return rangeErr("labels cannot be empty")
	case len(d.Labels) > MaxDataPoints:
		return rangeErr("labels exceed the limit of %d points", MaxDataPoints)
	case len(d.Datasets) == 0:
		return rangeErr("there must be at least one dataset")
	case len(d.Datasets) > MaxDatasets:
		return rangeErr("number of datasets exceeds the limit of %d", MaxDatasets)
	}

	for i, ds := range d.Datasets {
		index := i + 1
		if ds.Label == "" {
			return shapeErr("dataset %d must have a 'label' property of type string", index)
		}
		if len(ds.Data) == 0 {
			return rangeErr("dataset %d cannot have empty data", index)
		}
		if len(ds.Data) > MaxDataPoints {
			return rangeErr("dataset %d exceeds the limit of %d points", index, MaxDataPoints)
		}
		for _, p := range ds.Data {
			if p.Point != nil && p.Point.X == nil && p.Point.Y == nil {
				return shapeErr("dataset %d contains invalid data values", index)
			}
		}
	}

	return ValidateDataConsistency(d.Labels, d.Datasets)
}
