package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// null is the JSON literal encoding/json hands to UnmarshalJSON for a null element.
var null = []byte("null")

// Label is a chart axis label: either text or a number.
type Label struct {
	Text     string
	Number   float64
	IsNumber bool
}

// TextLabel builds a text label.
func TextLabel(s string) Label { return Label{Text: s} }

// NumberLabel builds a numeric label.
func NumberLabel(f float64) Label { return Label{Number: f, IsNumber: true} }

// String renders the label for display.
func (l Label) String() string {
	if l.IsNumber {
		return strconv.FormatFloat(l.Number, 'f', -1, 64)
	}
	return l.Text
}

func (l Label) MarshalJSON() ([]byte, error) {
	if l.IsNumber {
		return json.Marshal(l.Number)
	}
	return json.Marshal(l.Text)
}

func (l *Label) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, null) {
		return fmt.Errorf("label must be a string or a number")
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = TextLabel(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("label must be a string or a number")
	}
	*l = NumberLabel(f)
	return nil
}

// Point is the object form of a data value used by scatter and bubble charts.
// At least one of X or Y is present; R is the bubble radius.
type Point struct {
	X any `json:"x,omitempty"`
	Y any `json:"y,omitempty"`
	R any `json:"r,omitempty"`
}

// DataPoint is a dataset value: a plain number or a Point.
type DataPoint struct {
	Value float64
	Point *Point
}

// NumberPoint builds a plain numeric value.
func NumberPoint(f float64) DataPoint { return DataPoint{Value: f} }

// XYPoint builds a point value.
func XYPoint(x, y float64) DataPoint { return DataPoint{Point: &Point{X: x, Y: y}} }

// IsPoint reports whether the value uses the object form.
func (p DataPoint) IsPoint() bool { return p.Point != nil }

// Y returns the value on the vertical axis. For points without a numeric y it reports false.
func (p DataPoint) Y() (float64, bool) {
	if p.Point == nil {
		return p.Value, true
	}
	return toFloat(p.Point.Y)
}

// X returns the numeric x of a point.
func (p DataPoint) X() (float64, bool) {
	if p.Point == nil {
		return 0, false
	}
	return toFloat(p.Point.X)
}

func (p DataPoint) MarshalJSON() ([]byte, error) {
	if p.Point != nil {
		return json.Marshal(p.Point)
	}
	return json.Marshal(p.Value)
}

func (p *DataPoint) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, null) {
		return fmt.Errorf("data value must be a number or a point")
	}
	if len(b) > 0 && b[0] == '{' {
		var raw map[string]any
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		pt, ok := PointFromMap(raw)
		if !ok {
			return fmt.Errorf("data point object must carry x or y")
		}
		*p = DataPoint{Point: pt}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("data value must be a number or a point")
	}
	*p = NumberPoint(f)
	return nil
}

// PointFromMap builds a Point from a decoded JSON object carrying x or y.
// A null coordinate counts as absent.
func PointFromMap(m map[string]any) (*Point, bool) {
	x, y := m["x"], m["y"]
	if x == nil && y == nil {
		return nil, false
	}
	return &Point{X: x, Y: y, R: m["r"]}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
