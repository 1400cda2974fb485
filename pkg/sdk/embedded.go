package sdk

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/celerix-dev/mobidash/internal/convert"
	"github.com/celerix-dev/mobidash/internal/importer"
	"github.com/celerix-dev/mobidash/internal/render"
	"github.com/celerix-dev/mobidash/pkg/schema"
)

func (e *Embedded) ImportChart(ctx context.Context, name string, content []byte) (schema.Chart, error) {
	return importer.New(e.Store).ImportChartFile(ctx, name, int64(len(content)), string(content))
}

func (e *Embedded) ChartImage(ctx context.Context, id, format string, width, height int) ([]byte, error) {
	f, err := render.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	chart, err := e.GetChartByID(id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := render.Render(&buf, chart.ChartDefinition, f, width, height); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Embedded) ImportTable(ctx context.Context, name string, content []byte, sheet string) (schema.Table, error) {
	return importer.New(e.Store).ImportTable(ctx, name, int64(len(content)), bytes.NewReader(content), sheet)
}

func (e *Embedded) ExportTable(ctx context.Context, id, format string) ([]byte, error) {
	table, err := e.GetTableByID(id)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return convert.TableToJSON(table.TableDefinition)
	case "xlsx":
		var buf bytes.Buffer
		if err := convert.TableToXLSX(table.TableDefinition, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func (e *Embedded) TableToChart(ctx context.Context, id string, save bool) (schema.Chart, error) {
	table, err := e.GetTableByID(id)
	if err != nil {
		return schema.Chart{}, err
	}
	def, err := convert.TableToChart(table.TableDefinition, time.Now())
	if err != nil {
		return schema.Chart{}, err
	}
	if !save {
		return schema.Chart{ChartDefinition: def}, nil
	}
	return e.SaveChart(def)
}
