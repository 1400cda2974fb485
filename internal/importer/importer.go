// Package importer turns uploaded chart and table files into stored records.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/celerix-dev/mobidash/internal/logging"
	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/validate"
)

// Saver is the part of the Store the importer needs.
type Saver interface {
	SaveChart(def schema.ChartDefinition) (schema.Chart, error)
	SaveTable(def schema.TableDefinition) (schema.Table, error)
}

// Importer validates chart and table files and saves them.
type Importer struct {
	store Saver
}

// New creates an Importer that saves into store.
func New(store Saver) *Importer {
	return &Importer{store: store}
}

// ImportChartFile validates content as a chart file named name of the given size
// and saves it. A chart without a title is named after the file.
func (i *Importer) ImportChartFile(ctx context.Context, name string, size int64, content string) (schema.Chart, error) {
	l := logging.WithFields(ctx, "file", name, "size", size)

	def, err := validate.ValidateCompleteChartFile(validate.FileMeta{FileName: name, FileSize: size}, content)
	if err != nil {
		l.Info().Err(err).Msg("chart file rejected")
		return schema.Chart{}, err
	}
	if def.Title == "" {
		def.Title = TitleFromFileName(name)
	}

	if err := ctx.Err(); err != nil {
		return schema.Chart{}, err
	}

	chart, err := i.store.SaveChart(def)
	if err != nil {
		l.Error().Err(err).Msg("failed to save imported chart")
		return schema.Chart{}, fmt.Errorf("save chart: %w", err)
	}

	l.Info().Str("chart_id", chart.ID).Str("type", string(chart.Type)).Msg("chart imported")
	return chart, nil
}

// ImportChartReader reads at most one byte past validate.MaxFileSize from r, so an
// oversized upload is rejected without buffering all of it.
func (i *Importer) ImportChartReader(ctx context.Context, name string, r io.Reader) (schema.Chart, error) {
	content, err := io.ReadAll(io.LimitReader(r, validate.MaxFileSize+1))
	if err != nil {
		return schema.Chart{}, fmt.Errorf("read %s: %w", name, err)
	}
	return i.ImportChartFile(ctx, name, int64(len(content)), string(content))
}

// ImportChartPath imports a chart file from disk.
func (i *Importer) ImportChartPath(ctx context.Context, path string) (schema.Chart, error) {
	info, err := os.Stat(path)
	if err != nil {
		return schema.Chart{}, err
	}
	// Reject by metadata before reading anything.
	if err := validate.ValidateFileSize(info); err != nil {
		return schema.Chart{}, err
	}

	content, err := ReadFile(ctx, path)
	if err != nil {
		return schema.Chart{}, err
	}
	return i.ImportChartFile(ctx, info.Name(), info.Size(), content)
}

// TitleFromFileName returns the part of the base name before the first dot.
func TitleFromFileName(name string) string {
	base := filepath.Base(name)
	if idx := strings.Index(base, "."); idx >= 0 {
		base = base[:idx]
	}
	return base
}

// ErrReadFailed wraps every failure reported by ReadFileAsync.
var ErrReadFailed = errors.New("an error occurred while reading the file")

// ReadFileAsync reads path on a new goroutine and calls done exactly once with
// the content or an error. An in-flight read cannot be cancelled.
func ReadFileAsync(path string, done func(content string, err error)) {
	go func() {
		b, err := os.ReadFile(path)
		if err != nil {
			done("", fmt.Errorf("%w: %w", ErrReadFailed, err))
			return
		}
		done(string(b), nil)
	}()
}

// ReadFile waits for ReadFileAsync or for ctx to end, whichever comes first.
func ReadFile(ctx context.Context, path string) (string, error) {
	type result struct {
		content string
		err     error
	}
	ch := make(chan result, 1)
	ReadFileAsync(path, func(content string, err error) {
		ch <- result{content, err}
	})

	select {
	case r := <-ch:
		return r.content, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
