package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/celerix-dev/mobidash/internal/convert"
	"github.com/celerix-dev/mobidash/internal/logging"
	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/validate"
)

// ParseTableFile reads a .xlsx workbook or a .json table from r. sheet picks
// the worksheet of a workbook; empty selects the first one. Unreadable content
// is reported as a parse error.
func ParseTableFile(name string, size int64, r io.Reader, sheet string) (schema.TableDefinition, error) {
	if err := validate.ValidateFileSize(validate.FileMeta{FileName: name, FileSize: size}); err != nil {
		return schema.TableDefinition{}, err
	}

	var (
		def schema.TableDefinition
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		def, err = convert.TableFromXLSX(io.LimitReader(r, validate.MaxFileSize+1), sheet)
	case ".json":
		var content []byte
		if content, err = io.ReadAll(io.LimitReader(r, validate.MaxFileSize+1)); err != nil {
			return schema.TableDefinition{}, fmt.Errorf("read %s: %w", name, err)
		}
		var raw any
		if raw, err = validate.ValidateJSONStructure(string(content)); err == nil {
			def, err = validate.ValidateTableJSON(raw)
		}
	default:
		return schema.TableDefinition{}, &validate.Error{Kind: validate.KindShape, Message: "only .json and .xlsx files are allowed"}
	}
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) || errors.Is(err, convert.ErrEmptySheet) {
			return schema.TableDefinition{}, err
		}
		return schema.TableDefinition{}, &validate.Error{Kind: validate.KindParse, Message: err.Error()}
	}

	if def.Title == "" {
		def.Title = TitleFromFileName(name)
	}
	return def, nil
}

// ImportTable parses a table file and saves it.
func (i *Importer) ImportTable(ctx context.Context, name string, size int64, r io.Reader, sheet string) (schema.Table, error) {
	l := logging.WithFields(ctx, "file", name, "size", size)

	def, err := ParseTableFile(name, size, r, sheet)
	if err != nil {
		l.Info().Err(err).Msg("table file rejected")
		return schema.Table{}, err
	}
	if err := ctx.Err(); err != nil {
		return schema.Table{}, err
	}

	table, err := i.store.SaveTable(def)
	if err != nil {
		l.Error().Err(err).Msg("failed to save imported table")
		return schema.Table{}, fmt.Errorf("save table: %w", err)
	}

	l.Info().Str("table_id", table.ID).Int("rows", len(table.Rows)).Msg("table imported")
	return table, nil
}

// ImportTablePath imports a table file from disk.
func (i *Importer) ImportTablePath(ctx context.Context, path, sheet string) (schema.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.Table{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return schema.Table{}, err
	}
	return i.ImportTable(ctx, info.Name(), info.Size(), f, sheet)
}
