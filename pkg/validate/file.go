package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/celerix-dev/mobidash/pkg/schema"
)

// MaxFileSize is the largest chart file accepted for import.
const MaxFileSize = 5 << 20

// File is the metadata of an uploaded file. os.FileInfo satisfies it.
type File interface {
	Name() string
	Size() int64
}

// FileMeta is a File built from plain values, e.g. a multipart header.
type FileMeta struct {
	FileName string
	FileSize int64
}

func (f FileMeta) Name() string { return f.FileName }
func (f FileMeta) Size() int64  { return f.FileSize }

// ValidateFileExtension requires a name whose final extension is "json", ignoring case.
func ValidateFileExtension(name string) error {
	if name == "" {
		return shapeErr("file name not provided")
	}
	ext := name[strings.LastIndex(name, ".")+1:]
	if ext == "" {
		return shapeErr("file has no extension")
	}
	if !strings.EqualFold(ext, "json") {
		return shapeErr("only .json files are allowed")
	}
	return nil
}

// ValidateFileSize rejects missing, oversized and empty files, in that order.
func ValidateFileSize(f File) error {
	if f == nil {
		return shapeErr("file not provided")
	}
	if f.Size() > MaxFileSize {
		return rangeErr("file too large. Maximum size: %.2fMB", float64(MaxFileSize)/(1<<20))
	}
	if f.Size() == 0 {
		return rangeErr("file is empty")
	}
	return nil
}

// ValidateJSONStructure parses text as JSON. Parse failures embed the decoder's message.
func ValidateJSONStructure(text string) (any, error) {
	if text == "" {
		return nil, shapeErr("invalid file content")
	}
	if strings.TrimSpace(text) == "" {
		return nil, rangeErr("file is empty")
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &Error{Kind: KindParse, Message: fmt.Sprintf("invalid JSON: %s", err.Error())}
	}
	return v, nil
}

// ValidateCompleteChartFile runs the full import pipeline:
// size, extension, parse, then chart structure.
func ValidateCompleteChartFile(f File, content string) (schema.ChartDefinition, error) {
	if err := ValidateFileSize(f); err != nil {
		return schema.ChartDefinition{}, err
	}
	if err := ValidateFileExtension(f.Name()); err != nil {
		return schema.ChartDefinition{}, err
	}
	v, err := ValidateJSONStructure(content)
	if err != nil {
		return schema.ChartDefinition{}, err
	}
	return ValidateChartJSON(v)
}
