package schema

import (
	"errors"
	"strconv"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrLastLabel       = errors.New("the chart must have at least one label")
	ErrLastDataset     = errors.New("the chart must have at least one dataset")
	ErrLastColumn      = errors.New("the table must have at least one column")
	ErrNoColumns       = errors.New("define at least one column before adding rows")
)

func labelName(prefix string, n int) string {
	return prefix + " " + strconv.Itoa(n)
}
