package kv

import (
	"encoding/json"
	"fmt"
)

// GetJSON reads a key and decodes its JSON value into T.
// A missing key returns the zero value of T together with ErrKeyNotFound.
func GetJSON[T any](r Reader, key string) (T, error) {
	var target T
	raw, err := r.Get(key)
	if err != nil {
		return target, err
	}
	if err := json.Unmarshal([]byte(raw), &target); err != nil {
		return target, fmt.Errorf("decode %s: %w", key, err)
	}
	return target, nil
}

// SetJSON encodes val as JSON and stores it under key.
func SetJSON[T any](w Writer, key string, val T) error {
	bytes, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return w.Set(key, string(bytes))
}
