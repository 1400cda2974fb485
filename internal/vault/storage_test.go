package vault

import (
	"errors"
	"testing"

	"github.com/celerix-dev/mobidash/internal/engine"
	"github.com/celerix-dev/mobidash/pkg/kv"
)

func TestStorage_EncryptsAtRest(t *testing.T) {
	inner := engine.NewMemStore(nil, nil)
	s := Wrap(inner, []byte("thisis32byteslongsecretkey123456"))

	if err := s.Set("mobidash_tables", `[]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, _ := inner.Get("mobidash_tables")
	if raw == `[]` {
		t.Error("Value should be encrypted in the wrapped store")
	}

	got, err := s.Get("mobidash_tables")
	if err != nil || got != `[]` {
		t.Errorf("Get = %q, %v", got, err)
	}

	keys, _ := s.Keys()
	if len(keys) != 1 || keys[0] != "mobidash_tables" {
		t.Errorf("Keys should stay plaintext, got %v", keys)
	}

	if err := s.Remove("mobidash_tables"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := s.Get("mobidash_tables"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
}

// writeOnly hides the Keys method of the wrapped store.
type writeOnly struct{ kv.Storage }

func TestStorage_KeysRequiresListableBackend(t *testing.T) {
	s := Wrap(writeOnly{engine.NewMemStore(nil, nil)}, []byte("thisis32byteslongsecretkey123456"))
	if err := s.Set("mobidash_charts", `[]`); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Keys(); !errors.Is(err, kv.ErrNotListable) {
		t.Fatalf("Expected ErrNotListable, got %v", err)
	}
	if _, err := engine.Migrate(s, engine.NewMemStore(nil, nil)); !errors.Is(err, kv.ErrNotListable) {
		t.Errorf("Expected migration to fail with ErrNotListable, got %v", err)
	}
}
