package vault

import (
	"github.com/celerix-dev/mobidash/pkg/kv"
)

// Storage encrypts values before they reach the wrapped backend and decrypts them on read.
// Keys are stored in plaintext so collections stay addressable.
type Storage struct {
	inner     kv.Storage
	masterKey []byte
}

var _ kv.Storage = (*Storage)(nil)

// Wrap returns an encrypting view over inner.
func Wrap(inner kv.Storage, masterKey []byte) *Storage {
	return &Storage{inner: inner, masterKey: masterKey}
}

// Get retrieves and decrypts a value.
func (s *Storage) Get(key string) (string, error) {
	ciphertext, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	return Decrypt(ciphertext, s.masterKey)
}

// Set encrypts and stores a value.
func (s *Storage) Set(key, plaintext string) error {
	ciphertext, err := Encrypt(plaintext, s.masterKey)
	if err != nil {
		return err
	}
	return s.inner.Set(key, ciphertext)
}

// Remove deletes a key from the wrapped backend.
func (s *Storage) Remove(key string) error {
	return s.inner.Remove(key)
}

// Keys lists the wrapped backend's keys, or fails with kv.ErrNotListable.
func (s *Storage) Keys() ([]string, error) {
	if l, ok := s.inner.(kv.Lister); ok {
		return l.Keys()
	}
	return nil, kv.ErrNotListable
}
