package dashboard

import (
	"errors"
	"fmt"

	"github.com/celerix-dev/mobidash/pkg/kv"
	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/rs/zerolog/log"
)

// ErrInvalidTheme is returned by SetTheme for unknown themes.
var ErrInvalidTheme = errors.New("invalid theme")

// Preferences returns the stored user preferences. Missing or unreadable data
// yields the zero value, which the client renders as the light theme.
func (s *Store) Preferences() schema.Preferences {
	data, err := kv.GetJSON[schema.UserData](s.storage, UserDataKey)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			log.Warn().Err(err).Str("key", UserDataKey).Msg("failed to read user data")
		}
		return schema.Preferences{}
	}
	return data.Preferences
}

// SetTheme stores theme as the user's preference.
func (s *Store) SetTheme(theme string) (schema.Preferences, error) {
	if !schema.ValidTheme(theme) {
		return schema.Preferences{}, fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeTheme(theme)
}

// ToggleTheme flips the stored theme between dark and light. The read and the
// write happen under one lock, so concurrent toggles alternate.
func (s *Store) ToggleTheme() (schema.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeTheme(s.Preferences().ToggleTheme().Theme)
}

// writeTheme must be called with s.mu held.
func (s *Store) writeTheme(theme string) (schema.Preferences, error) {
	data := schema.UserData{Preferences: schema.Preferences{Theme: theme}}
	if err := kv.SetJSON(s.storage, UserDataKey, data); err != nil {
		return schema.Preferences{}, fmt.Errorf("write %s: %w", UserDataKey, err)
	}

	s.notify(OpUpdated, CollectionPreferences, "")
	return data.Preferences, nil
}
