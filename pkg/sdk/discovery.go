package sdk

import (
	"os"

	"github.com/celerix-dev/mobidash/internal/dashboard"
	"github.com/celerix-dev/mobidash/internal/engine"
	"github.com/celerix-dev/mobidash/pkg/kv"
	"github.com/rs/zerolog/log"
)

// AddrEnv names the environment variable holding a remote daemon address.
const AddrEnv = "MOBIDASH_ADDR"

// Embedded is a store running inside the calling process, backed by a JSON
// snapshot in a data directory.
type Embedded struct {
	*dashboard.Store
	mem *engine.MemStore
}

// Storage exposes the key-value layer, e.g. as a migration source.
func (e *Embedded) Storage() kv.ListableStorage { return e.mem }

// Close waits for an in-flight snapshot write.
func (e *Embedded) Close() error {
	e.mem.Wait()
	return nil
}

// OpenEmbedded loads dataDir and returns a store writing back to it.
func OpenEmbedded(dataDir string, opts ...dashboard.Option) (*Embedded, error) {
	p, err := engine.NewPersistence(dataDir)
	if err != nil {
		return nil, err
	}
	data, err := p.Load()
	if err != nil {
		return nil, err
	}
	mem := engine.NewMemStore(data, p)
	return &Embedded{Store: dashboard.New(mem, opts...), mem: mem}, nil
}

// New initializes the store based on the environment.
// It returns the interface, so the app doesn't care if it's local or remote.
func New(dataDir string, opts ...dashboard.Option) (Handle, error) {
	if addr := os.Getenv(AddrEnv); addr != "" {
		client, err := Connect(addr)
		if err == nil {
			return client, nil
		}
		log.Warn().Err(err).Str("addr", addr).Msg("remote store unreachable, using embedded store")
	}
	return OpenEmbedded(dataDir, opts...)
}
