package storage

import (
	"fmt"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/internal/storage/remote"
	"github.com/kaizen-dev/memento/internal/storage/sqlite"
)

// OpenConfig selects and configures one of the two concrete backends.
// It mirrors internal/config.StorageConfig's shape without importing it,
// keeping this package dependency-free of the config layer.
type OpenConfig struct {
	Backend                 string
	DSN                     string
	RemoteAPIKey             string
	RemoteRequestsPerSecond float64
}

// Open dispatches to the concrete backend OpenConfig.Backend names ("sqlite"
// or "remote"), the sum-type selection point every caller (hook binary,
// future CLI/MCP entrypoints) goes through instead of importing a concrete
// backend package directly.
func Open(cfg OpenConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return sqlite.Open(cfg.DSN)
	case "remote":
		return remote.New(remote.Config{
			BaseURL:           cfg.DSN,
			APIKey:            cfg.RemoteAPIKey,
			RequestsPerSecond: cfg.RemoteRequestsPerSecond,
		}), nil
	default:
		return nil, kerrors.ConfigErr(fmt.Sprintf("unknown storage backend %q", cfg.Backend))
	}
}
