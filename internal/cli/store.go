package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julianstephens/tracklit/internal/config"
	"github.com/julianstephens/tracklit/internal/constants"
	"github.com/julianstephens/tracklit/internal/keyring"
	"github.com/julianstephens/tracklit/internal/storage"
	"github.com/julianstephens/tracklit/internal/storage/postgres"
	"github.com/julianstephens/tracklit/internal/storage/sqlite"
	"github.com/julianstephens/tracklit/internal/utils"
)

// OpenStore picks a provider. A non-empty override (the --config flag) wins
// over the configured driver: ":memory:", a PostgreSQL URL, a .json file, or
// a SQLite path.
func OpenStore(cfg config.Config, override string) (storage.Provider, error) {
	if override != "" {
		return openOverride(override)
	}

	switch cfg.Storage.Driver {
	case constants.DriverMemory:
		return storage.NewMemoryStore(), nil
	case constants.DriverJSON:
		return storage.NewJSONStore(cfg.Storage.Path), nil
	case constants.DriverPostgres:
		if cfg.Storage.DSN != "" {
			if err := postgres.ValidateConnString(cfg.Storage.DSN); err != nil {
				return nil, fmt.Errorf("storage.dsn: %w", err)
			}
		}
		connStr, err := keyring.Resolve(cfg.Storage.KeyringProfile, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	default:
		return sqlite.NewStore(cfg.Storage.Path), nil
	}
}

func openOverride(target string) (storage.Provider, error) {
	switch {
	case target == constants.MemoryStorePath:
		return storage.NewMemoryStore(), nil
	case postgres.IsConnString(target):
		if err := postgres.ValidateConnString(target); err != nil {
			return nil, fmt.Errorf("--config: %w (store credentials with '%s keyring set' instead)", err, constants.AppName)
		}
		return postgres.New(target), nil
	}

	path, err := utils.ExpandPath(target)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}
