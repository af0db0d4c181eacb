package runtime

import (
	"fmt"
	"log/slog"

	"github.com/tjfontaine/githubbot-connect/internal/bot"
	"github.com/tjfontaine/githubbot-connect/internal/registration"
	"github.com/tjfontaine/githubbot-connect/internal/storage"
	"github.com/tjfontaine/githubbot-connect/internal/storage/memory"
	"github.com/tjfontaine/githubbot-connect/internal/storage/sqlite"
)

// Option is a functional option for configuring an App.
type Option func(*App) error

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// WithBot uses b instead of a bot built from configuration. Built-in
// handlers are not registered on it.
func WithBot(b *bot.Bot[registration.Payload]) Option {
	return func(a *App) error {
		if b == nil {
			return fmt.Errorf("bot cannot be nil")
		}
		a.bot = b
		return nil
	}
}

// WithStore uses store for delivery records instead of the configured one.
func WithStore(store storage.DeliveryStore) Option {
	return func(a *App) error {
		a.store = store
		a.storeSet = true
		return nil
	}
}

// WithSQLite records deliveries in a SQLite database at path.
func WithSQLite(path string) Option {
	return func(a *App) error {
		store, err := sqlite.New(path)
		if err != nil {
			return fmt.Errorf("create sqlite storage: %w", err)
		}
		a.store = store
		a.storeSet = true
		return nil
	}
}

func storeFromConfig(kind, sqlitePath string) (storage.DeliveryStore, error) {
	switch kind {
	case "sqlite":
		store, err := sqlite.New(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("create sqlite storage: %w", err)
		}
		return store, nil
	case "none":
		return nil, nil
	default:
		return memory.New(), nil
	}
}
