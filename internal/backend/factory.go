// Package backend picks the data source the client talks to.
package backend

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/jask/fireflymoney/internal/config"
	"github.com/jask/fireflymoney/internal/database"
	"github.com/jask/fireflymoney/internal/firefly"
	"github.com/jask/fireflymoney/internal/logging"
	"github.com/jask/fireflymoney/internal/model"
	"github.com/jask/fireflymoney/internal/service"
)

// CleanupFunc releases whatever the backend holds open.
type CleanupFunc func() error

// Result contains the backend instance and its cleanup function.
type Result struct {
	Backend model.Backend
	Kind    string
	Cleanup CleanupFunc
}

// TokenLookup returns the stored token for a host.
type TokenLookup func(host string) (string, error)

// Factory creates backends from configuration.
type Factory struct {
	logger *log.Logger
	tokens TokenLookup
}

func NewFactory(logger *log.Logger, tokens TokenLookup) *Factory {
	return &Factory{logger: logging.OrDiscard(logger), tokens: tokens}
}

// Create builds the backend named by cfg.Backend.Kind.
func (f *Factory) Create(ctx context.Context, cfg config.Config) (*Result, error) {
	switch cfg.Backend.Kind {
	case config.BackendFirefly:
		return f.createFirefly(cfg)
	case config.BackendSQLite:
		return f.createSQLite(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %q", cfg.Backend.Kind)
	}
}

func (f *Factory) createFirefly(cfg config.Config) (*Result, error) {
	if cfg.Firefly.URL == "" {
		return nil, fmt.Errorf("firefly backend: firefly.url is not set")
	}
	token := cfg.ResolveToken(f.tokens)
	if token == "" {
		return nil, fmt.Errorf("firefly backend: %w (set %s or run `fireflymoney login`)", firefly.ErrNoToken, cfg.Firefly.TokenEnv)
	}
	client := firefly.NewClient(cfg.Firefly.URL, token, cfg.Firefly.Timeout, firefly.WithLogger(f.logger.WithPrefix("firefly")))
	f.logger.Info("initialized firefly backend", "url", cfg.Firefly.URL)
	return &Result{
		Backend: client,
		Kind:    config.BackendFirefly,
		Cleanup: func() error { return nil },
	}, nil
}

func (f *Factory) createSQLite(ctx context.Context, cfg config.Config) (*Result, error) {
	db, err := database.Setup(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite backend: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite backend: seed defaults: %w", err)
	}
	f.logger.Info("initialized sqlite backend", "db_path", cfg.Database.Path)
	return &Result{
		Backend: service.NewLedgerService(db, f.logger.WithPrefix("ledger")),
		Kind:    config.BackendSQLite,
		Cleanup: db.Close,
	}, nil
}
