package sdk

import (
	"log/slog"

	"github.com/celerix-dev/auditoria/internal/engine"
)

// Config selects between a remote daemon and the embedded engine.
type Config struct {
	// Addr of a remote daemon. Empty selects the embedded engine.
	Addr       string
	DisableTLS bool
	// DataDir holds the embedded engine's collection files.
	DataDir string
	Logger  *slog.Logger
}

// Open initializes the document store described by cfg.
// It returns the interface, so callers don't care whether it's local or remote,
// and a close function that flushes or disconnects it.
func Open(cfg Config) (DocumentStore, func() error, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Addr != "" {
		client, err := Connect(cfg.Addr, Options{DisableTLS: cfg.DisableTLS, Logger: cfg.Logger})
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}

	// Embedded mode uses the same engine the daemon serves, inside this process.
	p, err := engine.NewPersistence(cfg.DataDir, cfg.Logger)
	if err != nil {
		return nil, nil, err
	}

	allData, err := p.LoadAll()
	if err != nil {
		return nil, nil, err
	}

	store := engine.NewMemStore(allData, p)
	return store, func() error {
		store.Wait()
		return nil
	}, nil
}
