package app

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/celerix-dev/auditoria/internal/localstore"
	"github.com/celerix-dev/auditoria/internal/platform/config"
	"github.com/celerix-dev/auditoria/internal/rowstore"
	"github.com/celerix-dev/auditoria/pkg/sdk"
)

// Backend is an opened row store plus the document store behind it, if any.
type Backend struct {
	Rows rowstore.Store
	// Docs is nil for the local backend.
	Docs  sdk.DocumentStore
	close func() error
}

// Close releases the backend's handles.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend opens the backend named by kind (one of the config.Backend*
// values). It does not fall back; New does.
func OpenBackend(cfg config.Config, kind string, logger *slog.Logger) (*Backend, error) {
	switch kind {
	case config.BackendLocal:
		blobs, err := localstore.Open(localstore.Config{
			Path:   filepath.Join(cfg.DataDir, "local"),
			Logger: logger.With("component", "badger"),
		})
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		return &Backend{Rows: rowstore.NewLocal(blobs, logger), close: blobs.Close}, nil

	case config.BackendRemote, config.BackendEmbedded:
		sc := sdk.Config{DisableTLS: cfg.DisableTLS, Logger: logger}
		if kind == config.BackendRemote {
			if cfg.StoreAddr == "" {
				return nil, errors.New("remote backend requires a store address")
			}
			sc.Addr = cfg.StoreAddr
		} else {
			sc.DataDir = filepath.Join(cfg.DataDir, "docs")
		}
		docs, closeDocs, err := sdk.Open(sc)
		if err != nil {
			return nil, fmt.Errorf("open %s document store: %w", kind, err)
		}
		return &Backend{
			Rows:  rowstore.NewRemote(docs, cfg.RowsCollection, logger),
			Docs:  docs,
			close: closeDocs,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, kind)
}
