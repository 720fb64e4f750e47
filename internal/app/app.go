// Package app is the process-wide application context shared by the HTTP API
// and the CLI: configuration, the chosen row store backend, the signed-in
// user, the admin list and the active workspace (location and filters).
//
// New initializes in a fixed order: config, backend, identity, admin list,
// then the workspace is reset to the first location.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/celerix-dev/auditoria/internal/admin"
	"github.com/celerix-dev/auditoria/internal/platform/config"
	"github.com/celerix-dev/auditoria/internal/platform/metrics"
	"github.com/celerix-dev/auditoria/internal/rowstore"
	"github.com/celerix-dev/auditoria/internal/search"
	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/celerix-dev/auditoria/pkg/sdk"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ErrStoreFailed wraps every row store failure surfaced by App.
	ErrStoreFailed = errors.New("row store failed")
	// ErrRowNotFound is returned when a ref addresses no listed row.
	ErrRowNotFound = errors.New("row not found")
	// ErrEmptyEmail is returned by Login for a blank email.
	ErrEmptyEmail = errors.New("email is required")
	// ErrBadFile is returned when an import file cannot be decoded.
	ErrBadFile = errors.New("unreadable import file")
)

type App struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	backend *Backend
	rows    rowstore.Store
	admins  *admin.AllowList

	mu       sync.RWMutex
	user     *schema.CurrentUser
	location string
	filters  search.FilterSet
}

// New builds the context. A remote backend that cannot be reached is replaced
// by the local one with a warning. reg receives the application metrics.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := OpenBackend(cfg, cfg.Backend, logger)
	if err != nil && cfg.Backend == config.BackendRemote {
		logger.Warn("remote store unreachable, using local storage", "addr", cfg.StoreAddr, "error", err)
		backend, err = OpenBackend(cfg, config.BackendLocal, logger)
	}
	if err != nil {
		return nil, err
	}

	m := metrics.New(reg)
	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		backend: backend,
		rows:    rowstore.Instrument(backend.Rows, m),
		admins:  admin.New(cfg.AdminEmailsFile, backend.Docs, cfg.ConfigCollection, logger),
	}
	a.admins.Load(ctx)
	a.resetWorkspace(schema.Locations[0])

	logger.Info("application ready", "backend", a.rows.Mode(), "admins", len(a.admins.Emails()))
	return a, nil
}

// Ping checks that a networked document store still answers. Backends
// without a connection always pass.
func (a *App) Ping() error {
	p, ok := a.backend.Docs.(sdk.Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// Close releases the backend.
func (a *App) Close() error { return a.backend.Close() }

func (a *App) Config() config.Config     { return a.cfg }
func (a *App) Logger() *slog.Logger      { return a.logger }
func (a *App) Metrics() *metrics.Metrics { return a.metrics }
func (a *App) Store() rowstore.Store     { return a.rows }
func (a *App) Admins() *admin.AllowList  { return a.admins }
func (a *App) Mode() string              { return a.rows.Mode() }

// --- Identity ---

// Login signs email in without verification and reloads the admin list.
func (a *App) Login(ctx context.Context, email string) (schema.CurrentUser, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return schema.CurrentUser{}, ErrEmptyEmail
	}
	u := schema.CurrentUser{Email: email}
	a.mu.Lock()
	a.user = &u
	a.mu.Unlock()

	a.admins.Load(ctx)
	a.logger.Info("user signed in", "email", email, "admin", a.admins.IsAdmin(&u))
	return u, nil
}

func (a *App) Logout() {
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (a *App) CurrentUser() *schema.CurrentUser {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// IsAdmin reports whether the signed-in user is on the admin list.
func (a *App) IsAdmin() bool { return a.admins.IsAdmin(a.CurrentUser()) }

// --- Workspace ---

// Location is the active store location.
func (a *App) Location() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.location
}

// SelectLocation switches the active location and clears the filters.
func (a *App) SelectLocation(location string) error {
	if !schema.IsLocation(location) {
		return fmt.Errorf("%w: %q", rowstore.ErrUnknownLocation, location)
	}
	a.resetWorkspace(location)
	return nil
}

func (a *App) resetWorkspace(location string) {
	a.mu.Lock()
	a.location = location
	a.filters = search.FilterSet{}
	a.mu.Unlock()
}

// Filters returns a copy of the active filter set.
func (a *App) Filters() search.FilterSet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(search.FilterSet, len(a.filters))
	for k, v := range a.filters {
		out[k] = v
	}
	return out
}

// SetFilters replaces the filter set. Keys that name no filterable field
// fail with search.ErrUnknownField and leave the filters unchanged.
func (a *App) SetFilters(in map[string]string) (search.FilterSet, error) {
	if err := search.Validate(in); err != nil {
		return a.Filters(), err
	}
	fs := search.NewFilterSet(in)
	a.mu.Lock()
	a.filters = fs
	a.mu.Unlock()
	return a.Filters(), nil
}

func (a *App) ClearFilters() {
	a.mu.Lock()
	a.filters = search.FilterSet{}
	a.mu.Unlock()
}
