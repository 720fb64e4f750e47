// Package admin holds the admin allow-list: the emails allowed to see the
// admin section. The list is seeded from a bundled JSON file and, when a
// document store is attached, overridden by the configs/admin document.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/celerix-dev/auditoria/pkg/sdk"
)

// DocID is the id of the allow-list document inside the config collection.
const DocID = "admin"

// ErrReadOnly is returned by Update when no document store is attached.
var ErrReadOnly = errors.New("admin list is read-only without a document store")

// AllowList is safe for concurrent use.
type AllowList struct {
	file       string
	docs       sdk.DocumentStore
	collection string
	logger     *slog.Logger

	mu     sync.RWMutex
	emails []string
}

// New returns an empty list. docs may be nil, in which case only the bundled
// file is consulted and Update is refused.
func New(file string, docs sdk.DocumentStore, collection string, logger *slog.Logger) *AllowList {
	if logger == nil {
		logger = slog.Default()
	}
	return &AllowList{file: file, docs: docs, collection: collection, logger: logger}
}

// ReadFile parses a JSON array of emails.
func ReadFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var emails []string
	if err := json.Unmarshal(raw, &emails); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return emails, nil
}

// Load refreshes the list. Failures are logged and leave the current list in
// place; the remote document, when present, wins over the bundled file.
func (a *AllowList) Load(ctx context.Context) {
	if a.file != "" {
		if emails, err := ReadFile(a.file); err != nil {
			a.logger.Warn("admin emails file unavailable", "path", a.file, "error", err)
		} else {
			a.set(emails)
		}
	}

	if a.docs == nil || ctx.Err() != nil {
		return
	}
	cfg, err := sdk.Get[schema.AdminConfig](a.docs, a.collection, DocID)
	switch {
	case errors.Is(err, sdk.ErrDocumentNotFound), errors.Is(err, sdk.ErrCollectionNotFound):
		a.logger.Debug("no remote admin config", "collection", a.collection)
	case err != nil:
		a.logger.Warn("load remote admin config", "error", err)
	default:
		a.set(cfg.Emails)
	}
}

// Update replaces the remote allow-list document and the in-memory list.
func (a *AllowList) Update(ctx context.Context, emails []string) error {
	if a.docs == nil {
		return ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	emails = clean(emails)
	if err := sdk.Set(a.docs, a.collection, DocID, schema.AdminConfig{Emails: emails}); err != nil {
		return fmt.Errorf("store admin config: %w", err)
	}
	a.set(emails)
	return nil
}

// IsAdmin reports whether user's email is on the list. A nil user is never admin.
func (a *AllowList) IsAdmin(user *schema.CurrentUser) bool {
	if user == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Contains(a.emails, user.Email)
}

// Emails returns a copy of the current list.
func (a *AllowList) Emails() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.emails)
}

// Writable reports whether Update can succeed.
func (a *AllowList) Writable() bool { return a.docs != nil }

func (a *AllowList) set(emails []string) {
	if emails == nil {
		emails = []string{}
	}
	a.mu.Lock()
	a.emails = emails
	a.mu.Unlock()
}

func clean(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e != "" && !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

// Seed writes emails as the allow-list document unless one already exists.
// It reports whether the document was written.
func Seed(docs sdk.DocumentStore, collection string, emails []string) (bool, error) {
	_, err := docs.Get(collection, DocID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sdk.ErrDocumentNotFound) && !errors.Is(err, sdk.ErrCollectionNotFound) {
		return false, err
	}
	if err := sdk.Set(docs, collection, DocID, schema.AdminConfig{Emails: clean(emails)}); err != nil {
		return false, err
	}
	return true, nil
}
