package sdk

import (
	"github.com/celerix-dev/auditoria/internal/engine"
	"github.com/celerix-dev/auditoria/pkg/schema"
)

var (
	// ErrCollectionNotFound is returned when a requested collection does not exist.
	ErrCollectionNotFound = engine.ErrCollectionNotFound
	// ErrDocumentNotFound is returned when a requested document does not exist.
	ErrDocumentNotFound = engine.ErrDocumentNotFound
	// ErrInvalidName is returned for collection names or ids the store rejects.
	ErrInvalidName = engine.ErrInvalidName
)

// --- Functional Interfaces (Interface Segregation) ---

// DocReader reads single documents.
type DocReader interface {
	Get(collection, id string) (schema.Document, error)
}

// DocWriter creates, overwrites and deletes documents.
type DocWriter interface {
	Set(collection, id string, doc schema.Document) error
	Add(collection string, doc schema.Document) (string, error)
	Delete(collection, id string) error
}

// Querier finds documents by field equality.
type Querier interface {
	Query(collection, field string, value any) ([]schema.Snapshot, error)
}

// CollectionLister enumerates collections.
type CollectionLister interface {
	Collections() ([]string, error)
}

// Pinger is implemented by stores that live behind a connection.
type Pinger interface {
	Ping() error
}

// --- Composite Interfaces ---

// DocumentStore is implemented by both the embedded engine and the remote Client.
type DocumentStore interface {
	DocReader
	DocWriter
	Querier
	CollectionLister
}
