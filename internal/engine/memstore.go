package engine

import (
	"reflect"
	"sort"
	"sync"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/google/uuid"
)

// MemStore is the thread-safe in-memory document engine.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [collection][documentID]document
	data      map[string]map[string]schema.Document
	persister *Persistence
	wg        sync.WaitGroup
}

// NewMemStore initializes a store.
// It accepts existing data (from LoadAll) and a persister; both may be nil.
func NewMemStore(initialData map[string]map[string]schema.Document, p *Persistence) *MemStore {
	if initialData == nil {
		initialData = make(map[string]map[string]schema.Document)
	}
	return &MemStore{
		data:      initialData,
		persister: p,
	}
}

// Wait waits for all background persistence tasks to complete.
func (m *MemStore) Wait() {
	m.wg.Wait()
}

func (m *MemStore) Get(collection, id string) (schema.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.data[collection]
	if !ok {
		return nil, ErrCollectionNotFound
	}
	doc, ok := docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

func (m *MemStore) Set(collection, id string, doc schema.Document) error {
	if !ValidName(collection) || !ValidName(id) {
		return ErrInvalidName
	}
	m.mu.Lock()
	m.put(collection, id, doc)
	seq, snapshot := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, seq, snapshot)
	return nil
}

// Add stores doc under a new time-ordered id and returns that id.
func (m *MemStore) Add(collection string, doc schema.Document) (string, error) {
	if !ValidName(collection) {
		return "", ErrInvalidName
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.put(collection, id.String(), doc)
	seq, snapshot := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, seq, snapshot)
	return id.String(), nil
}

func (m *MemStore) Delete(collection, id string) error {
	m.mu.Lock()
	docs, ok := m.data[collection]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if _, ok := docs[id]; !ok {
		m.mu.Unlock()
		return nil
	}
	delete(docs, id)
	seq, snapshot := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, seq, snapshot)
	return nil
}

// Query returns the documents whose field equals value, ordered by id.
func (m *MemStore) Query(collection, field string, value any) ([]schema.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []schema.Snapshot{}
	for id, doc := range m.data[collection] {
		if v, ok := doc[field]; ok && reflect.DeepEqual(v, value) {
			out = append(out, schema.Snapshot{ID: id, Data: doc.Clone()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) Collections() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.data))
	for name := range m.data {
		list = append(list, name)
	}
	sort.Strings(list)
	return list, nil
}

// put must be called while holding m.mu.Lock.
func (m *MemStore) put(collection, id string, doc schema.Document) {
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]schema.Document)
	}
	m.data[collection][id] = doc.Clone()
}

// snapshot copies a collection for background persistence, tagged with the
// next sequence number so that out-of-order disk writes never replace newer
// data. It MUST be called while holding m.mu.Lock.
func (m *MemStore) snapshot(collection string) (uint64, map[string]schema.Document) {
	if m.persister == nil {
		return 0, nil
	}
	seq := m.persister.next(collection)
	original := m.data[collection]
	out := make(map[string]schema.Document, len(original))
	for id, doc := range original {
		out[id] = doc.Clone()
	}
	return seq, out
}

func (m *MemStore) persist(collection string, seq uint64, docs map[string]schema.Document) {
	if m.persister == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.persister.saveSnapshot(collection, seq, docs); err != nil {
			m.persister.logger.Error("persist collection", "collection", collection, "error", err)
		}
	}()
}
