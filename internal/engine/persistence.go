package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/celerix-dev/auditoria/pkg/schema"
)

// Persistence handles the disk I/O for the MemStore
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
	logger  *slog.Logger

	seqMu sync.Mutex
	// issued and written hold, per collection, the last snapshot sequence
	// handed out and the newest one stored.
	issued  map[string]uint64
	written map[string]uint64
}

// NewPersistence initializes a persistence handler. A nil logger uses slog.Default.
func NewPersistence(dir string, logger *slog.Logger) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Persistence{
		DataDir: dir,
		logger:  logger,
		issued:  make(map[string]uint64),
		written: make(map[string]uint64),
	}, nil
}

// SaveCollection writes a single collection to a JSON file atomically.
func (p *Persistence) SaveCollection(collection string, docs map[string]schema.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(collection, docs)
}

// next returns a new snapshot sequence number for collection.
func (p *Persistence) next(collection string) uint64 {
	p.seqMu.Lock()
	defer p.seqMu.Unlock()
	p.issued[collection]++
	return p.issued[collection]
}

// saveSnapshot writes docs unless a snapshot with a higher sequence number
// was already written for the collection.
func (p *Persistence) saveSnapshot(collection string, seq uint64, docs map[string]schema.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.written[collection] {
		return nil
	}
	if err := p.write(collection, docs); err != nil {
		return err
	}
	p.written[collection] = seq
	return nil
}

// write must be called while holding p.mu.
func (p *Persistence) write(collection string, docs map[string]schema.Document) error {
	filePath := filepath.Join(p.DataDir, fmt.Sprintf("%s.json", collection))
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}

	// Either the old file or the new one survives a crash, never a torn write.
	return os.Rename(tempPath, filePath)
}

// LoadAll returns every collection found in the data directory.
// Unreadable or corrupt files are skipped with a warning.
func (p *Persistence) LoadAll() (map[string]map[string]schema.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	allData := make(map[string]map[string]schema.Document)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}
		collection := strings.TrimSuffix(file.Name(), ".json")

		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			p.logger.Warn("could not read collection file", "file", file.Name(), "error", err)
			continue
		}

		var docs map[string]schema.Document
		if err := json.Unmarshal(content, &docs); err != nil {
			p.logger.Warn("could not unmarshal collection file", "file", file.Name(), "error", err)
			continue
		}
		allData[collection] = docs
	}
	return allData, nil
}
