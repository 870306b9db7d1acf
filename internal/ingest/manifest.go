package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/kandev/tt/internal/errs"
)

// Manifest tracks byte offsets per source so incremental parsers
// (session log readers, the tmux hook log) can resume instead of
// re-reading from the start on every invocation.
type Manifest struct {
	path    string
	mu      sync.Mutex
	offsets map[string]int64
}

// OpenManifest loads the manifest at path, treating a missing file as
// an empty manifest.
func OpenManifest(path string) (*Manifest, error) {
	m := &Manifest{path: path, offsets: make(map[string]int64)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, errs.New(errs.StoreIO, "ingest.OpenManifest", err)
	}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m.offsets); err != nil {
		return nil, errs.New(errs.StoreIO, "ingest.OpenManifest", err)
	}
	return m, nil
}

// Offset returns the last recorded byte offset for sourceKey, or 0 if
// none is recorded yet.
func (m *Manifest) Offset(sourceKey string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offsets[sourceKey]
}

// SetOffset records the byte offset reached for sourceKey and
// persists the manifest to disk.
func (m *Manifest) SetOffset(sourceKey string, offset int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offsets[sourceKey] = offset
	return m.save()
}

func (m *Manifest) save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return errs.New(errs.StoreIO, "ingest.Manifest.save", err)
	}
	data, err := json.MarshalIndent(m.offsets, "", "  ")
	if err != nil {
		return errs.New(errs.StoreIO, "ingest.Manifest.save", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return errs.New(errs.StoreIO, "ingest.Manifest.save", err)
	}
	return nil
}
