// Package sync implements §6.2's append-only event log: the
// newline-delimited JSON file every machine appends its own events
// to, and the SSH-driven pull that merges a remote machine's log into
// the local store.
package sync

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/kandev/tt/internal/errs"
	"github.com/kandev/tt/internal/store"
)

// Log is the local append-only sync log: one JSON-encoded event per
// line, written in the order events are ingested.
type Log struct {
	path string
	mu   sync.Mutex
}

// OpenLog prepares the sync log at path, creating its containing
// directory if necessary. The file itself is created lazily on first
// append.
func OpenLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errs.New(errs.StoreIO, "sync.OpenLog", err)
	}
	return &Log{path: path}, nil
}

// Append writes events to the log in order, one per line. Appending
// is the only mutation the log ever undergoes; it is never rewritten
// or compacted.
func (l *Log) Append(events []store.Event) error {
	if len(events) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.New(errs.StoreIO, "sync.Log.Append", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return errs.New(errs.StoreIO, "sync.Log.Append", err)
		}
		if _, err := w.Write(data); err != nil {
			return errs.New(errs.StoreIO, "sync.Log.Append", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return errs.New(errs.StoreIO, "sync.Log.Append", err)
		}
	}
	if err := w.Flush(); err != nil {
		return errs.New(errs.StoreIO, "sync.Log.Append", err)
	}
	return nil
}
