// Package ingest implements the three event intake paths: line-oriented
// NDJSON ingest, the typed terminal-focus hook constructor, and
// per-source manifests for incremental parsing.
package ingest

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kandev/tt/internal/errs"
	"github.com/kandev/tt/internal/logging"
	"github.com/kandev/tt/internal/store"
)

// Ingester writes normalized events into the event store.
type Ingester struct {
	store *store.Store
	log   *logging.Logger
}

// New creates an Ingester writing into s.
func New(s *store.Store, log *logging.Logger) *Ingester {
	if log == nil {
		log = logging.Default()
	}
	return &Ingester{store: s, log: log}
}

// Stats summarizes one ingest batch.
type Stats struct {
	LinesRead int
	Inserted  int
	Skipped   int
}

const maxLineSize = 1 << 20

// IngestNDJSON reads one JSON-encoded event per line from r and
// inserts them. Malformed lines are logged and skipped; they never
// abort the batch. Duplicate ids are silently ignored.
func (in *Ingester) IngestNDJSON(r io.Reader) (Stats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var stats Stats
	var batch []store.Event

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.LinesRead++

		var e store.Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			stats.Skipped++
			in.log.Warn("skipping malformed event line", logging.Err(err))
			continue
		}
		if e.ID == "" || e.Type == "" {
			stats.Skipped++
			in.log.Warn("skipping event missing id or type")
			continue
		}
		batch = append(batch, e)
	}
	if err := scanner.Err(); err != nil {
		return stats, errs.New(errs.StoreIO, "ingest.IngestNDJSON", err)
	}

	n, err := in.store.InsertEvents(batch)
	if err != nil {
		return stats, err
	}
	stats.Inserted = n
	return stats, nil
}

// ContentHash derives a deterministic event id from its defining
// fields, so that re-observing the same logical event always
// produces the same id and ingest stays idempotent without a
// coordinating side-channel.
func ContentHash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// EventIDFor builds a content-hash id for an event of type t from
// source at timestampMS, disambiguated by the given extra fields
// (e.g. pane id, session id).
func EventIDFor(t store.EventType, source string, timestampMS int64, extra ...string) string {
	parts := append([]string{string(t), source, fmt.Sprintf("%d", timestampMS)}, extra...)
	return ContentHash(parts...)
}
