// Package recompute orchestrates running the allocation engine over
// dirty ranges of the event store and writing results back.
package recompute

import (
	"time"

	"github.com/kandev/tt/internal/engine"
	"github.com/kandev/tt/internal/logging"
	"github.com/kandev/tt/internal/session"
	"github.com/kandev/tt/internal/store"
)

// Controller selects dirty streams, loads a consistent event
// snapshot, invokes the allocation engine, and writes results back as
// a single logical update per stream.
type Controller struct {
	store *store.Store
	cfg   engine.Config
	log   *logging.Logger
}

// New creates a Controller over s using cfg's thresholds.
func New(s *store.Store, cfg engine.Config, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.Default()
	}
	return &Controller{store: s, cfg: cfg, log: log}
}

// Result summarizes one recompute pass.
type Result struct {
	StreamsRecomputed int
	Warnings          int
}

// RunDirty recomputes every stream currently flagged needs_recompute.
func (c *Controller) RunDirty() (Result, error) {
	streams, err := c.store.DirtyStreams()
	if err != nil {
		return Result{}, err
	}
	return c.run(streams)
}

// RunWindow recomputes every stream with at least one event in
// [start, end]. Callers should pad the window by at least
// attention_window_ms on both sides to avoid truncation artifacts
// at the boundary (§4.5).
func (c *Controller) RunWindow(start, end int64) (Result, error) {
	streams, err := c.store.StreamsInRange(start, end)
	if err != nil {
		return Result{}, err
	}
	return c.run(streams)
}

// RunForce recomputes every stream in the registry. As a full
// maintenance pass it also sweeps streams orphaned by paths other
// than AssignEventsToStream (spec.md §3.2), before they can be
// confused for legitimate zero-time streams in the recompute below.
func (c *Controller) RunForce() (Result, error) {
	if _, err := c.store.SweepOrphanedStreams(); err != nil {
		return Result{}, err
	}
	streams, err := c.store.AllStreams()
	if err != nil {
		return Result{}, err
	}
	return c.run(streams)
}

func (c *Controller) run(streams []store.Stream) (Result, error) {
	if len(streams) == 0 {
		return Result{}, nil
	}

	// Load a single consistent snapshot spanning every dirty stream's
	// events, so the engine observes one chronological pass instead
	// of one per stream -- this also keeps overlapping agent sessions
	// correctly unioned across stream boundaries.
	var allEvents []store.Event
	seen := make(map[string]bool)
	for _, st := range streams {
		events, err := c.store.EventsByStream(st.ID)
		if err != nil {
			return Result{}, err
		}
		for _, e := range events {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			allEvents = append(allEvents, e)
		}
	}

	warnings := 0
	totals := engine.Allocate(allEvents, c.cfg, func(w engine.Warning) {
		warnings++
		c.log.Warn("skipped event during recompute",
			logging.String("event_id", w.EventID), logging.String("reason", w.Reason))
	})

	bounds := computeBounds(allEvents)
	now := time.Now().UnixMilli()

	for _, st := range streams {
		t := totals[st.ID]
		b := bounds[st.ID]
		if err := c.store.UpdateStreamTimes(st.ID, t.DirectMS, t.DelegatedMS, b.first, b.last, now); err != nil {
			return Result{}, err
		}
	}

	if err := c.store.UpsertAgentSessions(sessionRecords(allEvents, c.cfg.AgentTimeoutMS, now)); err != nil {
		return Result{}, err
	}

	return Result{StreamsRecomputed: len(streams), Warnings: warnings}, nil
}

// sessionRecords builds the agent session index (spec.md §4.2) over
// the same event snapshot the engine just allocated from, and
// converts it to its persisted form. rangeEnd is the wall-clock time
// of the recompute pass: sessions whose last tool use trails it by
// more than the agent timeout are marked ended.
func sessionRecords(events []store.Event, agentTimeoutMS, rangeEnd int64) []store.AgentSessionRecord {
	index := session.BuildIndex(events, agentTimeoutMS, rangeEnd)
	records := make([]store.AgentSessionRecord, 0, len(index))
	for _, info := range index {
		records = append(records, store.AgentSessionRecord{
			SessionID:       info.SessionID,
			FirstToolUseAt:  info.FirstToolUseAt,
			LastToolUseAt:   info.LastToolUseAt,
			Ended:           info.Ended,
			ParentSessionID: info.ParentSessionID,
			Type:            string(info.Type),
			ProjectPath:     info.ProjectPath,
			StreamID:        info.StreamID,
		})
	}
	return records
}

type streamBounds struct {
	first, last int64
}

func computeBounds(events []store.Event) map[string]streamBounds {
	bounds := make(map[string]streamBounds)
	for _, e := range events {
		if e.StreamID == nil {
			continue
		}
		b, ok := bounds[*e.StreamID]
		if !ok {
			b = streamBounds{first: e.TimestampMS, last: e.TimestampMS}
		}
		if e.TimestampMS < b.first {
			b.first = e.TimestampMS
		}
		if e.TimestampMS > b.last {
			b.last = e.TimestampMS
		}
		bounds[*e.StreamID] = b
	}
	return bounds
}
