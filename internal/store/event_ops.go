package store

import (
	"github.com/kandev/tt/internal/errs"
)

const insertEventSQL = `
INSERT OR IGNORE INTO events (
	id, timestamp_ms, type, source, schema_version,
	cwd, git_project, git_workspace,
	pane_id, tmux_session, window_index, window_app_hint,
	status, idle_duration_ms,
	action, session_id, parent_session_id, session_type,
	stream_id, assignment_source
) VALUES (
	:id, :timestamp_ms, :type, :source, :schema_version,
	:cwd, :git_project, :git_workspace,
	:pane_id, :tmux_session, :window_index, :window_app_hint,
	:status, :idle_duration_ms,
	:action, :session_id, :parent_session_id, :session_type,
	:stream_id, :assignment_source
)`

// InsertEvent inserts a single event, ignoring it if its id already
// exists. Returns true if a new row was stored.
func (s *Store) InsertEvent(e Event) (bool, error) {
	n, err := s.InsertEvents([]Event{e})
	return n == 1, err
}

// InsertEvents inserts a batch of events, ignoring duplicates by id.
// A stream an event references that does not exist yet is created,
// named after its id. Returns the count of rows newly stored.
func (s *Store) InsertEvents(events []Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	tx, err := s.pool.Writer().Beginx()
	if err != nil {
		return 0, errs.New(errs.StoreIO, "store.InsertEvents", err)
	}

	stmt, err := tx.PrepareNamed(insertEventSQL)
	if err != nil {
		tx.Rollback()
		return 0, errs.New(errs.StoreIO, "store.InsertEvents", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range events {
		if e.SchemaVersion == 0 {
			e.SchemaVersion = 1
		}
		if e.StreamID != nil {
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO streams (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
				*e.StreamID, *e.StreamID, e.TimestampMS, e.TimestampMS); err != nil {
				tx.Rollback()
				return 0, errs.New(errs.StoreIO, "store.InsertEvents", err)
			}
		}
		res, err := stmt.Exec(e)
		if err != nil {
			tx.Rollback()
			return 0, errs.New(errs.StoreIO, "store.InsertEvents", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return 0, errs.New(errs.StoreIO, "store.InsertEvents", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, errs.New(errs.StoreIO, "store.InsertEvents", err)
	}
	return inserted, nil
}

// EventsInRange returns events with start <= timestamp_ms <= end,
// ordered by (timestamp, type, id).
func (s *Store) EventsInRange(start, end int64) ([]Event, error) {
	var events []Event
	err := s.pool.Reader().Select(&events,
		`SELECT * FROM events WHERE timestamp_ms >= ? AND timestamp_ms <= ? ORDER BY timestamp_ms, id`,
		start, end)
	if err != nil {
		return nil, errs.New(errs.StoreIO, "store.EventsInRange", err)
	}
	return sortedByTypeOrder(events), nil
}

// EventsByStream returns all events assigned to streamID.
func (s *Store) EventsByStream(streamID string) ([]Event, error) {
	var events []Event
	err := s.pool.Reader().Select(&events,
		`SELECT * FROM events WHERE stream_id = ? ORDER BY timestamp_ms, id`, streamID)
	if err != nil {
		return nil, errs.New(errs.StoreIO, "store.EventsByStream", err)
	}
	return sortedByTypeOrder(events), nil
}

// EventsWithoutStream returns events whose stream_id is still null.
func (s *Store) EventsWithoutStream() ([]Event, error) {
	var events []Event
	err := s.pool.Reader().Select(&events,
		`SELECT * FROM events WHERE stream_id IS NULL ORDER BY timestamp_ms, id`)
	if err != nil {
		return nil, errs.New(errs.StoreIO, "store.EventsWithoutStream", err)
	}
	return events, nil
}

// AssignEventsToStream sets stream_id on eventIDs where currently
// null, recording source. It never overwrites an existing
// user-sourced assignment with an inferred one. A user assignment may
// move an event off a stream it was previously (non-user) assigned
// to; once the move commits, any stream left with zero referencing
// events is deleted, per spec.md §3.2's orphan-destruction invariant.
func (s *Store) AssignEventsToStream(eventIDs []string, streamID string, source AssignmentSource) error {
	if len(eventIDs) == 0 {
		return nil
	}
	tx, err := s.pool.Writer().Beginx()
	if err != nil {
		return errs.New(errs.StoreIO, "store.AssignEventsToStream", err)
	}

	movedFrom := make(map[string]bool)
	for _, id := range eventIDs {
		var current struct {
			StreamID         *string           `db:"stream_id"`
			AssignmentSource *AssignmentSource `db:"assignment_source"`
		}
		if err := tx.Get(&current, `SELECT stream_id, assignment_source FROM events WHERE id = ?`, id); err != nil {
			tx.Rollback()
			return errs.New(errs.StoreIO, "store.AssignEventsToStream", err)
		}

		isUserAssigned := current.StreamID != nil && current.AssignmentSource != nil && *current.AssignmentSource == AssignmentUser
		if current.StreamID != nil && (isUserAssigned || source != AssignmentUser) {
			// Already assigned: only a user assignment may override a
			// non-user one; an inferred/rule assignment never overrides
			// an existing assignment of any provenance.
			continue
		}

		if _, err := tx.Exec(
			`UPDATE events SET stream_id = ?, assignment_source = ? WHERE id = ?`,
			streamID, source, id); err != nil {
			tx.Rollback()
			return errs.New(errs.StoreIO, "store.AssignEventsToStream", err)
		}
		if current.StreamID != nil && *current.StreamID != streamID {
			movedFrom[*current.StreamID] = true
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.New(errs.StoreIO, "store.AssignEventsToStream", err)
	}

	for old := range movedFrom {
		if err := s.DeleteStreamIfOrphaned(old); err != nil {
			return err
		}
	}
	return nil
}

func sortedByTypeOrder(events []Event) []Event {
	// SQL ORDER BY already sorts by (timestamp_ms, id); re-sort with
	// Less to additionally apply the type tie-break rank.
	out := make([]Event, len(events))
	copy(out, events)
	insertionSortByLess(out)
	return out
}

func insertionSortByLess(events []Event) {
	for i := 1; i < len(events); i++ {
		j := i
		for j > 0 && Less(events[j], events[j-1]) {
			events[j], events[j-1] = events[j-1], events[j]
			j--
		}
	}
}
