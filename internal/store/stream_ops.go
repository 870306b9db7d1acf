package store

import (
	"database/sql"

	"github.com/kandev/tt/internal/errs"
)

// CreateStream creates a new stream with the given id and name if one
// does not already exist, returning the existing stream otherwise.
func (s *Store) CreateStream(id, name string, now int64) (Stream, error) {
	existing, err := s.GetStream(id)
	if err == nil {
		return existing, nil
	}
	if !errs.Is(err, errs.MissingReference) {
		return Stream{}, err
	}

	st := Stream{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	_, execErr := s.pool.Writer().Exec(
		`INSERT INTO streams (id, name, created_at, updated_at, time_direct_ms, time_delegated_ms, needs_recompute)
		 VALUES (?, ?, ?, ?, 0, 0, 0)`,
		st.ID, st.Name, st.CreatedAt, st.UpdatedAt)
	if execErr != nil {
		return Stream{}, errs.New(errs.StoreIO, "store.CreateStream", execErr)
	}
	return st, nil
}

// GetStream fetches a stream by id.
func (s *Store) GetStream(id string) (Stream, error) {
	var st Stream
	err := s.pool.Reader().Get(&st, `SELECT * FROM streams WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return Stream{}, errs.New(errs.MissingReference, "store.GetStream", err)
	}
	if err != nil {
		return Stream{}, errs.New(errs.StoreIO, "store.GetStream", err)
	}
	return st, nil
}

// StreamsInRange returns streams with at least one event in [start, end].
func (s *Store) StreamsInRange(start, end int64) ([]Stream, error) {
	var streams []Stream
	err := s.pool.Reader().Select(&streams, `
		SELECT DISTINCT s.* FROM streams s
		JOIN events e ON e.stream_id = s.id
		WHERE e.timestamp_ms >= ? AND e.timestamp_ms <= ?
		ORDER BY s.id`, start, end)
	if err != nil {
		return nil, errs.New(errs.StoreIO, "store.StreamsInRange", err)
	}
	return streams, nil
}

// UpdateStreamTimes writes the engine's computed totals for a stream
// as a single logical update, along with its observed event range.
func (s *Store) UpdateStreamTimes(streamID string, directMS, delegatedMS int64, firstEventAt, lastEventAt int64, now int64) error {
	_, err := s.pool.Writer().Exec(`
		UPDATE streams
		SET time_direct_ms = ?, time_delegated_ms = ?,
		    first_event_at = ?, last_event_at = ?,
		    needs_recompute = 0, updated_at = ?
		WHERE id = ?`,
		directMS, delegatedMS, firstEventAt, lastEventAt, now, streamID)
	if err != nil {
		return errs.New(errs.StoreIO, "store.UpdateStreamTimes", err)
	}
	return nil
}

// MarkStreamsForRecompute flags the given streams as dirty.
func (s *Store) MarkStreamsForRecompute(streamIDs []string) error {
	if len(streamIDs) == 0 {
		return nil
	}
	tx, err := s.pool.Writer().Beginx()
	if err != nil {
		return errs.New(errs.StoreIO, "store.MarkStreamsForRecompute", err)
	}
	for _, id := range streamIDs {
		if _, err := tx.Exec(`UPDATE streams SET needs_recompute = 1 WHERE id = ?`, id); err != nil {
			tx.Rollback()
			return errs.New(errs.StoreIO, "store.MarkStreamsForRecompute", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.New(errs.StoreIO, "store.MarkStreamsForRecompute", err)
	}
	return nil
}

// DirtyStreams returns every stream currently flagged needs_recompute.
func (s *Store) DirtyStreams() ([]Stream, error) {
	var streams []Stream
	err := s.pool.Reader().Select(&streams, `SELECT * FROM streams WHERE needs_recompute = 1 ORDER BY id`)
	if err != nil {
		return nil, errs.New(errs.StoreIO, "store.DirtyStreams", err)
	}
	return streams, nil
}

// AllStreams returns every stream in the registry, used by a forced
// full recompute.
func (s *Store) AllStreams() ([]Stream, error) {
	var streams []Stream
	err := s.pool.Reader().Select(&streams, `SELECT * FROM streams ORDER BY id`)
	if err != nil {
		return nil, errs.New(errs.StoreIO, "store.AllStreams", err)
	}
	return streams, nil
}

// DeleteStreamIfOrphaned deletes streamID once zero events reference
// it, per spec.md §3.2 ("a stream is destroyed only when it becomes
// orphaned"). It is a no-op if the stream still has referencing
// events, or if it no longer exists.
func (s *Store) DeleteStreamIfOrphaned(streamID string) error {
	var count int
	if err := s.pool.Writer().Get(&count, `SELECT COUNT(1) FROM events WHERE stream_id = ?`, streamID); err != nil {
		return errs.New(errs.StoreIO, "store.DeleteStreamIfOrphaned", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.pool.Writer().Beginx()
	if err != nil {
		return errs.New(errs.StoreIO, "store.DeleteStreamIfOrphaned", err)
	}
	if _, err := tx.Exec(`DELETE FROM stream_tags WHERE stream_id = ?`, streamID); err != nil {
		tx.Rollback()
		return errs.New(errs.StoreIO, "store.DeleteStreamIfOrphaned", err)
	}
	if _, err := tx.Exec(`UPDATE agent_sessions SET stream_id = NULL WHERE stream_id = ?`, streamID); err != nil {
		tx.Rollback()
		return errs.New(errs.StoreIO, "store.DeleteStreamIfOrphaned", err)
	}
	if _, err := tx.Exec(`DELETE FROM streams WHERE id = ?`, streamID); err != nil {
		tx.Rollback()
		return errs.New(errs.StoreIO, "store.DeleteStreamIfOrphaned", err)
	}
	if err := tx.Commit(); err != nil {
		return errs.New(errs.StoreIO, "store.DeleteStreamIfOrphaned", err)
	}
	return nil
}

// SweepOrphanedStreams deletes every stream currently referenced by
// zero events. Unlike DeleteStreamIfOrphaned, which targets a single
// stream known to have just lost its last reference, this scans the
// whole registry and is meant to be run periodically (e.g. alongside
// a forced recompute) to catch orphans left by paths other than
// AssignEventsToStream.
func (s *Store) SweepOrphanedStreams() (int, error) {
	var ids []string
	err := s.pool.Reader().Select(&ids, `
		SELECT s.id FROM streams s
		LEFT JOIN events e ON e.stream_id = s.id
		WHERE e.stream_id IS NULL`)
	if err != nil {
		return 0, errs.New(errs.StoreIO, "store.SweepOrphanedStreams", err)
	}
	for _, id := range ids {
		if err := s.DeleteStreamIfOrphaned(id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
