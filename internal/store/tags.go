package store

import "github.com/kandev/tt/internal/errs"

// AddTag idempotently attaches tag to a stream.
func (s *Store) AddTag(streamID, tag string) error {
	_, err := s.pool.Writer().Exec(
		`INSERT OR IGNORE INTO stream_tags (stream_id, tag) VALUES (?, ?)`, streamID, tag)
	if err != nil {
		return errs.New(errs.StoreIO, "store.AddTag", err)
	}
	return nil
}

// DeleteTag removes tag from a stream, if present.
func (s *Store) DeleteTag(streamID, tag string) error {
	_, err := s.pool.Writer().Exec(
		`DELETE FROM stream_tags WHERE stream_id = ? AND tag = ?`, streamID, tag)
	if err != nil {
		return errs.New(errs.StoreIO, "store.DeleteTag", err)
	}
	return nil
}

// ListTags returns every tag attached to a stream.
func (s *Store) ListTags(streamID string) ([]string, error) {
	var tags []string
	err := s.pool.Reader().Select(&tags,
		`SELECT tag FROM stream_tags WHERE stream_id = ? ORDER BY tag`, streamID)
	if err != nil {
		return nil, errs.New(errs.StoreIO, "store.ListTags", err)
	}
	return tags, nil
}
