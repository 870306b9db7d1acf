package store

import "github.com/kandev/tt/internal/errs"

// AgentSessionRecord is the persisted form of the agent session
// index (spec.md §3.4, §4.2): it is fully recomputable from events,
// so persisting it is purely an optimization for readers that want
// session metadata without re-folding the event log.
type AgentSessionRecord struct {
	SessionID       string  `db:"session_id"`
	FirstToolUseAt  int64   `db:"first_tool_use_at"`
	LastToolUseAt   int64   `db:"last_tool_use_at"`
	Ended           bool    `db:"ended"`
	ParentSessionID *string `db:"parent_session_id"`
	Type            string  `db:"type"`
	ProjectPath     *string `db:"project_path"`
	StreamID        *string `db:"stream_id"`
}

const upsertAgentSessionSQL = `
INSERT INTO agent_sessions (
	session_id, first_tool_use_at, last_tool_use_at, ended,
	parent_session_id, type, project_path, stream_id
) VALUES (
	:session_id, :first_tool_use_at, :last_tool_use_at, :ended,
	:parent_session_id, :type, :project_path, :stream_id
)
ON CONFLICT (session_id) DO UPDATE SET
	first_tool_use_at = excluded.first_tool_use_at,
	last_tool_use_at = excluded.last_tool_use_at,
	ended = excluded.ended,
	parent_session_id = excluded.parent_session_id,
	type = excluded.type,
	project_path = excluded.project_path,
	stream_id = excluded.stream_id`

// UpsertAgentSessions writes the agent session index's current state
// for every record given, as a single logical update per session.
func (s *Store) UpsertAgentSessions(records []AgentSessionRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.pool.Writer().Beginx()
	if err != nil {
		return errs.New(errs.StoreIO, "store.UpsertAgentSessions", err)
	}

	stmt, err := tx.PrepareNamed(upsertAgentSessionSQL)
	if err != nil {
		tx.Rollback()
		return errs.New(errs.StoreIO, "store.UpsertAgentSessions", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r); err != nil {
			tx.Rollback()
			return errs.New(errs.StoreIO, "store.UpsertAgentSessions", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.New(errs.StoreIO, "store.UpsertAgentSessions", err)
	}
	return nil
}

// GetAgentSession fetches a persisted agent session record by id.
func (s *Store) GetAgentSession(sessionID string) (AgentSessionRecord, error) {
	var rec AgentSessionRecord
	err := s.pool.Reader().Get(&rec, `SELECT * FROM agent_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return AgentSessionRecord{}, errs.New(errs.MissingReference, "store.GetAgentSession", err)
	}
	return rec, nil
}
