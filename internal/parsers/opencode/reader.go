package opencode

import (
	"github.com/jmoiron/sqlx"

	"github.com/kandev/tt/internal/db"
	"github.com/kandev/tt/internal/errs"
	"github.com/kandev/tt/internal/ingest"
	"github.com/kandev/tt/internal/store"
)

// Options configures how sessions read from the database are mapped
// onto tt's schema. As with the claudecode parser, stream assignment
// is the caller's concern; this package only normalizes content.
type Options struct {
	StreamID *string
}

// ReadDatabase opens OpenCode's local session database at path
// read-only and normalizes every session, every user message, and
// every tool-call part whose status is completed or error into
// agent_session/user_message/agent_tool_use events. Assistant
// messages and unfinished tool parts produce no event.
func ReadDatabase(path string, opts Options) ([]store.Event, error) {
	raw, err := db.OpenSQLiteReader(path)
	if err != nil {
		return nil, err
	}
	defer raw.Close()

	conn := sqlx.NewDb(raw, "sqlite3")
	return readAll(conn, opts)
}

func readAll(conn *sqlx.DB, opts Options) ([]store.Event, error) {
	var sessions []sessionRow
	if err := conn.Select(&sessions, `SELECT id, project_path, parent_session_id, created_at FROM session`); err != nil {
		return nil, errs.New(errs.StoreIO, "opencode.ReadDatabase", err)
	}

	var messages []messageRow
	if err := conn.Select(&messages, `SELECT id, session_id, role, created_at FROM message ORDER BY created_at`); err != nil {
		return nil, errs.New(errs.StoreIO, "opencode.ReadDatabase", err)
	}

	var parts []partRow
	if err := conn.Select(&parts, `SELECT id, message_id, session_id, type, tool, status, created_at FROM part ORDER BY created_at`); err != nil {
		return nil, errs.New(errs.StoreIO, "opencode.ReadDatabase", err)
	}

	var events []store.Event
	for _, s := range sessions {
		events = append(events, sessionEvent(s, opts))
	}
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		events = append(events, userMessageEvent(m, opts))
	}
	for _, p := range parts {
		if p.Type != PartTypeTool || p.Status == nil {
			continue
		}
		if *p.Status != ToolStatusCompleted && *p.Status != ToolStatusError {
			continue
		}
		events = append(events, toolUseEvent(p, opts))
	}
	return events, nil
}

func withStream(e store.Event, opts Options) store.Event {
	if opts.StreamID != nil {
		e.StreamID = opts.StreamID
		src := store.AssignmentInferred
		e.AssignmentSource = &src
	}
	return e
}

func sessionEvent(s sessionRow, opts Options) store.Event {
	sessionID := s.ID
	sessType := "agent"
	e := store.Event{
		ID:              ingest.EventIDFor(store.EventAgentSession, "opencode", s.CreatedAtMS, sessionID),
		TimestampMS:     s.CreatedAtMS,
		Type:            store.EventAgentSession,
		Source:          "opencode",
		SchemaVersion:   1,
		SessionID:       &sessionID,
		SessionType:     &sessType,
		ParentSessionID: s.ParentSessionID,
		CWD:             s.ProjectPath,
	}
	return withStream(e, opts)
}

func userMessageEvent(m messageRow, opts Options) store.Event {
	sessionID := m.SessionID
	e := store.Event{
		ID:            ingest.EventIDFor(store.EventUserMessage, "opencode", m.CreatedAtMS, sessionID, m.ID),
		TimestampMS:   m.CreatedAtMS,
		Type:          store.EventUserMessage,
		Source:        "opencode",
		SchemaVersion: 1,
		SessionID:     &sessionID,
	}
	return withStream(e, opts)
}

func toolUseEvent(p partRow, opts Options) store.Event {
	sessionID := p.SessionID
	action := ""
	if p.Tool != nil {
		action = *p.Tool
	}
	e := store.Event{
		ID:            ingest.EventIDFor(store.EventAgentToolUse, "opencode", p.CreatedAtMS, sessionID, p.ID),
		TimestampMS:   p.CreatedAtMS,
		Type:          store.EventAgentToolUse,
		Source:        "opencode",
		SchemaVersion: 1,
		SessionID:     &sessionID,
		Action:        &action,
	}
	return withStream(e, opts)
}
