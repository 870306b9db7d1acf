package opencode_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kandev/tt/internal/db"
	"github.com/kandev/tt/internal/parsers/opencode"
	"github.com/kandev/tt/internal/store"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opencode.db")

	conn, err := db.OpenSQLite(path)
	require.NoError(t, err)

	_, err = conn.Exec(`
		CREATE TABLE session (id TEXT PRIMARY KEY, project_path TEXT, parent_session_id TEXT, created_at INTEGER);
		CREATE TABLE message (id TEXT PRIMARY KEY, session_id TEXT, role TEXT, created_at INTEGER);
		CREATE TABLE part (id TEXT PRIMARY KEY, message_id TEXT, session_id TEXT, type TEXT, tool TEXT, status TEXT, created_at INTEGER);

		INSERT INTO session (id, project_path, parent_session_id, created_at) VALUES ('s1', '/repo', NULL, 1000);
		INSERT INTO message (id, session_id, role, created_at) VALUES ('m1', 's1', 'user', 1000);
		INSERT INTO message (id, session_id, role, created_at) VALUES ('m2', 's1', 'assistant', 2000);
		INSERT INTO part (id, message_id, session_id, type, tool, status, created_at) VALUES ('p1', 'm2', 's1', 'tool', 'bash', 'completed', 2500);
		INSERT INTO part (id, message_id, session_id, type, tool, status, created_at) VALUES ('p2', 'm2', 's1', 'tool', 'bash', 'pending', 3000);
	`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	return path
}

func TestReadDatabaseEmitsSessionUserAndCompletedToolUseEvents(t *testing.T) {
	path := seedDatabase(t)
	stream := "stream-A"

	events, err := opencode.ReadDatabase(path, opencode.Options{StreamID: &stream})
	require.NoError(t, err)

	var sessionEvents, userEvents, toolEvents int
	for _, e := range events {
		require.Equal(t, stream, *e.StreamID)
		switch e.Type {
		case store.EventAgentSession:
			sessionEvents++
		case store.EventUserMessage:
			userEvents++
		case store.EventAgentToolUse:
			toolEvents++
			require.Equal(t, "bash", *e.Action)
		}
	}
	require.Equal(t, 1, sessionEvents)
	require.Equal(t, 1, userEvents)
	require.Equal(t, 1, toolEvents, "the pending part must not be normalized into an event")
}
