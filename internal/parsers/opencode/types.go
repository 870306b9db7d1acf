// Package opencode normalizes OpenCode's on-disk session database
// into tt's event schema. OpenCode itself is driven over a REST +
// SSE API; this package never talks to that API, it only reads the
// local SQLite database OpenCode persists sessions and messages to,
// per spec.md §1's scoping of session parsers as producers.
package opencode

// Role values a message row can carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Part type values, matching the teacher's pkg/opencode/types.go Part
// shape (text, reasoning, tool).
const (
	PartTypeText = "text"
	PartTypeTool = "tool"
)

// Tool status values a part row carries once its tool call has
// finished; parts with any other status are not normalized.
const (
	ToolStatusCompleted = "completed"
	ToolStatusError     = "error"
)

// sessionRow mirrors one row of OpenCode's local `session` table.
type sessionRow struct {
	ID              string  `db:"id"`
	ProjectPath     *string `db:"project_path"`
	ParentSessionID *string `db:"parent_session_id"`
	CreatedAtMS     int64   `db:"created_at"`
}

// messageRow mirrors one row of OpenCode's local `message` table,
// matching the teacher's MessageInfo (ID, SessionID, Role).
type messageRow struct {
	ID          string `db:"id"`
	SessionID   string `db:"session_id"`
	Role        string `db:"role"`
	CreatedAtMS int64  `db:"created_at"`
}

// partRow mirrors one row of OpenCode's local `part` table, matching
// the teacher's Part (Type, Tool, CallID) and ToolStateUpdate (Status).
type partRow struct {
	ID          string  `db:"id"`
	MessageID   string  `db:"message_id"`
	SessionID   string  `db:"session_id"`
	Type        string  `db:"type"`
	Tool        *string `db:"tool"`
	Status      *string `db:"status"`
	CreatedAtMS int64   `db:"created_at"`
}
