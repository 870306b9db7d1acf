// Package store implements the event store and stream registry: the
// persistent, idempotent record of normalized events.
package store

// EventType discriminates the kind of observation an Event carries.
type EventType string

const (
	EventTmuxPaneFocus EventType = "tmux_pane_focus"
	EventTmuxScroll    EventType = "tmux_scroll"
	EventWindowFocus   EventType = "window_focus"
	EventBrowserTab    EventType = "browser_tab"
	EventAFKChange     EventType = "afk_change"
	EventAgentSession  EventType = "agent_session"
	EventAgentToolUse  EventType = "agent_tool_use"
	EventUserMessage   EventType = "user_message"
)

// AFKStatus is the value carried by an afk_change event.
type AFKStatus string

const (
	AFKStatusAFK    AFKStatus = "afk"
	AFKStatusNotAFK AFKStatus = "not-afk"
)

// AssignmentSource records the provenance of an event's stream_id.
type AssignmentSource string

const (
	AssignmentUser     AssignmentSource = "user"
	AssignmentInferred AssignmentSource = "inferred"
	AssignmentRule     AssignmentSource = "rule"
)

// Event is an immutable observation at an instant, normalized to the
// common schema every ingest path and producer writes to.
type Event struct {
	ID            string    `db:"id" json:"id"`
	TimestampMS   int64     `db:"timestamp_ms" json:"timestamp_ms"`
	Type          EventType `db:"type" json:"type"`
	Source        string    `db:"source" json:"source"`
	SchemaVersion int       `db:"schema_version" json:"schema_version"`

	CWD          *string `db:"cwd" json:"cwd,omitempty"`
	GitProject   *string `db:"git_project" json:"git_project,omitempty"`
	GitWorkspace *string `db:"git_workspace" json:"git_workspace,omitempty"`

	PaneID      *string `db:"pane_id" json:"pane_id,omitempty"`
	TmuxSession *string `db:"tmux_session" json:"tmux_session,omitempty"`
	WindowIndex *int    `db:"window_index" json:"window_index,omitempty"`

	// WindowAppHint classifies the focused window for window_focus
	// events: "terminal", "browser", or "other".
	WindowAppHint *string `db:"window_app_hint" json:"window_app_hint,omitempty"`

	Status         *AFKStatus `db:"status" json:"status,omitempty"`
	IdleDurationMS *int64     `db:"idle_duration_ms" json:"idle_duration_ms,omitempty"`

	Action *string `db:"action" json:"action,omitempty"`

	SessionID       *string `db:"session_id" json:"session_id,omitempty"`
	ParentSessionID *string `db:"parent_session_id" json:"parent_session_id,omitempty"`
	SessionType     *string `db:"session_type" json:"session_type,omitempty"`

	StreamID         *string           `db:"stream_id" json:"stream_id,omitempty"`
	AssignmentSource *AssignmentSource `db:"assignment_source" json:"assignment_source,omitempty"`
}

// typeOrder gives the fixed tie-break ordering for events sharing a
// timestamp: afk_change < tmux_pane_focus < window_focus < browser_tab
// < user_message < agent_session < agent_tool_use < tmux_scroll.
var typeOrder = map[EventType]int{
	EventAFKChange:     0,
	EventTmuxPaneFocus: 1,
	EventWindowFocus:   2,
	EventBrowserTab:    3,
	EventUserMessage:   4,
	EventAgentSession:  5,
	EventAgentToolUse:  6,
	EventTmuxScroll:    7,
}

// TypeOrder returns the fixed tie-break rank of an event type, used to
// order events sharing an identical timestamp.
func TypeOrder(t EventType) int {
	if rank, ok := typeOrder[t]; ok {
		return rank
	}
	return len(typeOrder)
}

// Less reports whether a sorts before b under the (timestamp, type,
// id) ordering used throughout the store and the allocation engine.
func Less(a, b Event) bool {
	if a.TimestampMS != b.TimestampMS {
		return a.TimestampMS < b.TimestampMS
	}
	ra, rb := TypeOrder(a.Type), TypeOrder(b.Type)
	if ra != rb {
		return ra < rb
	}
	return a.ID < b.ID
}

// IsFocusEstablishing reports whether an event of this type sets the
// engine's focus state to a specific stream.
func (t EventType) IsFocusEstablishing() bool {
	switch t {
	case EventTmuxPaneFocus, EventWindowFocus, EventBrowserTab, EventUserMessage:
		return true
	default:
		return false
	}
}

// IsActivity reports whether an event of this type counts as activity
// that extends the current focus segment: scroll and tool-use events,
// and every focus-establishing type.
func (t EventType) IsActivity() bool {
	switch t {
	case EventTmuxScroll, EventAgentToolUse:
		return true
	default:
		return t.IsFocusEstablishing()
	}
}
