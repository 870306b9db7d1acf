package ingest

import "github.com/kandev/tt/internal/store"

// TmuxFocusArgs are the fields the terminal focus hook passes in.
type TmuxFocusArgs struct {
	PaneID      string
	CWD         string
	TmuxSession string
	WindowIndex int
	StreamID    string

	// MachineID, if set, is folded into the event's id so that two
	// machines independently observing what looks like the same pane
	// at the same millisecond (e.g. identical tmux session/pane
	// naming on two laptops) never collide once their logs are merged
	// by sync (§6.2). Left empty, ids are stable per machine but not
	// guaranteed unique across machines.
	MachineID string
}

// NewTmuxPaneFocusEvent constructs a tmux_pane_focus event from a
// hook invocation and the current time, per §6.1's typed
// programmatic ingest path.
func NewTmuxPaneFocusEvent(args TmuxFocusArgs, nowMS int64) store.Event {
	id := EventIDFor(store.EventTmuxPaneFocus, "tmux", nowMS, args.PaneID, args.TmuxSession, args.MachineID)
	windowIndex := args.WindowIndex
	return store.Event{
		ID:            id,
		TimestampMS:   nowMS,
		Type:          store.EventTmuxPaneFocus,
		Source:        "tmux",
		SchemaVersion: 1,
		CWD:           strPtrIfSet(args.CWD),
		PaneID:        strPtrIfSet(args.PaneID),
		TmuxSession:   strPtrIfSet(args.TmuxSession),
		WindowIndex:   &windowIndex,
		StreamID:      strPtrIfSet(args.StreamID),
	}
}

func strPtrIfSet(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
