// Package session builds the agent session index: per-session-id
// first/last tool use, parent linkage, and stream association,
// derived from events in a single left-to-right pass.
package session

import (
	"sort"

	"github.com/kandev/tt/internal/store"
)

// Type classifies who drove a session.
type Type string

const (
	TypeUser     Type = "user"
	TypeAgent    Type = "agent"
	TypeSubagent Type = "subagent"
)

// Info is the per-session state the index tracks.
type Info struct {
	SessionID       string
	FirstToolUseAt  int64
	LastToolUseAt   int64
	ToolUseCount    int
	Ended           bool
	ParentSessionID *string
	Type            Type
	ProjectPath     *string
	StreamID        *string
}

// sessionRelevant is the set of event types that update the index.
func sessionRelevant(t store.EventType) bool {
	switch t {
	case store.EventAgentSession, store.EventAgentToolUse, store.EventUserMessage:
		return true
	default:
		return false
	}
}

// BuildIndex folds events left-to-right, building a session_id ->
// Info mapping. rangeEnd is the end of the snapshot the events were
// drawn from; a session is marked Ended if its last tool use precedes
// rangeEnd by more than agentTimeoutMS, per the agent timeout rule.
func BuildIndex(events []store.Event, agentTimeoutMS int64, rangeEnd int64) map[string]*Info {
	ordered := make([]store.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool { return store.Less(ordered[i], ordered[j]) })

	index := make(map[string]*Info)

	for _, e := range ordered {
		if !sessionRelevant(e.Type) || e.SessionID == nil {
			continue
		}
		id := *e.SessionID
		info, ok := index[id]
		if !ok {
			info = &Info{SessionID: id, FirstToolUseAt: e.TimestampMS, LastToolUseAt: e.TimestampMS, Type: TypeAgent}
			index[id] = info
		}
		if e.TimestampMS < info.FirstToolUseAt {
			info.FirstToolUseAt = e.TimestampMS
		}
		if e.TimestampMS > info.LastToolUseAt {
			info.LastToolUseAt = e.TimestampMS
		}
		info.ToolUseCount++

		if e.ParentSessionID != nil {
			info.ParentSessionID = e.ParentSessionID
		}
		if e.SessionType != nil {
			info.Type = Type(*e.SessionType)
		}
		if e.CWD != nil {
			info.ProjectPath = e.CWD
		}
		if info.StreamID == nil && e.StreamID != nil {
			info.StreamID = e.StreamID
		}
	}

	for _, info := range index {
		info.Ended = rangeEnd-info.LastToolUseAt > agentTimeoutMS
	}
	return index
}

// Active reports whether a session contributes delegated time at all:
// it must have at least two tool-use-relevant events (§4.4.4's
// single-tool-use rule) and a non-empty active interval.
func (i *Info) Active() bool {
	return i.ToolUseCount >= 2 && i.LastToolUseAt > i.FirstToolUseAt
}
