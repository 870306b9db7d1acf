// Package engine implements the allocation engine: the pure function
// that turns a chronologically ordered event sequence into per-stream
// direct and delegated millisecond totals.
package engine

import (
	"sort"

	"github.com/kandev/tt/internal/store"
)

// Config controls the two tunable thresholds the engine applies.
type Config struct {
	AttentionWindowMS int64
	AgentTimeoutMS    int64
}

// DefaultConfig returns the engine's documented default thresholds.
func DefaultConfig() Config {
	return Config{AttentionWindowMS: 60_000, AgentTimeoutMS: 1_800_000}
}

// Totals is the direct/delegated millisecond total credited to one stream.
type Totals struct {
	DirectMS    int64
	DelegatedMS int64
}

// Warning describes a skipped event and why it was skipped. The
// engine never fails on content; it reports skips through Observer.
type Warning struct {
	EventID string
	Reason  string
}

// Observer receives a Warning for every skipped event. A nil Observer
// is valid; warnings are simply dropped.
type Observer func(Warning)

// focusState is the engine's current attention position.
type focusState struct {
	focused      bool
	streamID     string
	lastActivity int64
}

// hierarchy tracks the most recent event of each focus-source kind,
// used to resolve the effective stream when more than one kind of
// focus source is live (§4.4.1's source hierarchy).
type hierarchy struct {
	tmuxStream    string
	tmuxAt        int64
	tmuxSet       bool
	browserStream string
	browserAt     int64
	browserSet    bool
	windowStream  string
	windowAt      int64
	windowSet     bool
	windowHint    string
}

func (h *hierarchy) resolve() (string, bool) {
	switch h.windowHint {
	case "terminal":
		if h.tmuxSet {
			return h.tmuxStream, true
		}
	case "browser":
		if h.browserSet {
			return h.browserStream, true
		}
	default:
		if h.windowSet {
			return h.windowStream, true
		}
	}
	// No window_focus observed yet, or the preferred source for the
	// current window hint is absent: fall back to whichever of
	// tmux/browser is more recent.
	switch {
	case h.tmuxSet && h.browserSet:
		if h.tmuxAt >= h.browserAt {
			return h.tmuxStream, true
		}
		return h.browserStream, true
	case h.tmuxSet:
		return h.tmuxStream, true
	case h.browserSet:
		return h.browserStream, true
	case h.windowSet:
		return h.windowStream, true
	default:
		return "", false
	}
}

type sessionAccum struct {
	// toolUseAt holds every tool-use timestamp for the session, in
	// the order Allocate observes them (chronological, since events
	// are sorted before this loop runs). It drives the timeout split
	// in sessionActiveIntervals below.
	toolUseAt []int64
	streamID  string
	hasStream bool
}

// Allocate computes per-stream direct and delegated totals from
// events under cfg, reporting any skipped events to observer.
func Allocate(events []store.Event, cfg Config, observer Observer) map[string]Totals {
	ordered := make([]store.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool { return store.Less(ordered[i], ordered[j]) })

	warn := func(id, reason string) {
		if observer != nil {
			observer(Warning{EventID: id, Reason: reason})
		}
	}

	focusIntervals := make(map[string][]interval)
	sessions := make(map[string]*sessionAccum)

	var state focusState
	var h hierarchy

	closeSegment := func(s string, ts int64) {
		gap := ts - state.lastActivity
		contribution := gap
		if contribution > cfg.AttentionWindowMS {
			contribution = cfg.AttentionWindowMS
		}
		if contribution > 0 {
			focusIntervals[s] = append(focusIntervals[s], interval{start: ts - contribution, end: ts})
		}
	}

	for _, e := range ordered {
		switch {
		case e.Type == store.EventAFKChange:
			if e.Status == nil {
				warn(e.ID, "afk_change missing status")
				continue
			}
			switch *e.Status {
			case store.AFKStatusAFK:
				if state.focused {
					closeSegment(state.streamID, e.TimestampMS)
					state = focusState{}
				}
			case store.AFKStatusNotAFK:
				d := int64(0)
				if e.IdleDurationMS == nil || *e.IdleDurationMS < 0 {
					warn(e.ID, "afk_change not-afk with negative or missing idle_duration_ms, treated as zero")
				} else {
					d = *e.IdleDurationMS
				}
				if state.focused {
					closeSegment(state.streamID, e.TimestampMS)
					state.lastActivity = e.TimestampMS
					subtractFromStream(focusIntervals, state.streamID, capAt(d, cfg.AttentionWindowMS))
				}
			default:
				warn(e.ID, "afk_change unknown status")
			}

		case e.Type.IsFocusEstablishing():
			if e.StreamID == nil {
				warn(e.ID, "focus-establishing event missing stream_id")
				continue
			}
			var effective string
			switch e.Type {
			case store.EventTmuxPaneFocus:
				h.tmuxStream, h.tmuxAt, h.tmuxSet = *e.StreamID, e.TimestampMS, true
				effective, _ = h.resolve()
			case store.EventBrowserTab:
				h.browserStream, h.browserAt, h.browserSet = *e.StreamID, e.TimestampMS, true
				effective, _ = h.resolve()
			case store.EventWindowFocus:
				h.windowStream, h.windowAt, h.windowSet = *e.StreamID, e.TimestampMS, true
				h.windowHint = windowHint(e)
				effective, _ = h.resolve()
			case store.EventUserMessage:
				effective = *e.StreamID
			}
			if effective == "" {
				effective = *e.StreamID
			}

			if state.focused {
				closeSegment(state.streamID, e.TimestampMS)
			}
			state = focusState{focused: true, streamID: effective, lastActivity: e.TimestampMS}

		case e.Type == store.EventTmuxScroll:
			if state.focused {
				closeSegment(state.streamID, e.TimestampMS)
				state.lastActivity = e.TimestampMS
			}

		case e.Type == store.EventAgentToolUse:
			if e.SessionID == nil {
				warn(e.ID, "agent_tool_use missing session_id")
				continue
			}
			acc, ok := sessions[*e.SessionID]
			if !ok {
				acc = &sessionAccum{}
				sessions[*e.SessionID] = acc
			}
			acc.toolUseAt = append(acc.toolUseAt, e.TimestampMS)
			if !acc.hasStream && e.StreamID != nil {
				acc.streamID = *e.StreamID
				acc.hasStream = true
			}

			if state.focused {
				closeSegment(state.streamID, e.TimestampMS)
				state.lastActivity = e.TimestampMS
			}

		case e.Type == store.EventAgentSession:
			// Lifecycle marker only; it does not itself carry timing
			// relevant to delegated-time accrual beyond what
			// agent_tool_use already records.

		default:
			warn(e.ID, "unrecognized event type")
		}
	}

	totals := make(map[string]Totals)
	for s, ivs := range focusIntervals {
		t := totals[s]
		t.DirectMS = measure(ivs)
		totals[s] = t
	}

	bySession := make(map[string][]interval)
	for _, acc := range sessions {
		if !acc.hasStream {
			continue
		}
		bySession[acc.streamID] = append(bySession[acc.streamID], sessionActiveIntervals(acc.toolUseAt, cfg.AgentTimeoutMS)...)
	}

	for s, ivs := range bySession {
		active := mergeIntervals(ivs)
		delegated := subtractIntervals(active, focusIntervals[s])
		t := totals[s]
		t.DelegatedMS = measure(delegated)
		totals[s] = t
	}

	return totals
}

func capAt(v, max int64) int64 {
	if v > max {
		return max
	}
	return v
}

// sessionActiveIntervals splits a session's tool-use timestamps into
// timeout-bounded active intervals per §4.4.4: consecutive tool uses
// less than agentTimeoutMS apart stay in the same active interval;
// a larger gap ends that interval at the prior tool use and starts a
// new one at the next, so activity on the far side of a timeout gap
// never reopens or extends the earlier interval. A cluster holding
// only one tool use contributes no interval, matching the
// single-tool-use rule.
func sessionActiveIntervals(toolUseAt []int64, agentTimeoutMS int64) []interval {
	if len(toolUseAt) < 2 {
		return nil
	}
	ts := make([]int64, len(toolUseAt))
	copy(ts, toolUseAt)
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	var out []interval
	start, prev := ts[0], ts[0]
	for _, t := range ts[1:] {
		if t-prev > agentTimeoutMS {
			if prev > start {
				out = append(out, interval{start: start, end: prev})
			}
			start = t
		}
		prev = t
	}
	if prev > start {
		out = append(out, interval{start: start, end: prev})
	}
	return out
}

// subtractFromStream retroactively removes sub milliseconds of
// credited direct time from stream streamID, eating backward through
// its most recently accrued intervals first, and never driving the
// stream's total below zero.
func subtractFromStream(focusIntervals map[string][]interval, streamID string, sub int64) {
	ivs := focusIntervals[streamID]
	remaining := sub
	for i := len(ivs) - 1; i >= 0 && remaining > 0; i-- {
		length := ivs[i].length()
		if length <= remaining {
			remaining -= length
			ivs[i].start = ivs[i].end
			continue
		}
		ivs[i].start = ivs[i].end - (length - remaining)
		remaining = 0
	}
}

// windowHint extracts the application hint a window_focus event
// carries (terminal/browser/other), defaulting to "other" if absent.
func windowHint(e store.Event) string {
	if e.WindowAppHint != nil && *e.WindowAppHint != "" {
		return *e.WindowAppHint
	}
	return "other"
}
