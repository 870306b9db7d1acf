package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kandev/tt/internal/engine"
	"github.com/kandev/tt/internal/store"
)

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }
func statusPtr(s store.AFKStatus) *store.AFKStatus { return &s }

func tmuxFocus(id string, stream string, ts int64) store.Event {
	return store.Event{ID: id, TimestampMS: ts, Type: store.EventTmuxPaneFocus, Source: "tmux", StreamID: strPtr(stream)}
}

func toolUse(id, session, stream string, ts int64) store.Event {
	e := store.Event{ID: id, TimestampMS: ts, Type: store.EventAgentToolUse, Source: "claude", SessionID: strPtr(session)}
	if stream != "" {
		e.StreamID = strPtr(stream)
	}
	return e
}

func cfg60s30m() engine.Config {
	return engine.Config{AttentionWindowMS: 60_000, AgentTimeoutMS: 1_800_000}
}

// Scenario 1: pure focus, no gaps.
func TestScenarioPureFocusNoGaps(t *testing.T) {
	events := []store.Event{
		tmuxFocus("e1", "A", 1000),
		tmuxFocus("e2", "A", 4000),
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	require.Equal(t, int64(3000), totals["A"].DirectMS)
	require.Equal(t, int64(0), totals["A"].DelegatedMS)
}

// Scenario 2: gap cap.
func TestScenarioGapCap(t *testing.T) {
	events := []store.Event{
		tmuxFocus("e1", "A", 0),
		tmuxFocus("e2", "A", 120_000),
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	require.Equal(t, int64(60_000), totals["A"].DirectMS)
}

// Scenario 3: focus switch.
func TestScenarioFocusSwitch(t *testing.T) {
	events := []store.Event{
		tmuxFocus("e1", "A", 0),
		tmuxFocus("e2", "B", 10_000),
		tmuxFocus("e3", "B", 15_000),
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	require.Equal(t, int64(10_000), totals["A"].DirectMS)
	require.Equal(t, int64(5_000), totals["B"].DirectMS)
}

// Scenario 4: AFK retroactive subtraction.
func TestScenarioAFKRetroactive(t *testing.T) {
	events := []store.Event{
		tmuxFocus("e1", "A", 0),
		tmuxFocus("e2", "A", 30_000),
		{
			ID: "e3", TimestampMS: 31_000, Type: store.EventAFKChange, Source: "activitywatch",
			Status: statusPtr(store.AFKStatusNotAFK), IdleDurationMS: i64Ptr(20_000),
		},
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	require.Equal(t, int64(11_000), totals["A"].DirectMS)
}

// Scenario 5: delegated while human is elsewhere.
func TestScenarioDelegatedWhileHumanElsewhere(t *testing.T) {
	events := []store.Event{
		tmuxFocus("e0", "B", 500),
		toolUse("e1", "k", "A", 1000),
		toolUse("e2", "k", "A", 61_000),
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	require.Equal(t, int64(60_000), totals["A"].DelegatedMS)
	require.Equal(t, int64(0), totals["A"].DirectMS)
	require.Greater(t, totals["B"].DirectMS, int64(0))
}

// Scenario 6: single tool use contributes zero delegated time.
func TestScenarioSingleToolUse(t *testing.T) {
	events := []store.Event{
		toolUse("e1", "k", "A", 1000),
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	require.Equal(t, int64(0), totals["A"].DelegatedMS)
}

// A gap between tool uses on the same session larger than
// agent_timeout_ms must end the earlier active interval; the later
// tool use starts a fresh one rather than reopening the first, so
// the intervening gap is never credited as delegated time.
func TestSessionTimeoutSplitsActiveInterval(t *testing.T) {
	events := []store.Event{
		toolUse("e1", "k", "A", 0),
		toolUse("e2", "k", "A", 1_000),
		// 10 hours later: far beyond the 30-minute agent timeout.
		toolUse("e3", "k", "A", 1_000+10*60*60*1000),
		toolUse("e4", "k", "A", 1_000+10*60*60*1000+2_000),
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	// Only the 1-second and 2-second active intervals are credited, not the
	// ~10-hour span between them.
	require.Equal(t, int64(1_000+2_000), totals["A"].DelegatedMS)
}

func TestAFKEventClosesSegmentBeforeUnfocusing(t *testing.T) {
	events := []store.Event{
		tmuxFocus("e1", "A", 0),
		{ID: "e2", TimestampMS: 5000, Type: store.EventAFKChange, Source: "activitywatch", Status: statusPtr(store.AFKStatusAFK)},
		tmuxFocus("e3", "A", 100_000),
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	// Only the [0,5000] segment before the afk transition is credited;
	// the engine only re-establishes focus on a subsequent
	// focus-establishing event, so the gap across the afk period is
	// never summed into a single segment.
	require.Equal(t, int64(5000), totals["A"].DirectMS)
}

func TestNonNegativityAndDeterminism(t *testing.T) {
	events := []store.Event{
		tmuxFocus("e1", "A", 0),
		tmuxFocus("e2", "A", 1000),
		{
			ID: "e3", TimestampMS: 1500, Type: store.EventAFKChange, Source: "activitywatch",
			Status: statusPtr(store.AFKStatusNotAFK), IdleDurationMS: i64Ptr(1_000_000),
		},
	}
	totals1 := engine.Allocate(events, cfg60s30m(), nil)
	totals2 := engine.Allocate(events, cfg60s30m(), nil)
	require.Equal(t, totals1, totals2)
	require.GreaterOrEqual(t, totals1["A"].DirectMS, int64(0))
}

func TestSkipsFocusEventMissingStreamID(t *testing.T) {
	var warnings []engine.Warning
	events := []store.Event{
		{ID: "e1", TimestampMS: 0, Type: store.EventTmuxPaneFocus, Source: "tmux"},
	}
	totals := engine.Allocate(events, cfg60s30m(), func(w engine.Warning) { warnings = append(warnings, w) })
	require.Empty(t, totals)
	require.Len(t, warnings, 1)
	require.Equal(t, "e1", warnings[0].EventID)
}

func TestCapBoundNoSingleGapExceedsAttentionWindow(t *testing.T) {
	events := []store.Event{
		tmuxFocus("e1", "A", 0),
		tmuxFocus("e2", "A", 10_000_000),
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	require.LessOrEqual(t, totals["A"].DirectMS, int64(60_000))
}

func TestDelegationExclusivity(t *testing.T) {
	events := []store.Event{
		tmuxFocus("e0", "A", 0),
		toolUse("e1", "k", "A", 0),
		toolUse("e2", "k", "A", 10_000),
	}
	totals := engine.Allocate(events, cfg60s30m(), nil)
	// The human is focused on A for the entire session window, so no
	// delegated time should accrue to A: direct and delegated time
	// are attributed over disjoint intervals.
	require.Equal(t, int64(0), totals["A"].DelegatedMS)
}
