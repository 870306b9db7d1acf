package recompute_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kandev/tt/internal/engine"
	"github.com/kandev/tt/internal/recompute"
	"github.com/kandev/tt/internal/store"
)

func strPtr(s string) *string { return &s }

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tt.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunDirtyComputesAndClearsFlag(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateStream("A", "writing tests", 0)
	require.NoError(t, err)

	_, err = s.InsertEvents([]store.Event{
		{ID: "e1", TimestampMS: 0, Type: store.EventTmuxPaneFocus, Source: "tmux", StreamID: strPtr("A")},
		{ID: "e2", TimestampMS: 4000, Type: store.EventTmuxPaneFocus, Source: "tmux", StreamID: strPtr("A")},
	})
	require.NoError(t, err)
	require.NoError(t, s.MarkStreamsForRecompute([]string{"A"}))

	ctl := recompute.New(s, engine.DefaultConfig(), nil)
	result, err := ctl.RunDirty()
	require.NoError(t, err)
	require.Equal(t, 1, result.StreamsRecomputed)

	got, err := s.GetStream("A")
	require.NoError(t, err)
	require.Equal(t, int64(4000), got.TimeDirectMS)
	require.False(t, got.NeedsRecompute)
}

func TestRunDirtyPersistsAgentSessionIndex(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateStream("A", "delegated work", 0)
	require.NoError(t, err)

	_, err = s.InsertEvents([]store.Event{
		{ID: "e1", TimestampMS: 1000, Type: store.EventAgentToolUse, Source: "claude", SessionID: strPtr("s1"), StreamID: strPtr("A")},
		{ID: "e2", TimestampMS: 61000, Type: store.EventAgentToolUse, Source: "claude", SessionID: strPtr("s1"), StreamID: strPtr("A")},
	})
	require.NoError(t, err)
	require.NoError(t, s.MarkStreamsForRecompute([]string{"A"}))

	ctl := recompute.New(s, engine.DefaultConfig(), nil)
	_, err = ctl.RunDirty()
	require.NoError(t, err)

	rec, err := s.GetAgentSession("s1")
	require.NoError(t, err)
	require.Equal(t, int64(1000), rec.FirstToolUseAt)
	require.Equal(t, int64(61000), rec.LastToolUseAt)
	require.Equal(t, "A", *rec.StreamID)
}

func TestRunDirtyNoStreamsIsNoop(t *testing.T) {
	s := openTestStore(t)
	ctl := recompute.New(s, engine.DefaultConfig(), nil)
	result, err := ctl.RunDirty()
	require.NoError(t, err)
	require.Equal(t, 0, result.StreamsRecomputed)
}

func TestRunForceRecomputesEveryStream(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateStream("A", "a", 0)
	require.NoError(t, err)
	_, err = s.CreateStream("B", "b", 0)
	require.NoError(t, err)

	_, err = s.InsertEvents([]store.Event{
		{ID: "e1", TimestampMS: 0, Type: store.EventTmuxPaneFocus, Source: "tmux", StreamID: strPtr("A")},
		{ID: "e2", TimestampMS: 1000, Type: store.EventTmuxPaneFocus, Source: "tmux", StreamID: strPtr("A")},
		{ID: "e3", TimestampMS: 0, Type: store.EventTmuxPaneFocus, Source: "tmux", StreamID: strPtr("B")},
		{ID: "e4", TimestampMS: 2000, Type: store.EventTmuxPaneFocus, Source: "tmux", StreamID: strPtr("B")},
	})
	require.NoError(t, err)

	ctl := recompute.New(s, engine.DefaultConfig(), nil)
	result, err := ctl.RunForce()
	require.NoError(t, err)
	require.Equal(t, 2, result.StreamsRecomputed)

	a, err := s.GetStream("A")
	require.NoError(t, err)
	require.Equal(t, int64(1000), a.TimeDirectMS)

	// Both streams go through one chronological engine pass, so focus
	// alternates B [0,1000] then A [1000,2000]: each gets 1000ms.
	b, err := s.GetStream("B")
	require.NoError(t, err)
	require.Equal(t, int64(1000), b.TimeDirectMS)
}
