package ingest_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kandev/tt/internal/ingest"
	"github.com/kandev/tt/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tt.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIngestNDJSONSkipsMalformedLinesAndContinues(t *testing.T) {
	s := openTestStore(t)
	in := ingest.New(s, nil)

	input := strings.Join([]string{
		`{"id":"e1","timestamp_ms":1000,"type":"tmux_pane_focus","source":"tmux","stream_id":"A"}`,
		`not json at all`,
		`{"id":"e2","timestamp_ms":2000,"type":"tmux_scroll","source":"tmux"}`,
		``,
	}, "\n")

	stats, err := in.IngestNDJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, stats.LinesRead)
	require.Equal(t, 1, stats.Skipped)
	require.Equal(t, 2, stats.Inserted)

	events, err := s.EventsInRange(0, 10000)
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestIngestNDJSONIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	in := ingest.New(s, nil)

	line := `{"id":"e1","timestamp_ms":1000,"type":"tmux_pane_focus","source":"tmux","stream_id":"A"}` + "\n"

	stats, err := in.IngestNDJSON(strings.NewReader(line))
	require.NoError(t, err)
	require.Equal(t, 1, stats.Inserted)

	stats, err = in.IngestNDJSON(strings.NewReader(line))
	require.NoError(t, err)
	require.Equal(t, 0, stats.Inserted)
}

func TestNewTmuxPaneFocusEventIsDeterministic(t *testing.T) {
	args := ingest.TmuxFocusArgs{PaneID: "%1", CWD: "/home/dev", TmuxSession: "main", WindowIndex: 2, StreamID: "A"}
	e1 := ingest.NewTmuxPaneFocusEvent(args, 1000)
	e2 := ingest.NewTmuxPaneFocusEvent(args, 1000)
	require.Equal(t, e1.ID, e2.ID)
	require.Equal(t, store.EventTmuxPaneFocus, e1.Type)
	require.Equal(t, "A", *e1.StreamID)
}

func TestManifestPersistsOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	m, err := ingest.OpenManifest(path)
	require.NoError(t, err)
	require.Equal(t, int64(0), m.Offset("claude"))

	require.NoError(t, m.SetOffset("claude", 4096))

	reloaded, err := ingest.OpenManifest(path)
	require.NoError(t, err)
	require.Equal(t, int64(4096), reloaded.Offset("claude"))
}
