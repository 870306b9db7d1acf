package sync_test

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kandev/tt/internal/store"
	"github.com/kandev/tt/internal/sync"
)

func strPtr(s string) *string { return &s }

func TestLogAppendWritesOneEventPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ndjson")
	log, err := sync.OpenLog(path)
	require.NoError(t, err)

	require.NoError(t, log.Append([]store.Event{
		{ID: "e1", TimestampMS: 1000, Type: store.EventTmuxPaneFocus, Source: "tmux", StreamID: strPtr("A")},
		{ID: "e2", TimestampMS: 2000, Type: store.EventTmuxScroll, Source: "tmux"},
	}))
	require.NoError(t, log.Append([]store.Event{
		{ID: "e3", TimestampMS: 3000, Type: store.EventTmuxScroll, Source: "tmux"},
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 3, "each appended event is exactly one line, across separate Append calls")
}

func TestLogAppendEmptyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ndjson")
	log, err := sync.OpenLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Append(nil))

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "an empty append must not create the log file")
}
