package claudecode_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kandev/tt/internal/parsers/claudecode"
	"github.com/kandev/tt/internal/store"
)

func TestParseReaderEmitsSessionUserAndToolUseEvents(t *testing.T) {
	lines := []string{
		`{"type":"user","sessionId":"s1","cwd":"/repo","timestamp":"2026-01-01T00:00:00.000Z","uuid":"u1","message":{"role":"user","content":"fix the bug"}}`,
		`{"type":"assistant","sessionId":"s1","cwd":"/repo","timestamp":"2026-01-01T00:00:05.000Z","uuid":"u2","message":{"role":"assistant","content":[{"type":"text","text":"ok"},{"type":"tool_use","id":"t1","name":"Bash","input":{}}]}}`,
		`not json`,
		``,
	}
	stream := "stream-A"
	events, err := claudecode.ParseReader(strings.NewReader(strings.Join(lines, "\n")), claudecode.Options{StreamID: &stream})
	require.NoError(t, err)

	var sessionEvents, userEvents, toolEvents int
	for _, e := range events {
		switch e.Type {
		case store.EventAgentSession:
			sessionEvents++
			require.Equal(t, "s1", *e.SessionID)
			require.Equal(t, stream, *e.StreamID)
		case store.EventUserMessage:
			userEvents++
			require.Equal(t, int64(1767225600000), e.TimestampMS)
		case store.EventAgentToolUse:
			toolEvents++
			require.Equal(t, "Bash", *e.Action)
			require.Equal(t, int64(1767225605000), e.TimestampMS)
		}
	}
	require.Equal(t, 1, sessionEvents)
	require.Equal(t, 1, userEvents)
	require.Equal(t, 1, toolEvents)
}

func TestParseReaderSkipsLinesMissingSessionOrTimestamp(t *testing.T) {
	lines := []string{
		`{"type":"user","timestamp":"2026-01-01T00:00:00.000Z","message":{"role":"user","content":"no session id"}}`,
		`{"type":"user","sessionId":"s1","message":{"role":"user","content":"no timestamp"}}`,
	}
	events, err := claudecode.ParseReader(strings.NewReader(strings.Join(lines, "\n")), claudecode.Options{})
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestParseFileFromResumesAtOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	line1 := `{"type":"user","sessionId":"s1","timestamp":"2026-01-01T00:00:00.000Z","uuid":"u1","message":{"role":"user","content":"first"}}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(line1), 0o644))

	events, offset, err := claudecode.ParseFileFrom(path, 0, claudecode.Options{})
	require.NoError(t, err)
	require.Len(t, events, 2) // session + user message
	require.Equal(t, int64(len(line1)), offset)

	line2 := `{"type":"user","sessionId":"s1","timestamp":"2026-01-01T00:00:10.000Z","uuid":"u2","message":{"role":"user","content":"second"}}` + "\n"
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(line2)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, _, err = claudecode.ParseFileFrom(path, offset, claudecode.Options{})
	require.NoError(t, err)
	require.Len(t, events, 2) // each ParseReader call tracks first-seen sessions only within itself
	var userEvents int
	for _, e := range events {
		if e.Type == store.EventUserMessage {
			userEvents++
		}
	}
	require.Equal(t, 1, userEvents)
}
