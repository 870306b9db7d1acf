package claudecode

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kandev/tt/internal/ingest"
	"github.com/kandev/tt/internal/store"
)

// Options configures how a transcript is mapped onto tt's schema.
// The caller (the out-of-scope ingest glue, not this package) knows
// the stream a project/session maps to and the session's place in an
// agent/subagent tree; this package only normalizes transcript
// content, per spec.md §1.
type Options struct {
	StreamID        *string
	ParentSessionID *string
}

const maxLineSize = 1 << 20

// ParseFile opens path and parses it as a Claude Code JSONL transcript.
func ParseFile(path string, opts Options) ([]store.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseReader(f, opts)
}

// ParseFileFrom parses path starting at byte offset, so a caller
// tracking a manifest offset (internal/ingest.Manifest) only rescans
// lines appended since the last import instead of the whole
// transcript. It returns the offset to resume from next time.
func ParseFileFrom(path string, offset int64, opts Options) ([]store.Event, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, offset, err
	}
	defer f.Close()

	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return nil, offset, err
		}
	}

	events, err := ParseReader(f, opts)
	if err != nil {
		return events, offset, err
	}

	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return events, offset, err
	}
	return events, pos, nil
}

// ParseReader reads a Claude Code JSONL transcript from r, emitting
// one agent_session lifecycle event per session first observed, one
// user_message event per user turn, and one agent_tool_use event per
// tool_use content block. Malformed lines are skipped, never abort
// the parse, matching spec.md §7's MalformedEvent policy.
func ParseReader(r io.Reader, opts Options) ([]store.Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var events []store.Event
	seenSession := make(map[string]bool)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tl, ok := decodeLine(line)
		if !ok {
			continue
		}
		if tl.SessionID == "" || tl.Timestamp == "" {
			continue
		}
		tsMS, ok := parseTimestamp(tl.Timestamp)
		if !ok {
			continue
		}

		if !seenSession[tl.SessionID] {
			seenSession[tl.SessionID] = true
			events = append(events, sessionLifecycleEvent(tl, tsMS, opts))
		}

		switch tl.Type {
		case LineTypeUser:
			if tl.Message == nil {
				continue
			}
			events = append(events, userMessageEvent(tl, tsMS, opts))

		case LineTypeAssistant:
			if tl.Message == nil {
				continue
			}
			for _, block := range tl.Message.Blocks() {
				if block.Type != BlockTypeToolUse {
					continue
				}
				events = append(events, toolUseEvent(tl, block, tsMS, opts))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return events, err
	}
	return events, nil
}

func decodeLine(line string) (TranscriptLine, bool) {
	var tl TranscriptLine
	if err := json.Unmarshal([]byte(line), &tl); err != nil {
		return TranscriptLine{}, false
	}
	return tl, true
}

func parseTimestamp(s string) (int64, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, false
	}
	return t.UnixMilli(), true
}

func sessionType(tl TranscriptLine) string {
	if tl.IsSidechain {
		return "subagent"
	}
	return "agent"
}

func sessionLifecycleEvent(tl TranscriptLine, tsMS int64, opts Options) store.Event {
	sessionID := tl.SessionID
	sessType := sessionType(tl)
	e := store.Event{
		ID:            ingest.EventIDFor(store.EventAgentSession, "claude", tsMS, sessionID),
		TimestampMS:   tsMS,
		Type:          store.EventAgentSession,
		Source:        "claude",
		SchemaVersion: 1,
		SessionID:     &sessionID,
		SessionType:   &sessType,
	}
	if tl.CWD != "" {
		cwd := tl.CWD
		e.CWD = &cwd
	}
	if opts.ParentSessionID != nil {
		e.ParentSessionID = opts.ParentSessionID
	}
	if opts.StreamID != nil {
		e.StreamID = opts.StreamID
		src := store.AssignmentInferred
		e.AssignmentSource = &src
	}
	return e
}

func userMessageEvent(tl TranscriptLine, tsMS int64, opts Options) store.Event {
	sessionID := tl.SessionID
	id := tl.UUID
	if id == "" {
		id = tl.Timestamp
	}
	e := store.Event{
		ID:            ingest.EventIDFor(store.EventUserMessage, "claude", tsMS, sessionID, id),
		TimestampMS:   tsMS,
		Type:          store.EventUserMessage,
		Source:        "claude",
		SchemaVersion: 1,
		SessionID:     &sessionID,
	}
	if tl.CWD != "" {
		cwd := tl.CWD
		e.CWD = &cwd
	}
	if opts.StreamID != nil {
		e.StreamID = opts.StreamID
		src := store.AssignmentInferred
		e.AssignmentSource = &src
	}
	return e
}

func toolUseEvent(tl TranscriptLine, block ContentBlock, tsMS int64, opts Options) store.Event {
	sessionID := tl.SessionID
	action := block.Name
	e := store.Event{
		ID:            ingest.EventIDFor(store.EventAgentToolUse, "claude", tsMS, sessionID, block.ID),
		TimestampMS:   tsMS,
		Type:          store.EventAgentToolUse,
		Source:        "claude",
		SchemaVersion: 1,
		SessionID:     &sessionID,
		Action:        &action,
	}
	if tl.CWD != "" {
		cwd := tl.CWD
		e.CWD = &cwd
	}
	if opts.StreamID != nil {
		e.StreamID = opts.StreamID
		src := store.AssignmentInferred
		e.AssignmentSource = &src
	}
	return e
}
