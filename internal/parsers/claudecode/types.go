// Package claudecode normalizes Claude Code's on-disk JSONL session
// transcripts into tt's event schema. Claude Code itself is driven
// over a separate stream-json stdio protocol; this package only ever
// reads the transcript files it leaves behind under
// ~/.claude/projects/<project>/<session>.jsonl, never the live
// protocol, per spec.md §1's scoping of session parsers as producers.
package claudecode

import "encoding/json"

// Transcript line types. Claude Code writes one JSON object per turn;
// "summary" lines are compaction markers and carry no tool-use or
// message content worth normalizing.
const (
	LineTypeUser      = "user"
	LineTypeAssistant = "assistant"
	LineTypeSummary   = "summary"
)

// Content block types within a message, shared between user and
// assistant lines.
const (
	BlockTypeText       = "text"
	BlockTypeThinking   = "thinking"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
)

// TranscriptLine is one line of a Claude Code JSONL transcript.
type TranscriptLine struct {
	Type        string       `json:"type"`
	UUID        string       `json:"uuid,omitempty"`
	ParentUUID  string       `json:"parentUuid,omitempty"`
	SessionID   string       `json:"sessionId"`
	CWD         string       `json:"cwd,omitempty"`
	Timestamp   string       `json:"timestamp"`
	IsSidechain bool         `json:"isSidechain,omitempty"`
	Message     *MessageBody `json:"message,omitempty"`
}

// MessageBody mirrors the content shape Claude Code's live
// stream-json protocol also uses (teacher pkg/claudecode/types.go's
// AssistantMessage/ContentBlock), since both the stdio protocol and
// the on-disk transcript serialize the same Anthropic message format.
type MessageBody struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ContentBlock is one block of a message's content array.
type ContentBlock struct {
	Type string `json:"type"`

	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`

	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	ToolUseID string `json:"tool_use_id,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// Blocks parses Content as a content-block array. Returns nil if
// Content is a plain string (the common shape for simple user turns).
func (m *MessageBody) Blocks() []ContentBlock {
	if len(m.Content) == 0 {
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(m.Content, &blocks); err != nil {
		return nil
	}
	return blocks
}

// Text parses Content as a plain string, the shape a bare user prompt
// takes when it carries no tool results.
func (m *MessageBody) Text() string {
	if len(m.Content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(m.Content, &s); err != nil {
		return ""
	}
	return s
}
