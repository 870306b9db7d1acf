package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kandev/tt/internal/ingest"
	"github.com/kandev/tt/internal/parsers/claudecode"
	"github.com/kandev/tt/internal/parsers/opencode"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import normalized events from out-of-scope session log producers",
}

var importStreamID string

var importClaudeCodeCmd = &cobra.Command{
	Use:   "claude-code <transcript.jsonl>",
	Short: "Normalize a Claude Code JSONL transcript into agent_session/agent_tool_use/user_message events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()

		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		m, err := ingest.OpenManifest(manifestPath())
		if err != nil {
			return err
		}

		events, offset, err := claudecode.ParseFileFrom(path, m.Offset(path), claudecode.Options{StreamID: streamPtr(importStreamID)})
		if err != nil {
			return err
		}
		n, err := s.InsertEvents(events)
		if err != nil {
			return err
		}
		if err := m.SetOffset(path, offset); err != nil {
			return err
		}
		fmt.Printf("parsed %d event(s), inserted %d new event(s)\n", len(events), n)
		return nil
	},
}

var importOpenCodeCmd = &cobra.Command{
	Use:   "opencode <database>",
	Short: "Normalize OpenCode's local session database into agent_session/agent_tool_use/user_message events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()

		events, err := opencode.ReadDatabase(args[0], opencode.Options{StreamID: streamPtr(importStreamID)})
		if err != nil {
			return err
		}
		n, err := s.InsertEvents(events)
		if err != nil {
			return err
		}
		fmt.Printf("parsed %d event(s), inserted %d new event(s)\n", len(events), n)
		return nil
	},
}

func streamPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func init() {
	for _, c := range []*cobra.Command{importClaudeCodeCmd, importOpenCodeCmd} {
		c.Flags().StringVar(&importStreamID, "stream", "", "stream to assign the imported session's events to")
	}
	importCmd.AddCommand(importClaudeCodeCmd)
	importCmd.AddCommand(importOpenCodeCmd)
}
