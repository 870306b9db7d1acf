package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kandev/tt/internal/ingest"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Typed programmatic ingest paths invoked by environment hooks",
}

var (
	hookPaneID      string
	hookCWD         string
	hookTmuxSession string
	hookWindowIndex int
	hookStreamID    string
)

var hookTmuxFocusCmd = &cobra.Command{
	Use:   "tmux-focus",
	Short: "Record a tmux_pane_focus event for the current pane (spec.md §6.1.2)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()

		e := ingest.NewTmuxPaneFocusEvent(ingest.TmuxFocusArgs{
			PaneID:      hookPaneID,
			CWD:         hookCWD,
			TmuxSession: hookTmuxSession,
			WindowIndex: hookWindowIndex,
			StreamID:    hookStreamID,
			MachineID:   machine.MachineID,
		}, time.Now().UnixMilli())

		inserted, err := s.InsertEvent(e)
		if err != nil {
			return err
		}
		if inserted {
			fmt.Printf("recorded tmux_pane_focus for pane %s\n", hookPaneID)
		}
		return nil
	},
}

func init() {
	hookTmuxFocusCmd.Flags().StringVar(&hookPaneID, "pane-id", "", "tmux pane id")
	hookTmuxFocusCmd.Flags().StringVar(&hookCWD, "cwd", "", "working directory at focus time")
	hookTmuxFocusCmd.Flags().StringVar(&hookTmuxSession, "session", "", "tmux session name")
	hookTmuxFocusCmd.Flags().IntVar(&hookWindowIndex, "window", 0, "tmux window index")
	hookTmuxFocusCmd.Flags().StringVar(&hookStreamID, "stream-id", "", "stream this pane is currently assigned to")
	hookTmuxFocusCmd.MarkFlagRequired("pane-id")

	hookCmd.AddCommand(hookTmuxFocusCmd)
}
