package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kandev/tt/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest newline-delimited JSON events from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()

		r := os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			r = f
		}

		in := ingest.New(s, log)
		stats, err := in.IngestNDJSON(r)
		if err != nil {
			return err
		}

		if stats.Skipped > 0 {
			fmt.Fprintln(os.Stderr, color.New(color.FgYellow).Sprintf(
				"tt: skipped %d malformed line(s)", stats.Skipped))
		}
		fmt.Printf("read %d line(s), inserted %d new event(s)\n", stats.LinesRead, stats.Inserted)
		return nil
	},
}
