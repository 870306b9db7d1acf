package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kandev/tt/internal/engine"
	"github.com/kandev/tt/internal/recompute"
)

var (
	recomputeForce      bool
	recomputeWindowFrom int64
	recomputeWindowTo   int64
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Run the allocation engine over dirty streams and write results back",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()

		engineCfg := engine.Config{AttentionWindowMS: cfg.AttentionWindowMS, AgentTimeoutMS: cfg.AgentTimeoutMS}
		ctl := recompute.New(s, engineCfg, log)

		var (
			result recompute.Result
			err    error
		)
		switch {
		case recomputeForce:
			result, err = ctl.RunForce()
		case recomputeWindowFrom != 0 || recomputeWindowTo != 0:
			result, err = ctl.RunWindow(recomputeWindowFrom, recomputeWindowTo)
		default:
			result, err = ctl.RunDirty()
		}
		if err != nil {
			return err
		}

		fmt.Printf("recomputed %d stream(s), %d warning(s)\n", result.StreamsRecomputed, result.Warnings)
		return nil
	},
}

func init() {
	recomputeCmd.Flags().BoolVar(&recomputeForce, "force", false, "recompute every stream, not just dirty ones")
	recomputeCmd.Flags().Int64Var(&recomputeWindowFrom, "from", 0, "recompute streams with events in [from, to] (ms since epoch); pad by attention_window_ms to avoid boundary truncation")
	recomputeCmd.Flags().Int64Var(&recomputeWindowTo, "to", 0, "window end (ms since epoch)")
}
