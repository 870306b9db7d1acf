package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Show this machine's persistent identity (spec.md §6.3)",
}

var identityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the machine id and label tt tags locally-produced events with",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("machine_id: %s\nlabel:      %s\n", machine.MachineID, machine.Label)
		return nil
	},
}

func init() {
	identityCmd.AddCommand(identityShowCmd)
}
