package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kandev/tt/internal/store"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Event store administration",
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Open the store and report its schema version (spec.md §4.1)",
	RunE: func(cmd *cobra.Command, args []string) error {
		// store.Open already enforces the fatal version-mismatch policy;
		// reaching here means the store is healthy.
		s := openStore()
		defer s.Close()
		fmt.Printf("store at %s: schema version %d (ok)\n", cfg.DatabasePath, store.CurrentSchemaVersion)
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbCheckCmd)
}
