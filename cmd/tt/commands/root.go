// Package commands implements tt's command-line surface: the minimal
// CLI needed to exercise the core (ingest, hook, recompute, sync,
// import, db, tag), not a designed product UX (spec.md Non-goals).
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kandev/tt/internal/config"
	"github.com/kandev/tt/internal/identity"
	"github.com/kandev/tt/internal/logging"
	"github.com/kandev/tt/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	cfgDir  string
	cfg     *config.Config
	log     *logging.Logger
	machine *identity.Identity
)

var rootCmd = &cobra.Command{
	Use:     "tt",
	Short:   "tt is a passive time tracker for terminal and agent workflows",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadWithPath(cfgDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tt: loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded

		l, err := logging.New(cfg.Logging)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tt: initializing logger: %v\n", err)
			os.Exit(1)
		}
		log = l
		logging.SetDefault(l)

		id, err := identity.Load(filepath.Join(filepath.Dir(cfg.DatabasePath), "identity.json"), identity.DefaultLabel())
		if err != nil {
			fmt.Fprintf(os.Stderr, "tt: loading machine identity: %v\n", err)
			os.Exit(1)
		}
		machine = id
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", "", "directory to search for config.toml ahead of the default location")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(identityCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openStore opens the configured event store or exits the process
// with an actionable message -- in particular, a schema version
// mismatch is fatal for open, per spec.md §4.1.
func openStore() *store.Store {
	s, err := store.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tt: opening store at %s: %v\n", cfg.DatabasePath, err)
		os.Exit(1)
	}
	return s
}

// manifestPath is where per-source ingest offsets (spec.md §6.3) are
// tracked: one JSON file in the state directory, outside the database.
func manifestPath() string {
	return filepath.Join(config.StateDir(), "ingest-manifest.json")
}
