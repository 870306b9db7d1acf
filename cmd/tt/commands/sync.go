package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kandev/tt/internal/ingest"
	"github.com/kandev/tt/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Remote synchronization over the append-only event log (spec.md §6.2)",
}

var (
	syncUser       string
	syncIdentity   string
	syncRemotePath string
	syncPort       int
)

var syncPullCmd = &cobra.Command{
	Use:   "pull <host>",
	Short: "SSH-pull a remote machine's append-only event log and ingest it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()

		in := ingest.New(s, log)
		stats, err := sync.Pull(sync.PullConfig{
			Host:         args[0],
			Port:         syncPort,
			User:         syncUser,
			IdentityFile: syncIdentity,
			RemotePath:   syncRemotePath,
		}, in)
		if err != nil {
			return err
		}

		fmt.Printf("pulled %d line(s), inserted %d new event(s)\n", stats.LinesRead, stats.Inserted)
		return nil
	},
}

func init() {
	syncPullCmd.Flags().StringVar(&syncUser, "user", "", "SSH user")
	syncPullCmd.Flags().StringVar(&syncIdentity, "identity", "", "path to the SSH private key")
	syncPullCmd.Flags().StringVar(&syncRemotePath, "remote-path", "", "path to the remote events.ndjson")
	syncPullCmd.Flags().IntVar(&syncPort, "port", 22, "SSH port")
	syncPullCmd.MarkFlagRequired("user")
	syncPullCmd.MarkFlagRequired("identity")
	syncPullCmd.MarkFlagRequired("remote-path")

	syncCmd.AddCommand(syncPullCmd)
}
