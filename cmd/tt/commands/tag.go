package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Idempotent stream tag operations (spec.md §4.1)",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <stream-id> <tag>",
	Args:  cobra.ExactArgs(2),
	Short: "Attach a tag to a stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()
		return s.AddTag(args[0], args[1])
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove <stream-id> <tag>",
	Args:  cobra.ExactArgs(2),
	Short: "Remove a tag from a stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()
		return s.DeleteTag(args[0], args[1])
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list <stream-id>",
	Args:  cobra.ExactArgs(1),
	Short: "List a stream's tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()
		tags, err := s.ListTags(args[0])
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(tags, ", "))
		return nil
	},
}

func init() {
	tagCmd.AddCommand(tagAddCmd, tagRemoveCmd, tagListCmd)
}
