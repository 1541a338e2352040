package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage session tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <session-id> <tag>...",
	Short: "Add tags to a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.Sessions().AddTags(cmd.Context(), args[0], args[1:]...); err != nil {
			return err
		}
		fmt.Printf("Tagged session %s\n", args[0])
		return nil
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove <session-id> <tag>...",
	Short: "Remove tags from a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.Sessions().RemoveTags(cmd.Context(), args[0], args[1:]...); err != nil {
			return err
		}
		fmt.Printf("Untagged session %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRemoveCmd)
}
