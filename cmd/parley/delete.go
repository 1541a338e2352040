package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		existed, err := eng.Sessions().Delete(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !existed {
			fmt.Printf("No session %s\n", args[0])
			return nil
		}
		fmt.Printf("Deleted session %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
