package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parley-labs/parley/session"
)

var transitionCmd = &cobra.Command{
	Use:   "transition <session-id> <event>",
	Short: "Apply a lifecycle event to a session",
	Long: `Apply a lifecycle event to a session.

Events: start, pause, resume, complete, cancel.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := session.ParseEvent(args[1])
		if err != nil {
			return err
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		s, err := eng.Sessions().Transition(cmd.Context(), args[0], event)
		if err != nil {
			return err
		}

		fmt.Printf("Session %s is now %s\n", s.ID, s.State)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transitionCmd)
}
