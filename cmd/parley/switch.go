package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch <session-id> <persona>",
	Short: "Switch a session to a different persona",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		s, err := eng.Sessions().SwitchPersona(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Session %s now uses persona %s\n", s.ID, s.Persona.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(switchCmd)
}
