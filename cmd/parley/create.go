package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parley-labs/parley/session"
)

var (
	createClientID string
	createPersona  string
	createType     string
	createTags     []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new conversation session",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := session.ParseType(createType)
		if err != nil {
			return err
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		ctx := cmd.Context()
		s, err := eng.Sessions().Create(ctx, createClientID, createPersona, typ, nil)
		if err != nil {
			return err
		}
		if len(createTags) > 0 {
			if err := eng.Sessions().AddTags(ctx, s.ID, createTags...); err != nil {
				return err
			}
		}

		fmt.Printf("Created session %s (client=%s persona=%s type=%s state=%s)\n",
			s.ID, s.ClientID, s.Persona.Name, s.Type, s.State)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createClientID, "client", "", "Client identifier (required)")
	createCmd.Flags().StringVar(&createPersona, "persona", "assistant", "Persona name")
	createCmd.Flags().StringVar(&createType, "type", "", "Session type (standard, initial, followup, assessment, crisis, termination)")
	createCmd.Flags().StringSliceVar(&createTags, "tag", nil, "Tags to attach (repeatable)")
	_ = createCmd.MarkFlagRequired("client")
}
