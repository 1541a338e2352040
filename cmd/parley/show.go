package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parley-labs/parley/session"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's details and message history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		s, err := eng.Sessions().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}

		fmt.Printf("Session:  %s\n", s.ID)
		fmt.Printf("Client:   %s\n", s.ClientID)
		fmt.Printf("Persona:  %s\n", s.Persona.Name)
		fmt.Printf("Type:     %s\n", s.Type)
		fmt.Printf("State:    %s\n", s.State)
		fmt.Printf("Created:  %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
		if !s.StartTime.IsZero() {
			fmt.Printf("Started:  %s\n", s.StartTime.Format("2006-01-02 15:04:05"))
		}
		if s.EndTime != nil {
			fmt.Printf("Ended:    %s\n", s.EndTime.Format("2006-01-02 15:04:05"))
		}
		if len(s.Tags) > 0 {
			fmt.Printf("Tags:     %v\n", s.Tags)
		}
		fmt.Printf("Messages: %d\n", s.MessageCount())

		for _, msg := range s.Messages {
			fmt.Printf("\n[%s] %s\n%s\n",
				msg.Timestamp.Format("15:04:05"), roleLabel(msg.Role), msg.Content)
		}
		return nil
	},
}

func roleLabel(r session.Role) string {
	switch r {
	case session.RoleClient:
		return "client"
	case session.RoleAssistant:
		return "assistant"
	case session.RoleSystem:
		return "system"
	default:
		return string(r)
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the full session record as JSON")
}
