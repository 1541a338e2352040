package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parley-labs/parley/conversation"
)

var sendBackend string

var sendCmd = &cobra.Command{
	Use:   "send <session-id> <message>",
	Short: "Send a client message and print the assistant reply",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		text := strings.Join(args[1:], " ")

		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		var opts []conversation.SendOption
		if sendBackend != "" {
			opts = append(opts, conversation.WithBackend(sendBackend))
		}

		turn, err := eng.Conversations().SendMessage(cmd.Context(), sessionID, text, opts...)
		if err != nil {
			// The client message survives a generation failure.
			if turn != nil && errors.Is(err, conversation.ErrProvider) {
				fmt.Printf("Message recorded, but generation failed: %v\n", err)
			}
			return err
		}

		fmt.Println(turn.AssistantMessage.Content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendBackend, "backend", "", "Named provider backend (default: registry default)")
}
