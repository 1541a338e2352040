package conversation

import (
	"github.com/parley-labs/parley/provider"
	"github.com/parley-labs/parley/session"
)

// Prompt is the bounded context assembled for one generation call.
type Prompt struct {
	System   string
	Messages []provider.ChatMessage
}

// Assemble builds the prompt for a turn: the persona system prompt (plus
// style framing and a labeled memory block when present) and the session's
// history filtered of INTERNAL messages, truncated to the most recent
// Config.MaxHistory entries oldest-first, with the pending client text as
// the final user entry.
//
// If the pending text has already been appended as the session's last client
// message it is lifted out before truncation, so the window applies to prior
// messages only and a zero window sends just the pending message. A negative
// window disables truncation.
func Assemble(s *session.Session, pendingClientText, memoryContext string) Prompt {
	system := s.Persona.Descriptor.SystemPrompt
	if style := s.Persona.Descriptor.ConversationStyle; style != "" {
		system += "\n\n" + style
	}
	if memoryContext != "" {
		system += "\n\n[Memory]\n" + memoryContext
	}

	history := make([]provider.ChatMessage, 0, len(s.Messages))
	for _, msg := range s.Messages {
		if msg.Role == session.RoleInternal {
			continue
		}
		history = append(history, provider.ChatMessage{
			Role:    wireRole(msg.Role),
			Content: msg.Content,
		})
	}

	// The pipeline persists the client message before assembling; drop that
	// trailing entry here and re-append it after windowing.
	if pendingClientText != "" && len(history) > 0 {
		last := history[len(history)-1]
		if last.Role == provider.RoleUser && last.Content == pendingClientText {
			history = history[:len(history)-1]
		}
	}

	if max := s.Config.MaxHistory; max >= 0 && len(history) > max {
		history = history[len(history)-max:]
	}

	if pendingClientText != "" {
		history = append(history, provider.ChatMessage{
			Role:    provider.RoleUser,
			Content: pendingClientText,
		})
	}

	return Prompt{System: system, Messages: history}
}

func wireRole(r session.Role) string {
	switch r {
	case session.RoleClient:
		return provider.RoleUser
	case session.RoleAssistant:
		return provider.RoleAssistant
	default:
		return provider.RoleSystem
	}
}
