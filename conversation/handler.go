// Package conversation implements the turn pipeline: one client message in,
// one assistant message out. A turn appends the client message, assembles
// bounded context, calls the generation backend, and records the outcome.
// The client message commits independently of generation — a backend failure
// never rolls it back.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parley-labs/parley/manager"
	"github.com/parley-labs/parley/memory"
	"github.com/parley-labs/parley/observability"
	"github.com/parley-labs/parley/provider"
	"github.com/parley-labs/parley/session"
)

// ErrProvider is returned when the generation backend fails or times out.
// The turn's client message is already persisted when this is returned.
var ErrProvider = errors.New("provider failure")

const (
	defaultProviderTimeout = 2 * time.Minute
	recordTimeout          = 30 * time.Second
)

// Turn is the outcome of one SendMessage call. AssistantMessage is nil when
// generation failed; the client message stands either way.
type Turn struct {
	SessionID        string
	ClientMessage    session.Message
	AssistantMessage *session.Message
}

// Handler orchestrates turns over the session store, a provider registry,
// and the memory collaborator. Stateless apart from its dependencies; all
// session mutation flows through the manager, which serializes per id.
type Handler struct {
	sessions  *manager.Manager
	providers *provider.Registry
	memory    memory.Service
	observer  observability.Observer
	timeout   time.Duration
	params    provider.Params
}

// Option configures a Handler.
type Option func(*Handler)

// WithMemory sets the memory collaborator (default: remembers nothing).
func WithMemory(svc memory.Service) Option {
	return func(h *Handler) { h.memory = svc }
}

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(h *Handler) { h.observer = o }
}

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

// WithParams sets default generation parameters for every turn.
func WithParams(p provider.Params) Option {
	return func(h *Handler) { h.params = p }
}

// NewHandler creates a turn pipeline over the given session store and
// provider registry.
func NewHandler(sessions *manager.Manager, providers *provider.Registry, opts ...Option) *Handler {
	h := &Handler{
		sessions:  sessions,
		providers: providers,
		memory:    memory.NoopService{},
		observer:  observability.NoOpObserver{},
		timeout:   defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SendOption configures a single SendMessage call.
type SendOption func(*sendOptions)

type sendOptions struct {
	backend string
}

// WithBackend routes the turn to a named backend instead of the registry
// default.
func WithBackend(name string) SendOption {
	return func(o *sendOptions) { o.backend = name }
}

// SendMessage runs one turn: resolve the session, append the client message,
// assemble context, generate, and commit the assistant message. On backend
// failure the returned Turn carries the committed client message, the error
// wraps ErrProvider, and the session keeps the state the client append
// produced — there is no rollback.
func (h *Handler) SendMessage(ctx context.Context, sessionID, text string, opts ...SendOption) (*Turn, error) {
	var sendOpts sendOptions
	for _, opt := range opts {
		opt(&sendOpts)
	}

	turn := &Turn{SessionID: sessionID}
	var turnErr error

	err := h.sessions.WithSession(ctx, sessionID, func(s *session.Session) error {
		h.emit(ctx, EventTurnReceived, observability.LevelVerbose, map[string]any{
			"session_id": sessionID,
			"text_len":   len(text),
		})

		// Step 3: commit the client message. Its success is independent of
		// everything after it.
		clientMsg, err := s.Append(session.RoleClient, text, nil)
		if err != nil {
			return err
		}
		if err := h.sessions.PersistAfterMutation(ctx, s); err != nil {
			return err
		}
		turn.ClientMessage = clientMsg

		// Step 4: memory context is best-effort; a failure degrades to an
		// empty block and never aborts the turn.
		memCtx, err := h.memory.Context(ctx, s.ClientID, text)
		if err != nil {
			memCtx = ""
			h.emit(ctx, EventMemoryError, observability.LevelWarning, map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}

		prompt := Assemble(s, text, memCtx)
		h.emit(ctx, EventContextBuilt, observability.LevelVerbose, map[string]any{
			"session_id":       sessionID,
			"context_messages": len(prompt.Messages),
			"memory":           memCtx != "",
		})

		backend, err := h.providers.Get(ctx, sendOpts.backend)
		if err != nil {
			turnErr = fmt.Errorf("%w: %v", ErrProvider, err)
			return nil
		}

		h.emit(ctx, EventGenerating, observability.LevelInfo, map[string]any{
			"session_id": sessionID,
			"backend":    backend.Name(),
		})

		genCtx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		start := time.Now()
		resp, err := backend.Generate(genCtx, &provider.Request{
			SystemPrompt: prompt.System,
			Messages:     prompt.Messages,
			Params:       h.params,
		})
		latency := time.Since(start)

		if err != nil {
			// The client message stays committed; the session keeps the
			// state the append produced.
			h.emit(ctx, EventTurnFailed, observability.LevelWarning, map[string]any{
				"session_id": sessionID,
				"backend":    backend.Name(),
				"latency_ms": latency.Milliseconds(),
				"error":      err.Error(),
			})
			turnErr = fmt.Errorf("%w: %v", ErrProvider, err)
			return nil
		}

		assistantMsg, err := s.Append(session.RoleAssistant, resp.Content, map[string]string{
			"provider":      backend.Name(),
			"model":         resp.Model,
			"latency_ms":    fmt.Sprintf("%d", latency.Milliseconds()),
			"input_tokens":  fmt.Sprintf("%d", resp.Usage.InputTokens),
			"output_tokens": fmt.Sprintf("%d", resp.Usage.OutputTokens),
		})
		if err != nil {
			return err
		}
		if err := h.sessions.PersistAfterMutation(ctx, s); err != nil {
			return err
		}
		turn.AssistantMessage = &assistantMsg

		h.emit(ctx, EventTurnCommitted, observability.LevelInfo, map[string]any{
			"session_id": sessionID,
			"backend":    backend.Name(),
			"model":      resp.Model,
			"latency_ms": latency.Milliseconds(),
		})

		// Step 6: notify memory off the turn's critical path.
		go h.recordTurn(s.ClientID, text, resp.Content)

		return nil
	})
	if err != nil {
		if turn.ClientMessage.ID == "" {
			return nil, err
		}
		return turn, err
	}
	if turnErr != nil {
		return turn, turnErr
	}
	return turn, nil
}

// recordTurn notifies the memory collaborator of a completed exchange.
// Fire-and-forget: failures are observed, never surfaced.
func (h *Handler) recordTurn(clientID, userText, assistantText string) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := h.memory.RecordTurn(ctx, clientID, userText, assistantText); err != nil {
		h.emit(ctx, EventMemoryError, observability.LevelWarning, map[string]any{
			"client_id": clientID,
			"error":     err.Error(),
		})
	}
}

func (h *Handler) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	h.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "conversation.SendMessage",
		Data:      data,
	})
}
