// Package provider abstracts AI generation backends behind a single Generate
// call. The conversation core depends only on the Provider interface; concrete
// backends (Anthropic, Gemini, mock) are resolved by name through a Registry
// at composition time.
package provider

import (
	"context"
	"errors"
)

// Sentinel errors for generation calls.
var (
	ErrNotFound      = errors.New("provider not found")
	ErrEmptyResponse = errors.New("empty response from backend")
)

// Chat message roles on the provider wire. The session model's CLIENT role
// maps to RoleUser here.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of the bounded context sent to a backend.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Params are per-request generation knobs.
type Params struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Request is a single generation request: a system prompt plus the windowed
// conversation, oldest first.
type Request struct {
	SystemPrompt string
	Messages     []ChatMessage
	Params       Params
}

// Usage reports token consumption for a generation call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the outcome of a successful generation call.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Provider generates the next assistant turn for an assembled context.
// Implementations must be safe for concurrent use and must honor context
// cancellation.
type Provider interface {
	// Name identifies the backend (e.g. "anthropic", "gemini", "mock").
	Name() string
	// Generate produces a completion for the request.
	Generate(ctx context.Context, req *Request) (*Response, error)
}
