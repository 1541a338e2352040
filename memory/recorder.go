package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/parley-labs/parley/store"
)

const (
	// collection holds one record per client: the JSON turn log.
	collection = "memory"

	defaultWindow   = 5
	defaultCapacity = 200
)

// turn is one recorded client/assistant exchange.
type turn struct {
	UserText      string    `json:"user_text"`
	AssistantText string    `json:"assistant_text"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// StoreRecorder is a Service that persists turns through a store.Store and
// answers Context with the most recent exchanges for the client. Retrieval is
// recency-only; no relevance ranking is applied to the query.
type StoreRecorder struct {
	store    store.Store
	window   int
	capacity int

	mu sync.Mutex // serializes read-modify-write of a client's turn log
}

// StoreRecorderOption configures a StoreRecorder.
type StoreRecorderOption func(*StoreRecorder)

// WithWindow sets how many recent turns Context returns.
func WithWindow(n int) StoreRecorderOption {
	return func(r *StoreRecorder) { r.window = n }
}

// WithCapacity caps how many turns are retained per client.
func WithCapacity(n int) StoreRecorderOption {
	return func(r *StoreRecorder) { r.capacity = n }
}

// NewStoreRecorder creates a StoreRecorder over the given store.
func NewStoreRecorder(s store.Store, opts ...StoreRecorderOption) *StoreRecorder {
	r := &StoreRecorder{
		store:    s,
		window:   defaultWindow,
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *StoreRecorder) Context(ctx context.Context, clientID, _ string) (string, error) {
	turns, err := r.load(ctx, clientID)
	if err != nil {
		return "", err
	}
	if len(turns) == 0 {
		return "", nil
	}

	if len(turns) > r.window {
		turns = turns[len(turns)-r.window:]
	}

	var b strings.Builder
	b.WriteString("Recent conversation history with this client:")
	for _, t := range turns {
		fmt.Fprintf(&b, "\nClient: %s\nAssistant: %s", t.UserText, t.AssistantText)
	}
	return b.String(), nil
}

func (r *StoreRecorder) RecordTurn(ctx context.Context, clientID, userText, assistantText string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	turns, err := r.load(ctx, clientID)
	if err != nil {
		return err
	}

	turns = append(turns, turn{
		UserText:      userText,
		AssistantText: assistantText,
		RecordedAt:    time.Now().UTC(),
	})
	if len(turns) > r.capacity {
		turns = turns[len(turns)-r.capacity:]
	}

	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("encode turn log: %w", err)
	}
	return r.store.Save(ctx, collection, clientID, data)
}

func (r *StoreRecorder) load(ctx context.Context, clientID string) ([]turn, error) {
	data, err := r.store.Load(ctx, collection, clientID)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var turns []turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode turn log: %w", err)
	}
	return turns, nil
}
