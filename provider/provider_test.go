package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/parley-labs/parley/provider"
)

func TestMock_Unscripted(t *testing.T) {
	m := provider.NewMock()

	resp, err := m.Generate(context.Background(), &provider.Request{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content == "" {
		t.Error("unscripted mock should return canned content")
	}
}

func TestMock_ScriptOrder(t *testing.T) {
	m := provider.NewMock("first", "second")
	ctx := context.Background()

	for i, want := range []string{"first", "second", "second"} {
		resp, err := m.Generate(ctx, &provider.Request{})
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if resp.Content != want {
			t.Errorf("call %d: got %q, want %q", i, resp.Content, want)
		}
	}
	if m.Calls() != 3 {
		t.Errorf("got %d calls, want 3", m.Calls())
	}
}

func TestMock_FailWith(t *testing.T) {
	boom := errors.New("backend down")
	m := provider.NewMock("ok").FailWith(boom)
	ctx := context.Background()

	if _, err := m.Generate(ctx, &provider.Request{}); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := m.Generate(ctx, &provider.Request{}); !errors.Is(err, boom) {
		t.Errorf("got error %v, want %v", err, boom)
	}
}

func TestMock_LastRequest(t *testing.T) {
	m := provider.NewMock("ok")

	if m.LastRequest() != nil {
		t.Error("LastRequest should be nil before any call")
	}

	req := &provider.Request{SystemPrompt: "be brief"}
	if _, err := m.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := m.LastRequest(); got == nil || got.SystemPrompt != "be brief" {
		t.Errorf("got last request %+v, want the sent request", got)
	}
}

func TestRegistry_DefaultIsFirstRegistered(t *testing.T) {
	r := provider.NewRegistry()
	if err := r.RegisterProvider("primary", provider.NewMock("a")); err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}
	if err := r.RegisterProvider("secondary", provider.NewMock("b")); err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}

	p, err := r.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp, err := p.Generate(context.Background(), &provider.Request{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "a" {
		t.Errorf("default resolved to %q, want first registered", resp.Content)
	}
}

func TestRegistry_SetDefault(t *testing.T) {
	r := provider.NewRegistry()
	if err := r.RegisterProvider("primary", provider.NewMock("a")); err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}
	if err := r.RegisterProvider("secondary", provider.NewMock("b")); err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}
	if err := r.SetDefault("secondary"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}

	p, err := r.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp, _ := p.Generate(context.Background(), &provider.Request{})
	if resp.Content != "b" {
		t.Errorf("default resolved to %q, want %q", resp.Content, "b")
	}
}

func TestRegistry_Errors(t *testing.T) {
	r := provider.NewRegistry()

	if err := r.Register("", provider.Config{}); !errors.Is(err, provider.ErrEmptyName) {
		t.Errorf("got %v, want ErrEmptyName", err)
	}

	if err := r.Register("x", provider.Config{Backend: provider.BackendMock}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("x", provider.Config{}); !errors.Is(err, provider.ErrExists) {
		t.Errorf("got %v, want ErrExists", err)
	}

	if _, err := r.Get(context.Background(), "missing"); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if err := r.SetDefault("missing"); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRegistry_LazyInstantiation(t *testing.T) {
	r := provider.NewRegistry()
	if err := r.Register("m", provider.Config{Backend: provider.BackendMock}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	p1, err := r.Get(context.Background(), "m")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	p2, err := r.Get(context.Background(), "m")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if p1 != p2 {
		t.Error("Get should return the same instance on repeat calls")
	}
}

func TestRegistry_GetWithNoBackends(t *testing.T) {
	r := provider.NewRegistry()
	if _, err := r.Get(context.Background(), ""); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := provider.DefaultConfig()
	cfg.Merge(&provider.Config{
		Backend:   provider.BackendGemini,
		Model:     "gemini-2.0-flash",
		MaxTokens: 2048,
	})

	if cfg.Backend != provider.BackendGemini {
		t.Errorf("got backend %q, want %q", cfg.Backend, provider.BackendGemini)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("got model %q", cfg.Model)
	}
	if cfg.MaxTokens != 2048 {
		t.Errorf("got max tokens %d, want 2048", cfg.MaxTokens)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	if _, err := provider.New(context.Background(), &provider.Config{Backend: "llamacpp"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
