package session_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/parley-labs/parley/persona"
	"github.com/parley-labs/parley/session"
)

func newSession() *session.Session {
	return session.New("client-1", session.PersonaRef{
		Name: "dr_hayes",
		Descriptor: persona.Descriptor{
			Name:         "dr_hayes",
			SystemPrompt: "You are Dr. Hayes.",
		},
	}, session.TypeStandard, session.DefaultConfig())
}

func TestNew(t *testing.T) {
	s := newSession()

	if s.ID == "" {
		t.Error("session ID should not be empty")
	}
	if s.State != session.StateCreated {
		t.Errorf("got state %q, want %q", s.State, session.StateCreated)
	}
	if s.MessageCount() != 0 {
		t.Errorf("new session should have 0 messages, got %d", s.MessageCount())
	}
	if !s.StartTime.IsZero() {
		t.Error("start time should not be set before activation")
	}
	if s.EndTime != nil {
		t.Error("end time should not be set on a new session")
	}
}

func TestNew_UniqueIDs(t *testing.T) {
	s1 := newSession()
	s2 := newSession()

	if s1.ID == s2.ID {
		t.Errorf("two sessions should have different IDs, both got %q", s1.ID)
	}
}

func TestSession_Append_AutoActivates(t *testing.T) {
	s := newSession()

	msg, err := s.Append(session.RoleClient, "hello", nil)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if s.State != session.StateActive {
		t.Errorf("got state %q, want %q", s.State, session.StateActive)
	}
	if s.StartTime.IsZero() {
		t.Error("start time should be set on first activation")
	}
	if msg.ID == "" {
		t.Error("message ID should not be empty")
	}
	if msg.Role != session.RoleClient {
		t.Errorf("got role %q, want %q", msg.Role, session.RoleClient)
	}
}

func TestSession_Append_Order(t *testing.T) {
	s := newSession()

	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		if _, err := s.Append(session.RoleClient, c, nil); err != nil {
			t.Fatalf("Append(%q) failed: %v", c, err)
		}
	}

	if len(s.Messages) != len(contents) {
		t.Fatalf("got %d messages, want %d", len(s.Messages), len(contents))
	}
	for i, c := range contents {
		if s.Messages[i].Content != c {
			t.Errorf("message %d: got content %q, want %q", i, s.Messages[i].Content, c)
		}
	}
}

func TestSession_Append_ResumesFromPaused(t *testing.T) {
	s := newSession()
	if _, err := s.Append(session.RoleClient, "hello", nil); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	started := s.StartTime

	if err := s.Apply(session.EventPause); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if _, err := s.Append(session.RoleClient, "back again", nil); err != nil {
		t.Fatalf("Append after pause failed: %v", err)
	}

	if s.State != session.StateActive {
		t.Errorf("got state %q, want %q", s.State, session.StateActive)
	}
	if !s.StartTime.Equal(started) {
		t.Errorf("start time changed on resume: got %v, want %v", s.StartTime, started)
	}
}

func TestSession_Append_TerminalRejected(t *testing.T) {
	for _, event := range []session.Event{session.EventComplete, session.EventCancel} {
		t.Run(string(event), func(t *testing.T) {
			s := newSession()
			if _, err := s.Append(session.RoleClient, "hello", nil); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
			if err := s.Apply(event); err != nil {
				t.Fatalf("Apply(%q) failed: %v", event, err)
			}

			_, err := s.Append(session.RoleClient, "too late", nil)
			if !errors.Is(err, session.ErrInvalidTransition) {
				t.Fatalf("got error %v, want ErrInvalidTransition", err)
			}
			if s.MessageCount() != 1 {
				t.Errorf("rejected append mutated history: got %d messages, want 1", s.MessageCount())
			}
		})
	}
}

func TestSession_Append_Validation(t *testing.T) {
	tests := []struct {
		name    string
		role    session.Role
		content string
	}{
		{"empty content", session.RoleClient, ""},
		{"unknown role", session.Role("narrator"), "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession()
			_, err := s.Append(tt.role, tt.content, nil)
			if !errors.Is(err, session.ErrValidation) {
				t.Errorf("got error %v, want ErrValidation", err)
			}
			if s.MessageCount() != 0 {
				t.Errorf("rejected append mutated history: got %d messages, want 0", s.MessageCount())
			}
			if s.State != session.StateCreated {
				t.Errorf("rejected append changed state to %q", s.State)
			}
		})
	}
}

func TestSession_Apply_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		setup  []session.Event
		event  session.Event
		want   session.State
		wantOK bool
	}{
		{"created start", nil, session.EventStart, session.StateActive, true},
		{"created cancel", nil, session.EventCancel, session.StateCancelled, true},
		{"created pause", nil, session.EventPause, "", false},
		{"created complete", nil, session.EventComplete, "", false},
		{"active pause", []session.Event{session.EventStart}, session.EventPause, session.StatePaused, true},
		{"active complete", []session.Event{session.EventStart}, session.EventComplete, session.StateCompleted, true},
		{"active cancel", []session.Event{session.EventStart}, session.EventCancel, session.StateCancelled, true},
		{"active start", []session.Event{session.EventStart}, session.EventStart, "", false},
		{"paused resume", []session.Event{session.EventStart, session.EventPause}, session.EventResume, session.StateActive, true},
		{"paused complete", []session.Event{session.EventStart, session.EventPause}, session.EventComplete, session.StateCompleted, true},
		{"paused cancel", []session.Event{session.EventStart, session.EventPause}, session.EventCancel, session.StateCancelled, true},
		{"paused start", []session.Event{session.EventStart, session.EventPause}, session.EventStart, "", false},
		{"completed resume", []session.Event{session.EventStart, session.EventComplete}, session.EventResume, "", false},
		{"cancelled start", []session.Event{session.EventCancel}, session.EventStart, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession()
			for _, e := range tt.setup {
				if err := s.Apply(e); err != nil {
					t.Fatalf("setup Apply(%q) failed: %v", e, err)
				}
			}
			before := s.State

			err := s.Apply(tt.event)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("Apply(%q) failed: %v", tt.event, err)
				}
				if s.State != tt.want {
					t.Errorf("got state %q, want %q", s.State, tt.want)
				}
			} else {
				if !errors.Is(err, session.ErrInvalidTransition) {
					t.Fatalf("got error %v, want ErrInvalidTransition", err)
				}
				if s.State != before {
					t.Errorf("rejected event changed state from %q to %q", before, s.State)
				}
			}
		})
	}
}

func TestSession_Apply_EndTime(t *testing.T) {
	s := newSession()
	if err := s.Apply(session.EventStart); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Apply(session.EventComplete); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if s.EndTime == nil {
		t.Fatal("end time should be set on completion")
	}
	if s.EndTime.Before(s.StartTime) {
		t.Errorf("end time %v is before start time %v", s.EndTime, s.StartTime)
	}
	if s.Duration() < 0 {
		t.Errorf("got negative duration %v", s.Duration())
	}
}

func TestSession_Duration_BeforeStart(t *testing.T) {
	s := newSession()
	if d := s.Duration(); d != 0 {
		t.Errorf("got duration %v before start, want 0", d)
	}
}

func TestSession_SetPersona(t *testing.T) {
	s := newSession()
	if _, err := s.Append(session.RoleClient, "hello", nil); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	err := s.SetPersona(session.PersonaRef{
		Name:       "dr_chen",
		Descriptor: persona.Descriptor{Name: "dr_chen", SystemPrompt: "You are Dr. Chen."},
	})
	if err != nil {
		t.Fatalf("SetPersona failed: %v", err)
	}

	if s.Persona.Name != "dr_chen" {
		t.Errorf("got persona %q, want %q", s.Persona.Name, "dr_chen")
	}
	if s.MessageCount() != 2 {
		t.Fatalf("got %d messages, want 2", s.MessageCount())
	}

	note := s.Messages[1]
	if note.Role != session.RoleSystem {
		t.Errorf("got switch note role %q, want %q", note.Role, session.RoleSystem)
	}
	if want := "persona switched from dr_hayes to dr_chen"; note.Content != want {
		t.Errorf("got switch note %q, want %q", note.Content, want)
	}
	if s.Messages[0].Content != "hello" {
		t.Error("prior history was rewritten by persona switch")
	}
}

func TestSession_SetPersona_Terminal(t *testing.T) {
	s := newSession()
	if err := s.Apply(session.EventCancel); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	err := s.SetPersona(session.PersonaRef{Name: "dr_chen"})
	if !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("got error %v, want ErrInvalidTransition", err)
	}
}

func TestSession_Tags(t *testing.T) {
	s := newSession()

	if err := s.AddTags("anxiety", "intake", "anxiety", ""); err != nil {
		t.Fatalf("AddTags failed: %v", err)
	}
	if got, want := len(s.Tags), 2; got != want {
		t.Fatalf("got %d tags, want %d", got, want)
	}
	if s.Tags[0] != "anxiety" || s.Tags[1] != "intake" {
		t.Errorf("got tags %v, want sorted [anxiety intake]", s.Tags)
	}

	if err := s.RemoveTags("intake", "missing"); err != nil {
		t.Fatalf("RemoveTags failed: %v", err)
	}
	if len(s.Tags) != 1 || s.Tags[0] != "anxiety" {
		t.Errorf("got tags %v, want [anxiety]", s.Tags)
	}
}

func TestSession_SetCustomFields(t *testing.T) {
	s := newSession()

	if err := s.SetCustomFields(map[string]string{"referral": "self"}); err != nil {
		t.Fatalf("SetCustomFields failed: %v", err)
	}
	if err := s.SetCustomFields(map[string]string{"referral": "gp", "insurer": "acme"}); err != nil {
		t.Fatalf("SetCustomFields failed: %v", err)
	}

	if got := s.CustomFields["referral"]; got != "gp" {
		t.Errorf("got referral %q, want %q", got, "gp")
	}
	if got := s.CustomFields["insurer"]; got != "acme" {
		t.Errorf("got insurer %q, want %q", got, "acme")
	}
}

func TestSession_Clone_Independent(t *testing.T) {
	s := newSession()
	if _, err := s.Append(session.RoleClient, "hello", map[string]string{"source": "app"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.AddTags("intake"); err != nil {
		t.Fatalf("AddTags failed: %v", err)
	}

	clone := s.Clone()
	clone.Messages[0].Content = "tampered"
	clone.Messages[0].Metadata["source"] = "tampered"
	clone.Tags[0] = "tampered"

	if s.Messages[0].Content != "hello" {
		t.Error("clone shares message backing array with original")
	}
	if s.Messages[0].Metadata["source"] != "app" {
		t.Error("clone shares message metadata map with original")
	}
	if s.Tags[0] != "intake" {
		t.Error("clone shares tag slice with original")
	}
}

func TestSession_Metadata(t *testing.T) {
	s := newSession()
	if _, err := s.Append(session.RoleClient, "hello", nil); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.AddTags("intake"); err != nil {
		t.Fatalf("AddTags failed: %v", err)
	}

	md := s.Metadata()
	if md.ID != s.ID {
		t.Errorf("got id %q, want %q", md.ID, s.ID)
	}
	if md.ClientID != s.ClientID {
		t.Errorf("got client id %q, want %q", md.ClientID, s.ClientID)
	}
	if md.PersonaName != "dr_hayes" {
		t.Errorf("got persona %q, want %q", md.PersonaName, "dr_hayes")
	}
	if md.State != session.StateActive {
		t.Errorf("got state %q, want %q", md.State, session.StateActive)
	}
	if md.MessageCount != 1 {
		t.Errorf("got message count %d, want 1", md.MessageCount)
	}
	if len(md.Tags) != 1 || md.Tags[0] != "intake" {
		t.Errorf("got tags %v, want [intake]", md.Tags)
	}
}

func TestSession_JSONRoundTrip(t *testing.T) {
	s := newSession()
	if _, err := s.Append(session.RoleClient, "hello", map[string]string{"source": "app"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Apply(session.EventComplete); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got session.Session
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if got.ID != s.ID || got.State != s.State || got.ClientID != s.ClientID {
		t.Errorf("round trip changed identity fields: got %+v", got)
	}
	if got.MessageCount() != 1 || got.Messages[0].Content != "hello" {
		t.Errorf("round trip lost messages: got %+v", got.Messages)
	}
	if got.EndTime == nil || !got.EndTime.Equal(*s.EndTime) {
		t.Errorf("round trip lost end time: got %v, want %v", got.EndTime, s.EndTime)
	}
	if !got.StartTime.Equal(s.StartTime) {
		t.Errorf("round trip changed start time: got %v, want %v", got.StartTime, s.StartTime)
	}
}

func TestSession_UpdatedAt_Touch(t *testing.T) {
	s := newSession()
	before := s.UpdatedAt

	time.Sleep(time.Millisecond)
	if _, err := s.Append(session.RoleClient, "hello", nil); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if !s.UpdatedAt.After(before) {
		t.Errorf("updated_at not advanced: %v -> %v", before, s.UpdatedAt)
	}
}
