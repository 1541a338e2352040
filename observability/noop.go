package observability

import "context"

// NoOpObserver drops every event. It is the default observer wherever one is
// not injected.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}
