package observability

import "context"

// MultiObserver fans an event out to every observer in the slice, in order.
type MultiObserver []Observer

// NewMultiObserver builds a MultiObserver from the non-nil observers.
func NewMultiObserver(observers ...Observer) MultiObserver {
	m := make(MultiObserver, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			m = append(m, obs)
		}
	}
	return m
}

func (m MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m {
		obs.OnEvent(ctx, event)
	}
}
