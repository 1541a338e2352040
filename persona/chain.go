package persona

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Chain is a Provider that consults catalogs in order, returning the first
// descriptor found. Names is the sorted union across all catalogs.
type Chain []Provider

func (c Chain) Descriptor(ctx context.Context, name string) (*Descriptor, error) {
	for _, p := range c {
		d, err := p.Descriptor(ctx, name)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (c Chain) Names(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, p := range c {
		names, err := p.Names(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			seen[n] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
