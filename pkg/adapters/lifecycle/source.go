// Package lifecycle bridges kiln document events to aretw0/lifecycle.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/kiln/pkg/core"
)

type documentSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits document change events.
// The source stops when ctx is done or events is closed.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &documentSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *documentSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *documentSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				// core.Event is a lifecycle.Event through its String method.
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
