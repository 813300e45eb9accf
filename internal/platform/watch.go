package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/kiln/pkg/adapters/fs"
	"github.com/aretw0/kiln/pkg/core"
)

// Watch observes the documents matched by pattern and reports every change.
// Cached records of a changed document are dropped before its event is sent.
// The watcher is supervised and restarted on failure; the returned channel
// is closed once ctx is done.
func (r *Reader) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := make(chan core.Event, 16)
	spec := supervisor.Spec{
		Name: "kiln-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return fs.NewWatchWorker(fs.WatchConfig{
				Pattern:      pattern,
				Debounce:     r.config.debounce,
				Logger:       r.logger,
				ErrorHandler: r.config.errorHandler,
			}, raw), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     5,
			MaxDuration:     5 * time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("kiln-watch", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	r.setWatching(true)

	out := make(chan core.Event)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer r.setWatching(false)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sup.Stop(stopCtx); err != nil && r.logger != nil {
				r.logger.Warn("failed to stop watcher", "error", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return nil
			case e := <-raw:
				r.Forget(e.Path)
				if r.logger != nil {
					r.logger.Debug("document changed", "event", e.String())
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if r.config.errorHandler != nil {
			r.config.errorHandler(fmt.Errorf("watch panic: %w", err))
		} else if r.logger != nil {
			r.logger.Error("watch panic", "error", err)
		}
	}))

	return out, nil
}
