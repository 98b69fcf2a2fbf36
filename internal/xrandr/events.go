package xrandr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jezek/xgb/randr"
)

// WatchOutputChanges subscribes to RandR output-change notifications and
// delivers one signal per hardware change. The channel closes when the
// X connection does; cancel the context and Close the Conn to stop.
func (c *Conn) WatchOutputChanges(ctx context.Context) (<-chan struct{}, error) {
	if err := randr.SelectInputChecked(c.x, c.root(), randr.NotifyMaskOutputChange).Check(); err != nil {
		return nil, fmt.Errorf("selecting randr input: %w", err)
	}

	events := make(chan struct{}, 1)

	go func() {
		defer close(events)
		for {
			ev, xerr := c.x.WaitForEvent()
			if ev == nil && xerr == nil {
				// connection closed
				return
			}
			if xerr != nil {
				slog.Error("waiting for X event", "error", xerr)
				continue
			}

			if _, ok := ev.(randr.NotifyEvent); !ok {
				continue
			}

			select {
			case events <- struct{}{}:
			case <-ctx.Done():
				return
			default:
				// a signal is already pending; coalesce
			}
		}
	}()

	return events, nil
}
