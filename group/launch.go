package group

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Launch runs fn once per member of hub, each on its own goroutine, and
// waits for all of them. The first member to fail cancels the context the
// others see, which unblocks any collective they are waiting in.
func Launch(ctx context.Context, hub *Hub, fn func(ctx context.Context, comm Comm) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for rank := range hub.Size() {
		comm := hub.Member(rank)
		g.Go(func() error { return fn(ctx, comm) })
	}
	return g.Wait()
}
