package live

import "context"

// Switch subscribes to open(ctx, e) for every event e and forwards values of the most
// recent subscription only. The previous subscription is cancelled when a new event arrives.
// The output closes when ctx ends, or when events is closed and the current stream ends.
func Switch[E, R any](ctx context.Context, events <-chan E, open func(ctx context.Context, e E) <-chan R) <-chan R {
	out := make(chan R, 1)
	go func() {
		defer close(out)
		var (
			cur    <-chan R
			cancel = func() {}
		)
		defer func() { cancel() }()
		for events != nil || cur != nil {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				cancel()
				sub, c := context.WithCancel(ctx)
				cancel = c
				cur = open(sub, e)
			case v, ok := <-cur:
				if !ok {
					cur = nil
					continue
				}
				publish(out, v)
			}
		}
	}()
	return out
}
