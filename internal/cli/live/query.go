package live

import (
	"context"

	"go.uber.org/zap"
)

// QueryFunc loads the current value of a stream.
type QueryFunc[T any] func(ctx context.Context) (T, error)

// Query runs fn immediately and again after every change to tables.
// The returned channel holds only the most recent result; a result the consumer
// has not read yet is replaced by the next one. A failed run publishes the zero
// value of T. The channel is closed when ctx is done.
func Query[T any](ctx context.Context, tr *Tracker, log *zap.SugaredLogger, fn QueryFunc[T], tables ...string) <-chan T {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	out := make(chan T, 1)
	changes, cancel := tr.Subscribe(tables...)

	go func() {
		defer close(out)
		defer cancel()
		for {
			v, err := fn(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warnw("live query failed", "tables", tables, "error", err)
				var zero T
				v = zero
			}
			publish(out, v)

			select {
			case <-ctx.Done():
				return
			case <-changes:
			}
		}
	}()
	return out
}

// publish replaces any unread value in out with v. Only the producing goroutine sends on out.
func publish[T any](out chan T, v T) {
	select {
	case <-out:
	default:
	}
	out <- v
}

// Latest2 merges two streams: every time either side emits, fn receives the latest value of both.
// Nothing is emitted until both sides have produced a value.
func Latest2[A, B, R any](ctx context.Context, a <-chan A, b <-chan B, fn func(A, B) R) <-chan R {
	out := make(chan R, 1)
	go func() {
		defer close(out)
		var (
			va           A
			vb           B
			haveA, haveB bool
		)
		for a != nil || b != nil {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-a:
				if !ok {
					a = nil
					continue
				}
				va, haveA = v, true
			case v, ok := <-b:
				if !ok {
					b = nil
					continue
				}
				vb, haveB = v, true
			}
			if haveA && haveB {
				publish(out, fn(va, vb))
			}
		}
	}()
	return out
}

// Map applies fn to every value of in.
func Map[T, R any](ctx context.Context, in <-chan T, fn func(T) R) <-chan R {
	out := make(chan R, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				publish(out, fn(v))
			}
		}
	}()
	return out
}

// First waits for the first value of in.
func First[T any](ctx context.Context, in <-chan T) (T, error) {
	select {
	case v, ok := <-in:
		if !ok {
			var zero T
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			return zero, context.Canceled
		}
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
