package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("no value received")
	}
	var zero T
	return zero
}

func TestTracker_CoalescesSignals(t *testing.T) {
	tr := NewTracker()
	ch, cancel := tr.Subscribe("outfits", "favorites")
	defer cancel()

	tr.Invalidate("outfits")
	tr.Invalidate("favorites")
	tr.Invalidate("outfits")

	<-ch
	select {
	case <-ch:
		t.Fatalf("signals must coalesce into one")
	default:
	}

	tr.Invalidate("closet_items")
	select {
	case <-ch:
		t.Fatalf("unrelated table must not notify")
	default:
	}
}

func TestTracker_CancelUnsubscribes(t *testing.T) {
	tr := NewTracker()
	_, cancel := tr.Subscribe("outfits")
	assert.Equal(t, 1, tr.Subscribers("outfits"))
	cancel()
	cancel()
	assert.Equal(t, 0, tr.Subscribers("outfits"))
}

func TestQuery_RerunsOnInvalidate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := NewTracker()
	var n atomic.Int64
	stream := Query(ctx, tr, nil, func(context.Context) (int64, error) {
		return n.Load(), nil
	}, "closet_items")

	assert.Equal(t, int64(0), recv(t, stream))

	n.Store(3)
	tr.Invalidate("closet_items")
	assert.Equal(t, int64(3), recv(t, stream))
}

func TestQuery_KeepsOnlyLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := NewTracker()
	var n atomic.Int64
	stream := Query(ctx, tr, nil, func(context.Context) (int64, error) {
		return n.Add(1), nil
	}, "t")

	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)
	tr.Invalidate("t")
	require.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	// two results were produced, only the second is readable
	assert.Equal(t, int64(2), recv(t, stream))
	select {
	case v := <-stream:
		t.Fatalf("unexpected stale value %d", v)
	default:
	}
}

func TestQuery_ErrorYieldsZeroValue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := NewTracker()
	stream := Query(ctx, tr, nil, func(context.Context) ([]string, error) {
		return []string{"stale"}, errors.New("db closed")
	}, "t")

	assert.Empty(t, recv(t, stream))
}

func TestQuery_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := NewTracker()
	stream := Query(ctx, tr, nil, func(context.Context) (int, error) { return 1, nil }, "t")
	recv(t, stream)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-stream:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return tr.Subscribers("t") == 0 }, time.Second, 5*time.Millisecond)
}

func TestLatest2_CombinesLatestValues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := make(chan int)
	b := make(chan string)
	out := Latest2(ctx, a, b, func(x int, s string) string {
		return s + ":" + string(rune('0'+x))
	})

	a <- 1
	b <- "x"
	assert.Equal(t, "x:1", recv(t, out))
	a <- 2
	assert.Equal(t, "x:2", recv(t, out))
}

func TestFirst(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	v, err := First(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = First(ctx, make(chan int))
	assert.ErrorIs(t, err, context.Canceled)
}
