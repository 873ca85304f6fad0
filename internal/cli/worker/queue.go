// Package worker provides a single-goroutine task queue.
//
// Every repository owns one Queue so its writes run one at a time in submission order.
// Remote calls use a separate Queue so a slow network never delays a local write.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned when a task is submitted after Close.
var ErrClosed = errors.New("worker queue closed")

// Queue runs submitted tasks sequentially on one goroutine.
type Queue struct {
	name   string
	tasks  chan func()
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
	log    *zap.SugaredLogger
}

// NewQueue starts the worker goroutine. size is the number of tasks that may wait before Submit blocks.
func NewQueue(name string, size int, log *zap.SugaredLogger) *Queue {
	if size <= 0 {
		size = 64
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	q := &Queue{
		name:  name,
		tasks: make(chan func(), size),
		done:  make(chan struct{}),
		log:   log,
	}
	go q.loop()
	return q
}

func (q *Queue) loop() {
	defer close(q.done)
	for task := range q.tasks {
		q.run(task)
	}
}

func (q *Queue) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Errorw("worker task panicked", "queue", q.name, "panic", r)
		}
	}()
	task()
}

// Submit enqueues task without waiting for it to run.
func (q *Queue) Submit(task func()) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	q.tasks <- task
	return nil
}

// Do enqueues task and waits for its result. If ctx ends first, Do returns ctx.Err()
// and the task still runs when its turn comes.
func (q *Queue) Do(ctx context.Context, task func() error) error {
	res := make(chan error, 1)
	err := q.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				res <- fmt.Errorf("task panicked: %v", r)
			}
		}()
		res <- task()
	})
	if err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks, runs the ones already queued and waits for the worker to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()
	<-q.done
}

// Name is used in log lines.
func (q *Queue) Name() string { return q.name }
