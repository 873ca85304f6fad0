// Package live turns SQL queries into streams that re-run when the tables they read change.
package live

import "sync"

// Tracker fans table-change notifications out to subscribers.
type Tracker struct {
	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
}

type subscription struct {
	ch     chan struct{}
	tables []string
}

func NewTracker() *Tracker {
	return &Tracker{subs: make(map[string]map[*subscription]struct{})}
}

// Subscribe returns a channel that receives a signal after any of tables changes.
// Signals coalesce: several changes before the receiver wakes up produce one signal.
func (t *Tracker) Subscribe(tables ...string) (<-chan struct{}, func()) {
	s := &subscription{ch: make(chan struct{}, 1), tables: tables}
	t.mu.Lock()
	for _, name := range tables {
		set, ok := t.subs[name]
		if !ok {
			set = make(map[*subscription]struct{})
			t.subs[name] = set
		}
		set[s] = struct{}{}
	}
	t.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for _, name := range s.tables {
				delete(t.subs[name], s)
				if len(t.subs[name]) == 0 {
					delete(t.subs, name)
				}
			}
		})
	}
	return s.ch, cancel
}

// Invalidate notifies the subscribers of every named table.
func (t *Tracker) Invalidate(tables ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range tables {
		for s := range t.subs[name] {
			select {
			case s.ch <- struct{}{}:
			default:
			}
		}
	}
}

// Subscribers reports how many subscriptions watch table.
func (t *Tracker) Subscribers(table string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs[table])
}
