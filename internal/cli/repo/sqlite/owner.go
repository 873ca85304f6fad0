package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"DressCode/internal/cli/worker"

	"go.uber.org/zap"
)

// ownedTable is the plumbing shared by repositories whose rows carry an owner column:
// the write queue and the one-time claim of rows written before accounts existed.
type ownedTable struct {
	db    *DB
	table string
	owner string
	queue *worker.Queue
	log   *zap.SugaredLogger

	claimMu   sync.Mutex
	claimDone bool
	claimed   int64
}

func newOwnedTable(db *DB, table, owner string) (*ownedTable, error) {
	if owner == "" {
		return nil, errors.New("empty owner")
	}
	log := db.log.With("table", table, "owner", owner)
	return &ownedTable{
		db:    db,
		table: table,
		owner: owner,
		queue: worker.NewQueue(table, 64, log),
		log:   log,
	}, nil
}

// claimLegacy assigns rows with an empty owner to this owner before the first read or write.
// The UPDATE goes through the write queue and ignores the caller's cancellation; a failed
// attempt is retried on the next access.
func (t *ownedTable) claimLegacy(ctx context.Context) {
	t.claimMu.Lock()
	defer t.claimMu.Unlock()
	if t.claimDone {
		return
	}
	var n int64
	err := t.queue.Do(context.WithoutCancel(ctx), func() error {
		res, err := t.db.sql.ExecContext(context.WithoutCancel(ctx),
			fmt.Sprintf(`UPDATE %s SET owner = ? WHERE owner = ''`, t.table), t.owner)
		if err != nil {
			return err
		}
		n, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		t.log.Warnw("claim legacy rows failed", "error", err)
		return
	}
	t.claimDone = true
	t.claimed = n
	if n > 0 {
		t.log.Infow("claimed legacy rows", "rows", n)
		t.db.tracker.Invalidate(t.table)
	}
}

// Claimed reports how many legacy rows this repository claimed.
func (t *ownedTable) Claimed() int64 {
	t.claimLegacy(context.Background())
	t.claimMu.Lock()
	defer t.claimMu.Unlock()
	return t.claimed
}

// write runs fn on the repository queue and notifies observers of the listed tables on success.
func (t *ownedTable) write(ctx context.Context, fn func(ctx context.Context) error, tables ...string) error {
	t.claimLegacy(ctx)
	err := t.queue.Do(ctx, func() error { return fn(ctx) })
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		tables = []string{t.table}
	}
	t.db.tracker.Invalidate(tables...)
	return nil
}

// Close waits for queued writes to finish.
func (t *ownedTable) Close() error {
	t.queue.Close()
	return nil
}
