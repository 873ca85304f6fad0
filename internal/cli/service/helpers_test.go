package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"DressCode/internal/cli/repo/sqlite"
	"DressCode/internal/cli/worker"
)

type testEnv struct {
	db      *sqlite.DB
	closet  *sqlite.ClosetRepositorySQLite
	outfits *sqlite.OutfitRepositorySQLite
	favs    *sqlite.FavoriteRepositorySQLite
	jobs    *sqlite.SwapJobRepositorySQLite
	syncQ   *worker.Queue
	dir     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(filepath.Join(dir, "test.sqlite"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))

	e := &testEnv{db: db, dir: dir, syncQ: worker.NewQueue("sync", 8, nil)}
	e.closet, err = sqlite.NewClosetRepository(db, "alice")
	require.NoError(t, err)
	e.outfits, err = sqlite.NewOutfitRepository(db, "alice")
	require.NoError(t, err)
	e.favs, err = sqlite.NewFavoriteRepository(db, "alice")
	require.NoError(t, err)
	e.jobs, err = sqlite.NewSwapJobRepository(db, "alice")
	require.NoError(t, err)

	t.Cleanup(func() {
		e.syncQ.Close()
		_ = e.closet.Close()
		_ = e.outfits.Close()
		_ = e.favs.Close()
		_ = e.jobs.Close()
		_ = db.Close()
	})
	return e
}

// writeFile creates a small fake image and returns its path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

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
