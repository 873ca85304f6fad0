package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DressCode/internal/cli/api"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func newBackend(t *testing.T, h http.HandlerFunc) *api.Backend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return api.NewBackend(api.NewClient(srv.URL, 5*time.Second))
}

// drain waits until every task submitted to the sync queue so far has run.
func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, e.syncQ.Do(context.Background(), func() error { return nil }))
}

func TestClosetService_AddCopiesImageAndTags(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	var calls atomic.Int32
	uploaded := make(chan string, 1)
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/vl/tag", r.URL.Path)
		f, hdr, err := r.FormFile("image")
		if assert.NoError(t, err) {
			defer f.Close()
			uploaded <- hdr.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"model":"m1","result":{"category":"上衣","colors":["白"],"style":"casual","season":"summer","scene":"daily"}}`))
	})
	imgDir := filepath.Join(e.dir, "images")
	s := NewClosetService(e.closet, b, e.syncQ, ClosetOptions{Owner: "alice", ImageDir: imgDir}, nil)

	src := writeFile(t, e.dir, "shirt.png", pngHeader)
	id, err := s.Add(ctx, ClosetDraft{ImagePath: src})
	require.NoError(t, err)
	e.drain(t)
	assert.Equal(t, int32(1), calls.Load())

	it, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(it.ImageURI, imgDir), it.ImageURI)
	assert.NotEqual(t, src, it.ImageURI)
	assert.Equal(t, ".png", filepath.Ext(it.ImageURI))
	_, err = os.Stat(it.ImageURI)
	require.NoError(t, err)

	assert.Equal(t, "上衣", it.Category)
	assert.Equal(t, "白", it.Color)
	assert.Equal(t, "休闲", it.Style)
	assert.Equal(t, "夏", it.Season)
	assert.Equal(t, "出街", it.Scene)
	assert.Equal(t, "上衣 · 休闲", it.Name, "placeholder name replaced after tagging")
	assert.True(t, it.Synced())

	// отправляется копия из каталога картинок, а не исходный файл
	select {
	case name := <-uploaded:
		assert.Equal(t, filepath.Base(it.ImageURI), name)
	default:
		t.Fatalf("image part was not uploaded")
	}
}

func TestClosetService_TaggedNameFromCategoryAndStyle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"model":"m1","result":{"category":"jacket","style":"street"}}`))
	})
	s := NewClosetService(e.closet, b, e.syncQ, ClosetOptions{Owner: "alice", ImageDir: filepath.Join(e.dir, "img")}, nil)

	id, err := s.Add(ctx, ClosetDraft{ImagePath: writeFile(t, e.dir, "j.png", pngHeader)})
	require.NoError(t, err)
	e.drain(t)

	it, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "外套", it.Category)
	assert.Equal(t, "街头", it.Style)
	assert.Equal(t, "外套 · 街头", it.Name)

	// имя, заданное пользователем позже, перетегирование не трогает
	name := "моя куртка"
	require.NoError(t, s.Update(ctx, id, ClosetEdit{Name: &name}))
	require.NoError(t, s.Retag(ctx, id))
	it, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "моя куртка", it.Name)
}

func TestClosetService_SyncKeepsUserFields(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":"{\"category\":\"外套\",\"style\":\"运动\",\"colors\":\"黑\"}"}`))
	})
	s := NewClosetService(e.closet, b, e.syncQ, ClosetOptions{Owner: "alice", ImageDir: filepath.Join(e.dir, "img")}, nil)

	id, err := s.Add(ctx, ClosetDraft{Name: "白T", Category: "top", Style: "通勤", ImagePath: writeFile(t, e.dir, "a.jpg", []byte("jpeg"))})
	require.NoError(t, err)
	e.drain(t)

	it, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "白T", it.Name)
	assert.Equal(t, "上衣", it.Category, "user category is kept")
	assert.Equal(t, "通勤", it.Style, "user style is kept")
	assert.Equal(t, "黑", it.Color, "empty color filled from tags")
}

func TestClosetService_UploadMode(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/closet/items", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "alice", r.FormValue("owner"))
		assert.Equal(t, "true", r.FormValue("autoTag"))
		assert.Equal(t, "下装", r.FormValue("category"))
		_, _ = w.Write([]byte(`{"ok":true,"item":{"id":42,"imageUrl":"http://srv/files/x.jpg","tags":{"season":"winter"}}}`))
	})
	s := NewClosetService(e.closet, b, e.syncQ, ClosetOptions{Owner: "alice", ImageDir: filepath.Join(e.dir, "img"), Upload: true}, nil)

	id, err := s.Add(ctx, ClosetDraft{Category: "下装", ImagePath: writeFile(t, e.dir, "p.jpg", []byte("jpeg"))})
	require.NoError(t, err)
	e.drain(t)

	it, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), it.RemoteID)
	assert.Equal(t, "http://srv/files/x.jpg", it.RemoteImageURL)
	assert.Equal(t, "冬", it.Season)
	assert.Equal(t, "下装", it.Name)
}

func TestClosetService_SyncFailureLeavesRowUnsynced(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"error":"boom"}`, http.StatusInternalServerError)
	})
	s := NewClosetService(e.closet, b, e.syncQ, ClosetOptions{Owner: "alice", ImageDir: filepath.Join(e.dir, "img")}, nil)

	id, err := s.Add(ctx, ClosetDraft{Category: "鞋子", ImagePath: writeFile(t, e.dir, "s.jpg", []byte("jpeg"))})
	require.NoError(t, err, "sync errors do not fail Add")
	e.drain(t)

	it, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, it.Synced())

	err = s.Retag(ctx, id)
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestClosetService_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	s := NewClosetService(e.closet, nil, e.syncQ, ClosetOptions{Owner: "alice", ImageDir: filepath.Join(e.dir, "img")}, nil)

	_, err := s.Add(ctx, ClosetDraft{Name: "x"})
	assert.Error(t, err, "no category and no photo")
	_, err = s.Add(ctx, ClosetDraft{Category: "gizmo"})
	assert.Error(t, err)

	id, err := s.Add(ctx, ClosetDraft{Category: "外套", Style: "street"})
	require.NoError(t, err)
	it, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "外套 · 街头", it.Name)
	assert.Empty(t, it.ImageURI)

	assert.ErrorIs(t, s.Retag(ctx, id), ErrNoBackend)
}

func TestClosetService_UpdateFavoriteDelete(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	imgDir := filepath.Join(e.dir, "img")
	s := NewClosetService(e.closet, nil, e.syncQ, ClosetOptions{Owner: "alice", ImageDir: imgDir}, nil)

	id, err := s.Add(ctx, ClosetDraft{Name: "风衣", Category: "外套", ImagePath: writeFile(t, e.dir, "c.jpg", []byte("jpeg"))})
	require.NoError(t, err)

	season, bad := "autumn", "gizmo"
	require.NoError(t, s.Update(ctx, id, ClosetEdit{Season: &season}))
	assert.Error(t, s.Update(ctx, id, ClosetEdit{Category: &bad}))
	it, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "秋", it.Season)
	assert.Equal(t, "外套", it.Category)

	fav, err := s.ToggleFavorite(ctx, id)
	require.NoError(t, err)
	assert.True(t, fav)

	items := recv(t, s.List(ctx, "outerwear"))
	require.Len(t, items, 1)
	assert.True(t, items[0].IsFavorite)

	require.NoError(t, s.Delete(ctx, id))
	_, err = os.Stat(it.ImageURI)
	assert.True(t, os.IsNotExist(err), "copied image removed")
	_, err = s.Get(ctx, id)
	assert.Error(t, err)
}
