package commands

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestCloset_AddListEditFavDelete(t *testing.T) {
	cfg := registered(t)

	out := mustRun(t, closetCmd{}, cfg)
	if !strings.Contains(out, "Гардероб пуст") {
		t.Fatalf("empty closet expected: %s", out)
	}

	out = mustRun(t, closetAddCmd{}, cfg, "--category", "下装", "--color", "蓝色", "--season", "秋冬")
	if !strings.Contains(out, "id:       1") || !strings.Contains(out, "category: 下装") {
		t.Fatalf("unexpected add output: %s", out)
	}
	mustRun(t, closetAddCmd{}, cfg, "--name", "白T", "--category", "top", "--fav")

	out = mustRun(t, closetCmd{}, cfg)
	if !strings.Contains(out, "白T  [上衣]") || !strings.Contains(out, "Всего: 2") {
		t.Fatalf("closet list: %s", out)
	}
	if !strings.Contains(out, "★") {
		t.Fatalf("favorite mark expected: %s", out)
	}
	out = mustRun(t, closetCmd{}, cfg, "--category", "下装")
	if strings.Contains(out, "白T") || !strings.Contains(out, "Всего: 1") {
		t.Fatalf("category filter: %s", out)
	}

	mustRun(t, closetEditCmd{}, cfg, "--name", "牛仔裤", "1")
	out = mustRun(t, closetCmd{}, cfg, "--category", "下装")
	if !strings.Contains(out, "牛仔裤") || !strings.Contains(out, "蓝") {
		t.Fatalf("edit should keep other fields: %s", out)
	}
	if _, err := run(t, closetEditCmd{}, cfg, "--category", "шляпа", "1"); err == nil {
		t.Fatalf("unknown category must fail")
	}
	if _, err := run(t, closetEditCmd{}, cfg, "1"); !errors.Is(err, ErrUsage) {
		t.Fatalf("edit without flags: %v", err)
	}

	out = mustRun(t, closetFavCmd{}, cfg, "2")
	if !strings.Contains(out, "favorite: false") {
		t.Fatalf("fav toggle: %s", out)
	}

	mustRun(t, closetRmCmd{}, cfg, "2")
	out = mustRun(t, closetCmd{}, cfg)
	if strings.Contains(out, "白T") {
		t.Fatalf("item not deleted: %s", out)
	}
	if _, err := run(t, closetRmCmd{}, cfg, "abc"); !errors.Is(err, ErrUsage) {
		t.Fatalf("bad id: %v", err)
	}
}

func TestClosetAdd_Validation(t *testing.T) {
	cfg := registered(t)
	if _, err := run(t, closetAddCmd{}, cfg); !errors.Is(err, ErrUsage) {
		t.Fatalf("no photo and no category: %v", err)
	}
	if _, err := run(t, closetAddCmd{}, cfg, "--category", "帽子"); err == nil {
		t.Fatalf("unknown category must fail")
	}
}

func TestClosetAdd_OfflineThenRetagOnline(t *testing.T) {
	cfg := registered(t)
	photo := writePhoto(t, "shirt.png")

	out := mustRun(t, closetAddCmd{}, cfg, photo)
	if !strings.Contains(out, "offline") {
		t.Fatalf("offline hint expected: %s", out)
	}
	out = mustRun(t, closetCmd{}, cfg)
	if !strings.Contains(out, "not synced") {
		t.Fatalf("item must stay unsynced offline: %s", out)
	}
	if _, err := run(t, closetRetagCmd{}, cfg, "1"); err == nil {
		t.Fatalf("retag offline must fail")
	}

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/vl/tag" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"model":"m1","result":{"category":"上衣","colors":["白"],"style":"casual"}}`))
	}))
	defer ts.Close()
	cfg.Offline = false
	cfg.ServerURL = ts.URL

	out = mustRun(t, closetRetagCmd{}, cfg, "1")
	if !strings.Contains(out, "[上衣]") || !strings.Contains(out, "休闲") {
		t.Fatalf("retag output: %s", out)
	}
	out = mustRun(t, closetCmd{}, cfg)
	if strings.Contains(out, "not synced") {
		t.Fatalf("item should be synced: %s", out)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 tag call, got %d", calls.Load())
	}
}

func TestClosetAdd_SyncsInBackground(t *testing.T) {
	cfg := registered(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"model":"m1","result":{"category":"外套","colors":["黑"]}}`))
	}))
	defer ts.Close()
	cfg.Offline = false
	cfg.ServerURL = ts.URL

	// команда дожидается очереди синхронизации при закрытии сессии
	mustRun(t, closetAddCmd{}, cfg, "--name", "风衣", writePhoto(t, "coat.jpg"))
	out := mustRun(t, closetCmd{}, cfg)
	if !strings.Contains(out, "风衣  [外套]") || strings.Contains(out, "not synced") {
		t.Fatalf("background sync result: %s", out)
	}
}
