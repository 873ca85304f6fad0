package commands

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
)

func TestTryOn_ArgsValidation(t *testing.T) {
	cfg := testConfig(t)
	cases := [][]string{
		{},
		{"--closet", "1"},
		{"--person", "p.png"},
		{"--person", "p.png", "--closet", "1", "--outfit", "2"},
		{"--person", "p.png", "extra"},
	}
	for _, args := range cases {
		if _, err := run(t, tryOnCmd{}, cfg, args...); !errors.Is(err, ErrUsage) {
			t.Fatalf("%v: expected ErrUsage, got %v", args, err)
		}
	}
}

func TestTryOn_OutfitPlaceholderOffline(t *testing.T) {
	cfg := registered(t)
	person := writePhoto(t, "me.png")

	out := mustRun(t, tryOnCmd{}, cfg, "--person", person, "--outfit", "1")
	if !strings.Contains(out, "已生成（占位）") || !strings.Contains(out, person) {
		t.Fatalf("placeholder job expected: %s", out)
	}
	out = mustRun(t, historyCmd{}, cfg)
	if !strings.Contains(out, "[穿搭]") || !strings.Contains(out, "Всего: 1") {
		t.Fatalf("history: %s", out)
	}

	// офлайн примерка своей вещи недоступна
	if _, err := run(t, tryOnCmd{}, cfg, "--person", person, "--garment", writePhoto(t, "coat.png")); err == nil {
		t.Fatalf("custom try-on offline must fail")
	}

	mustRun(t, historyRmCmd{}, cfg, "1")
	if _, err := os.Stat(person); err != nil {
		t.Fatalf("person photo must survive history-rm: %v", err)
	}
	out = mustRun(t, historyCmd{}, cfg)
	if !strings.Contains(out, "История пуста") {
		t.Fatalf("history should be empty: %s", out)
	}
}

func TestTryOn_CustomGarmentOnline(t *testing.T) {
	cfg := registered(t)
	result := base64.StdEncoding.EncodeToString(pngHeader)
	var fail atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tryon" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"ok":false,"error":"model busy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result_image_base64":"` + result + `","content_type":"image/png"}`))
	}))
	defer ts.Close()
	cfg.Offline = false
	cfg.ServerURL = ts.URL

	person := writePhoto(t, "me.png")
	out := mustRun(t, tryOnCmd{}, cfg, "--person", person, "--garment", writePhoto(t, "red-coat.png"))
	if !strings.Contains(out, "red-coat") || !strings.Contains(out, "已生成") || !strings.Contains(out, ".png") {
		t.Fatalf("done job expected: %s", out)
	}

	fail.Store(true)
	out, err := run(t, tryOnCmd{}, cfg, "--person", person, "--garment", writePhoto(t, "hat.png"))
	if err == nil || !strings.Contains(out, "失败") {
		t.Fatalf("failed job must be reported and kept: %v %s", err, out)
	}
	out = mustRun(t, historyCmd{}, cfg)
	if !strings.Contains(out, "Всего: 2") || !strings.Contains(out, "[自选]") {
		t.Fatalf("both jobs must be in history: %s", out)
	}
}
