package commands

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"DressCode/internal/cli/service"
)

func TestRegister_CreatesUserDB(t *testing.T) {
	cfg := testConfig(t)
	out := mustRun(t, registerCmd{}, cfg, "alice", "secret", "Алиса")
	if !strings.Contains(out, "Registered alice (Алиса)") {
		t.Fatalf("unexpected output: %s", out)
	}
	// для пользователя создаётся база: CLIENT_DB_PATH/<login>/dresscode.sqlite
	if _, err := os.Stat(filepath.Join(cfg.ClientDBPath, "alice", "dresscode.sqlite")); err != nil {
		t.Fatalf("user sqlite not created: %v", err)
	}

	if _, err := run(t, registerCmd{}, cfg, "alice", "other"); !errors.Is(err, service.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := run(t, registerCmd{}, cfg, "onlyLogin"); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
	if _, err := run(t, registerCmd{}, cfg, "x", "secret"); err == nil {
		t.Fatalf("short login must be rejected")
	}
}

func TestLogin_Logout_Whoami_Users(t *testing.T) {
	cfg := registered(t)
	mustRun(t, registerCmd{}, cfg, "bob", "hunter2")

	out := mustRun(t, whoamiCmd{}, cfg)
	if !strings.HasPrefix(out, "bob") {
		t.Fatalf("bob should be current after register, got %s", out)
	}

	if _, err := run(t, loginCmd{}, cfg, "alice", "wrong"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	// неудачный вход сбрасывает сессию
	if _, err := run(t, whoamiCmd{}, cfg); !errors.Is(err, service.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	out = mustRun(t, loginCmd{}, cfg, "alice", "secret")
	if !strings.Contains(out, "Logged in successfully") {
		t.Fatalf("unexpected output: %s", out)
	}
	out = mustRun(t, usersCmd{}, cfg)
	if !strings.Contains(out, "* alice") || !strings.Contains(out, "  bob") {
		t.Fatalf("users list: %s", out)
	}

	mustRun(t, logoutCmd{}, cfg)
	if _, err := run(t, whoamiCmd{}, cfg); !errors.Is(err, service.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn after logout, got %v", err)
	}
	if _, err := run(t, loginCmd{}, cfg, "alice"); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}

func TestLogin_ServerDownStillLocal(t *testing.T) {
	cfg := registered(t)
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"ok":false,"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer ts.Close()
	cfg.Offline = false
	cfg.ServerURL = ts.URL

	if err := (loginCmd{}).Run(context.Background(), cfg, []string{"alice", "secret"}); err != nil {
		t.Fatalf("local login must succeed when server fails: %v", err)
	}
	if calls.Load() == 0 {
		t.Fatalf("server login was not attempted")
	}
}
