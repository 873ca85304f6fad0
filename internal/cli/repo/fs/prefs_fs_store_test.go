package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// setTempCfg перенастраивает пользовательский конфиг‑каталог в temp для изоляции тестов.
func setTempCfg(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

func TestPrefsFSStore_PutGet_PersistsAcrossOpen(t *testing.T) {
	dir := filepath.Join(setTempCfg(t), "DressCode")
	st, err := OpenPrefs(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := st.Get("missing"); ok {
		t.Fatalf("expected missing key")
	}
	if err := st.Put("auth_current_user", "alice"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.PutAll(map[string]string{"a": "1", "b": ""}); err != nil {
		t.Fatalf("put all: %v", err)
	}

	// повторное открытие читает то же содержимое
	st2, err := OpenPrefs(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok := st2.Get("auth_current_user"); !ok || v != "alice" {
		t.Fatalf("want alice, got %q ok=%v", v, ok)
	}
	if v, ok := st2.Get("b"); !ok || v != "" {
		t.Fatalf("empty value must be present, got %q ok=%v", v, ok)
	}
}

func TestPrefsFSStore_FileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()
	st, err := OpenPrefs(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Put("k", "v"); err != nil {
		t.Fatalf("put: %v", err)
	}
	fi, err := os.Stat(st.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("want 0600, got %v", fi.Mode().Perm())
	}
}

func TestPrefsFSStore_Remove(t *testing.T) {
	dir := t.TempDir()
	st, _ := OpenPrefs(dir)
	_ = st.PutAll(map[string]string{"x": "1", "y": "2"})
	if err := st.Remove("x", "nope"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := st.Get("x"); ok {
		t.Fatalf("x must be removed")
	}
	st2, _ := OpenPrefs(dir)
	if v, _ := st2.Get("y"); v != "2" {
		t.Fatalf("y must survive, got %q", v)
	}
}

func TestOpenPrefs_Errors(t *testing.T) {
	if _, err := OpenPrefs(""); err == nil {
		t.Fatalf("expected error for empty dir")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, PrefsFileName), []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenPrefs(dir); err == nil {
		t.Fatalf("expected decode error")
	}
	// пустой файл — пустое хранилище
	if err := os.WriteFile(filepath.Join(dir, PrefsFileName), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenPrefs(dir); err != nil {
		t.Fatalf("empty file: %v", err)
	}
}
