package commands

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"DressCode/internal/config"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты (настройки/база/фото) создавались в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	db := filepath.Join(dir, "db")
	_ = os.MkdirAll(db, 0o700)
	t.Setenv("CLIENT_DB_PATH", db)
	return dir
}

// testConfig — офлайн-конфиг клиента в temp.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := withTempConfig(t)
	return &config.Config{
		DataDir:         filepath.Join(dir, "data"),
		ClientDBPath:    os.Getenv("CLIENT_DB_PATH"),
		Offline:         true,
		LogLevel:        "error",
		WeatherProvider: "amap",
		RequestTimeout:  5 * time.Second,
	}
}

// run выполняет команду и возвращает её вывод.
func run(t *testing.T, cmd Command, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var err error
	out := withStdoutCapture(t, func() { err = cmd.Run(context.Background(), cfg, args) })
	return out, err
}

func mustRun(t *testing.T, cmd Command, cfg *config.Config, args ...string) string {
	t.Helper()
	out, err := run(t, cmd, cfg, args...)
	if err != nil {
		t.Fatalf("%s %v: %v\n%s", cmd.Name(), args, err, out)
	}
	return out
}

// registered — офлайн-конфиг с зарегистрированным и вошедшим пользователем alice.
func registered(t *testing.T) *config.Config {
	t.Helper()
	cfg := testConfig(t)
	mustRun(t, registerCmd{}, cfg, "alice", "secret", "Алиса")
	return cfg
}

func writePhoto(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, pngHeader, 0o600); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	return p
}
