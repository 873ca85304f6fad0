package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"DressCode/internal/cli/live"
	"DressCode/internal/config"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Table names, also used as change-notification keys.
const (
	TableCloset    = "closet_items"
	TableOutfits   = "outfits"
	TableFavorites = "favorites"
	TableSwapJobs  = "swap_jobs"
)

// DB is one user's local database together with its change tracker.
type DB struct {
	sql     *sql.DB
	path    string
	tracker *live.Tracker
	log     *zap.SugaredLogger
}

// nowMillis is replaced in tests that need stable ordering.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// UserDBPath returns the database file of login. CLIENT_DB_PATH overrides the base directory.
func UserDBPath(login string) (string, error) {
	if login == "" {
		return "", errors.New("empty login for user store")
	}
	base := os.Getenv("CLIENT_DB_PATH")
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(cfgDir, config.AppDirName, "users")
	}
	return filepath.Join(base, login, "dresscode.sqlite"), nil
}

// OpenForUser opens (creating if needed) the database file of login.
// The second value is the path of the file.
func OpenForUser(login string, log *zap.SugaredLogger) (*DB, string, error) {
	p, err := UserDBPath(login)
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, "", err
	}
	db, err := Open(p, log)
	if err != nil {
		return nil, "", err
	}
	return db, p, nil
}

// Open opens the database file at path.
func Open(path string, log *zap.SugaredLogger) (*DB, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &DB{sql: sqlDB, path: path, tracker: live.NewTracker(), log: log}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Path is the database file.
func (d *DB) Path() string { return d.path }

// Tracker is the change tracker shared by every repository on this database.
func (d *DB) Tracker() *live.Tracker { return d.tracker }

// SchemaVersion reads PRAGMA user_version.
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := d.sql.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// Migrate brings the schema to the latest version.
func (d *DB) Migrate(ctx context.Context) error {
	return d.MigrateTo(ctx, LatestVersion())
}

// MigrateTo applies every migration above the current version up to and including target.
// Each step runs in its own transaction together with the version bump.
func (d *DB) MigrateTo(ctx context.Context, target int) error {
	ms, err := loadMigrations()
	if err != nil {
		return err
	}
	if target < 0 || target > len(ms) {
		return fmt.Errorf("unknown schema version %d (latest %d)", target, len(ms))
	}
	current, err := d.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > len(ms) {
		return fmt.Errorf("database schema version %d is newer than this client (%d)", current, len(ms))
	}
	for _, m := range ms {
		if m.Version <= current || m.Version > target {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		d.log.Debugw("migration applied", "version", m.Version, "name", m.Name)
	}
	return nil
}

func (d *DB) apply(ctx context.Context, m migration) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return err
	}
	return tx.Commit()
}

// Columns lists the column names of table in declaration order.
func (d *DB) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}
