package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS          = 5000
	defaultMaxOpenConns    = 1
	defaultMaxIdleConns    = 1
	defaultConnMaxLifetime = 5 * time.Minute

	maxOpenConnsEnvKey    = "MEMOREAL_DB_MAX_OPEN_CONNS"
	maxIdleConnsEnvKey    = "MEMOREAL_DB_MAX_IDLE_CONNS"
	connMaxLifetimeEnvKey = "MEMOREAL_DB_CONN_MAX_LIFETIME"
)

var (
	// ErrCapsuleExists is returned when a capsule id is already taken.
	ErrCapsuleExists = errors.New("capsule already exists")
	// ErrMintExists is returned when a capsule already has a recorded mint.
	ErrMintExists = errors.New("mint already recorded")
	// ErrMintAddressTaken is returned when a mint address belongs to another capsule.
	ErrMintAddressTaken = errors.New("mint address already in use")
	// ErrTokenAccountConflict is returned when a token account holds another owner's or mint's tokens.
	ErrTokenAccountConflict = errors.New("token account belongs to another owner or mint")
)

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// StoreInfo summarizes the database contents.
type StoreInfo struct {
	SchemaVersion int            `json:"schema_version"`
	CapsuleCounts map[string]int `json:"capsule_counts"`
	TotalCapsules int            `json:"total_capsules"`
	TotalMints    int            `json:"total_mints"`
}

// Open opens the SQLite database and applies pending migrations.
func Open(path string) (*Store, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// StoreInfo returns schema version and record counts.
func (s *Store) StoreInfo(ctx context.Context) (*StoreInfo, error) {
	return readStoreInfo(ctx, s.db)
}

func readStoreInfo(ctx context.Context, db *sql.DB) (*StoreInfo, error) {
	version, err := currentVersion(db)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT type, COUNT(*) FROM capsules GROUP BY type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	info := &StoreInfo{SchemaVersion: version, CapsuleCounts: map[string]int{}}
	for rows.Next() {
		var capsuleType string
		var count int
		if err := rows.Scan(&capsuleType, &count); err != nil {
			return nil, err
		}
		info.CapsuleCounts[capsuleType] = count
		info.TotalCapsules += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM token_mints").Scan(&info.TotalMints); err != nil {
		return nil, err
	}
	return info, nil
}

func configureDB(db *sql.DB) error {
	// journal_mode is stored in the database file; the per-connection
	// pragmas travel in the DSN.
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return err
	}

	// Tune connection pool for local usage.
	db.SetMaxOpenConns(intFromEnv(maxOpenConnsEnvKey, defaultMaxOpenConns))
	db.SetMaxIdleConns(intFromEnv(maxIdleConnsEnvKey, defaultMaxIdleConns))
	db.SetConnMaxLifetime(durationFromEnv(connMaxLifetimeEnvKey, defaultConnMaxLifetime))

	return nil
}

// sqliteDSN builds a modernc DSN whose pragmas apply to every pooled
// connection. Write transactions take the lock up front so concurrent mints
// queue on busy_timeout instead of failing on upgrade.
func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	query := url.Values{}
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	query.Add("_pragma", "synchronous(NORMAL)")
	query.Set("_txlock", "immediate")
	u := url.URL{Scheme: "file", Path: path, RawQuery: query.Encode()}
	return u.String(), nil
}

func intFromEnv(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return def
}

func isUniqueConstraint(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return formatTime(*value)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func parseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
