// Package cache stores source responses in SQLite so repeated runs over the
// same bibliography do not hit the network again.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matsen/betterbib/internal/source"
)

// DefaultTTL is how long a cached response stays valid.
const DefaultTTL = 30 * 24 * time.Hour

// Lookup kinds.
const (
	KindSearch = "search"
	KindID     = "id"
)

// DB wraps a SQLite database connection.
type DB struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// DefaultPath returns the cache location under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("finding cache directory: %w", err)
	}
	return filepath.Join(dir, "betterbib", "responses.db"), nil
}

// OpenDB opens or creates a cache database at the given path. Entries older
// than ttl are ignored; a zero ttl keeps them forever.
func OpenDB(path string, ttl time.Duration) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS responses (
			source TEXT NOT NULL,
			kind TEXT NOT NULL,
			key TEXT NOT NULL,
			candidates_json TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (source, kind, key)
		);

		CREATE INDEX IF NOT EXISTS idx_responses_fetched ON responses(fetched_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached candidates for a lookup. The boolean is false on a
// miss or when the stored response has expired.
func (d *DB) Get(src, kind, key string) ([]source.Candidate, bool, error) {
	var body string
	var fetched int64
	err := d.db.QueryRow(
		`SELECT candidates_json, fetched_at FROM responses WHERE source = ? AND kind = ? AND key = ?`,
		src, kind, key,
	).Scan(&body, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	if d.ttl > 0 && d.now().Sub(time.Unix(fetched, 0)) > d.ttl {
		return nil, false, nil
	}

	var cands []source.Candidate
	if err := json.Unmarshal([]byte(body), &cands); err != nil {
		return nil, false, fmt.Errorf("decoding cached response: %w", err)
	}
	return cands, true, nil
}

// Put stores the candidates for a lookup, replacing any previous value.
func (d *DB) Put(src, kind, key string, cands []source.Candidate) error {
	if cands == nil {
		cands = []source.Candidate{}
	}
	body, err := json.Marshal(cands)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT OR REPLACE INTO responses (source, kind, key, candidates_json, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		src, kind, key, string(body), d.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Prune deletes expired responses and returns how many were removed.
func (d *DB) Prune() (int64, error) {
	if d.ttl <= 0 {
		return 0, nil
	}
	cutoff := d.now().Add(-d.ttl).Unix()
	res, err := d.db.Exec(`DELETE FROM responses WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored responses.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting responses: %w", err)
	}
	return n, nil
}
