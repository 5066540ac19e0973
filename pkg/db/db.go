// Package db provides the persistence layer used by the application. It wraps
// a SQLite database and exposes helper methods for storing OAuth tokens and a
// log of recommendation runs. The run log records which cascade source
// satisfied each request so the insights endpoint can report how often the
// pipeline degrades. Callers are expected to open a single DB instance using
// New and reuse it for all operations.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"

	"tunesage/pkg/music"
)

// DB wraps a sql.DB connection and exposes helper methods for the
// application's persistence layer.
type DB struct {
	*sql.DB
}

// New opens the SQLite database located at path. If the file does not exist
// it is created along with the required schema.
func New(path string) (*DB, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tokens (user_id TEXT PRIMARY KEY, token TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS recommendation_runs (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id TEXT, source TEXT, track_count INTEGER, created_at TIMESTAMP)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_user_time ON recommendation_runs(user_id, created_at)`,
	}
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			d.Close()
			return nil, fmt.Errorf("init db: %w", err)
		}
	}
	return &DB{d}, nil
}

// SaveToken persists the OAuth token for the given userID. If a token already
// exists it is replaced.
func (db *DB) SaveToken(ctx context.Context, userID string, token *oauth2.Token) error {
	b, err := json.Marshal(token)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO tokens(user_id, token) VALUES(?, ?) ON CONFLICT(user_id) DO UPDATE SET token=excluded.token`, userID, string(b))
	return err
}

// GetToken retrieves the OAuth token stored for userID and unmarshals it from
// JSON. The returned token includes the refresh token if one was originally
// saved.
func (db *DB) GetToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	var data string
	if err := db.QueryRowContext(ctx, `SELECT token FROM tokens WHERE user_id=?`, userID).Scan(&data); err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(data), &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// AddRun records one completed recommendation run for userID. The source tag
// names the cascade stage that produced the result.
func (db *DB) AddRun(ctx context.Context, userID string, source music.Source, trackCount int) error {
	_, err := db.ExecContext(ctx, `INSERT INTO recommendation_runs(user_id, source, track_count, created_at) VALUES(?, ?, ?, ?)`,
		userID, string(source), trackCount, time.Now().UTC())
	return err
}

// SourceCount pairs a provenance tag with the number of runs it satisfied.
type SourceCount struct {
	Source music.Source `json:"source"`
	Count  int          `json:"count"`
}

// SourceCountsSince returns per-source run counts for userID from the given
// time onward, most frequent first. Timestamps are stored in UTC, so the
// bound is converted before comparison; since values in any zone behave the
// same.
func (db *DB) SourceCountsSince(ctx context.Context, userID string, since time.Time) ([]SourceCount, error) {
	rows, err := db.QueryContext(ctx, `SELECT source, COUNT(*) c FROM recommendation_runs WHERE user_id=? AND created_at>=? GROUP BY source ORDER BY c DESC`, userID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []SourceCount
	for rows.Next() {
		var sc SourceCount
		var src string
		if err := rows.Scan(&src, &sc.Count); err != nil {
			return nil, err
		}
		sc.Source = music.Source(src)
		res = append(res, sc)
	}
	return res, rows.Err()
}
