package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteStore keeps sessions in a single SQLite database. The full session is
// stored as a JSON payload; last_used_at lives in its own column so MarkUsed
// is a single UPDATE.
type sqliteStore struct {
	db   *sql.DB
	path string
}

func newSQLiteStore(dir string) (*sqliteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "sessions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		payload      TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		last_used_at TEXT
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}

	return &sqliteStore{db: db, path: dbPath}, nil
}

func (s *sqliteStore) Location() string { return filepath.Dir(s.path) }

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) Save(sess *Session) error {
	AssignIDs(sess)
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	sess.Normalize()

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	var lastUsed sql.NullString
	if sess.LastUsedAt != nil {
		lastUsed = sql.NullString{String: sess.LastUsedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO sessions (id, name, payload, created_at, last_used_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			payload = excluded.payload,
			created_at = excluded.created_at,
			last_used_at = excluded.last_used_at`,
		sess.ID, sess.Name, string(payload), sess.CreatedAt.UTC().Format(time.RFC3339Nano), lastUsed,
	)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (s *sqliteStore) Get(id string) (*Session, error) {
	row := s.db.QueryRow(`SELECT payload, last_used_at FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

func (s *sqliteStore) List() ([]*Session, error) {
	rows, err := s.db.Query(`SELECT payload, last_used_at FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *sqliteStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireRow(res)
}

func (s *sqliteStore) MarkUsed(id string, at time.Time) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET last_used_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark session used: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var payload string
	var lastUsed sql.NullString
	if err := row.Scan(&payload, &lastUsed); err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, fmt.Errorf("failed to parse stored session: %w", err)
	}
	sess.LastUsedAt = nil
	if lastUsed.Valid {
		at, err := time.Parse(time.RFC3339Nano, lastUsed.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_used_at: %w", err)
		}
		sess.LastUsedAt = &at
	}
	sess.Normalize()
	return &sess, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
