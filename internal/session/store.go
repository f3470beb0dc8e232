package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when no session exists for the requested id.
var ErrNotFound = errors.New("session not found")

// Store persists workout sessions.
type Store interface {
	List() ([]*Session, error)
	Get(id string) (*Session, error) // returns ErrNotFound if none exists
	Save(s *Session) error
	Delete(id string) error
	// MarkUsed records that a run of the session began at the given time.
	MarkUsed(id string, at time.Time) error
	// Location is the file or directory holding the data, for watching.
	Location() string
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the Store for backend rooted at dir. An empty dir resolves to
// the XDG data directory.
func Open(backend, dir string) (Store, error) {
	if dir == "" {
		d, err := DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolving data directory: %w", err)
		}
		dir = d
	}
	switch backend {
	case "", BackendJSON:
		return newDiskStore(filepath.Join(dir, "sessions"))
	case BackendSQLite:
		return newSQLiteStore(dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// DataDir returns the intervals-specific XDG data directory.
// Path: $XDG_DATA_HOME/intervals or ~/.local/share/intervals
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "intervals"), nil
}

// diskStore keeps one JSON file per session.
type diskStore struct {
	dir string
}

func newDiskStore(dir string) (*diskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

func (d *diskStore) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(d.dir, id+".json"), nil
}

func (d *diskStore) Location() string { return d.dir }

func (d *diskStore) Close() error { return nil }

// Save normalises s and writes it atomically via a temp file + os.Rename.
func (d *diskStore) Save(s *Session) error {
	AssignIDs(s)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.Normalize()

	path, err := d.path(s.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(d.dir, "session-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Get reads and unmarshals one session file.
func (d *diskStore) Get(id string) (*Session, error) {
	path, err := d.path(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return readSessionFile(path)
}

// List returns every stored session in directory order.
func (d *diskStore) List() ([]*Session, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessions := make([]*Session, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		s, err := readSessionFile(filepath.Join(d.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// Delete removes the session file from disk.
func (d *diskStore) Delete(id string) error {
	path, err := d.path(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (d *diskStore) MarkUsed(id string, at time.Time) error {
	s, err := d.Get(id)
	if err != nil {
		return err
	}
	at = at.UTC()
	s.LastUsedAt = &at
	return d.Save(s)
}

func readSessionFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", filepath.Base(path), err)
	}
	s.Normalize()
	return &s, nil
}
