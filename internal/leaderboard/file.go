package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON document per key inside dir.
type FileStore struct {
	dir string
	key string
}

// ErrInvalidKey is returned for keys that cannot name a file inside the store dir.
var ErrInvalidKey = errors.New("invalid leaderboard key")

// NewFileStore trims key and rejects values that are empty or would escape dir.
func NewFileStore(dir, key string) (*FileStore, error) {
	key = strings.TrimSpace(key)
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return &FileStore{dir: dir, key: key}, nil
}

type document struct {
	Key     string  `json:"key"`
	Entries []Entry `json:"entries"`
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, s.key+".json")
}

// Load returns nil entries when the record does not exist yet.
func (s *FileStore) Load(ctx context.Context) ([]Entry, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing leaderboard: %w", err)
	}
	return doc.Entries, nil
}

// Save overwrites the record atomically.
func (s *FileStore) Save(ctx context.Context, entries []Entry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating leaderboard dir: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(document{Key: s.key, Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding leaderboard: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, s.key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing leaderboard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing leaderboard: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		return fmt.Errorf("replacing leaderboard: %w", err)
	}
	return nil
}
