package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists a single access token.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Path() string
}

// FileStore keeps the token as plaintext in one file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (string, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("load token: %w: token file %q not found", ErrUnavailable, s.path)
		}
		return "", fmt.Errorf("load token: %w: read file: %v", ErrUnavailable, err)
	}

	token := strings.TrimSpace(string(content))
	if token == "" {
		return "", fmt.Errorf("load token: %w: token file %q is empty", ErrUnavailable, s.path)
	}

	return token, nil
}

func (s *FileStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("save token: empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save token: ensure dir: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("save token: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("save token: rename temp file: %w", err)
	}

	return nil
}
