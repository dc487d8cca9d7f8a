package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"novelhub/internal/backend"
)

type fileSession struct {
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
	ExpiresAt    int64  `yaml:"expires_at"`
	UserID       string `yaml:"user_id"`
	Email        string `yaml:"email"`
}

// FileStore keeps sessions in a YAML file readable only by the owner, for
// machines without a keyring.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath is ~/.novelhub/session.yaml.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".novelhub", "session.yaml")
	}
	return filepath.Join(home, ".novelhub", "session.yaml")
}

func (f *FileStore) read() (map[string]fileSession, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]fileSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	all := map[string]fileSession{}
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return all, nil
}

func (f *FileStore) write(all map[string]fileSession) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := yaml.Marshal(all)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileStore) Load(_ context.Context, key string) (*backend.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.read()
	if err != nil {
		return nil, err
	}
	s, ok := all[key]
	if !ok {
		return nil, ErrNoSession
	}
	return &backend.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "bearer",
		ExpiresAt:    s.ExpiresAt,
		User:         backend.User{ID: s.UserID, Email: s.Email},
	}, nil
}

func (f *FileStore) Save(_ context.Context, key string, s *backend.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.read()
	if err != nil {
		return err
	}
	all[key] = fileSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.Expiry().Unix(),
		UserID:       s.User.ID,
		Email:        s.User.Email,
	}
	return f.write(all)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := all[key]; !ok {
		return nil
	}
	delete(all, key)
	return f.write(all)
}
