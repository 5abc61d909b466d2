package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Credentials is what survives between CLI runs
type Credentials struct {
	Token   string    `yaml:"token"`
	UserID  string    `yaml:"user_id"`
	Email   string    `yaml:"email"`
	APIURL  string    `yaml:"api_url"`
	SavedAt time.Time `yaml:"saved_at"`
}

// CredentialStore persists the session token.
type CredentialStore interface {
	// Load returns os.ErrNotExist (wrapped) when nothing is stored
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	Clear() error
}

// FileCredentialStore keeps credentials in a YAML file readable only by the owner.
type FileCredentialStore struct {
	path string
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Path() string { return s.path }

func (s *FileCredentialStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", s.path, err)
	}
	if creds.Token == "" {
		return nil, fmt.Errorf("credentials %s have no token: %w", s.path, os.ErrNotExist)
	}
	return &creds, nil
}

// Save writes through a temp file so a crash never leaves a torn file
func (s *FileCredentialStore) Save(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the stored credentials; clearing nothing is not an error
func (s *FileCredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
