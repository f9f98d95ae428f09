package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/c360studio/boardctl/model"
)

// Credentials is the locally persisted session: the token and the user
// record derived from it. Both live in a single document so they can never
// be cleared independently.
type Credentials struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// CredentialsFile persists Credentials as JSON on disk.
type CredentialsFile struct {
	path string
}

// NewCredentialsFile creates a store backed by the given path.
func NewCredentialsFile(path string) *CredentialsFile {
	return &CredentialsFile{path: path}
}

// Path returns the backing file path.
func (f *CredentialsFile) Path() string {
	return f.path
}

// Load reads persisted credentials. A missing file returns (nil, nil).
func (f *CredentialsFile) Load() (*Credentials, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	return &creds, nil
}

// Save writes credentials with owner-only permissions. The write goes
// through a temp file and rename so a crash cannot leave a torn document.
func (f *CredentialsFile) Save(creds *Credentials) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod credentials file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close credentials file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install credentials file: %w", err)
	}
	return nil
}

// Clear removes persisted credentials. Clearing an absent file is not an
// error.
func (f *CredentialsFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials file: %w", err)
	}
	return nil
}
