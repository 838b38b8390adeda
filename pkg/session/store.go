// Package session persists Instagram authentication credentials across runs.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"igcrawler/pkg/logger"
)

const sessionFileName = "instagram_session.json"

// Credentials is the persisted credential set for one Instagram session.
// A non-empty SessionID makes the set usable; it may still be rejected
// server-side.
type Credentials struct {
	SessionID  string    `json:"session_id"`
	CSRFToken  string    `json:"csrf_token"`
	ClaimToken string    `json:"claim_token,omitempty"`
	Username   string    `json:"username,omitempty"`
	SavedAt    time.Time `json:"saved_at"`
}

// Usable reports whether the credential set can be applied to a transport
func (c *Credentials) Usable() bool {
	return c != nil && c.SessionID != ""
}

// Store persists credentials to durable storage. Load returns (nil, nil)
// when no usable credentials exist; storage problems on load degrade to
// absent rather than failing the caller.
type Store interface {
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	Clear() error
}

// FileStore keeps credentials in a plain JSON file
type FileStore struct {
	path   string
	logger logger.Logger
}

// NewFileStore creates a file-backed store under dir
func NewFileStore(dir string, log logger.Logger) (*FileStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{
		path:   filepath.Join(dir, sessionFileName),
		logger: log,
	}, nil
}

// Load reads persisted credentials. A missing or malformed file is treated
// as "no saved session" and only logged.
func (s *FileStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		s.logger.WarnWithFields("failed to read session file", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil, nil
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		s.logger.WarnWithFields("session file is malformed, ignoring it", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil, nil
	}

	if !creds.Usable() {
		return nil, nil
	}
	return &creds, nil
}

// Save overwrites the persisted credentials wholesale, stamping SavedAt.
// The write is atomic so a crash cannot leave a torn session file.
func (s *FileStore) Save(creds *Credentials) error {
	if !creds.Usable() {
		return fmt.Errorf("refusing to save credentials without a session token")
	}
	creds.SavedAt = time.Now()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	s.logger.InfoWithFields("session saved", map[string]interface{}{
		"path":     s.path,
		"username": creds.Username,
	})
	return nil
}

// Clear deletes the persisted credentials if present
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests
type MemoryStore struct {
	creds *Credentials
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*Credentials, error) {
	if !s.creds.Usable() {
		return nil, nil
	}
	cp := *s.creds
	return &cp, nil
}

func (s *MemoryStore) Save(creds *Credentials) error {
	creds.SavedAt = time.Now()
	cp := *creds
	s.creds = &cp
	return nil
}

func (s *MemoryStore) Clear() error {
	s.creds = nil
	return nil
}
