package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"

	"igcrawler/pkg/logger"
)

const (
	keyringService = "igcrawler"
	keyringKey     = "instagram_session"
)

// KeyringStore keeps credentials in the system keychain
type KeyringStore struct {
	logger logger.Logger
}

// NewKeyringStore creates a keychain-backed store. It fails when no keyring
// backend is available on this system.
func NewKeyringStore(log logger.Logger) (*KeyringStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	// Probe availability; go-keyring has no capability check.
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{logger: log}, nil
}

func (s *KeyringStore) Load() (*Credentials, error) {
	data, err := keyring.Get(keyringService, keyringKey)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, nil
		}
		s.logger.WarnWithFields("failed to read session from keyring", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		s.logger.WarnWithFields("keyring session entry is malformed, ignoring it", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}

	if !creds.Usable() {
		return nil, nil
	}
	return &creds, nil
}

func (s *KeyringStore) Save(creds *Credentials) error {
	if !creds.Usable() {
		return fmt.Errorf("refusing to save credentials without a session token")
	}
	creds.SavedAt = time.Now()

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := keyring.Set(keyringService, keyringKey, string(data)); err != nil {
		return fmt.Errorf("failed to store session in keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Clear() error {
	if err := keyring.Delete(keyringService, keyringKey); err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to remove session from keyring: %w", err)
	}
	return nil
}
