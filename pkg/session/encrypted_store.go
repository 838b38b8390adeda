package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"igcrawler/pkg/logger"
)

const (
	encryptedFileName = "instagram_session.enc"
	saltSize          = 32
	keySize           = 32
	kdfIterations     = 100000
)

// EncryptedFileStore keeps credentials in an AES-GCM encrypted file with a
// PBKDF2-derived key. The passphrase comes from IGCRAWLER_PASSPHRASE; when
// unset, a machine-local passphrase is derived so the file at least does
// not hold the session token in the clear.
type EncryptedFileStore struct {
	path       string
	passphrase string
	logger     logger.Logger
}

// envelope is the on-disk structure of the encrypted file
type envelope struct {
	Salt      string `json:"salt"`
	Encrypted string `json:"encrypted"`
}

// NewEncryptedFileStore creates an encrypted file-backed store under dir
func NewEncryptedFileStore(dir string, log logger.Logger) (*EncryptedFileStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &EncryptedFileStore{
		path:       filepath.Join(dir, encryptedFileName),
		passphrase: resolvePassphrase(),
		logger:     log,
	}, nil
}

func resolvePassphrase() string {
	if p := os.Getenv("IGCRAWLER_PASSPHRASE"); p != "" {
		return p
	}
	hostname, _ := os.Hostname()
	return fmt.Sprintf("igcrawler:%s:%s", hostname, os.Getenv("USER"))
}

func (s *EncryptedFileStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		s.logger.WarnWithFields("failed to read encrypted session file", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.WarnWithFields("encrypted session file is malformed, ignoring it", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil, nil
	}

	plaintext, err := s.decrypt(&env)
	if err != nil {
		s.logger.WarnWithFields("failed to decrypt session file, ignoring it", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil, nil
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, nil
	}
	if !creds.Usable() {
		return nil, nil
	}
	return &creds, nil
}

func (s *EncryptedFileStore) Save(creds *Credentials) error {
	if !creds.Usable() {
		return fmt.Errorf("refusing to save credentials without a session token")
	}
	creds.SavedAt = time.Now()

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	env, err := s.encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (s *EncryptedFileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (s *EncryptedFileStore) encrypt(plaintext []byte) (*envelope, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return &envelope{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

func (s *EncryptedFileStore) decrypt(env *envelope) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext encoding: %w", err)
	}

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func (s *EncryptedFileStore) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(s.passphrase), salt, kdfIterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
