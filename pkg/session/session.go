package session

import (
	"fmt"
	"strings"

	"igcrawler/pkg/config"
	"igcrawler/pkg/logger"
)

// NewStore builds the credential store selected by the configuration
func NewStore(cfg *config.SessionConfig, log logger.Logger) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		return NewFileStore(cfg.Directory, log)
	case "keyring":
		return NewKeyringStore(log)
	case "encrypted":
		return NewEncryptedFileStore(cfg.Directory, log)
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Backend)
	}
}
