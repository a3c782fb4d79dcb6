package crypto

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvEncryptionKey overrides the key file when set.
const EnvEncryptionKey = "STUDIO_ENCRYPTION_KEY"

// LoadOrCreate returns an Encryptor for the key in EnvEncryptionKey or, failing
// that, the key file at path. A missing key file is created with a fresh key.
func LoadOrCreate(path string) (*Encryptor, bool, error) {
	if envKey := strings.TrimSpace(os.Getenv(EnvEncryptionKey)); envKey != "" {
		enc, err := NewEncryptorFromBase64(envKey)
		return enc, false, err
	}

	data, err := os.ReadFile(path)
	if err == nil {
		enc, err := NewEncryptorFromBase64(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, false, fmt.Errorf("key file %s: %w", path, err)
		}
		return enc, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("failed to read key file: %w", err)
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, false, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, false, fmt.Errorf("failed to create key directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(key), 0o600); err != nil {
		return nil, false, fmt.Errorf("failed to save encryption key to %s: %w", path, err)
	}
	enc, err := NewEncryptorFromBase64(key)
	return enc, true, err
}
