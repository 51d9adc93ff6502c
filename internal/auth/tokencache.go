package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// TokenCache persists the session as a JSON file so the CLI stays signed in
// between runs, mirroring the provider's browser-side persistence.
type TokenCache struct {
	path string
}

// NewTokenCache creates a cache backed by the given file path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Load reads the cached session. A missing file is (nil, nil).
func (t *TokenCache) Load() (*Session, error) {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("token cache: read: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("token cache: decode: %w", err)
	}
	if sess.IDToken == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session. The file is user-readable only: it holds a
// credential token.
func (t *TokenCache) Save(sess *Session) error {
	if sess == nil {
		return t.Clear()
	}

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("token cache: mkdir: %w", err)
		}
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("token cache: encode: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o600); err != nil {
		return fmt.Errorf("token cache: write: %w", err)
	}
	return nil
}

// Clear removes the cached session. A missing file is not an error.
func (t *TokenCache) Clear() error {
	err := os.Remove(t.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("token cache: remove: %w", err)
	}
	return nil
}
