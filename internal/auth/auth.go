// Package auth maintains the credential cache the assistant process reads at startup.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"osassist/internal/fileutil"
)

const (
	// MessageUpdated is returned by a successful Update.
	MessageUpdated = "Auth cache updated successfully"
	// MessageCleared is returned when Clear removed the file.
	MessageCleared = "Auth cache cleared successfully"
	// MessageNotFound is returned when Clear found nothing to remove.
	MessageNotFound = "Auth cache file not found"
)

// Data is what the UI hands over after a successful sign-in.
type Data struct {
	AccessToken        string `json:"access_token"`
	SubscriptionStatus string `json:"subscription_status"`
	UserID             string `json:"user_id"`
}

// Entry is the persisted form of Data.
type Entry struct {
	Data
	LastValidated string `json:"last_validated"`
}

// Cache reads and writes the auth cache file.
type Cache struct {
	path string
	// Now stamps last_validated; tests replace it.
	Now func() time.Time
}

// NewCache returns a Cache backed by path.
func NewCache(path string) *Cache {
	return &Cache{path: path, Now: time.Now}
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// Update overwrites the cache with data stamped with the current UTC time.
func (c *Cache) Update(data Data) (string, error) {
	entry := Entry{Data: data, LastValidated: c.Now().UTC().Format(time.RFC3339)}
	content, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize auth cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return "", fmt.Errorf("create auth cache directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(c.path, content, 0o600); err != nil {
		return "", fmt.Errorf("write auth cache file: %w", err)
	}
	return MessageUpdated, nil
}

// Read returns the cached entry. A missing file yields fs.ErrNotExist.
func (c *Cache) Read() (Entry, error) {
	content, err := os.ReadFile(c.path)
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(content, &entry); err != nil {
		return Entry{}, fmt.Errorf("parse auth cache: %w", err)
	}
	return entry, nil
}

// Clear removes the cache. A missing file is reported in the message only.
func (c *Cache) Clear() (string, error) {
	if err := os.Remove(c.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MessageNotFound, nil
		}
		return "", fmt.Errorf("remove auth cache file: %w", err)
	}
	return MessageCleared, nil
}
