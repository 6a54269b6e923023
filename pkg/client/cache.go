package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

type cacheFile struct {
	User    *Profile `json:"user,omitempty"`
	Access  string   `json:"access_token,omitempty"`
	Refresh string   `json:"refresh_token,omitempty"`
}

// SessionCache persists the signed-in profile under the "user" key of a
// JSON file. A missing or unreadable file means signed out.
type SessionCache struct {
	Path string
}

func NewSessionCache(path string) *SessionCache {
	return &SessionCache{Path: path}
}

// DefaultCachePath is <user config dir>/template-marketplace/session.json.
func DefaultCachePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "template-marketplace", "session.json")
}

func (c *SessionCache) read() cacheFile {
	var f cacheFile
	b, err := os.ReadFile(c.Path)
	if err != nil {
		return cacheFile{}
	}
	if json.Unmarshal(b, &f) != nil {
		return cacheFile{}
	}
	return f
}

// Load never fails: corrupt or missing data reports ok=false.
func (c *SessionCache) Load() (Profile, bool) {
	f := c.read()
	if f.User == nil || f.User.ID == "" {
		return Profile{}, false
	}
	return *f.User, true
}

// Tokens returns the cached token pair, if any.
func (c *SessionCache) Tokens() (access, refresh string) {
	f := c.read()
	return f.Access, f.Refresh
}

// Save replaces the cached profile and tokens.
func (c *SessionCache) Save(p Profile, access, refresh string) error {
	b, err := json.MarshalIndent(cacheFile{User: &p, Access: access, Refresh: refresh}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.Path), ".session-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.Path)
}

func (c *SessionCache) Clear() error {
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
