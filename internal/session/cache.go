package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"linkup/model"
	"linkup/pkg/logging"
)

// cacheKey is the fixed key the cached identity is stored under.
const cacheKey = "linkup_user"

// Cache persists the authenticated identity to local storage so it can be
// restored at next launch when the identity service has no live session.
type Cache struct {
	dir    string
	logger logging.Logger
}

func NewCache(dir string, logger logging.Logger) *Cache {
	return &Cache{dir: dir, logger: logger}
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, cacheKey+".json")
}

func (c *Cache) Save(id model.Identity) {
	data, err := json.Marshal(id)
	if err != nil {
		c.logger.WithError(err).Warn("session cache save failed")
		return
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		c.logger.WithError(err).Warn("session cache save failed")
		return
	}
	if err := os.WriteFile(c.path(), data, 0o600); err != nil {
		c.logger.WithError(err).Warn("session cache save failed")
	}
}

// Load returns the cached identity, or nil when none is stored.
func (c *Cache) Load() *model.Identity {
	data, err := os.ReadFile(c.path())
	if err != nil {
		return nil
	}
	var id model.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		c.logger.WithError(err).Warn("session cache unreadable, ignoring")
		return nil
	}
	if id.ID == "" {
		return nil
	}
	return &id
}

func (c *Cache) Clear() {
	if err := os.Remove(c.path()); err != nil && !os.IsNotExist(err) {
		c.logger.WithError(err).Warn("session cache clear failed")
	}
}
