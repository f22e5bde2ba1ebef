package translate

import (
	"characterstory/internal/entity"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	cacheExpiry  = 7 * 24 * time.Hour
	maxCacheSize = 100
)

type cacheItem struct {
	Hash           string    `json:"hash"`
	OriginalText   string    `json:"originalText"`
	TranslatedText string    `json:"translatedText"`
	FromLang       string    `json:"fromLang"`
	ToLang         string    `json:"toLang"`
	Timestamp      time.Time `json:"timestamp"`
}

// Cache is a small translation memo store: capped at 100 entries with the
// oldest trimmed first, entries expire after 7 days, and the whole store is
// persisted as one JSON file between restarts.
type Cache struct {
	mu    sync.Mutex
	path  string
	items []cacheItem
}

// NewCache loads the memo store from path. A missing or unreadable file
// starts an empty cache; persistence stays best-effort throughout.
func NewCache(path string) *Cache {
	c := &Cache{path: path}
	raw, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(raw, &c.items); err != nil {
			logrus.WithError(err).Warn("translation cache file unreadable, starting empty")
			c.items = nil
		}
	}
	return c
}

// cacheKey hashes text and language pair with FNV-1a.
func cacheKey(text, fromLang, toLang string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text + "_" + fromLang + "_" + toLang))
	return fmt.Sprintf("%x", h.Sum32())
}

// Get returns the memoized translation if present and unexpired.
func (c *Cache) Get(text, fromLang, toLang string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := cacheKey(text, fromLang, toLang)
	now := time.Now()
	for _, item := range c.items {
		if item.Hash != hash || item.FromLang != fromLang || item.ToLang != toLang {
			continue
		}
		if now.Sub(item.Timestamp) >= cacheExpiry {
			continue
		}
		return item.TranslatedText, true
	}
	return "", false
}

// Put memoizes a translation, replacing any entry with the same key and
// trimming the store to the newest entries.
func (c *Cache) Put(text, translated, fromLang, toLang string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := cacheKey(text, fromLang, toLang)
	filtered := c.items[:0]
	for _, item := range c.items {
		if item.Hash != hash {
			filtered = append(filtered, item)
		}
	}
	filtered = append(filtered, cacheItem{
		Hash:           hash,
		OriginalText:   text,
		TranslatedText: translated,
		FromLang:       fromLang,
		ToLang:         toLang,
		Timestamp:      time.Now(),
	})
	if len(filtered) > maxCacheSize {
		filtered = filtered[len(filtered)-maxCacheSize:]
	}
	c.items = filtered
	c.persistLocked()
}

// Stats describes the current memo store.
func (c *Cache) Stats() entity.TranslateStatsResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := entity.TranslateStatsResponse{TotalItems: len(c.items)}
	if len(c.items) == 0 {
		return stats
	}

	oldest := c.items[0].Timestamp
	newest := c.items[0].Timestamp
	for _, item := range c.items[1:] {
		if item.Timestamp.Before(oldest) {
			oldest = item.Timestamp
		}
		if item.Timestamp.After(newest) {
			newest = item.Timestamp
		}
	}
	stats.OldestEntry = &oldest
	stats.NewestEntry = &newest

	if raw, err := json.Marshal(c.items); err == nil {
		stats.CacheSize = len(raw)
	}
	return stats
}

// Clear drops all entries and removes the cache file.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	if c.path == "" {
		return
	}
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to remove translation cache file")
	}
}

func (c *Cache) persistLocked() {
	if c.path == "" {
		return
	}
	raw, err := json.Marshal(c.items)
	if err != nil {
		logrus.WithError(err).Warn("failed to encode translation cache")
		return
	}
	if dir := filepath.Dir(c.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logrus.WithError(err).Warn("failed to create translation cache directory")
			return
		}
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		logrus.WithError(err).Warn("failed to persist translation cache")
	}
}
