package lsp

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

// SourceMapGetter is an interface for retrieving Facades for a generated file.
type SourceMapGetter interface {
	Get(generatedFilePath string) (*sourcemap.Facade, error)
	Invalidate(generatedFilePath string)
	InvalidateAll()
	Size() int
}

type cacheEntry struct {
	facade      *sourcemap.Facade
	fingerprint uint64
}

// SourceMapCache provides in-memory caching of Facades, keyed by the
// generated file's ".map" sidecar path. Entries are kept only while the
// sidecar's content fingerprint (xxhash of the raw bytes) matches what
// was last loaded; a changed fingerprint forces a reparse on the next Get.
type SourceMapCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	logger  Logger
}

// NewSourceMapCache creates a new source map cache.
func NewSourceMapCache(logger Logger) (*SourceMapCache, error) {
	return &SourceMapCache{
		entries: make(map[string]cacheEntry),
		logger:  logger,
	}, nil
}

// Get retrieves a Facade from cache, or loads and parses it from disk if
// the sidecar is missing from the cache or its content fingerprint has
// changed since it was last cached.
func (c *SourceMapCache) Get(generatedFilePath string) (*sourcemap.Facade, error) {
	mapPath := generatedFilePath + ".map"

	data, err := os.ReadFile(mapPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source map not found: %s (generate it first)", mapPath)
		}
		return nil, fmt.Errorf("failed to read source map %s: %w", mapPath, err)
	}
	fingerprint := xxhash.Sum64(data)

	c.mu.RLock()
	if e, ok := c.entries[mapPath]; ok && e.fingerprint == fingerprint {
		c.mu.RUnlock()
		c.logger.Debugf("Source map cache hit: %s", mapPath)
		return e.facade, nil
	}
	c.mu.RUnlock()

	facade, err := sourcemap.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid source map %s: %w", mapPath, err)
	}

	c.mu.Lock()
	c.entries[mapPath] = cacheEntry{facade: facade, fingerprint: fingerprint}
	c.mu.Unlock()

	c.logger.Infof("Source map loaded: %s (%d generated lines)", mapPath, facade.GeneratedLineCount())
	return facade, nil
}

// Invalidate removes a cached Facade (called after the sidecar changes).
func (c *SourceMapCache) Invalidate(generatedFilePath string) {
	mapPath := generatedFilePath + ".map"

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[mapPath]; ok {
		delete(c.entries, mapPath)
		c.logger.Debugf("Source map invalidated: %s", mapPath)
	}
}

// InvalidateAll clears the entire cache.
func (c *SourceMapCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	c.logger.Infof("All source maps invalidated (%d entries cleared)", count)
}

// Size returns the number of cached Facades.
func (c *SourceMapCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
