package site

import (
	"encoding/json"
	"sync"
)

// Names of the JSON artifacts kept in memory after a build.
const (
	artifactSearchIndex = "search-index.json"
	artifactRoutes      = "routes.json"
)

// artifactCache keeps the serialized JSON artifacts of the last successful
// build so the preview server can answer without touching disk.
type artifactCache struct {
	mu       sync.RWMutex
	payloads map[string]json.RawMessage
}

func newArtifactCache() *artifactCache {
	return &artifactCache{payloads: make(map[string]json.RawMessage)}
}

func (c *artifactCache) Update(name string, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(payload) == 0 {
		delete(c.payloads, name)
		return
	}
	c.payloads[name] = append(json.RawMessage(nil), payload...)
}

func (c *artifactCache) Snapshot(name string) json.RawMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	payload := c.payloads[name]
	if len(payload) == 0 {
		return nil
	}
	clone := make(json.RawMessage, len(payload))
	copy(clone, payload)
	return clone
}
