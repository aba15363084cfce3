// Package pipeline reads images into ImagePairs and writes results to disk.
package pipeline

import (
	"os"
	"sync"

	"cv-analyser/internal/opencv/safe"
)

// Codec decodes images from disk and writes output images atomically. It
// remembers in-flight temporary files so Shutdown can remove them.
type Codec struct {
	memTracker safe.MemoryTracker
	logger     Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCodec(memTracker safe.MemoryTracker, logger Logger) *Codec {
	return &Codec{
		memTracker: memTracker,
		logger:     logger,
		inFlight:   make(map[string]struct{}),
	}
}

func (c *Codec) track(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight[path] = struct{}{}
}

func (c *Codec) untrack(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, path)
}

// Shutdown removes temporary files of saves that never completed.
func (c *Codec) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path := range c.inFlight {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.logger.Error("Codec", err, map[string]interface{}{"temp_file": path})
			continue
		}
		c.logger.Warning("Codec", "removed incomplete output", map[string]interface{}{"temp_file": path})
		delete(c.inFlight, path)
	}
}
