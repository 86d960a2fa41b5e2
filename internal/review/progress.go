package review

import "sync"

// Progress is the resumable part of an active session.
type Progress struct {
	SessionID string
	Position  int
}

// ProgressCache remembers the active session per project so a restarted
// study view can keep reporting against the same session. Entries are
// advisory; the data store remains the record of truth.
type ProgressCache struct {
	mu      sync.Mutex
	entries map[string]Progress
}

func NewProgressCache() *ProgressCache {
	return &ProgressCache{entries: make(map[string]Progress)}
}

// Get returns the cached progress for a project.
func (c *ProgressCache) Get(projectID string) (Progress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[projectID]
	return p, ok
}

// Put stores the progress for a project, replacing any earlier entry.
func (c *ProgressCache) Put(projectID string, p Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[projectID] = p
}

// Clear forgets a project's progress.
func (c *ProgressCache) Clear(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, projectID)
}
