package repository

import (
	"sync"

	"github.com/trotyl/uestc-sdk-go/internal/models"
)

// UserKey is the record cache key of a confirmed user.
func UserKey(studentID string) string { return studentID }

// SearchKey is the record cache key of a live search result set.
func SearchKey(kind string, opt models.SearchOption) string { return opt.Fingerprint(kind) }

// RecordCache is the session-scoped store of every entity the portal confirmed. Entries are
// never evicted; Put overwrites the value but keeps the key's original insertion position.
type RecordCache struct {
	mu      sync.RWMutex
	entries map[string]any
	order   []string
}

// NewRecordCache constructs an empty cache.
func NewRecordCache() *RecordCache {
	return &RecordCache{entries: make(map[string]any)}
}

// Put stores value under key.
func (c *RecordCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = value
}

// Get returns the value under key and whether it was present.
func (c *RecordCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

// Has reports whether key is present.
func (c *RecordCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Len returns the number of keys.
func (c *RecordCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Values returns a snapshot of the stored values in insertion order.
func (c *RecordCache) Values() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	values := make([]any, 0, len(c.order))
	for _, key := range c.order {
		values = append(values, c.entries[key])
	}
	return values
}

// User returns the user cached under studentID.
func (c *RecordCache) User(studentID string) (*models.User, bool) {
	value, ok := c.Get(UserKey(studentID))
	if !ok {
		return nil, false
	}
	switch u := value.(type) {
	case *models.User:
		return u, u != nil
	case models.User:
		return &u, true
	}
	return nil, false
}
