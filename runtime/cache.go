package runtime

import (
	"sync"

	"chat-relay/domain"
)

// HistoryCache memoizes the ordered message history per user for the
// lifetime of the process. No eviction, no TTL; last write wins when two
// joins for the same user race on a cache miss (both fetch the same data,
// so the overwrite is idempotent).
type HistoryCache struct {
	mu        sync.RWMutex
	histories map[string][]domain.Message
}

func NewHistoryCache() *HistoryCache {
	return &HistoryCache{histories: make(map[string][]domain.Message)}
}

func (c *HistoryCache) Get(userID string) ([]domain.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	messages, ok := c.histories[userID]
	return messages, ok
}

func (c *HistoryCache) Put(userID string, messages []domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories[userID] = messages
}

// Append adds a freshly persisted message to an existing entry, keeping
// cached histories in sync with the store. Users without an entry are
// skipped: their next join fills the cache from persistence anyway.
func (c *HistoryCache) Append(userID string, msg domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if messages, ok := c.histories[userID]; ok {
		c.histories[userID] = append(messages, msg)
	}
}
