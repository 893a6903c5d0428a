package cache

import (
	"sync"
	"time"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

type entry struct {
	promo     *models.Promotion
	expiresAt time.Time
}

// PromotionCache keeps resolved promotion definitions for a short while so a
// busy till does not hit the database for every order. A ttl of zero keeps
// entries until they are invalidated.
type PromotionCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	store map[string]entry
}

func NewPromotionCache(ttl time.Duration) *PromotionCache {
	return &PromotionCache{
		ttl:   ttl,
		now:   time.Now,
		store: make(map[string]entry),
	}
}

func (c *PromotionCache) Get(id string) (*models.Promotion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[id]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.promo, true
}

func (c *PromotionCache) Set(p *models.Promotion) {
	if p == nil {
		return
	}
	var exp time.Time
	if c.ttl > 0 {
		exp = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[p.ID] = entry{promo: p, expiresAt: exp}
}

func (c *PromotionCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, id)
}
