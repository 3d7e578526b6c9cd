package memory

import (
	"time"

	"viralizaai-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PaymentStatusCache remembers terminal payment records so status polling
// skips the database once a payment has settled.
type PaymentStatusCache struct {
	cache *cache.Cache
}

func NewPaymentStatusCache(ttl time.Duration) *PaymentStatusCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PaymentStatusCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

// Save ignores pending records; their status can still change.
// A nil cache stores nothing.
func (c *PaymentStatusCache) Save(payment *entity.PaymentRecord) {
	if c == nil || payment == nil || !payment.Status.IsTerminal() {
		return
	}
	c.cache.Set(payment.Id.String(), payment.Clone(), cache.DefaultExpiration)
}

func (c *PaymentStatusCache) Get(id uuid.UUID) (*entity.PaymentRecord, bool) {
	if c == nil {
		return nil, false
	}
	if x, found := c.cache.Get(id.String()); found {
		return x.(*entity.PaymentRecord).Clone(), true
	}
	return nil, false
}

func (c *PaymentStatusCache) Delete(id uuid.UUID) {
	if c == nil {
		return
	}
	c.cache.Delete(id.String())
}
