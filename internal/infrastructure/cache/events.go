package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// eventTTL keeps processed webhook event IDs long enough to absorb the
// provider's retry window.
const eventTTL = 24 * time.Hour

// EventCache de-duplicates webhook deliveries by event ID. It is an
// optimization on top of the ledger's idempotency, not a correctness
// mechanism: if redis is down the ledger still converges.
type EventCache struct {
	client *redis.Client
}

func NewEventCache(client *redis.Client) *EventCache {
	return &EventCache{client: client}
}

// MarkProcessed claims the event ID. first is true when this delivery is
// the first one seen.
func (c *EventCache) MarkProcessed(ctx context.Context, eventID string) (first bool, err error) {
	return c.client.SetNX(ctx, "webhook_event:"+eventID, 1, eventTTL).Result()
}
