// Package cache provides a read-through Redis cache for booked-slot queries.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SlotCache caches booked-slot sets per (date, location). A nil SlotCache or
// one constructed without a client is a no-op, so callers never branch.
type SlotCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

func NewSlotCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *SlotCache {
	return &SlotCache{
		redis: client,
		ttl:   ttl,
		log:   log.With().Str("component", "slot_cache").Logger(),
	}
}

func (c *SlotCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

func slotKey(date, location string) string {
	return fmt.Sprintf("slots:%s:%s", date, location)
}

// Get returns the cached slot set and whether it was present.
func (c *SlotCache) Get(ctx context.Context, date, location string) ([]int, bool) {
	if !c.enabled() {
		return nil, false
	}
	val, err := c.redis.Get(ctx, slotKey(date, location)).Result()
	if err != nil {
		return nil, false
	}
	var slots []int
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Set stores the slot set; failures are logged, never surfaced.
func (c *SlotCache) Set(ctx context.Context, date, location string, slots []int) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, slotKey(date, location), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache write failed")
	}
}

// Invalidate drops the cached set after a booking changes slot occupancy.
func (c *SlotCache) Invalidate(ctx context.Context, date, location string) {
	if !c.enabled() {
		return
	}
	if err := c.redis.Del(ctx, slotKey(date, location)).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
