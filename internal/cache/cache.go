// Package cache holds the single payload-cache slot for the raw trades
// response. The slot stores {data, cachedAt}; entries younger than the TTL
// are fresh, older ones are served as stale placeholders while the caller
// refreshes in the background. Cache trouble is never fatal to the data
// path: corruption and write failures degrade to a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the freshness horizon for a cached payload.
const DefaultTTL = 6 * time.Hour

// KV is the minimal key-value surface the slot needs. RedisKV adapts
// go-redis to it; tests stub it in memory.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ErrMiss is returned by KV.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// RedisKV adapts a go-redis client to KV.
type RedisKV struct {
	Client *redis.Client
}

// Get implements KV.
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	return v, err
}

// Set implements KV.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.Client.Set(ctx, key, value, 0).Err()
}

// entry is the versioned on-wire cache shape.
type entry struct {
	Data     json.RawMessage `json:"data"`
	CachedAt int64           `json:"cachedAt"` // epoch milliseconds
}

// Slot is one named cache slot.
type Slot struct {
	kv     KV
	key    string
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

// NewSlot creates a slot. A zero ttl means DefaultTTL.
func NewSlot(kv KV, key string, ttl time.Duration, logger *log.Logger) *Slot {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Slot{kv: kv, key: key, ttl: ttl, logger: logger, now: time.Now}
}

// Get returns the cached payload. stale reports whether the entry has aged
// past the TTL (the caller should trigger a background refresh but may
// still render the data). ok is false on miss or corruption.
//
// A legacy pre-versioned entry (the raw payload with no cachedAt wrapper)
// is still readable; it is always reported stale and migrates to the
// wrapped shape on the next Put.
func (s *Slot) Get(ctx context.Context) (data []byte, stale bool, ok bool) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrMiss) {
		return nil, false, false
	}
	if err != nil {
		s.logger.Printf("[cache] read failed: %v", err)
		return nil, false, false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil || e.Data == nil {
		// Legacy shape or corruption: if the payload itself is JSON we
		// can still serve it as a stale placeholder.
		if json.Valid([]byte(raw)) {
			return []byte(raw), true, true
		}
		s.logger.Printf("[cache] corrupt entry for %s, treating as miss", s.key)
		return nil, false, false
	}

	age := s.now().UnixMilli() - e.CachedAt
	return e.Data, age >= s.ttl.Milliseconds(), true
}

// Put stores a payload with the current timestamp, always in the versioned
// shape. Failures are logged and returned but callers treat them as
// non-fatal.
func (s *Slot) Put(ctx context.Context, data []byte) error {
	e := entry{Data: data, CachedAt: s.now().UnixMilli()}
	buf, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, string(buf)); err != nil {
		s.logger.Printf("[cache] write failed: %v", err)
		return err
	}
	return nil
}
