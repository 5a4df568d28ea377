package messaging

import (
	"context"
	"strconv"
	"sync"
	"time"

	"Homemade/models"
	"Homemade/pkg/cache"
)

// cachedStore answers repeated polls for the same conversation from a short
// lived cache. Every successful Append drops the cached entry and bumps the
// generation of any read of that pair still in flight; such a read does not
// fill the cache, so it can never reinstate a history that is missing a newer
// message. Pairs are only tracked while a read is in flight.
type cachedStore struct {
	inner Store
	cache *cache.Cache
	ttl   time.Duration

	mu       sync.Mutex
	inflight map[string]*pairReads
}

type pairReads struct {
	readers int
	gen     uint64
}

// NewCachedStore wraps inner with a read cache. ttl<=0 disables caching.
func NewCachedStore(inner Store, c *cache.Cache, ttl time.Duration) Store {
	if c == nil || ttl <= 0 {
		return inner
	}
	return &cachedStore{inner: inner, cache: c, ttl: ttl, inflight: make(map[string]*pairReads)}
}

func pairCacheKey(a, b uint) string {
	low, high := models.PairKey(a, b)
	return cache.KeyFromStrings("conversation", strconv.FormatUint(uint64(low), 10), strconv.FormatUint(uint64(high), 10))
}

func (s *cachedStore) Append(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	msg, err := s.inner.Append(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, err
	}
	key := pairCacheKey(senderID, receiverID)
	s.mu.Lock()
	if r := s.inflight[key]; r != nil {
		r.gen++
	}
	s.cache.Delete(key)
	s.mu.Unlock()
	return msg, nil
}

func (s *cachedStore) Query(ctx context.Context, a, b uint) ([]models.Message, error) {
	key := pairCacheKey(a, b)
	if v, ok := s.cache.Get(key); ok {
		if msgs, ok := v.([]models.Message); ok {
			return cloneMessages(msgs), nil
		}
	}

	s.mu.Lock()
	r := s.inflight[key]
	if r == nil {
		r = &pairReads{}
		s.inflight[key] = r
	}
	r.readers++
	gen := r.gen
	s.mu.Unlock()

	msgs, err := s.inner.Query(ctx, a, b)

	s.mu.Lock()
	if err == nil && r.gen == gen {
		s.cache.Set(key, cloneMessages(msgs), s.ttl)
	}
	r.readers--
	if r.readers == 0 {
		delete(s.inflight, key)
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func cloneMessages(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}
