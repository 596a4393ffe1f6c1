package evaluation

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/pkg/redis"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 10 * time.Minute
)

// Snapshot is the role-independent part of an evaluation. It is what gets
// cached: role scores are cheap and depend on the caller's alpha.
type Snapshot struct {
	Metadata   contracts.DatasetMetadata `json:"metadata"`
	Dimensions contracts.DimensionScores `json:"dimensions"`
	BaseScore  float64                   `json:"base_score"`
}

// Cache stores snapshots keyed by table digest and weights hash
type Cache interface {
	Get(ctx context.Context, key string) (*Snapshot, bool, error)
	Set(ctx context.Context, key string, snap *Snapshot) error
}

type memoryEntry struct {
	snap     Snapshot
	storedAt time.Time
}

// MemoryCache is an in-process LRU with a per-entry TTL
type MemoryCache struct {
	cache *lru.Cache[string, memoryEntry]
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryCache falls back to defaults for non-positive size or ttl
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	c, err := lru.New[string, memoryEntry](size)
	if err != nil {
		// only returned for size <= 0
		panic(err)
	}
	return &MemoryCache{cache: c, ttl: ttl, now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*Snapshot, bool, error) {
	entry, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if m.now().Sub(entry.storedAt) > m.ttl {
		m.cache.Remove(key)
		return nil, false, nil
	}
	snap := entry.snap
	snap.Dimensions = entry.snap.Dimensions.Clone()
	return &snap, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, snap *Snapshot) error {
	entry := memoryEntry{snap: *snap, storedAt: m.now()}
	entry.snap.Dimensions = snap.Dimensions.Clone()
	m.cache.Add(key, entry)
	return nil
}

// Len reports the number of entries, expired ones included
func (m *MemoryCache) Len() int {
	return m.cache.Len()
}

// RedisCache shares snapshots between service instances
type RedisCache struct {
	cache *redis.Cache
	ttl   time.Duration
}

func NewRedisCache(cache *redis.Cache, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{cache: cache, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*Snapshot, bool, error) {
	var snap Snapshot
	found, err := r.cache.Get(ctx, key, &snap)
	if err != nil || !found {
		return nil, false, err
	}
	return &snap, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, snap *Snapshot) error {
	return r.cache.Set(ctx, key, snap, r.ttl)
}

// NewCache picks Redis when the client is enabled, else an in-memory LRU
func NewCache(client *redis.Client, size int, ttl time.Duration) Cache {
	if client != nil && client.Enabled() {
		return NewRedisCache(redis.NewCache(client, "dqs"), ttl)
	}
	return NewMemoryCache(size, ttl)
}

func cacheKey(tableDigest, weightsHash string) string {
	return redis.EvaluationKey(tableDigest, weightsHash)
}
