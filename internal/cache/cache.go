package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/devdocai/piiguard/internal/privacy"
)

// ScanCache is a Redis-backed cache of scan metadata. Keys are derived from
// a hash of the document and scan parameters; values hold only counts and
// compliance tags. Neither the document text nor the matched values are
// ever written to Redis.
type ScanCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	stats  cacheStats
}

type cacheStats struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// Config contains scan cache configuration.
type Config struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
	PoolSize int
}

// Stats reports cache hit and miss counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewScanCache connects to Redis and verifies the connection.
func NewScanCache(cfg Config, logger *zap.Logger) (*ScanCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	sc := &ScanCache{
		client: client,
		ttl:    cfg.TTL,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Scan cache initialized",
		zap.String("address", cfg.Address),
		zap.Duration("ttl", cfg.TTL),
		zap.Int("pool_size", cfg.PoolSize))
	return sc, nil
}

// Key derives the deterministic cache key for a scan request. The document
// is hashed, never stored, so the key leaks nothing about the content.
func Key(text string, locales []string, minConfidence float64) string {
	sorted := make([]string, len(locales))
	for i, l := range locales {
		sorted[i] = strings.ToUpper(strings.TrimSpace(l))
	}
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(text))
	fmt.Fprintf(h, "|%s|%.4f", strings.Join(sorted, ","), minConfidence)
	return "piiguard:scan:" + hex.EncodeToString(h.Sum(nil))
}

// Get looks up cached scan metadata. A miss returns (nil, nil).
func (sc *ScanCache) Get(ctx context.Context, key string) (*privacy.ScanMetadata, error) {
	data, err := sc.client.Get(ctx, key).Result()
	if err == redis.Nil {
		sc.stats.misses.Add(1)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	var meta privacy.ScanMetadata
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		sc.logger.Warn("Deleting corrupted cache entry", zap.String("key", key))
		sc.client.Del(ctx, key)
		sc.stats.misses.Add(1)
		return nil, nil
	}

	sc.stats.hits.Add(1)
	return &meta, nil
}

// Set stores scan metadata under the given key with the configured TTL.
func (sc *ScanCache) Set(ctx context.Context, key string, meta *privacy.ScanMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal scan metadata: %w", err)
	}
	if err := sc.client.Set(ctx, key, data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache scan metadata: %w", err)
	}
	return nil
}

// Stats returns current hit and miss counters.
func (sc *ScanCache) Stats() Stats {
	return Stats{
		Hits:   sc.stats.hits.Load(),
		Misses: sc.stats.misses.Load(),
	}
}

// Close releases the Redis connection pool.
func (sc *ScanCache) Close() error {
	return sc.client.Close()
}
