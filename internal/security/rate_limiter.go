package security

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces per-client request rate limits using token buckets
// from golang.org/x/time/rate.
type RateLimiter struct {
	enabled bool
	rps     rate.Limit
	burst   int
	mu      sync.RWMutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter *rate.Limiter
	// lastSeen holds unix nanoseconds. Touched on every request while
	// other goroutines hold only the map's read lock, so it is atomic.
	lastSeen atomic.Int64
}

func (cl *clientLimiter) touch() {
	cl.lastSeen.Store(time.Now().UnixNano())
}

// Config controls rate limiting behavior.
type Config struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg Config) *RateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &RateLimiter{
		enabled: cfg.Enabled,
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow checks if a request from the given client IP is allowed
func (r *RateLimiter) Allow(clientIP string) bool {
	if !r.enabled {
		return true
	}
	return r.getLimiter(clientIP).Allow()
}

// getLimiter gets or creates the limiter for a client IP
func (r *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	r.mu.RLock()
	cl, exists := r.clients[clientIP]
	r.mu.RUnlock()

	if exists {
		cl.touch()
		return cl.limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if cl, exists := r.clients[clientIP]; exists {
		cl.touch()
		return cl.limiter
	}

	cl = &clientLimiter{limiter: rate.NewLimiter(r.rps, r.burst)}
	cl.touch()
	r.clients[clientIP] = cl
	return cl.limiter
}

// CleanupOldClients removes limiters idle for longer than an hour to
// prevent memory leaks.
func (r *RateLimiter) CleanupOldClients() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour).UnixNano()
	for ip, cl := range r.clients {
		if cl.lastSeen.Load() < cutoff {
			delete(r.clients, ip)
		}
	}
}

// StartCleanupRoutine starts a background routine to clean up idle limiters
func (r *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			r.CleanupOldClients()
		}
	}()
}
