// ABOUTME: Per-client rate limiting for the credential endpoints
// ABOUTME: Token-bucket limiters keyed by remote IP with periodic cleanup

package gateway

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// defaultAuthRate allows sustained auth attempts per second per client.
	defaultAuthRate = rate.Limit(1)

	// defaultAuthBurst tolerates short bursts (e.g. register then login).
	defaultAuthBurst = 10

	// limiterIdleTTL is how long an idle client's limiter is kept.
	limiterIdleTTL = 10 * time.Minute

	// limiterCleanupInterval is how often idle limiters are evicted.
	limiterCleanupInterval = 5 * time.Minute
)

// clientLimiter pairs a token bucket with its last access time.
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// rateLimiter tracks a token bucket per client IP. Limiting works as soon as
// the middleware is installed; the idle-client cleanup goroutine only runs
// between start and Close, so handlers built for tests do not leak it.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	rate      rate.Limit
	burst     int
	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
}

func newRateLimiter(r rate.Limit, burst int) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    r,
		burst:   burst,
		stopCh:  make(chan struct{}),
	}
}

// start launches the idle-client cleanup goroutine. Safe to call once.
func (rl *rateLimiter) start() {
	rl.startOnce.Do(func() {
		go rl.cleanupLoop()
	})
}

// allow reports whether the client identified by key may proceed.
func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

// middleware enforces the limit, keyed by remote IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if !rl.allow(host) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// cleanupLoop evicts limiters for clients idle longer than limiterIdleTTL.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-limiterIdleTTL)
			rl.mu.Lock()
			for key, cl := range rl.clients {
				if cl.lastAccess.Before(cutoff) {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the cleanup loop.
func (rl *rateLimiter) Close() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}
