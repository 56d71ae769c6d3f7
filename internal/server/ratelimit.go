package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters keeps one token bucket per client IP. Entries for IPs that
// go quiet are evicted so the map does not grow without bound.
type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(rps float64, burst int, ttl time.Duration) *clientLimiters {
	cl := &clientLimiters{
		clients: make(map[string]*clientEntry),
		rate:    rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
	}

	go cl.evictStale()

	return cl
}

func (cl *clientLimiters) evictStale() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cl.mu.Lock()
		for ip, entry := range cl.clients {
			if time.Since(entry.lastSeen) > cl.ttl {
				delete(cl.clients, ip)
			}
		}
		cl.mu.Unlock()
	}
}

func (cl *clientLimiters) allow(ip string) bool {
	cl.mu.Lock()
	entry, ok := cl.clients[ip]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(cl.rate, cl.burst)}
		cl.clients[ip] = entry
	}
	entry.lastSeen = time.Now()
	cl.mu.Unlock()

	return entry.limiter.Allow()
}

// RateLimitMiddleware rejects clients exceeding rps sustained requests per
// second with a burst allowance, keyed by client IP.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiters := newClientLimiters(rps, burst, 3*time.Minute)

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
