package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"booklist/internal/web"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// limiters unused this long are dropped
	defaultIdleTTL = 10 * time.Minute
	sweepInterval  = time.Minute
)

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter hands out an independent token bucket per key. A janitor
// goroutine evicts keys idle for longer than the idle TTL until Stop is called.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewKeyedRateLimiter allows perInterval events per interval per key, with
// bursts of up to burst.
func NewKeyedRateLimiter(perInterval int, interval time.Duration, burst int) *KeyedRateLimiter {
	k := &KeyedRateLimiter{
		limiters: make(map[string]*keyedLimiter),
		limit:    rate.Limit(float64(perInterval) / interval.Seconds()),
		burst:    burst,
		idleTTL:  max(defaultIdleTTL, interval),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go k.janitor(sweepInterval)
	return k
}

func (k *KeyedRateLimiter) Allow(key string) bool {
	return k.limiter(key).Allow()
}

func (k *KeyedRateLimiter) limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry, ok := k.limiters[key]
	if !ok {
		entry = &keyedLimiter{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = entry
	}
	entry.lastSeen = k.now()
	return entry.limiter
}

// Sweep drops every key not seen within the idle TTL and returns how many went.
func (k *KeyedRateLimiter) Sweep() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-k.idleTTL)
	evicted := 0
	for key, entry := range k.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(k.limiters, key)
			evicted++
		}
	}
	return evicted
}

// Len reports how many keys are tracked.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// Stop ends the janitor. Allow keeps working afterwards.
func (k *KeyedRateLimiter) Stop() {
	k.stopOnce.Do(func() { close(k.stop) })
}

func (k *KeyedRateLimiter) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-k.stop:
			return
		case <-ticker.C:
			k.Sweep()
		}
	}
}

// LoginThrottle limits login submissions per client IP. Page views pass.
func LoginThrottle(limiter *KeyedRateLimiter, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			logger.Warn("login rate limit exceeded", "ip", ip)
			web.SetFlash(c, web.FlashWarning, "Too many login attempts. Please wait a minute and try again.")
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
