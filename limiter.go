package comicshelf

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// LoginLimiter rate-limits login attempts per IP address. Each IP gets a
// token bucket of size max refilled over window; idle buckets expire.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets *cache.Cache
	max     int
	window  time.Duration
}

// NewLoginLimiter creates a LoginLimiter that allows max attempts per window.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		buckets: cache.New(2*window, window),
		max:     max,
		window:  window,
	}
}

func (l *LoginLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.buckets.Get(ip); ok {
		lim := v.(*rate.Limiter)
		l.buckets.SetDefault(ip, lim)
		return lim
	}
	lim := rate.NewLimiter(rate.Every(l.window/time.Duration(l.max)), l.max)
	l.buckets.SetDefault(ip, lim)
	return lim
}

// Check returns true if the IP has not exceeded the rate limit.
// It does not record an attempt; call Record separately on failure.
func (l *LoginLimiter) Check(ip string) bool {
	return l.bucket(ip).Tokens() >= 1
}

// Record registers a failed login attempt for the given IP.
func (l *LoginLimiter) Record(ip string) {
	l.bucket(ip).Allow()
}
