package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type attempt struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginLimiter throttles sign-in attempts per normalized email address so a
// single account cannot be hammered with credential guesses.
type loginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attempt
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

func newLoginLimiter(attemptsPerMinute, burst int) *loginLimiter {
	if attemptsPerMinute <= 0 {
		attemptsPerMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &loginLimiter{
		attempts: make(map[string]*attempt),
		limit:    rate.Every(time.Minute / time.Duration(attemptsPerMinute)),
		burst:    burst,
		ttl:      10 * time.Minute,
		now:      time.Now,
	}
}

func (l *loginLimiter) allow(email string) bool {
	now := l.now()

	l.mu.Lock()
	a, ok := l.attempts[email]
	if !ok {
		a = &attempt{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.attempts[email] = a
	}
	a.lastSeen = now
	for key, stale := range l.attempts {
		if now.Sub(stale.lastSeen) > l.ttl {
			delete(l.attempts, key)
		}
	}
	l.mu.Unlock()

	return a.limiter.Allow()
}
