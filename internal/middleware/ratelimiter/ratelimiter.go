// Package ratelimiter keeps one token bucket per key.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// KeyedLimiter refills every bucket at rate tokens per second up to capacity. Buckets
// idle for longer than expiration are dropped on the next sweep.
type KeyedLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64
	capacity   float64
	expiration time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

func New(rate float64, capacity int, expiration time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   float64(capacity),
		expiration: expiration,
		now:        time.Now,
	}
}

// PerMinute builds a limiter from a per-minute rate, the unit the config uses.
func PerMinute(perMinute float64, burst int) *KeyedLimiter {
	return New(perMinute/60, burst, 10*time.Minute)
}

// Allow takes one token from key's bucket.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Len reports how many buckets are tracked.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *KeyedLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.expiration {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.expiration {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
