package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a token bucket for one identity.
type bucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// Limiter keeps one token bucket per identity (ip, user email) and forgets
// identities that were idle longer than the expiration.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64 // tokens per second
	capacity   float64
	expiration time.Duration
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func New(rate float64, capacity float64, expiration time.Duration) *Limiter {
	l := &Limiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// PerMinute allows n requests per minute with bursts of up to n.
func PerMinute(n float64) *Limiter {
	return New(n/60, n, time.Hour)
}

func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[identity]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[identity] = b
	}
	b.lastSeen = now

	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (l *Limiter) sweepLoop() {
	interval := l.expiration / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.expiration {
			delete(l.buckets, id)
		}
	}
}

func (l *Limiter) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop ends the background sweeper. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Done is closed once Stop has been called.
func (l *Limiter) Done() <-chan struct{} {
	return l.stop
}
