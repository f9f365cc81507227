// Package ratelimit provides an in-process throttler with escalating
// cooldowns for sensitive endpoints such as sign-in and invite redemption.
//
// State lives in memory: it is neither shared between processes nor kept
// across restarts.
package ratelimit

import (
	"errors"
	"sync"
	"time"
)

var ErrInvalidIntervals = errors.New("ratelimit: intervals must be non-empty, positive and non-decreasing")

type cooldown struct {
	lastVisit    time.Time
	penaltyIndex int
}

// Throttler tracks one cooldown per key. Each allowed visit after the first
// moves the key one step further along the interval schedule.
type Throttler[K comparable] struct {
	mu        sync.Mutex
	bucket    map[K]cooldown
	intervals []time.Duration
	now       func() time.Time
}

func New[K comparable](intervals ...time.Duration) (*Throttler[K], error) {
	if len(intervals) == 0 {
		return nil, ErrInvalidIntervals
	}
	for i, d := range intervals {
		if d <= 0 || (i > 0 && d < intervals[i-1]) {
			return nil, ErrInvalidIntervals
		}
	}

	return &Throttler[K]{
		bucket:    make(map[K]cooldown),
		intervals: append([]time.Duration(nil), intervals...),
		now:       time.Now,
	}, nil
}

// MustNew is like New but panics on an invalid schedule.
func MustNew[K comparable](intervals ...time.Duration) *Throttler[K] {
	t, err := New[K](intervals...)
	if err != nil {
		panic(err)
	}
	return t
}

// WithClock replaces time.Now. It returns t for chaining in tests.
func (t *Throttler[K]) WithClock(now func() time.Time) *Throttler[K] {
	t.now = now
	return t
}

// Consume returns 0 when key may proceed now and records the visit.
// Otherwise it returns the remaining cooldown and leaves the state untouched.
func (t *Throttler[K]) Consume(key K) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	cd, ok := t.bucket[key]
	if !ok {
		t.bucket[key] = cooldown{lastVisit: now}
		return 0
	}

	release := cd.lastVisit.Add(t.intervals[cd.penaltyIndex])
	if release.After(now) {
		return release.Sub(now)
	}

	t.bucket[key] = cooldown{
		lastVisit:    now,
		penaltyIndex: min(cd.penaltyIndex+1, len(t.intervals)-1),
	}
	return 0
}

// Reset forgets key entirely.
func (t *Throttler[K]) Reset(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.bucket, key)
}
