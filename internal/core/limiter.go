package core

// limiter.go admits analyze calls against a shared pool of range slots.
//
// A call weighs one slot per range, capped at the pool size, so a request
// with twenty ranges holds as much capacity as twenty single-range requests.
// Waiters are served in arrival order; a call that cannot be admitted within
// maxWait fails with ErrTooManyAnalyses.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyAnalyses is returned when no slots free up within the wait timeout.
// Clients should retry after a short delay.
var ErrTooManyAnalyses = errors.New("too many concurrent analyses, please try again later")

const (
	// DefaultAnalysisSlots is the default number of ranges analyzed at once
	// across all requests.
	DefaultAnalysisSlots = 32

	// DefaultMaxWaitTime is how long a call waits for slots before rejection.
	DefaultMaxWaitTime = 10 * time.Second
)

// Limiter bounds the ranges under analysis at any moment.
type Limiter struct {
	slots   *semaphore.Weighted
	size    int64
	maxWait time.Duration

	active   atomic.Int64 // admitted calls
	inUse    atomic.Int64 // slots held by admitted calls
	rejected atomic.Int64
}

// Permit is an admitted call's claim on the pool. Pass it back to Release.
type Permit struct {
	Weight int64
	Waited time.Duration
}

// NewLimiter creates a pool of size slots. Non-positive arguments fall back
// to the defaults.
func NewLimiter(size int, maxWait time.Duration) *Limiter {
	if size <= 0 {
		size = DefaultAnalysisSlots
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &Limiter{
		slots:   semaphore.NewWeighted(int64(size)),
		size:    int64(size),
		maxWait: maxWait,
	}
}

// weigh maps a range count to slots: at least one, at most the whole pool.
func (l *Limiter) weigh(ranges int) int64 {
	return min(max(int64(ranges), 1), l.size)
}

// Acquire admits a call analyzing the given number of ranges. The returned
// permit carries the time spent waiting even when admission fails.
func (l *Limiter) Acquire(ctx context.Context, ranges int) (Permit, error) {
	p := Permit{Weight: l.weigh(ranges)}
	if l.slots.TryAcquire(p.Weight) {
		l.admit(p)
		return p, nil
	}

	start := time.Now()
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	err := l.slots.Acquire(waitCtx, p.Weight)
	p.Waited = time.Since(start)
	if err != nil {
		l.rejected.Add(1)
		if ctx.Err() != nil {
			return p, ctx.Err()
		}
		return p, ErrTooManyAnalyses
	}
	l.admit(p)
	return p, nil
}

func (l *Limiter) admit(p Permit) {
	l.active.Add(1)
	l.inUse.Add(p.Weight)
}

// Release returns a permit's slots to the pool.
func (l *Limiter) Release(p Permit) {
	l.active.Add(-1)
	l.inUse.Add(-p.Weight)
	l.slots.Release(p.Weight)
}

// WaitForDrain blocks until every admitted call has released its slots or
// ctx ends. Calls arriving meanwhile queue behind the drain.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	if err := l.slots.Acquire(ctx, l.size); err != nil {
		return err
	}
	l.slots.Release(l.size)
	return nil
}

// LimiterStatus is a snapshot of the pool for monitoring.
type LimiterStatus struct {
	Active   int   `json:"active"`
	InUse    int   `json:"slots_in_use"`
	Slots    int   `json:"slots"`
	Rejected int64 `json:"rejected"`
}

// Status returns the current pool state.
func (l *Limiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:   int(l.active.Load()),
		InUse:    int(l.inUse.Load()),
		Slots:    int(l.size),
		Rejected: l.rejected.Load(),
	}
}
