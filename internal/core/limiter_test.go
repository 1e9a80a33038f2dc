package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Weigh(t *testing.T) {
	l := NewLimiter(4, time.Second)

	tests := []struct {
		ranges int
		want   int64
	}{
		{0, 1},
		{1, 1},
		{3, 3},
		{4, 4},
		{20, 4}, // capped at the pool size
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, l.weigh(tt.ranges), "ranges=%d", tt.ranges)
	}
}

func TestLimiter_Defaults(t *testing.T) {
	l := NewLimiter(0, 0)
	assert.Equal(t, DefaultAnalysisSlots, l.Status().Slots)
	assert.Equal(t, DefaultMaxWaitTime, l.maxWait)
}

func TestService_AnalyzeManyHoldsOneSlotPerRange(t *testing.T) {
	svc, _ := newTestService(t, sampleTable(), Options{Slots: 4})
	ctx := context.Background()

	held, err := svc.limiter.Acquire(ctx, 1)
	require.NoError(t, err)

	status := svc.LimiterStatus()
	assert.Equal(t, 1, status.Active)
	assert.Equal(t, 1, status.InUse)

	// Three ranges fit in the three remaining slots without waiting.
	result, err := svc.AnalyzeMany(ctx, []RangeQuery{
		{From: "1", To: "1"},
		{From: "2", To: "2"},
		{From: "1", To: "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Succeeded())

	svc.limiter.Release(held)
	assert.Equal(t, LimiterStatus{Slots: 4}, svc.LimiterStatus())
}

func TestService_AnalyzeManyWaitsForFreedSlots(t *testing.T) {
	rec := newCountingRecorder()
	svc, _ := newTestService(t, sampleTable(), Options{Slots: 3, MaxWait: 2 * time.Second, Recorder: rec})
	ctx := context.Background()

	held, err := svc.limiter.Acquire(ctx, 2)
	require.NoError(t, err)

	// A single range still fits next to the held permit.
	_, err = svc.AnalyzeOne(ctx, RangeQuery{From: "1", To: "2"})
	require.NoError(t, err)

	// Two ranges need two slots and must wait for the release.
	done := make(chan error, 1)
	go func() {
		_, err := svc.AnalyzeMany(ctx, []RangeQuery{{From: "1", To: "1"}, {From: "2", To: "2"}})
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("analysis admitted while slots were held: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	svc.limiter.Release(held)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("analysis not admitted after slots were released")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 2, rec.admitted)
	assert.Zero(t, rec.rejected)
}

func TestService_AnalyzeManyRejectedWhenPoolStaysBusy(t *testing.T) {
	rec := newCountingRecorder()
	svc, _ := newTestService(t, sampleTable(), Options{Slots: 2, MaxWait: 30 * time.Millisecond, Recorder: rec})
	ctx := context.Background()

	held, err := svc.limiter.Acquire(ctx, 2)
	require.NoError(t, err)
	defer svc.limiter.Release(held)

	_, err = svc.AnalyzeOne(ctx, RangeQuery{From: "1", To: "2"})
	assert.ErrorIs(t, err, ErrTooManyAnalyses)

	status := svc.LimiterStatus()
	assert.Equal(t, 1, status.Active)
	assert.Equal(t, int64(1), status.Rejected)
	assert.Equal(t, 1, rec.rejected)
}

func TestService_AnalyzeManyOversizedRequestTakesWholePool(t *testing.T) {
	svc, _ := newTestService(t, sampleTable(), Options{Slots: 2, MaxWait: 30 * time.Millisecond})
	ctx := context.Background()

	// More ranges than slots: admitted with the whole pool instead of waiting forever.
	result, err := svc.AnalyzeMany(ctx, []RangeQuery{
		{From: "1", To: "1"},
		{From: "2", To: "2"},
		{From: "1", To: "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Succeeded())
	assert.Zero(t, svc.LimiterStatus().InUse)
}

func TestService_AnalyzeManyHonorsCallerContext(t *testing.T) {
	svc, _ := newTestService(t, sampleTable(), Options{Slots: 1, MaxWait: time.Minute})

	held, err := svc.limiter.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer svc.limiter.Release(held)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.AnalyzeOne(ctx, RangeQuery{From: "1", To: "1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrTooManyAnalyses)
}

func TestService_WaitForAnalyses(t *testing.T) {
	svc, _ := newTestService(t, sampleTable(), Options{Slots: 4})

	// Idle pool drains immediately.
	require.NoError(t, svc.WaitForAnalyses(context.Background()))

	held, err := svc.limiter.Acquire(context.Background(), 3)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.WaitForAnalyses(short), context.DeadlineExceeded)

	go func() {
		time.Sleep(20 * time.Millisecond)
		svc.limiter.Release(held)
	}()
	require.NoError(t, svc.WaitForAnalyses(context.Background()))

	// The pool is whole again after the drain.
	assert.Equal(t, LimiterStatus{Slots: 4}, svc.LimiterStatus())
	_, err = svc.AnalyzeOne(context.Background(), RangeQuery{From: "1", To: "2"})
	assert.NoError(t, err)
}

func TestService_ConcurrentAnalyzeManyReturnsAllSlots(t *testing.T) {
	svc, _ := newTestService(t, sampleTable(), Options{Slots: 3, MaxWait: 5 * time.Second})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			queries := []RangeQuery{{From: "1", To: "2"}}
			if n%2 == 0 {
				queries = append(queries, RangeQuery{From: "2", To: "2", Mirror: true})
			}
			_, err := svc.AnalyzeMany(ctx, queries)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, LimiterStatus{Slots: 3}, svc.LimiterStatus())
}
