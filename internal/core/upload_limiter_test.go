package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestUploadLimiter_Slots(t *testing.T) {
	l := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	steps := []struct {
		do            func()
		wantActive    int
		wantAvailable int
	}{
		{func() {}, 0, 2},
		{func() { _ = l.Acquire(ctx) }, 1, 1},
		{func() { _ = l.Acquire(ctx) }, 2, 0},
		{l.Release, 1, 1},
		{l.Release, 0, 2},
	}
	for i, st := range steps {
		st.do()
		if got := l.ActiveCount(); got != st.wantActive {
			t.Errorf("step %d: ActiveCount = %d, want %d", i, got, st.wantActive)
		}
		if got := l.Available(); got != st.wantAvailable {
			t.Errorf("step %d: Available = %d, want %d", i, got, st.wantAvailable)
		}
	}
}

func TestUploadLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewUploadLimiter(1, 50*time.Millisecond)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()

	start := time.Now()
	err := l.Acquire(context.Background())
	if !errors.Is(err, ErrTooManyUploads) {
		t.Fatalf("err = %v, want ErrTooManyUploads", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("gave up after %v, before the wait limit", elapsed)
	}
}

func TestUploadLimiter_ContextCancellation(t *testing.T) {
	l := NewUploadLimiter(1, 5*time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}
}

func TestUploadLimiter_TryAcquire(t *testing.T) {
	l := NewUploadLimiter(1, time.Second)
	if !l.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if l.TryAcquire() {
		t.Fatal("second TryAcquire should fail")
	}
	l.Release()
	if !l.TryAcquire() {
		t.Fatal("TryAcquire after Release should succeed")
	}
	l.Release()
}

func TestUploadLimiter_NeverExceedsMax(t *testing.T) {
	const limit = 3
	l := NewUploadLimiter(limit, time.Second)

	var wg sync.WaitGroup
	var peak atomic.Int64
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer l.Release()
			for {
				cur, old := int64(l.ActiveCount()), peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > limit {
		t.Errorf("peak = %d, limit %d", p, limit)
	}
	if got := l.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestUploadLimiter_WaitForDrain(t *testing.T) {
	l := NewUploadLimiter(2, time.Second)
	_ = l.Acquire(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned while a slot was held")
	case <-time.After(30 * time.Millisecond):
	}

	l.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after release")
	}
}

func TestUploadLimiter_Defaults(t *testing.T) {
	l := NewUploadLimiter(0, 0)
	st := l.Status()
	if st.MaxConcurrent != DefaultMaxConcurrentUploads || st.Available != DefaultMaxConcurrentUploads || st.Active != 0 {
		t.Errorf("Status = %+v", st)
	}
}
