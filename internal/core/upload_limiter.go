package core

// upload_limiter.go implements concurrency control for PDF uploads.
//
// The limiter is a counting semaphore over a buffered channel. At most
// maxConcurrent uploads hold a slot at once; when every slot is taken, new
// requests wait up to maxWait before failing with ErrTooManyUploads, which
// the HTTP layer answers with 503 and a Retry-After header.
//
// Both AttachPDF and CreateArticleWithPDF hold a slot only while the file is
// written to the attachment store; validation of the PDF happens before the
// slot is taken so that rejected files never occupy one.
//
// WaitForDrain supports graceful shutdown: the server stops accepting
// requests, then blocks until every active upload has released its slot or
// the shutdown timeout expires.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyUploads is returned when all upload slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

// Limiter defaults, used when the configuration leaves a value at zero.
const (
	DefaultMaxConcurrentUploads = 5
	DefaultMaxWaitTime          = 30 * time.Second
)

// UploadLimiter controls concurrent upload processing using a semaphore.
// It prevents resource exhaustion by bounding parallel uploads to a
// configurable maximum. The zero value is not usable; call
// NewUploadLimiter.
type UploadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewUploadLimiter creates a limiter that allows at most maxConcurrent
// simultaneous uploads. Requests that cannot acquire a slot within maxWait
// receive ErrTooManyUploads. Non-positive arguments fall back to
// DefaultMaxConcurrentUploads and DefaultMaxWaitTime.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &UploadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire attempts to acquire an upload slot.
//
// It returns nil on success, ErrTooManyUploads when maxWait expires first,
// and ctx.Err() when ctx is cancelled while waiting. On success the caller
// MUST call Release when the upload completes.
//
// Usage:
//
//	if err := limiter.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer limiter.Release()
//	return files.Put(ctx, key, pdf)
func (l *UploadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrTooManyUploads
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire attempts to acquire a slot without blocking.
// It returns true if a slot was acquired; the caller then owns a Release.
func (l *UploadLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire or TryAcquire.
func (l *UploadLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of currently active uploads. It feeds the
// uploads_active gauge.
func (l *UploadLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the number of slots.
func (l *UploadLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *UploadLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until all active uploads complete or ctx is done.
// Used during graceful shutdown so that PDFs are not cut off mid-write.
//
// Usage:
//
//	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	if err := limiter.WaitForDrain(shutdownCtx); err != nil {
//	    slog.Warn("uploads did not complete in time", "error", err)
//	}
func (l *UploadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// UploadLimiterStatus is a snapshot of the limiter for /healthz.
type UploadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring and debugging.
func (l *UploadLimiter) Status() UploadLimiterStatus {
	return UploadLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
