package callqueue

import (
	"context"
	"fmt"
	"sync"

	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
)

// DefaultQueueSize is used when a non-positive size is configured
const DefaultQueueSize = 100

// CallFunc is a unit of work executed by the queue worker
type CallFunc func(ctx context.Context) error

// inCallKey marks a context that is already executing inside the queue
type inCallKey struct{}

// CallQueue runs submitted calls one at a time, in submission order, on a
// single worker goroutine
type CallQueue struct {
	logger coreport.Logger

	requests chan *callRequest
	mu       sync.RWMutex
	closed   bool
	workerWG sync.WaitGroup
}

// callRequest represents a queued call
type callRequest struct {
	ctx    context.Context
	name   string
	fn     CallFunc
	result chan error
}

// NewCallQueue creates a queue and starts its worker
func NewCallQueue(logger coreport.Logger, size int) *CallQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}

	q := &CallQueue{
		logger:   logger,
		requests: make(chan *callRequest, size),
	}

	q.workerWG.Add(1)
	go q.processCalls()

	return q
}

// InCall reports whether ctx belongs to a call currently running on a queue
func InCall(ctx context.Context) bool {
	_, ok := ctx.Value(inCallKey{}).(string)
	return ok
}

// Submit enqueues fn and waits for its outcome.
// A call submitted from inside another call is rejected with ErrReentrantCall
// instead of waiting on itself. Once enqueued, a call whose context is
// cancelled before the worker reaches it is skipped and reports ctx.Err().
func (q *CallQueue) Submit(ctx context.Context, name string, fn CallFunc) error {
	if InCall(ctx) {
		q.logger.Warn("Rejected reentrant call", map[string]any{
			"call":  name,
			"outer": ctx.Value(inCallKey{}),
		})
		return errs.ErrReentrantCall
	}

	req := &callRequest{
		ctx:    ctx,
		name:   name,
		fn:     fn,
		result: make(chan error, 1),
	}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return errs.ErrRegistryClosed
	}

	select {
	case q.requests <- req:
		q.mu.RUnlock()
		q.logger.Debug("Call enqueued", map[string]any{
			"call": name,
		})
	case <-ctx.Done():
		q.mu.RUnlock()
		q.logger.Warn("Context canceled while enqueueing call", map[string]any{
			"call":  name,
			"error": ctx.Err().Error(),
		})
		return ctx.Err()
	}

	return <-req.result
}

// processCalls is the single worker draining the queue
func (q *CallQueue) processCalls() {
	defer q.workerWG.Done()

	q.logger.Info("Call queue worker started", nil)

	for req := range q.requests {
		if err := req.ctx.Err(); err != nil {
			q.logger.Warn("Skipping call whose context ended while queued", map[string]any{
				"call":  req.name,
				"error": err.Error(),
			})
			req.result <- err
			close(req.result)
			continue
		}

		req.result <- q.run(req)
		close(req.result)
	}

	q.logger.Info("Call queue worker stopped", nil)
}

// run executes one call, converting a panic into an internal error
func (q *CallQueue) run(req *callRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Recovered from panic in queued call", map[string]any{
				"call":  req.name,
				"panic": fmt.Sprintf("%v", r),
			})
			err = errs.ErrInternalServer
		}
	}()

	return req.fn(context.WithValue(req.ctx, inCallKey{}, req.name))
}

// Shutdown stops accepting calls, lets queued calls finish and waits for the worker
func (q *CallQueue) Shutdown() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.requests)
	q.mu.Unlock()

	q.logger.Info("Shutting down call queue", nil)
	q.workerWG.Wait()
	q.logger.Info("Call queue shut down successfully", nil)
}
