// Package worker provides a worker pool that runs AI searches off the
// caller's goroutine.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
)

// WorkItem represents one search request.
type WorkItem struct {
	Ctx        context.Context // Cancels the search; nil means context.Background()
	Board      chess.Board     // Read-only snapshot to search from
	Depth      int
	Generation uint64 // Session generation the snapshot was taken at

	// reply receives exactly one result for this item. It is buffered.
	reply chan ProcessResult
}

// Context returns the item's context, defaulting to context.Background().
func (w WorkItem) Context() context.Context {
	if w.Ctx == nil {
		return context.Background()
	}
	return w.Ctx
}

// ProcessResult represents the result of one search.
type ProcessResult struct {
	Generation uint64
	Payload    interface{} // Search result; typed by the ProcessFunc's owner
	Error      error
}

// ProcessFunc is the function signature for processing a work item.
type ProcessFunc func(item WorkItem) ProcessResult

// Stats counts what a pool has done since it was created.
type Stats struct {
	Submitted int64 // Accepted into the queue
	Completed int64 // Processed, successfully or not
	Rejected  int64 // Refused because the pool was stopped or closed
	Abandoned int64 // Caller stopped waiting before the result arrived
	Panics    int64 // ProcessFunc panicked; reported as an error
}

// Pool manages a pool of search workers.
type Pool struct {
	numWorkers  int
	bufferSize  int
	workChan    chan WorkItem
	processFunc ProcessFunc
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopFlag    int32 // Atomic flag for early termination

	closeMu sync.RWMutex
	closed  bool

	submitted, completed, rejected, abandoned, panics atomic.Int64
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n >= 1 {
			p.numWorkers = n
		}
	}
}

// WithBufferSize sets how many items may wait for a worker.
func WithBufferSize(size int) PoolOption {
	return func(p *Pool) {
		if size >= 1 {
			p.bufferSize = size
		}
	}
}

// NewPool creates a worker pool. processFunc is required; other settings
// have defaults of 1 worker and a queue of 10. Call Start before use.
func NewPool(processFunc ProcessFunc, opts ...PoolOption) *Pool {
	p := &Pool{
		numWorkers:  1,
		bufferSize:  10,
		processFunc: processFunc,
	}
	for _, opt := range opts {
		opt(p)
	}
	// Create channels after options are applied
	p.workChan = make(chan WorkItem, p.bufferSize)
	return p
}

// Start starts the worker goroutines. Calls after the first do nothing.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.numWorkers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

// worker processes items from the work channel until it is closed.
func (p *Pool) worker() {
	defer p.wg.Done()

	for item := range p.workChan {
		if p.IsStopped() {
			// Drain without processing, but never leave a waiter hanging.
			item.reply <- ProcessResult{Generation: item.Generation, Error: errors.ErrPoolStopped}
			continue
		}
		if err := item.Context().Err(); err != nil {
			item.reply <- ProcessResult{Generation: item.Generation, Error: err}
			continue
		}
		item.reply <- p.process(item)
		p.completed.Add(1)
	}
}

// process runs processFunc, turning a panic into an error result.
func (p *Pool) process(item WorkItem) (result ProcessResult) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			result = ProcessResult{
				Generation: item.Generation,
				Error:      errors.WithStack(fmt.Errorf("search panicked: %v", r)),
			}
		}
	}()
	return p.processFunc(item)
}

// Run submits item and waits for its result. It gives up when ctx is done,
// returning ctx.Err(); the worker's eventual result is then discarded.
func (p *Pool) Run(ctx context.Context, item WorkItem) (ProcessResult, error) {
	item.reply = make(chan ProcessResult, 1)
	if err := p.submit(ctx, item); err != nil {
		return ProcessResult{}, err
	}

	select {
	case res := <-item.reply:
		return res, res.Error
	case <-ctx.Done():
		p.abandoned.Add(1)
		return ProcessResult{}, ctx.Err()
	}
}

// submit queues item, giving up when ctx is done or the pool has been
// stopped or closed.
func (p *Pool) submit(ctx context.Context, item WorkItem) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed || p.IsStopped() {
		p.rejected.Add(1)
		return errors.ErrPoolStopped
	}
	select {
	case p.workChan <- item:
		p.submitted.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop signals workers to stop processing new items.
// Items already queued are answered with ErrPoolStopped.
func (p *Pool) Stop() {
	atomic.StoreInt32(&p.stopFlag, 1)
}

// IsStopped returns true if the pool has been stopped.
func (p *Pool) IsStopped() bool {
	return atomic.LoadInt32(&p.stopFlag) != 0
}

// Close closes the work channel and waits for all workers to finish.
// Close is safe to call more than once.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.workChan)
	p.closeMu.Unlock()

	p.wg.Wait()
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Rejected:  p.rejected.Load(),
		Abandoned: p.abandoned.Load(),
		Panics:    p.panics.Load(),
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}
