// Package worker drains the recompute queue and grades each request.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cnec/gradeengine/internal/domain/model"
	"github.com/cnec/gradeengine/pkg/logger"
	"github.com/cnec/gradeengine/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Request is what workers read off the queue.
type Request = model.RecomputeRequest

// Grader recomputes and stores the grade named by a request.
type Grader interface {
	Recompute(ctx context.Context, r Request) error
}

// Queue is the consumer side of the recompute queue.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Request
}

// Worker processes requests until its queue is drained or ctx is done.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// Counters aggregates processing results across workers.
type Counters struct {
	processed atomic.Int64
	failed    atomic.Int64
}

// Processed returns the number of requests handled successfully.
func (c *Counters) Processed() int64 { return c.processed.Load() }

// Failed returns the number of requests whose recompute returned an error.
func (c *Counters) Failed() int64 { return c.failed.Load() }

// InMemoryWorker grades requests from a Queue one at a time.
type InMemoryWorker struct {
	queue    Queue
	grader   Grader
	name     string
	counters *Counters

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from queue.
func NewInMemoryWorker(queue Queue, grader Grader, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		grader:   grader,
		name:     "worker",
		counters: &Counters{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes requests until the queue is closed and drained, ctx is done
// or Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			if err := w.process(ctx, r); err != nil {
				w.logger.Error(ctx, "recompute failed",
					logger.String("request_id", r.RequestID),
					logger.String("creator_id", r.CreatorID),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current request.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, r Request) error { //nolint:gocritic // value from the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.grader.Recompute(ctx, r); err != nil {
		w.counters.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "recompute")
		return fmt.Errorf("recompute %s: %w", r.CreatorID, err)
	}
	w.counters.processed.Add(1)
	return nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *Counters
	logger   logger.Logger
}

// NewPool creates workerCount workers. A count below one uses a multiple of NumCPU.
func NewPool(workerCount int, queue Queue, grader Grader, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		counters: &Counters{},
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		workerOpts = append(workerOpts, withCounters(p.counters))
		p.workers[i] = NewInMemoryWorker(queue, grader, workerOpts...)
	}
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Counters returns the shared processing counters.
func (p *Pool) Counters() *Counters {
	return p.counters
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			metrics.UpdateWorkerCount(0)
			return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
