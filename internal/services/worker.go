package services

import (
	"context"
	"sync"

	"github.com/mediaforge/mediaforge/internal/logger"
)

// FinalizeTask identifies one background poll-and-finalize unit of work
type FinalizeTask struct {
	JobID         string
	ExternalJobID string
}

// DefaultQueueSize is the finalize task buffer size
const DefaultQueueSize = 128

// WorkerPool drains finalize tasks on a fixed set of goroutines so that task
// lifetime, panics, and backpressure are owned by a scheduler rather than by
// goroutines spawned from request handlers.
type WorkerPool struct {
	tasks   chan FinalizeTask
	run     func(context.Context, FinalizeTask)
	workers int
	wg      sync.WaitGroup
}

// NewWorkerPool creates a pool of the given size. run is invoked once per
// dequeued task.
func NewWorkerPool(workers, queueSize int, run func(context.Context, FinalizeTask)) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &WorkerPool{
		tasks:   make(chan FinalizeTask, queueSize),
		run:     run,
		workers: workers,
	}
}

// Start launches the workers. They exit when ctx is canceled and the queue
// has been drained of anything already dequeued.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(worker int) {
			defer p.wg.Done()
			logger.Debugf("finalize worker %d started", worker)

			for {
				select {
				case <-ctx.Done():
					logger.Debugf("finalize worker %d stopping", worker)
					return
				case task, ok := <-p.tasks:
					if !ok {
						return
					}
					p.safeRun(ctx, task)
				}
			}
		}(i)
	}
}

// Enqueue hands a task to the pool. The buffered channel provides
// backpressure; the send blocks only when the queue is full.
func (p *WorkerPool) Enqueue(task FinalizeTask) {
	p.tasks <- task
}

// Wait blocks until all workers have exited
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// safeRun keeps a panicking task from taking down its worker
func (p *WorkerPool) safeRun(ctx context.Context, task FinalizeTask) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorWithFields("finalize task panicked", map[string]interface{}{
				"job_id": task.JobID,
				"panic":  r,
			})
		}
	}()
	p.run(ctx, task)
}
