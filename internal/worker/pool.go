package worker

import (
	"context"
	"sync"

	"github.com/martinsuchenak/merakilife/internal/log"
)

// WorkerPool manages concurrent workers
type WorkerPool struct {
	maxWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// Job represents a unit of work
type Job struct {
	ID      string
	Handler func(context.Context) error
	Result  chan error
}

// NewWorkerPool creates a pool whose workers stop when parent is cancelled.
// Queued jobs that never ran report the cancellation on their Result channel.
func NewWorkerPool(parent context.Context, maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(parent)
	return &WorkerPool{
		maxWorkers: maxWorkers,
		jobs:       make(chan Job, 100),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the worker pool
func (p *WorkerPool) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Debug("Worker pool started", "workers", p.maxWorkers)
}

// Stop closes the queue and waits for in-flight jobs. Jobs still queued are
// drained by the workers before they exit.
func (p *WorkerPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	p.cancel()
}

// Cancel aborts running jobs and fails queued ones
func (p *WorkerPool) Cancel() {
	p.cancel()
}

// Submit submits a job to the pool
func (p *WorkerPool) Submit(job Job) error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	default:
	}

	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// worker is the worker goroutine
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		var err error
		if err = p.ctx.Err(); err == nil {
			log.Debug("Worker executing job", "worker_id", id, "job_id", job.ID)
			err = job.Handler(p.ctx)
		}

		if job.Result != nil {
			job.Result <- err
		}
	}
}
