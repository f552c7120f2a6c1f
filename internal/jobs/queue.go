package jobs

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/pipeline"
)

// Job is the smallest useful unit handed to a worker.
type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
	RequestID   string
}

// Processor is what a worker runs for each job.
type Processor interface {
	Process(ctx context.Context, path string) *pipeline.Result
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

type ProcessorQueue struct {
	proc    Processor
	store   *Store
	logger  *slog.Logger
	workers int
	timeout time.Duration
	model   string
	cleanup bool

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithModelName records the model used on finished jobs.
func WithModelName(name string) Option {
	return func(q *ProcessorQueue) { q.model = name }
}

// WithCleanup removes the uploaded file once its job finishes.
func WithCleanup(on bool) Option {
	return func(q *ProcessorQueue) { q.cleanup = on }
}

func NewProcessorQueue(proc Processor, store *Store, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		store:   store,
		logger:  logger,
		workers: 2,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 32),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("jobs.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Info("jobs.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	log := q.logger.With("worker_id", workerID, "job_id", job.ID)
	if err := q.store.MarkRunning(job.ID); err != nil {
		log.Error("jobs.run.unknown_job", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}
	res := q.proc.Process(ctx, job.Path)
	cancel()

	if err := q.store.Finish(job.ID, res, q.model); err != nil {
		log.Error("jobs.run.finish_failed", "error", err)
	}
	if q.cleanup {
		if err := os.Remove(job.Path); err != nil && !os.IsNotExist(err) {
			log.Warn("jobs.run.cleanup_failed", "error", err)
		}
	}

	if res.Kind.Terminal() {
		log.Warn("jobs.run.failed", "kind", res.Kind, "reason", res.Reason,
			"wait_ms", time.Since(job.SubmittedAt).Milliseconds())
		return
	}
	log.Info("jobs.run.ok", "records", len(res.Records),
		"wait_ms", time.Since(job.SubmittedAt).Milliseconds())
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("jobs.enqueue.closed", "job_id", job.ID)
		return common.ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Info("jobs.enqueue.ok", "job_id", job.ID)
		return nil
	default:
	}
	q.logger.Warn("jobs.enqueue.backpressure", "job_id", job.ID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("jobs.shutdown.interrupted")
	case <-done:
		q.logger.Info("jobs.shutdown.drained")
	}
}

var _ Queue = (*ProcessorQueue)(nil)
