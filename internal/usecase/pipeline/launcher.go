package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/internal/domain/entities"
)

// Launcher decouples pipeline execution from the request cycle: Schedule
// enqueues a job and returns before any of its side effects start, exposing
// no completion signal. A fixed worker pool consumes the bounded queue;
// shutdown stops intake and drains what was already accepted.
type Launcher struct {
	svc     *Service
	workers int
	logger  *zap.Logger

	mu      sync.Mutex
	jobs    chan entities.PipelineJob
	wg      sync.WaitGroup
	running bool
}

// NewLauncher constructs a launcher with the given worker count and queue size
func NewLauncher(svc *Service, workers, queueSize int, logger *zap.Logger) *Launcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Launcher{
		svc:     svc,
		workers: workers,
		logger:  logger,
		jobs:    make(chan entities.PipelineJob, queueSize),
	}
}

// Start launches the worker goroutines
func (l *Launcher) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("launcher already running")
	}
	l.running = true

	if l.logger != nil {
		l.logger.Info("🚀 Starting pipeline workers",
			zap.Int("worker_count", l.workers),
		)
	}

	for i := 0; i < l.workers; i++ {
		l.wg.Add(1)
		go l.worker(i)
	}

	return nil
}

// Stop closes intake and waits until queued jobs have drained. In-flight
// jobs run to completion; their HTTP calls fail once the composition root
// closes the shared clients.
func (l *Launcher) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return fmt.Errorf("launcher not running")
	}
	l.running = false
	close(l.jobs)
	l.mu.Unlock()

	l.wg.Wait()

	if l.logger != nil {
		l.logger.Info("✅ Pipeline workers stopped")
	}
	return nil
}

// Schedule enqueues a job for background processing. It never blocks: a full
// queue or a stopped launcher is reported to the caller, which is the only
// feedback a trigger request ever gets about the pipeline.
func (l *Launcher) Schedule(job entities.PipelineJob) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return fmt.Errorf("pipeline launcher is not running")
	}

	select {
	case l.jobs <- job:
		return nil
	default:
		return fmt.Errorf("pipeline queue is full")
	}
}

// worker consumes jobs until the queue is closed and drained
func (l *Launcher) worker(workerID int) {
	defer l.wg.Done()

	for job := range l.jobs {
		l.runJob(workerID, job)
	}

	if l.logger != nil {
		l.logger.Info("👷 Worker stopping",
			zap.Int("worker_id", workerID),
		)
	}
}

// runJob executes one job with panic containment, so a failing stage can
// never take the service down.
func (l *Launcher) runJob(workerID int, job entities.PipelineJob) {
	defer func() {
		if p := recover(); p != nil {
			if l.logger != nil {
				l.logger.Error("pipeline job panicked",
					zap.Int("worker_id", workerID),
					zap.String("meeting_id", job.MeetingID),
					zap.Any("panic", p),
				)
			}
		}
	}()

	if l.logger != nil {
		l.logger.Info("👷 Worker picked up job",
			zap.Int("worker_id", workerID),
			zap.String("meeting_id", job.MeetingID),
		)
	}

	// Jobs are independent of the request that scheduled them; no
	// cancellation is exposed once scheduled. Timeouts on the shared
	// clients bound each stage.
	l.svc.Run(context.Background(), job)
}
