// Package worker runs article extractions in the background so a slow scrape
// or model call does not hold an HTTP request open. It provides:
// - Backpressure via load shedding when the queue is full
// - Per-job timeouts
// - Graceful shutdown that fails queued jobs instead of dropping them silently
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/logic"
	"github.com/chatmma/analyst-tracker/internal/models"
)

// Prometheus metrics
var (
	jobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_extract_jobs_enqueued_total",
		Help: "Extraction jobs accepted into the queue",
	})

	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_extract_jobs_finished_total",
		Help: "Extraction jobs finished by status",
	}, []string{"status"})

	jobsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_extract_jobs_load_shed_total",
		Help: "Extraction jobs rejected because the queue was full",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_extract_queue_depth",
		Help: "Current depth of the extraction queue",
	})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_extract_job_duration_seconds",
		Help:    "Duration of extraction jobs",
		Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
	})
)

// ExtractFunc scrapes (when url is set) and extracts picks for review
type ExtractFunc func(ctx context.Context, url, text string) (*models.ExtractionReview, error)

type job struct {
	id   uuid.UUID
	url  string
	text string
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount int
	QueueSize   int
	JobTimeout  time.Duration
	// Retention is how long finished jobs stay readable
	Retention time.Duration
	Extract   ExtractFunc
	Logger    *zap.Logger
}

// Pool manages a pool of extraction workers
type Pool struct {
	config   PoolConfig
	jobQueue chan job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	jobs    map[uuid.UUID]*models.ExtractionJob
	stopped bool
	now     func() time.Time
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 32
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 3 * time.Minute
	}
	if cfg.Retention <= 0 {
		cfg.Retention = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
		jobs:     make(map[uuid.UUID]*models.ExtractionJob),
		now:      time.Now,
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.housekeeping()

	p.logger.Infow("Extraction pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"jobTimeout", p.config.JobTimeout,
	)
}

// Stop cancels running jobs, fails queued ones and waits for the workers
func (p *Pool) Stop() {
	p.logger.Info("Stopping extraction pool...")

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("Extraction pool stopped")
}

// Enqueue registers a job and queues it. It never blocks: a full queue or a
// stopped pool returns false.
func (p *Pool) Enqueue(url, text string) (*models.ExtractionJob, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil, false
	}

	j := job{id: uuid.New(), url: url, text: text}
	record := &models.ExtractionJob{
		ID:        j.id,
		Status:    models.JobQueued,
		SourceURL: url,
		CreatedAt: p.now().UTC(),
	}
	p.jobs[j.id] = record

	select {
	case p.jobQueue <- j:
	default:
		delete(p.jobs, j.id)
		jobsLoadShed.Inc()
		p.logger.Warnw("Extraction queue full, rejecting job", "queueSize", p.config.QueueSize)
		return nil, false
	}
	jobsEnqueued.Inc()

	snapshot := *record
	return &snapshot, true
}

// Get returns a copy of the job's current state
func (p *Pool) Get(id uuid.UUID) (*models.ExtractionJob, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	record, ok := p.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *record
	return &snapshot, true
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for j := range p.jobQueue {
		p.run(id, j)
	}
}

func (p *Pool) run(workerID int, j job) {
	if p.ctx.Err() != nil {
		p.finish(j.id, nil, errors.New("extraction pool shutting down"))
		return
	}

	p.update(j.id, func(record *models.ExtractionJob) {
		record.Status = models.JobRunning
	})

	ctx, cancel := context.WithTimeout(p.ctx, p.config.JobTimeout)
	defer cancel()

	start := time.Now()
	review, err := p.config.Extract(ctx, j.url, j.text)
	jobDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		p.logger.Warnw("Extraction job failed", "worker", workerID, "job", j.id, "error", err)
	} else {
		p.logger.Infow("Extraction job done", "worker", workerID, "job", j.id, "candidates", len(review.Candidates))
	}
	p.finish(j.id, review, err)
}

func (p *Pool) finish(id uuid.UUID, review *models.ExtractionReview, err error) {
	p.update(id, func(record *models.ExtractionJob) {
		finished := p.now().UTC()
		record.FinishedAt = &finished
		if err != nil {
			record.Status = models.JobFailed
			record.Error = err.Error()
			if errors.Is(err, logic.ErrScrapeEmpty) {
				record.Fallback = "paste"
			}
		} else {
			record.Status = models.JobDone
			record.Review = review
		}
		jobsFinished.WithLabelValues(string(record.Status)).Inc()
	})
}

func (p *Pool) update(id uuid.UUID, fn func(*models.ExtractionJob)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if record, ok := p.jobs[id]; ok {
		fn(record)
	}
}

// prune drops finished jobs older than the retention window
func (p *Pool) prune() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().Add(-p.config.Retention)
	removed := 0
	for id, record := range p.jobs {
		if record.Finished() && record.FinishedAt != nil && record.FinishedAt.Before(cutoff) {
			delete(p.jobs, id)
			removed++
		}
	}
	return removed
}

// housekeeping reports queue depth and prunes old jobs until the pool stops
func (p *Pool) housekeeping() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			queueDepth.Set(0)
			return
		case <-ticker.C:
			queueDepth.Set(float64(p.QueueDepth()))
			if n := p.prune(); n > 0 {
				p.logger.Debugw("Pruned extraction jobs", "removed", n)
			}
		}
	}
}
