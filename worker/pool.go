package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	typeconform "github.com/typeconform/validator"
)

// Validator is what the pool runs each job through.
type Validator interface {
	ValidateEntity(kind string, instance map[string]any) (*typeconform.Result, error)
}

// Pool manages a set of worker goroutines for streaming validation.
// Finished jobs accumulate in an internal buffer in completion order, so
// Submit never blocks on an unread result: a producer may queue any
// number of jobs before collecting. Read the buffer incrementally with
// Collect, or all at once with CloseAndWait.
type Pool struct {
	workers   int
	jobsChan  chan Job
	validator Validator
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closed    atomic.Bool

	mu      sync.Mutex
	results []*JobResult

	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	totalDuration atomic.Uint64
}

// NewPool starts a pool with the given worker count. A count <= 0 means
// runtime.NumCPU().
func NewPool(validator Validator, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		workers:   workers,
		jobsChan:  make(chan Job, workers*2),
		validator: validator,
		ctx:       ctx,
		cancel:    cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit queues a job, blocking while the queue is full. It reports
// false once the pool is closed.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// SubmitAsync queues a job without blocking. It reports false when the
// queue is full or the pool is closed.
func (p *Pool) SubmitAsync(job Job) bool {
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	default:
		return false
	}
}

// Collect removes and returns the results finished so far, in completion
// order. Results taken here do not reappear in CloseAndWait.
func (p *Pool) Collect() []*JobResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.results
	p.results = nil
	return out
}

// Close shuts the pool down, dropping queued jobs and discarding any
// uncollected results. Use CloseAndWait to finish and collect instead.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}

	p.cancel()
	close(p.jobsChan)
	p.wg.Wait()

	p.mu.Lock()
	p.results = nil
	p.mu.Unlock()
}

// CloseAndWait stops accepting jobs, lets queued jobs finish, and
// returns everything produced since the last Collect.
func (p *Pool) CloseAndWait() *BatchResult {
	if p.closed.Swap(true) {
		return &BatchResult{}
	}

	close(p.jobsChan)
	p.wg.Wait()
	p.cancel()

	results := p.Collect()

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     int(p.jobsSubmitted.Load()),
		CompletedJobs: int(p.jobsCompleted.Load()),
		FailedJobs:    failed,
		TotalDuration: int64(p.totalDuration.Load()),
	}
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

// PoolStats holds pool counters.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	AvgDuration   time.Duration
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobsChan {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		result := p.processJob(job)
		p.jobsCompleted.Add(1)
		p.totalDuration.Add(uint64(result.Duration))

		p.mu.Lock()
		p.results = append(p.results, result)
		p.mu.Unlock()
	}
}

func (p *Pool) processJob(job Job) *JobResult {
	start := time.Now()

	result := &JobResult{ID: job.ID}

	if p.validator == nil {
		result.Error = ErrNoValidator
		result.Duration = time.Since(start).Nanoseconds()
		return result
	}

	res, err := p.validator.ValidateEntity(job.Kind, job.Instance)
	result.Result = res
	result.Error = err
	result.Duration = time.Since(start).Nanoseconds()
	return result
}

func (p *Pool) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(p.totalDuration.Load() / completed)
}

// ErrNoValidator is returned when the pool has no validator configured.
var ErrNoValidator = poolError("no validator configured")

type poolError string

func (e poolError) Error() string {
	return string(e)
}
