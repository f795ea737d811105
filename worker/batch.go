package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	typeconform "github.com/typeconform/validator"
)

// BatchValidator validates slices of instances of one entity kind,
// fanning out across workers and returning results in input order.
type BatchValidator struct {
	validate BatchValidatorFunc
	workers  int
}

// BatchValidatorFunc validates a single instance against a kind.
type BatchValidatorFunc func(ctx context.Context, kind string, instance map[string]any) (*typeconform.Result, error)

// NewBatchValidator creates a batch validator. A worker count <= 0 means
// runtime.NumCPU().
func NewBatchValidator(validate BatchValidatorFunc, workers int) *BatchValidator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchValidator{
		validate: validate,
		workers:  workers,
	}
}

// ValidateBatch validates all instances against kind. Small batches run
// inline, larger ones in parallel; either way Results keeps input order.
func (bv *BatchValidator) ValidateBatch(ctx context.Context, kind string, instances []map[string]any) *BatchResult {
	if len(instances) == 0 {
		return &BatchResult{Results: make([]*JobResult, 0)}
	}

	if len(instances) <= 2 {
		return bv.validateSequential(ctx, kind, instances)
	}
	return bv.validateParallel(ctx, kind, instances)
}

func (bv *BatchValidator) validateSequential(ctx context.Context, kind string, instances []map[string]any) *BatchResult {
	results := make([]*JobResult, 0, len(instances))
	failed := 0

	for i, instance := range instances {
		select {
		case <-ctx.Done():
			return &BatchResult{
				Results:       results,
				TotalJobs:     len(instances),
				CompletedJobs: len(results),
				FailedJobs:    failed,
			}
		default:
		}

		res, err := bv.validate(ctx, kind, instance)
		if err != nil {
			failed++
		}
		results = append(results, &JobResult{
			ID:     strconv.Itoa(i),
			Result: res,
			Error:  err,
		})
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(instances),
		CompletedJobs: len(results),
		FailedJobs:    failed,
	}
}

func (bv *BatchValidator) validateParallel(ctx context.Context, kind string, instances []map[string]any) *BatchResult {
	numWorkers := bv.workers
	if numWorkers > len(instances) {
		numWorkers = len(instances)
	}

	jobs := make(chan indexedInstance, len(instances))
	resultsChan := make(chan *indexedResult, len(instances))

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				res, err := bv.validate(ctx, kind, job.instance)
				resultsChan <- &indexedResult{
					index:  job.index,
					result: res,
					err:    err,
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, instance := range instances {
			select {
			case <-ctx.Done():
				return
			case jobs <- indexedInstance{index: i, instance: instance}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]*JobResult, len(instances))
	completed := 0
	failed := 0

	for ir := range resultsChan {
		results[ir.index] = &JobResult{
			ID:     strconv.Itoa(ir.index),
			Result: ir.result,
			Error:  ir.err,
		}
		completed++
		if ir.err != nil {
			failed++
		}
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(instances),
		CompletedJobs: completed,
		FailedJobs:    failed,
	}
}

type indexedInstance struct {
	index    int
	instance map[string]any
}

type indexedResult struct {
	index  int
	result *typeconform.Result
	err    error
}
