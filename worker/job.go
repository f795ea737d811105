package worker

import typeconform "github.com/typeconform/validator"

// Job is one entity instance queued for validation.
type Job struct {
	// ID identifies the job in its result.
	ID string

	// Kind is the entity kind to validate against.
	Kind string

	// Instance is the field-name to value mapping to validate.
	Instance map[string]any
}

// JobResult is the outcome of one job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Result holds the validation outcome. Nil when Error is set.
	Result *typeconform.Result

	// Error holds a usage or generation error, never a conformance
	// failure. Conformance failures live in Result.
	Error error

	// Duration is the validation time in nanoseconds.
	Duration int64
}

// BatchResult aggregates the results of a batch.
type BatchResult struct {
	// Results holds one entry per job, in submission order when the
	// batch API produced it.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs processed, including errored
	// ones.
	CompletedJobs int

	// FailedJobs is the number of jobs that returned an error.
	FailedJobs int

	// TotalDuration is the summed validation time in nanoseconds.
	TotalDuration int64
}

// HasErrors reports whether any job errored or any instance failed
// conformance.
func (br *BatchResult) HasErrors() bool {
	for _, r := range br.Results {
		if r.Error != nil {
			return true
		}
		if r.Result != nil && r.Result.HasErrors() {
			return true
		}
	}
	return false
}

// ErrorCount sums the conformance errors across all results.
func (br *BatchResult) ErrorCount() int {
	count := 0
	for _, r := range br.Results {
		if r.Result != nil {
			count += r.Result.ErrorCount()
		}
	}
	return count
}

// Invalid returns the indexes of results that failed, either with a job
// error or with conformance errors.
func (br *BatchResult) Invalid() []int {
	var out []int
	for i, r := range br.Results {
		if r == nil {
			continue
		}
		if r.Error != nil || (r.Result != nil && r.Result.HasErrors()) {
			out = append(out, i)
		}
	}
	return out
}
