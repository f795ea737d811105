// Package worker runs entity validations in parallel.
//
// Two shapes are offered. Pool is a long-lived streaming pool: submit
// jobs as they arrive and take finished results with Collect or
// CloseAndWait. BatchValidator is a one-shot fan-out over a slice of
// instances that preserves input order.
//
// Example:
//
//	pool := worker.NewPool(validator, 4)
//	for i, instance := range instances {
//	    pool.Submit(worker.Job{
//	        ID:       strconv.Itoa(i),
//	        Kind:     "person",
//	        Instance: instance,
//	    })
//	}
//	batch := pool.CloseAndWait()
//	if batch.HasErrors() {
//	    // inspect batch.Results
//	}
package worker
