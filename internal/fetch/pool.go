// Package fetch runs bounded concurrent object downloads and aggregates
// their records. The CloudTrail provider fans its listed log objects out
// through a pool so one slow object does not serialize the whole load.
package fetch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"CloudSentry/core"
)

// Func downloads and normalizes one object, returning its records and
// the count of records skipped as unparseable
type Func func(ctx context.Context, key string) (core.Events, int, error)

// Errors collects the failures that occurred across workers
type Errors struct {
	mu     sync.Mutex
	errors []error
}

// Add adds an error to the collection
func (e *Errors) Add(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = append(e.errors, err)
}

// HasErrors returns true if any errors were collected
func (e *Errors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errors) > 0
}

// Count returns the number of errors
func (e *Errors) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errors)
}

// Error implements the error interface
func (e *Errors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errors) == 0 {
		return ""
	}
	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}
	return fmt.Sprintf("%d objects failed; first error: %v", len(e.errors), e.errors[0])
}

// Pool downloads objects concurrently with a bounded worker count
type Pool struct {
	numWorkers int
}

// NewPool creates a pool. A non-positive worker count uses the number of
// CPU cores.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{numWorkers: numWorkers}
}

// Fetch downloads every key through fn and returns the merged, sorted
// record collection plus the total skipped count. Any object failure
// cancels the remaining work and is returned as an aggregate error.
func (p *Pool) Fetch(ctx context.Context, keys []string, fn Func) (core.Events, int, error) {
	if len(keys) == 0 {
		return core.Events{}, 0, nil
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	keysChan := make(chan string, len(keys))
	for _, key := range keys {
		keysChan <- key
	}
	close(keysChan)

	fetchErrors := &Errors{}
	var skipped int64
	var mu sync.Mutex
	records := make(core.Events, 0)

	var wg sync.WaitGroup
	for i := 0; i < p.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case key, ok := <-keysChan:
					if !ok {
						return
					}

					objRecords, objSkipped, err := fn(workerCtx, key)
					if err != nil {
						fetchErrors.Add(err)
						cancelWorkers()
						return
					}

					atomic.AddInt64(&skipped, int64(objSkipped))
					mu.Lock()
					records = append(records, objRecords...)
					mu.Unlock()
				}
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if fetchErrors.HasErrors() {
		return nil, 0, fetchErrors
	}

	sort.Sort(records)
	return records, int(atomic.LoadInt64(&skipped)), nil
}
