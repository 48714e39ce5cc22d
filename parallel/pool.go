package parallel

import (
	"errors"
	"runtime"
	"sync"
)

type (
	TaskFunc   func() error
	WorkerFunc func(TaskFunc)
	WaitFunc   func() error
)

// Pool runs tasks either inline, when started with a single worker, or on
// a fixed set of goroutines. Task errors are collected and returned by Wait.
type Pool struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
	Do   WorkerFunc
	Wait WaitFunc
}

// Start returns a pool of numWorkers workers. Values below 1 use one worker
// per available CPU.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{}
	pool.Do = func(f TaskFunc) {
		pool.record(f())
	}
	pool.Wait = pool.result

	if numWorkers > 1 {
		workChan := make(chan TaskFunc, numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					pool.record(f())
				}
			})
		}

		pool.Do = func(f TaskFunc) {
			workChan <- f
		}

		closeWork := sync.OnceFunc(func() { close(workChan) })
		pool.Wait = func() error {
			closeWork()
			pool.wg.Wait()
			return pool.result()
		}
	}

	return pool
}

func (p *Pool) record(err error) {
	if err == nil {
		return
	}
	p.mu.Lock()
	p.errs = append(p.errs, err)
	p.mu.Unlock()
}

func (p *Pool) result() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}
