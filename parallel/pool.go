package parallel

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool runs jobs handed to Do on a fixed set of goroutines. With a single
// worker, Do runs the job inline.
type Pool struct {
	wg      sync.WaitGroup
	workers int
	Do      WorkerFunc
	Wait    WaitFunc
	Cancel  CancelFunc
}

// Start launches numWorkers goroutines, or GOMAXPROCS when numWorkers < 1.
// Wait(true) closes the pool and waits for queued jobs to finish.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		workers: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

func (p *Pool) Workers() int {
	return p.workers
}

// Tally counts job outcomes from concurrent workers.
type Tally struct {
	processed atomic.Uint64
	failed    atomic.Uint64
}

func (t *Tally) Done()   { t.processed.Add(1) }
func (t *Tally) Failed() { t.failed.Add(1) }

func (t *Tally) Counts() (processed, failed uint64) {
	return t.processed.Load(), t.failed.Load()
}

// Err reports how many jobs failed, or nil when none did.
func (t *Tally) Err() error {
	if n := t.failed.Load(); n > 0 {
		return fmt.Errorf("error processing %d files", n)
	}
	return nil
}
