package eval

import "sync"

// workerPool is the persistent worker pool used to parallelize
// independent sibling argument reductions above the configured arity
// threshold: subtasks are handed to a persistent worker pool over a
// bounded task channel, with no per-task spawns. Suspension is
// cooperative: a submitted task always runs to completion once
// started.
type workerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// newWorkerPool starts n persistent goroutines draining a bounded task
// channel. n<=0 disables the pool: submitAll then runs the tasks inline on
// the caller's goroutine, which is what makes parallel dispatch purely
// an optimization rather than a semantic requirement — results across
// nondeterministic branches are always gathered in the order branches
// are created.
func newWorkerPool(n int) *workerPool {
	p := &workerPool{}
	if n <= 0 {
		return p
	}
	p.tasks = make(chan func(), n*4)
	for i := 0; i < n; i++ {
		go p.loop()
	}
	return p
}

func (p *workerPool) loop() {
	for task := range p.tasks {
		task()
	}
}

// submitAll runs each of fns to completion and returns their results
// in the same order they were submitted, regardless of which finishes
// first. When the pool has no goroutines, fns run sequentially inline.
func submitAll[T any](p *workerPool, fns []func() T) []T {
	results := make([]T, len(fns))
	if p.tasks == nil {
		for i, fn := range fns {
			results[i] = fn()
		}
		return results
	}
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for i, fn := range fns {
		i, fn := i, fn
		p.tasks <- func() {
			defer wg.Done()
			results[i] = fn()
		}
	}
	wg.Wait()
	return results
}

func (p *workerPool) close() {
	p.once.Do(func() {
		if p.tasks != nil {
			close(p.tasks)
		}
	})
}
