package worker

import (
	"context"
	"fmt"
	"sync"
)

// Job is one unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces
type Result interface {
	GetError() error
}

// PanicResult is reported in place of a job that panicked
type PanicResult struct {
	Value any
}

// GetError describes the recovered panic
func (r *PanicResult) GetError() error {
	return fmt.Errorf("job panicked: %v", r.Value)
}

// Pool runs jobs on a fixed number of goroutines
type Pool struct {
	size     int
	queue    chan Job
	out      chan Result
	running  sync.WaitGroup
	ctx      context.Context
	stop     context.CancelFunc
	onResult func(Result)

	queueClosed sync.Once
	outClosed   sync.Once
}

// NewPool creates a pool with the given number of workers (at least one)
func NewPool(workers int) *Pool {
	return NewPoolWithContext(context.Background(), workers)
}

// NewPoolWithContext creates a pool whose jobs are cancelled together with parent
func NewPoolWithContext(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, stop := context.WithCancel(parent)

	return &Pool{
		size:  workers,
		queue: make(chan Job, workers*2),
		out:   make(chan Result, workers*2),
		ctx:   ctx,
		stop:  stop,
	}
}

// OnResult registers fn to be called, from the collecting goroutine, for
// every result as it is collected. Must be set before Wait or Run.
func (p *Pool) OnResult(fn func(Result)) {
	p.onResult = fn
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.running.Add(1)
		go p.work()
	}
}

func (p *Pool) work() {
	defer p.running.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			select {
			case p.out <- p.execute(job):
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// execute runs job, turning a panic into a PanicResult so one bad job
// cannot take the whole batch down
func (p *Pool) execute(job Job) (res Result) {
	defer func() {
		if v := recover(); v != nil {
			res = &PanicResult{Value: v}
		}
	}()
	return job.Execute(p.ctx)
}

// Submit queues a job. It returns false once the pool is cancelled.
// Submitting more jobs than the buffers hold blocks until Wait drains
// results; use Run for batches of unknown size.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- job:
		return true
	}
}

// Wait closes the queue, lets the workers finish and returns every result
func (p *Pool) Wait() []Result {
	p.closeQueue()
	go p.closeWhenIdle()
	return p.collect(0)
}

// Run starts the workers, feeds them jobs while results are being collected
// and returns once every job has finished or the pool is cancelled.
// Results arrive in completion order.
func (p *Pool) Run(jobs []Job) []Result {
	p.Start()

	go func() {
		defer p.closeQueue()
		for _, job := range jobs {
			if !p.Submit(job) {
				return
			}
		}
	}()
	go p.closeWhenIdle()

	return p.collect(len(jobs))
}

// Shutdown cancels running jobs and stops the workers
func (p *Pool) Shutdown() {
	p.stop()
	p.running.Wait()
	p.closeOut()
}

func (p *Pool) collect(expected int) []Result {
	results := make([]Result, 0, expected)
	for res := range p.out {
		if p.onResult != nil {
			p.onResult(res)
		}
		results = append(results, res)
	}
	return results
}

func (p *Pool) closeWhenIdle() {
	p.running.Wait()
	p.closeOut()
}

func (p *Pool) closeQueue() {
	p.queueClosed.Do(func() { close(p.queue) })
}

func (p *Pool) closeOut() {
	p.outClosed.Do(func() { close(p.out) })
}
