package utils

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many blocking jobs (synthesis, encoding, uploads) run at once.
// Do blocks the caller until the job has finished
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

func (p *Pool) Size() int {
	return p.size
}

func (p *Pool) Do(ctx context.Context, job func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return job()
}

// Run is Do for jobs producing a value
func Run[T any](ctx context.Context, p *Pool, job func() (T, error)) (result T, err error) {
	err = p.Do(ctx, func() error {
		var jobErr error
		result, jobErr = job()
		return jobErr
	})
	return
}
