// Package fanout runs independent requests concurrently and collects every
// outcome.
package fanout

import (
	"context"
	"errors"
	"sync"
)

// Outcome is the result of one task. Exactly one of Value and Err is
// meaningful.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Gather calls fn once per input, all at once, and returns the outcomes in
// input order. A failed task never cancels its siblings.
func Gather[In, Out any](ctx context.Context, inputs []In, fn func(ctx context.Context, in In) (Out, error)) []Outcome[Out] {
	outcomes := make([]Outcome[Out], len(inputs))

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in In) {
			defer wg.Done()
			v, err := fn(ctx, in)
			outcomes[i] = Outcome[Out]{Value: v, Err: err}
		}(i, in)
	}
	wg.Wait()

	return outcomes
}

// Partition splits outcomes into successful values (in order) and errors.
func Partition[T any](outcomes []Outcome[T]) ([]T, []error) {
	values := make([]T, 0, len(outcomes))
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
			continue
		}
		values = append(values, o.Value)
	}
	return values, errs
}

// All runs every task concurrently and waits for all of them. The returned
// error joins every task's error, or is nil if they all succeeded.
func All(ctx context.Context, tasks ...func(ctx context.Context) error) error {
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func(ctx context.Context) error) {
			defer wg.Done()
			errs[i] = task(ctx)
		}(i, task)
	}
	wg.Wait()

	return errors.Join(errs...)
}
