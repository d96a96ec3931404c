package repository

import (
	"context"
)

// Future is the pending result of an operation started with Async.
type Future[R any] struct {
	done   chan struct{}
	result R
	err    error
}

// Async runs fn on its own goroutine and returns a Future for its result.
// ctx is handed to fn unchanged, so cancelling it cancels the store call;
// nothing already written is rolled back.
//
//	f := repository.Async(ctx, func(ctx context.Context) (*models.Note, error) {
//		return notes.GetByID(ctx, id)
//	})
//	note, err := f.Wait()
func Async[R any](ctx context.Context, fn func(context.Context) (R, error)) *Future[R] {
	f := &Future[R]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.result, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation completes and returns its result.
func (f *Future[R]) Wait() (R, error) {
	<-f.done
	return f.result, f.err
}
