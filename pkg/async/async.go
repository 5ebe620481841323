package async

import "context"

// Future holds the eventual result of an Async call.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await blocks until the function returns.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// Async calls fn(ctx, param) in a new goroutine. If ctx is already done the
// function is not called and the future resolves with ctx.Err().
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// Settle awaits every future, including those after a failure, and returns
// one error slot per future (nil on success).
func Settle[U any](futures ...*Future[U]) []error {
	errs := make([]error, len(futures))
	for i, f := range futures {
		_, errs[i] = f.Await()
	}
	return errs
}
