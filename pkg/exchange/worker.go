package exchange

import (
	"context"
	"sync"
)

// Worker runs a call on its own goroutine and exposes the terminal result as
// a consumable good. Consumption replaces waiting on the goroutine: it
// returns ErrEmptyStock while the call is still running and the call's result
// on every consumption afterwards. Panics in the call are recovered and
// reported as a *PanicError fault.
type Worker[G any] struct {
	mu     sync.Mutex
	done   bool
	good   G
	err    error
	cancel context.CancelFunc
}

// Start spawns call once and returns the Worker consuming its result.
// Cancel cancels the context passed to the call.
func Start[G any](call func(context.Context) (G, error)) *Worker[G] {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker[G]{cancel: cancel}
	go func() {
		good, err := runGuarded(ctx, call)
		w.finish(good, err)
	}()
	return w
}

// StartLoop spawns call repeatedly until it fails or the worker is canceled,
// then records the final result. A canceled loop whose last call succeeded
// reports that success.
func StartLoop[G any](call func(context.Context) (G, error)) *Worker[G] {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker[G]{cancel: cancel}
	go func() {
		var good G
		var err error
		for {
			good, err = runGuarded(ctx, call)
			if err != nil || ctx.Err() != nil {
				break
			}
		}
		w.finish(good, err)
	}()
	return w
}

// runGuarded invokes call, converting a panic into a *PanicError.
func runGuarded[G any](ctx context.Context, call func(context.Context) (G, error)) (good G, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v}
		}
	}()
	return call(ctx)
}

func (w *Worker[G]) finish(good G, err error) {
	w.mu.Lock()
	w.good = good
	w.err = err
	w.done = true
	w.mu.Unlock()
	// Release the context; the call has returned and nothing waits on it.
	w.cancel()
}

// Consume retrieves the result of the call. It returns ErrEmptyStock while
// the call is still running. Once the call has finished, every consumption
// returns the same result.
func (w *Worker[G]) Consume() (G, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.done {
		var zero G
		return zero, ErrEmptyStock
	}
	return w.good, w.err
}

// Cancel requests that the call stop. It does not wait for it to do so.
func (w *Worker[G]) Cancel() {
	w.cancel()
}
