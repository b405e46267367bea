// Package clock owns the gravity timer of a game session.
//
// A Driver runs at most one ticker loop at a time. Starting a running driver
// cancels the previous loop first, and Stop cancels the loop and returns
// without waiting, so it is safe to call while holding the session lock that
// the step function also takes. The step receives the loop context and must
// check it under that lock before mutating anything; once Stop has returned,
// a stale step observes a canceled context and does nothing.
package clock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInvalidInterval is returned when Start is given a non-positive interval
var ErrInvalidInterval = errors.New("interval must be positive")

// StepFunc performs one gravity step. It reports whether the loop should keep
// running and the interval to use for the next step; a non-positive next
// keeps the current interval.
type StepFunc func(ctx context.Context) (keepRunning bool, next time.Duration)

// Driver is a restartable ticker loop
type Driver struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
}

// NewDriver creates a stopped driver
func NewDriver() *Driver {
	return &Driver{}
}

// Start launches the loop, replacing any running one
func (d *Driver) Start(interval time.Duration, step StepFunc) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if step == nil {
		return errors.New("step function cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.ctx = ctx
	d.cancel = cancel
	d.done = done
	d.interval = interval

	go d.loop(ctx, done, interval, step)
	return nil
}

// Stop cancels the running loop, if any
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Driver) stopLocked() {
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx = nil
	d.cancel = nil
	d.interval = 0
}

// Wait blocks until the most recently started loop has exited
func (d *Driver) Wait() {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether a loop is active
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// Interval returns the interval of the active loop, or 0 when stopped
func (d *Driver) Interval() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interval
}

func (d *Driver) loop(ctx context.Context, done chan struct{}, interval time.Duration, step StepFunc) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			keepRunning, next := step(ctx)
			if !keepRunning {
				d.finish(ctx)
				return
			}
			if next > 0 && next != interval {
				interval = next
				ticker.Reset(interval)
				d.setInterval(ctx, interval)
			}
		}
	}
}

// finish clears the driver state when the loop ends on its own
func (d *Driver) finish(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == ctx {
		d.stopLocked()
	}
}

func (d *Driver) setInterval(ctx context.Context, interval time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == ctx {
		d.interval = interval
	}
}
