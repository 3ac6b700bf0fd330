// worker/periodic.go
package worker

import (
	"context"
	"sync"
	"time"
)

// Task is invoked on every tick. Returning true ends the periodic run.
type Task func(now time.Time) (done bool)

// Periodic runs a Task on a fixed interval in its own goroutine until the
// task reports completion, the context is cancelled or Stop is called.
type Periodic struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartPeriodic launches task every interval.
func StartPeriodic(ctx context.Context, interval time.Duration, task Task) *Periodic {
	p := &Periodic{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go p.run(ctx, interval, task)
	return p
}

func (p *Periodic) run(ctx context.Context, interval time.Duration, task Task) {
	defer close(p.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case now := <-ticker.C:
			if task(now) {
				return
			}
		}
	}
}

// Stop cancels future ticks. It never blocks and is safe to call more than
// once, including from inside the task.
func (p *Periodic) Stop() {
	p.once.Do(func() { close(p.stop) })
}

// Done is closed once the goroutine has exited.
func (p *Periodic) Done() <-chan struct{} {
	return p.done
}
