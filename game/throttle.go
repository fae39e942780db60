package game

import (
	"time"

	"airpong/clock"
)

// Throttle delivers at most one value per period: the latest one pushed
// before the period closed.
type Throttle[T any] struct {
	sched   clock.Scheduler
	period  time.Duration
	deliver func(T)

	latest  T
	pending clock.Task
}

func NewThrottle[T any](sched clock.Scheduler, period time.Duration, deliver func(T)) *Throttle[T] {
	return &Throttle[T]{sched: sched, period: period, deliver: deliver}
}

func (t *Throttle[T]) Push(v T) {
	t.latest = v
	if t.pending == nil {
		t.pending = t.sched.After(t.period, t.flush)
	}
}

// Reset drops any value waiting for delivery.
func (t *Throttle[T]) Reset() {
	if t.pending != nil {
		t.pending.Cancel()
		t.pending = nil
	}
	var zero T
	t.latest = zero
}

func (t *Throttle[T]) flush() {
	t.pending = nil
	t.deliver(t.latest)
}
