// Package clock schedules one-shot and periodic work for code that must run
// on a single goroutine. Virtual drives time by hand for tests, Realtime hands
// due work to an event loop.
package clock

import (
	"container/heap"
	"time"
)

// Task is a handle to scheduled work. Cancel is idempotent; a cancelled task
// never runs again.
type Task interface {
	Cancel()
}

// Scheduler is what the simulation sees of time.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, f func()) Task
	Every(d time.Duration, f func()) Task
}

type task struct {
	at     time.Time
	period time.Duration
	fn     func()
	seq    uint64
	index  int
	q      *queue
}

func (t *task) Cancel() {
	if t.q == nil || t.index < 0 {
		return
	}
	heap.Remove(t.q, t.index)
	if t.q.onChange != nil {
		t.q.onChange()
	}
}

// queue is a deadline-ordered heap of tasks. Ties run in scheduling order.
type queue struct {
	items    []*task
	seq      uint64
	onChange func()
}

func (q *queue) Len() int { return len(q.items) }

func (q *queue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.at.Equal(b.at) {
		return a.seq < b.seq
	}
	return a.at.Before(b.at)
}

func (q *queue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *queue) Push(x any) {
	t := x.(*task)
	t.index = len(q.items)
	q.items = append(q.items, t)
}

func (q *queue) Pop() any {
	old := q.items
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	q.items = old[:n-1]
	return t
}

func (q *queue) schedule(at time.Time, period time.Duration, f func()) *task {
	q.seq++
	t := &task{at: at, period: period, fn: f, seq: q.seq, q: q}
	heap.Push(q, t)
	if q.onChange != nil {
		q.onChange()
	}
	return t
}

// next returns the earliest pending task, or nil.
func (q *queue) next() *task {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// runOne pops the earliest task and runs it. A periodic task is re-armed
// before it runs so that it may cancel itself. Periods already missed by now
// are skipped.
func (q *queue) runOne(now time.Time) {
	t := heap.Pop(q).(*task)
	if t.period > 0 {
		next := t.at.Add(t.period)
		if !next.After(now) {
			missed := now.Sub(t.at) / t.period
			next = t.at.Add((missed + 1) * t.period)
		}
		q.seq++
		t.at = next
		t.seq = q.seq
		heap.Push(q, t)
	}
	t.fn()
}

func (q *queue) clear() {
	for _, t := range q.items {
		t.index = -1
	}
	q.items = nil
}
