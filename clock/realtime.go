package clock

import "time"

// Realtime is a wall-clock Scheduler owned by one event loop. It is not safe
// for concurrent use: schedule, cancel and Fire from the loop goroutine only.
//
//	for {
//		select {
//		case now := <-rt.C():
//			rt.Fire(now)
//		case cmd := <-inbox:
//			...
//		}
//	}
type Realtime struct {
	q     queue
	timer *time.Timer
}

func NewRealtime() *Realtime {
	r := &Realtime{timer: time.NewTimer(time.Hour)}
	r.timer.Stop()
	r.q.onChange = r.rearm
	return r
}

func (r *Realtime) Now() time.Time { return time.Now() }

func (r *Realtime) After(d time.Duration, f func()) Task {
	return r.q.schedule(time.Now().Add(d), 0, f)
}

func (r *Realtime) Every(d time.Duration, f func()) Task {
	if d <= 0 {
		panic("clock: non-positive period")
	}
	return r.q.schedule(time.Now().Add(d), d, f)
}

// C fires once the earliest pending task is due.
func (r *Realtime) C() <-chan time.Time { return r.timer.C }

// Fire runs every task due at now.
func (r *Realtime) Fire(now time.Time) {
	for {
		t := r.q.next()
		if t == nil || t.at.After(now) {
			break
		}
		r.q.runOne(now)
	}
	r.rearm()
}

// Stop cancels all pending tasks.
func (r *Realtime) Stop() {
	r.q.clear()
	r.timer.Stop()
}

// Pending reports the number of live tasks.
func (r *Realtime) Pending() int { return r.q.Len() }

func (r *Realtime) rearm() {
	t := r.q.next()
	if t == nil {
		r.timer.Stop()
		return
	}
	d := time.Until(t.at)
	if d < 0 {
		d = 0
	}
	r.timer.Reset(d)
}
