package clock

import "time"

// Virtual is a manually advanced Scheduler. Callbacks run on the goroutine
// calling Advance.
type Virtual struct {
	now time.Time
	q   queue
}

func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time { return v.now }

func (v *Virtual) After(d time.Duration, f func()) Task {
	return v.q.schedule(v.now.Add(d), 0, f)
}

func (v *Virtual) Every(d time.Duration, f func()) Task {
	if d <= 0 {
		panic("clock: non-positive period")
	}
	return v.q.schedule(v.now.Add(d), d, f)
}

// Advance moves time forward by d, running every task that falls due in
// deadline order. Now reports each task's deadline while it runs.
func (v *Virtual) Advance(d time.Duration) {
	target := v.now.Add(d)
	for {
		t := v.q.next()
		if t == nil || t.at.After(target) {
			break
		}
		v.now = t.at
		v.q.runOne(v.now)
	}
	v.now = target
}

// Pending reports the number of live tasks.
func (v *Virtual) Pending() int { return v.q.Len() }
