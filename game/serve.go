package game

import (
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

func (e *Engine) prepareServe() {
	e.cancel(&e.tossTicker)
	e.cancel(&e.rallyTicker)
	e.phase = PhaseServeReady
	e.ballInPlay = false
	e.serve = serveState{}
	e.rally.proximity = 0
	e.changed()
}

// beginToss launches the ball upward. The launch counts as a paddle contact
// for the debounce window.
func (e *Engine) beginToss(raw float64, now time.Time) {
	if !e.acceptHit(now) {
		return
	}
	e.serve = serveState{
		velocity:   raw * e.tuning.TossGain,
		lastUpdate: now,
	}
	e.phase = PhaseServeTossing
	e.notify("hit", func() error { return e.feedback.Hit(raw) })
	e.tossTicker = e.sched.Every(e.tuning.TossTickInterval, e.tossStep)
}

// tossStep integrates the toss over the real time elapsed since the last
// step. A ball that falls back below the hand is a missed toss: no penalty,
// serve again.
func (e *Engine) tossStep() {
	now := e.sched.Now()
	dt := now.Sub(e.serve.lastUpdate).Seconds()
	e.serve.lastUpdate = now

	g := e.tuning.Gravity
	h := e.serve.height + e.serve.velocity*dt - 0.5*g*dt*dt
	e.serve.velocity -= g * dt

	if h < 0 {
		e.log.WithField("max_height", e.serve.maxHeight).Debug("toss missed")
		e.cancel(&e.tossTicker)
		e.serve = serveState{}
		e.phase = PhaseServeReady
		e.changed()
		return
	}
	if h > e.serve.maxHeight {
		e.serve.maxHeight = h
	}
	e.serve.height = lo.Clamp(h, 0, 1)
	e.serve.canHit = e.serve.height >= e.tuning.MinServeBallHeight
	height := e.serve.height
	e.notify("toss", func() error { return e.feedback.TossProgress(height) })
	e.changed()
}

// strikeServe hits the tossed ball and starts the rally.
func (e *Engine) strikeServe(raw float64, now time.Time) {
	if !e.acceptHit(now) {
		return
	}
	scaled := ScaleIntensity(raw, e.tuning.MinHitIntensity, e.tuning.MaxHitIntensity)
	e.cancel(&e.tossTicker)
	e.log.WithFields(logrus.Fields{
		"height":    e.serve.height,
		"intensity": scaled,
	}).Debug("serve struck")
	e.notify("hit", func() error { return e.feedback.Hit(scaled) })

	e.serve.canHit = false
	e.ballInPlay = true
	e.lastHitWasSmash = false
	e.rally = rallyState{
		speed:         e.tuning.NormalBaseSpeed + scaled*e.tuning.NormalSpeedGain,
		bouncePoint:   e.drawBouncePoint(),
		returnPending: true,
		lastTick:      now,
	}
	e.phase = PhaseRallying
	e.rallyTicker = e.sched.Every(e.tuning.RallyTickInterval, e.rallyStep)
}
