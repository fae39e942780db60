package game

import (
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// rallyStep moves the ball toward the player. Speed is per nominal tick and
// scaled by the real time elapsed.
func (e *Engine) rallyStep() {
	if !e.ballInPlay {
		return
	}
	now := e.sched.Now()
	steps := float64(now.Sub(e.rally.lastTick)) / float64(e.tuning.RallyTickInterval)
	e.rally.lastTick = now

	e.rally.proximity += e.rally.speed * steps
	e.rally.speed *= math.Pow(e.tuning.RallyAcceleration, steps)

	if !e.rally.hasBounced && e.rally.proximity >= e.rally.bouncePoint {
		e.rally.hasBounced = true
		e.rally.speed *= e.tuning.BounceDamping
		e.notify("bounce", e.feedback.Bounce)
	} else {
		p := lo.Clamp(e.rally.proximity, 0, 1)
		e.notify("approaching", func() error { return e.feedback.Approaching(p) })
	}

	if e.rally.proximity > 1 {
		e.log.Debug("ball missed")
		e.awardPoint(false)
		return
	}
	e.changed()
}

// hitBall evaluates a swing during the rally. Hitting before the bounce
// loses the point, except for the first return after a serve, which is
// never classified as a smash.
func (e *Engine) hitBall(raw float64, now time.Time) {
	if !e.acceptHit(now) {
		return
	}
	scaled := ScaleIntensity(raw, e.tuning.MinHitIntensity, e.tuning.MaxHitIntensity)
	grace := e.rally.returnPending
	e.rally.returnPending = false

	if !e.rally.hasBounced && !grace {
		e.log.WithField("proximity", e.rally.proximity).Debug("hit before bounce")
		e.awardPoint(false)
		return
	}

	// The return of a serve is always a normal hit.
	kind := HitNormal
	if e.rally.hasBounced && !grace {
		kind = Classify(e.rally.proximity, scaled, e.tuning)
	}
	e.log.WithFields(logrus.Fields{
		"kind":      kind,
		"proximity": e.rally.proximity,
		"intensity": scaled,
	}).Debug("ball returned")

	switch kind {
	case HitSmash:
		e.rally.speed = e.tuning.SmashBaseSpeed + scaled*e.tuning.SmashSpeedGain
		e.lastHitWasSmash = true
		amplified := scaled * e.tuning.SmashFeedbackGain
		e.notify("hit", func() error { return e.feedback.Hit(amplified) })
	default:
		e.rally.speed = e.tuning.NormalBaseSpeed + scaled*e.tuning.NormalSpeedGain
		e.lastHitWasSmash = false
		e.notify("hit", func() error { return e.feedback.Hit(scaled) })
	}
	e.rally.proximity = 0
	e.rally.hasBounced = false
	e.rally.bouncePoint = e.drawBouncePoint()
}

func (e *Engine) drawBouncePoint() float64 {
	return e.tuning.BounceMin + e.rng.Float64()*(e.tuning.BounceMax-e.tuning.BounceMin)
}
