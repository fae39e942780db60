package game

import (
	"errors"
	"fmt"
	"time"
)

// Tuning holds every gameplay constant. Values are per rally tick unless a
// unit says otherwise.
type Tuning struct {
	WinningScore int

	TossTickInterval   time.Duration // serve toss simulation step
	RallyTickInterval  time.Duration // rally simulation step; ball speeds are per step
	SampleInterval     time.Duration // motion throttle period
	MinTimeBetweenHits time.Duration
	PointScoredDelay   time.Duration
	GameOverCooldown   time.Duration

	Gravity            float64 // serve heights per s²
	TossGain           float64 // launch velocity per unit of intensity
	MinServeBallHeight float64 // toss height at which the ball becomes hittable
	ServeOrientationZ  float64 // accel.z below this counts as a serve gesture
	OrientedForServeZ  float64 // accel.z below this lights the "oriented" flag
	MinServeIntensity  float64

	MinHitIntensity   float64
	MaxHitIntensity   float64
	SmashProximity    float64
	SmashIntensity    float64 // scaled
	SmashFeedbackGain float64

	BaseBallSpeed   float64
	NormalBaseSpeed float64
	NormalSpeedGain float64
	SmashBaseSpeed  float64
	SmashSpeedGain  float64

	RallyAcceleration float64 // speed multiplier per tick
	BounceDamping     float64 // speed multiplier on bounce
	BounceMin         float64
	BounceMax         float64
}

func DefaultTuning() Tuning {
	return Tuning{
		WinningScore: 11,

		TossTickInterval:   16 * time.Millisecond,
		RallyTickInterval:  40 * time.Millisecond,
		SampleInterval:     16 * time.Millisecond,
		MinTimeBetweenHits: 500 * time.Millisecond,
		PointScoredDelay:   1500 * time.Millisecond,
		GameOverCooldown:   time.Second,

		Gravity:            9.8,
		TossGain:           4.5,
		MinServeBallHeight: 0.1,
		ServeOrientationZ:  -0.5,
		OrientedForServeZ:  -0.7,
		MinServeIntensity:  0.25,

		MinHitIntensity:   0.25,
		MaxHitIntensity:   1.0,
		SmashProximity:    0.90,
		SmashIntensity:    0.7,
		SmashFeedbackGain: 1.5,

		BaseBallSpeed:   0.015,
		NormalBaseSpeed: 0.015,
		NormalSpeedGain: 0.015,
		SmashBaseSpeed:  0.03,
		SmashSpeedGain:  0.02,

		RallyAcceleration: 1.001,
		BounceDamping:     0.95,
		BounceMin:         0.4,
		BounceMax:         0.6,
	}
}

var ErrInvalidTuning = errors.New("invalid tuning")

// Validate reports the first inconsistent value.
func (t Tuning) Validate() error {
	switch {
	case t.WinningScore <= 0:
		return fmt.Errorf("%w: winning score %d must be positive", ErrInvalidTuning, t.WinningScore)
	case t.TossTickInterval <= 0, t.RallyTickInterval <= 0, t.SampleInterval <= 0:
		return fmt.Errorf("%w: tick and sample intervals must be positive", ErrInvalidTuning)
	case t.MinTimeBetweenHits < 0, t.PointScoredDelay < 0, t.GameOverCooldown < 0:
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidTuning)
	case t.Gravity <= 0:
		return fmt.Errorf("%w: gravity %v must be positive", ErrInvalidTuning, t.Gravity)
	case t.MaxHitIntensity <= t.MinHitIntensity:
		return fmt.Errorf("%w: max hit intensity %v must exceed min %v", ErrInvalidTuning, t.MaxHitIntensity, t.MinHitIntensity)
	case t.BounceMin < 0 || t.BounceMax > 1 || t.BounceMin > t.BounceMax:
		return fmt.Errorf("%w: bounce range [%v, %v] outside [0, 1]", ErrInvalidTuning, t.BounceMin, t.BounceMax)
	case t.BaseBallSpeed <= 0, t.NormalBaseSpeed <= 0, t.SmashBaseSpeed <= 0:
		return fmt.Errorf("%w: ball speeds must be positive", ErrInvalidTuning)
	case t.RallyAcceleration <= 0, t.BounceDamping <= 0:
		return fmt.Errorf("%w: speed multipliers must be positive", ErrInvalidTuning)
	}
	return nil
}
