package game

import "errors"

// ErrMotionUnavailable is returned by a MotionSource with no sensor behind it.
var ErrMotionUnavailable = errors.New("motion source unavailable")

// MotionSource starts and stops the sample stream. Samples come back through
// Engine.PushSample on the engine's goroutine.
type MotionSource interface {
	StartSampling() error
	StopSampling()
}

// FeedbackSink renders game events on the device. Errors are logged by the
// engine and otherwise ignored.
type FeedbackSink interface {
	TossProgress(height float64) error
	Approaching(proximity float64) error
	Hit(intensity float64) error
	Bounce() error
	PointLost() error
	PointWon() error
	GameOver() error
}

type nopMotion struct{}

func (nopMotion) StartSampling() error { return ErrMotionUnavailable }
func (nopMotion) StopSampling()        {}

type nopFeedback struct{}

func (nopFeedback) TossProgress(float64) error { return nil }
func (nopFeedback) Approaching(float64) error  { return nil }
func (nopFeedback) Hit(float64) error          { return nil }
func (nopFeedback) Bounce() error              { return nil }
func (nopFeedback) PointLost() error           { return nil }
func (nopFeedback) PointWon() error            { return nil }
func (nopFeedback) GameOver() error            { return nil }
