// Package haptics builds the vibration pattern the device plays for each
// game event.
package haptics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
)

type Kind uint8

const (
	Transient Kind = iota
	Continuous
)

func (k Kind) String() string {
	if k == Continuous {
		return "continuous"
	}
	return "transient"
}

// Event is a single pulse. Intensity and Sharpness are in [0,1]; Duration
// only applies to continuous events.
type Event struct {
	Kind      Kind
	Intensity float64
	Sharpness float64
	At        time.Duration
	Duration  time.Duration
}

type Pattern struct {
	Events []Event
}

var ErrEmptyPattern = errors.New("haptics: empty pattern")

// Validate rejects patterns a device would refuse to play.
func (p Pattern) Validate() error {
	if len(p.Events) == 0 {
		return ErrEmptyPattern
	}
	for i, e := range p.Events {
		if !unit(e.Intensity) {
			return fmt.Errorf("haptics: event %d intensity %v outside [0,1]", i, e.Intensity)
		}
		if !unit(e.Sharpness) {
			return fmt.Errorf("haptics: event %d sharpness %v outside [0,1]", i, e.Sharpness)
		}
		if e.At < 0 {
			return fmt.Errorf("haptics: event %d starts at negative offset %v", i, e.At)
		}
		if e.Kind == Continuous && e.Duration <= 0 {
			return fmt.Errorf("haptics: continuous event %d has no duration", i)
		}
	}
	return nil
}

func unit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func transient(intensity, sharpness float64, at time.Duration) Event {
	return Event{Kind: Transient, Intensity: intensity, Sharpness: sharpness, At: at}
}

func pulses(intensity, sharpness float64, gap time.Duration, n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = transient(intensity, sharpness, time.Duration(i)*gap)
	}
	return events
}

// Toss is a light tick that grows with the ball height.
func Toss(height float64) Pattern {
	return Pattern{Events: []Event{transient(height*0.5, 0.8, 0)}}
}

// Approaching is a short rumble that grows as the ball nears.
func Approaching(proximity float64) Pattern {
	return Pattern{Events: []Event{{
		Kind:      Continuous,
		Intensity: proximity * 0.7,
		Sharpness: 0.5,
		Duration:  100 * time.Millisecond,
	}}}
}

func Bounce() Pattern {
	return Pattern{Events: []Event{transient(0.7, 0.5, 0)}}
}

// Hit renders a paddle contact. Intensities above 1 come from smashes and
// saturate into a double full-strength pulse.
func Hit(intensity float64) Pattern {
	if intensity > 1 {
		return Pattern{Events: pulses(1, 1, 100*time.Millisecond, 2)}
	}
	return Pattern{Events: []Event{transient(lo.Clamp(intensity, 0, 1), 0.8, 0)}}
}

// PointLost is three hard knocks followed by a long buzz.
func PointLost() Pattern {
	events := pulses(1, 1, 200*time.Millisecond, 3)
	events = append(events, Event{
		Kind:      Continuous,
		Intensity: 0.8,
		Sharpness: 0.8,
		At:        600 * time.Millisecond,
		Duration:  500 * time.Millisecond,
	})
	return Pattern{Events: events}
}

func PointWon() Pattern {
	return Pattern{Events: pulses(1, 0.7, 100*time.Millisecond, 3)}
}

func GameOver() Pattern {
	return Pattern{Events: pulses(1, 0.5, 200*time.Millisecond, 4)}
}
