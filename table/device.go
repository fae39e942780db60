package table

import (
	"fmt"
	"time"

	"airpong/game"
	"airpong/haptics"
	"airpong/protocol"
)

// device stands in for the phone held by the players. It relays sampling
// requests and haptic patterns to every connected client, and receives
// their accelerometer samples through the table inbox.
type device struct {
	t        *Table
	sampling bool
	interval time.Duration
}

func (d *device) StartSampling() error {
	d.sampling = true
	d.t.broadcast(protocol.MsgSampling, d.samplingMsg())
	if len(d.t.clients) == 0 {
		return game.ErrMotionUnavailable
	}
	return nil
}

func (d *device) StopSampling() {
	if !d.sampling {
		return
	}
	d.sampling = false
	d.t.broadcast(protocol.MsgSampling, d.samplingMsg())
}

func (d *device) samplingMsg() protocol.Sampling {
	if !d.sampling {
		return protocol.Sampling{}
	}
	return protocol.Sampling{Enabled: true, IntervalMs: int(d.interval.Milliseconds())}
}

func (d *device) TossProgress(height float64) error {
	return d.play("toss", haptics.Toss(height))
}

func (d *device) Approaching(proximity float64) error {
	return d.play("approaching", haptics.Approaching(proximity))
}

func (d *device) Hit(intensity float64) error {
	return d.play("hit", haptics.Hit(intensity))
}

func (d *device) Bounce() error    { return d.play("bounce", haptics.Bounce()) }
func (d *device) PointLost() error { return d.play("point_lost", haptics.PointLost()) }
func (d *device) PointWon() error  { return d.play("point_won", haptics.PointWon()) }
func (d *device) GameOver() error  { return d.play("game_over", haptics.GameOver()) }

func (d *device) play(intent string, p haptics.Pattern) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s feedback: %w", intent, err)
	}
	d.t.broadcast(protocol.MsgFeedback, feedbackMsg(intent, p))
	return nil
}

func feedbackMsg(intent string, p haptics.Pattern) protocol.Feedback {
	events := make([]protocol.HapticSnapshot, len(p.Events))
	for i, e := range p.Events {
		events[i] = protocol.HapticSnapshot{
			Kind:       e.Kind.String(),
			Intensity:  e.Intensity,
			Sharpness:  e.Sharpness,
			AtMs:       e.At.Milliseconds(),
			DurationMs: e.Duration.Milliseconds(),
		}
	}
	return protocol.Feedback{Intent: intent, Events: events}
}
