package game

import "time"

type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseServeReady
	PhaseServeTossing
	PhaseRallying
	PhasePointSettling
)

func (p Phase) String() string {
	switch p {
	case PhaseServeReady:
		return "serve_ready"
	case PhaseServeTossing:
		return "serve_tossing"
	case PhaseRallying:
		return "rallying"
	case PhasePointSettling:
		return "point_settling"
	}
	return "idle"
}

type serveState struct {
	height     float64
	velocity   float64
	maxHeight  float64
	lastUpdate time.Time
	canHit     bool
}

type rallyState struct {
	proximity   float64
	speed       float64
	hasBounced  bool
	bouncePoint float64
	// the first return after a serve is legal even before the bounce
	returnPending bool
	lastTick      time.Time
}

// Snapshot is the read-only view of an engine.
type Snapshot struct {
	Phase           Phase
	PlayerScore     int
	OpponentScore   int
	WinningScore    int
	GameOver        bool
	ServeHeight     float64
	BallProximity   float64
	BallSpeed       float64
	BallInPlay      bool
	Serving         bool
	CanServe        bool
	CanHitBall      bool
	LastHitWasSmash bool
	OrientedToServe bool
	CanStartNewGame bool
}
