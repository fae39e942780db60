package game

import (
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"airpong/clock"
)

// Rand supplies bounce points. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type Options struct {
	Tuning    Tuning
	Scheduler clock.Scheduler
	Motion    MotionSource
	Feedback  FeedbackSink
	Logger    logrus.FieldLogger
	Rand      Rand
}

// Engine runs serve and rally for one player. It is not safe for concurrent
// use: every method, and every callback of its Scheduler, must run on the
// same goroutine.
type Engine struct {
	tuning   Tuning
	sched    clock.Scheduler
	motion   MotionSource
	feedback FeedbackSink
	log      logrus.FieldLogger
	rng      Rand

	match Match
	phase Phase
	serve serveState
	rally rallyState

	active          bool
	ballInPlay      bool
	lastHitWasSmash bool
	oriented        bool
	canStartNewGame bool
	lastHit         time.Time

	samples     *Throttle[Sample]
	tossTicker  clock.Task
	rallyTicker clock.Task
	settle      clock.Task
	cooldown    clock.Task

	observers map[int]func(Snapshot)
	nextObs   int
}

func New(opts Options) *Engine {
	if opts.Scheduler == nil {
		panic("game: nil scheduler")
	}
	e := &Engine{
		tuning:          opts.Tuning,
		sched:           opts.Scheduler,
		motion:          opts.Motion,
		feedback:        opts.Feedback,
		log:             opts.Logger,
		rng:             opts.Rand,
		canStartNewGame: true,
		observers:       make(map[int]func(Snapshot)),
	}
	if e.motion == nil {
		e.motion = nopMotion{}
	}
	if e.feedback == nil {
		e.feedback = nopFeedback{}
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	if e.rng == nil {
		e.rng = globalRand{}
	}
	e.match = NewMatch(e.tuning.WinningScore)
	e.rally.speed = e.tuning.BaseBallSpeed
	e.samples = NewThrottle(e.sched, e.tuning.SampleInterval, e.handleSample)
	return e
}

// StartGame resets the score line and waits for a serve. It is ignored
// during the cooldown that follows a game over.
func (e *Engine) StartGame() {
	if !e.canStartNewGame {
		return
	}
	e.stopTimers()
	e.samples.Reset()

	e.match.Reset()
	e.rally = rallyState{speed: e.tuning.BaseBallSpeed}
	e.serve = serveState{}
	e.ballInPlay = false
	e.lastHitWasSmash = false
	e.oriented = false
	e.lastHit = time.Time{}

	if err := e.motion.StartSampling(); err != nil {
		e.log.WithError(err).Warn("motion sampling unavailable, playing without input")
	}
	e.active = true
	e.log.Info("game started")
	e.prepareServe()
}

// EndGame stops the game, cancels everything pending and stops sampling.
// Calling it on a stopped engine does nothing.
func (e *Engine) EndGame() {
	if !e.active {
		return
	}
	e.halt()
	e.log.WithFields(logrus.Fields{
		"player":   e.match.PlayerScore,
		"opponent": e.match.OpponentScore,
	}).Info("game ended")
	e.changed()
}

// PlayerScores awards the player a point. Only debug tooling calls it.
func (e *Engine) PlayerScores() {
	if !e.active || e.match.IsGameOver() {
		return
	}
	e.awardPoint(true)
}

// PushSample feeds a raw accelerometer reading. Readings are throttled to
// Tuning.SampleInterval before they reach the state machine.
func (e *Engine) PushSample(s Sample) {
	if !e.active {
		return
	}
	e.samples.Push(s)
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Phase:           e.phase,
		PlayerScore:     e.match.PlayerScore,
		OpponentScore:   e.match.OpponentScore,
		WinningScore:    e.match.WinningScore,
		GameOver:        e.match.IsGameOver(),
		ServeHeight:     e.serve.height,
		BallProximity:   e.rally.proximity,
		BallSpeed:       e.rally.speed,
		BallInPlay:      e.ballInPlay,
		Serving:         e.phase == PhaseServeReady || e.phase == PhaseServeTossing,
		CanServe:        e.phase == PhaseServeReady,
		CanHitBall:      e.serve.canHit,
		LastHitWasSmash: e.lastHitWasSmash,
		OrientedToServe: e.oriented,
		CanStartNewGame: e.canStartNewGame,
	}
}

// Subscribe registers fn to run after every state change. The returned
// function removes it.
func (e *Engine) Subscribe(fn func(Snapshot)) (cancel func()) {
	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn
	return func() { delete(e.observers, id) }
}

func (e *Engine) changed() {
	if len(e.observers) == 0 {
		return
	}
	s := e.Snapshot()
	for _, fn := range e.observers {
		fn(s)
	}
}

func (e *Engine) handleSample(s Sample) {
	if !e.active || !s.Valid() {
		return
	}
	e.oriented = s.Below(e.tuning.OrientedForServeZ)
	raw := s.Intensity()
	now := e.sched.Now()

	switch e.phase {
	case PhaseServeReady:
		if s.Below(e.tuning.ServeOrientationZ) && raw > e.tuning.MinServeIntensity {
			e.beginToss(raw, now)
		}
	case PhaseServeTossing:
		if e.serve.canHit && raw > e.tuning.MinHitIntensity {
			e.strikeServe(raw, now)
		}
	case PhaseRallying:
		if raw > e.tuning.MinHitIntensity {
			e.hitBall(raw, now)
		}
	}
	e.changed()
}

// acceptHit enforces the debounce window and stamps accepted contacts.
func (e *Engine) acceptHit(now time.Time) bool {
	if !e.lastHit.IsZero() && now.Sub(e.lastHit) <= e.tuning.MinTimeBetweenHits {
		return false
	}
	e.lastHit = now
	return true
}

// awardPoint settles the rally in favor of the player or the opponent.
func (e *Engine) awardPoint(player bool) {
	e.cancel(&e.tossTicker)
	e.cancel(&e.rallyTicker)
	e.cancel(&e.settle)
	e.ballInPlay = false
	e.serve.canHit = false

	if player {
		e.match.IncrementPlayerScore()
		e.notify("point_won", e.feedback.PointWon)
	} else {
		e.match.IncrementOpponentScore()
		e.notify("point_lost", e.feedback.PointLost)
	}
	e.phase = PhasePointSettling
	e.log.WithFields(logrus.Fields{
		"player":   e.match.PlayerScore,
		"opponent": e.match.OpponentScore,
	}).Info("point scored")

	if e.match.IsGameOver() {
		e.halt()
		e.canStartNewGame = false
		e.cooldown = e.sched.After(e.tuning.GameOverCooldown, func() {
			e.cooldown = nil
			e.canStartNewGame = true
			e.changed()
		})
		e.changed()
		return
	}
	e.settle = e.sched.After(e.tuning.PointScoredDelay, func() {
		e.settle = nil
		e.prepareServe()
	})
	e.changed()
}

// halt stops timers and sampling and fires game-over feedback.
func (e *Engine) halt() {
	e.stopTimers()
	e.samples.Reset()
	e.motion.StopSampling()
	e.notify("game_over", e.feedback.GameOver)
	e.active = false
	e.ballInPlay = false
	e.serve.canHit = false
	e.phase = PhaseIdle
}

func (e *Engine) stopTimers() {
	e.cancel(&e.tossTicker)
	e.cancel(&e.rallyTicker)
	e.cancel(&e.settle)
	e.cancel(&e.cooldown)
	e.canStartNewGame = true
}

func (e *Engine) cancel(t *clock.Task) {
	if *t != nil {
		(*t).Cancel()
		*t = nil
	}
}

// notify calls the feedback sink, logging failures and panics instead of
// propagating them.
func (e *Engine) notify(intent string, call func() error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("intent", intent).Errorf("feedback panicked: %v", r)
		}
	}()
	if err := call(); err != nil {
		e.log.WithError(err).WithField("intent", intent).Warn("feedback failed")
	}
}
