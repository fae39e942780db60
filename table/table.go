package table

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"airpong/clock"
	"airpong/game"
	"airpong/protocol"
)

type Options struct {
	Tuning game.Tuning
	Logger logrus.FieldLogger
	Rand   game.Rand
	// Debug enables the manual "score" command.
	Debug bool
}

// Table hosts one game. Run is the only goroutine that touches the engine;
// everything else talks to it through Post.
type Table struct {
	Inbox chan any

	sched   *clock.Realtime
	engine  *game.Engine
	device  *device
	clients map[string]Conn
	dropped []string
	nextID  int
	dirty   bool
	debug   bool
	log     logrus.FieldLogger

	numClients atomic.Int32
	phase      atomic.String

	quit     chan struct{}
	stopOnce sync.Once

	Code    string            // table code (e.g. "ABC123")
	OnEmpty func(code string) // called when last client leaves
}

func New(code string, opts Options) *Table {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("table", code)
	if opts.Tuning == (game.Tuning{}) {
		opts.Tuning = game.DefaultTuning()
	}

	t := &Table{
		Inbox:   make(chan any, 256),
		sched:   clock.NewRealtime(),
		clients: make(map[string]Conn),
		nextID:  1,
		debug:   opts.Debug,
		log:     log,
		quit:    make(chan struct{}),
		Code:    code,
	}
	t.device = &device{t: t, interval: opts.Tuning.SampleInterval}
	t.engine = game.New(game.Options{
		Tuning:    opts.Tuning,
		Scheduler: t.sched,
		Motion:    t.device,
		Feedback:  t.device,
		Logger:    log,
		Rand:      opts.Rand,
	})
	t.engine.Subscribe(func(s game.Snapshot) {
		t.dirty = true
		t.phase.Store(s.Phase.String())
	})
	t.phase.Store(game.PhaseIdle.String())
	return t
}

// Post hands cmd to the loop. It reports false once the table has stopped.
func (t *Table) Post(cmd any) bool {
	select {
	case <-t.quit:
		return false
	default:
	}
	select {
	case t.Inbox <- cmd:
		return true
	case <-t.quit:
		return false
	}
}

func (t *Table) Stop() {
	t.stopOnce.Do(func() { close(t.quit) })
}

// Done is closed once the table stops. A Join posted just before that may
// never be answered; wait on Done alongside its Reply.
func (t *Table) Done() <-chan struct{} {
	return t.quit
}

// closeAll disconnects every client and turns away joins still queued in the
// inbox with an empty JoinResult.
func (t *Table) closeAll() {
	for id, c := range t.clients {
		_ = c.Close()
		delete(t.clients, id)
		t.numClients.Dec()
	}
	for {
		select {
		case cmd := <-t.Inbox:
			if j, ok := cmd.(Join); ok {
				_ = j.Conn.Close()
				select {
				case j.Reply <- JoinResult{}:
				default:
				}
			}
		default:
			return
		}
	}
}

// NumClients returns the current number of connected clients.
func (t *Table) NumClients() int {
	return int(t.numClients.Load())
}

// Phase returns the engine phase as of the last state change.
func (t *Table) Phase() string {
	return t.phase.Load()
}

func (t *Table) Run() {
	defer func() {
		if r := recover(); r != nil {
			t.log.Errorf("table loop panic: %v", r)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("table", t.Code)
				scope.SetTag("phase", t.Phase())
			})
			hub.Recover(r)
			hub.Flush(5 * time.Second)

			t.Stop()
			t.closeAll()
			if t.OnEmpty != nil {
				t.OnEmpty(t.Code)
			}
		}
	}()

	broadcast := t.sched.Every(time.Second/protocol.BroadcastHz, t.broadcastState)
	defer broadcast.Cancel()

	for {
		select {
		case <-t.quit:
			t.engine.EndGame()
			t.sched.Stop()
			t.closeAll()
			return
		case cmd := <-t.Inbox:
			t.handleCommand(cmd)
		case now := <-t.sched.C():
			t.sched.Fire(now)
		}
		t.dropFailed()
	}
}

func (t *Table) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		id := fmt.Sprintf("c%d", t.nextID)
		t.nextID++
		t.clients[id] = c.Conn
		t.numClients.Inc()
		c.Reply <- JoinResult{ClientID: id}

		t.log.WithFields(logrus.Fields{"client": id, "name": c.Name}).Info("client joined")
		t.sendTo(c.Conn, protocol.MsgWelcome, protocol.Welcome{
			ClientID: id,
			Table:    t.Code,
			SampleHz: protocol.SampleHz,
		})
		if t.device.sampling {
			t.sendTo(c.Conn, protocol.MsgSampling, t.device.samplingMsg())
		}
		t.sendTo(c.Conn, protocol.MsgState, t.buildSnapshot())
	case Motion:
		if _, ok := t.clients[c.ClientID]; !ok || !t.device.sampling {
			return
		}
		t.engine.PushSample(game.NewSample(c.Motion.X, c.Motion.Y, c.Motion.Z))
	case Command:
		conn, ok := t.clients[c.ClientID]
		if !ok {
			return
		}
		t.handleAction(conn, c.ClientID, c.Action)
	case Leave:
		t.handleLeave(c.ClientID)
	}
}

func (t *Table) handleAction(conn Conn, clientID, action string) {
	log := t.log.WithFields(logrus.Fields{"client": clientID, "action": action})
	switch action {
	case protocol.ActionStart:
		t.engine.StartGame()
	case protocol.ActionEnd:
		t.engine.EndGame()
	case protocol.ActionScore:
		if !t.debug {
			log.Warn("score command rejected outside debug mode")
			t.sendTo(conn, protocol.MsgError, protocol.Error{Message: "score is a debug command"})
			return
		}
		t.engine.PlayerScores()
	default:
		log.Warn("unknown command")
		t.sendTo(conn, protocol.MsgError, protocol.Error{Message: fmt.Sprintf("unknown action %q", action)})
		return
	}
	log.Debug("command handled")
}

func (t *Table) handleLeave(clientID string) {
	c, ok := t.clients[clientID]
	if ok {
		_ = c.Close()
		delete(t.clients, clientID)
		t.numClients.Dec()
		t.log.WithField("client", clientID).Info("client left")
	}
	if len(t.clients) == 0 {
		t.engine.EndGame()
		if t.OnEmpty != nil && t.Code != "" {
			t.OnEmpty(t.Code)
		}
	}
}

func (t *Table) broadcastState() {
	if !t.dirty {
		return
	}
	t.dirty = false
	t.broadcast(protocol.MsgState, t.buildSnapshot())
}

// broadcast sends a message to every client. Clients whose connection
// failed are dropped once the current command or tick is done, so the
// engine is never re-entered from its own feedback calls.
func (t *Table) broadcast(msgType string, payload any) {
	b, err := protocol.Encode(msgType, payload)
	if err != nil {
		t.log.WithError(err).Error("encode broadcast")
		return
	}
	for id, c := range t.clients {
		if err := c.Send(b); err != nil {
			t.dropped = append(t.dropped, id)
		}
	}
}

func (t *Table) dropFailed() {
	for len(t.dropped) > 0 {
		id := t.dropped[0]
		t.dropped = t.dropped[1:]
		if _, ok := t.clients[id]; ok {
			t.log.WithField("client", id).Warn("send failed, dropping client")
			t.handleLeave(id)
		}
	}
}

func (t *Table) sendTo(c Conn, msgType string, payload any) {
	b, err := protocol.Encode(msgType, payload)
	if err != nil {
		t.log.WithError(err).Error("encode message")
		return
	}
	_ = c.Send(b)
}

func (t *Table) buildSnapshot() protocol.State {
	s := t.engine.Snapshot()
	return protocol.State{
		Phase:           s.Phase.String(),
		PlayerScore:     s.PlayerScore,
		OpponentScore:   s.OpponentScore,
		WinningScore:    s.WinningScore,
		GameOver:        s.GameOver,
		ServeHeight:     s.ServeHeight,
		BallProximity:   s.BallProximity,
		BallInPlay:      s.BallInPlay,
		Serving:         s.Serving,
		CanServe:        s.CanServe,
		CanHitBall:      s.CanHitBall,
		LastHitWasSmash: s.LastHitWasSmash,
		OrientedToServe: s.OrientedToServe,
		CanStartNewGame: s.CanStartNewGame,
	}
}
