package table

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"airpong/game"
	"airpong/protocol"
)

type fakeConn struct {
	sendCh chan []byte
	closed chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{sendCh: make(chan []byte, 256), closed: make(chan struct{}, 1)}
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case f.sendCh <- cp:
	default:
	}
	return nil
}

func (f *fakeConn) Close() error {
	select {
	case f.closed <- struct{}{}:
	default:
	}
	return nil
}

func newTestTable(t *testing.T, debug bool) *Table {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	tb := New("TEST01", Options{Tuning: game.DefaultTuning(), Logger: logger, Debug: debug})
	go tb.Run()
	t.Cleanup(tb.Stop)
	return tb
}

func join(t *testing.T, tb *Table, c Conn) string {
	t.Helper()
	reply := make(chan JoinResult, 1)
	if !tb.Post(Join{Conn: c, Name: "test", Reply: reply}) {
		t.Fatalf("table refused join")
	}
	res := <-reply
	if res.ClientID == "" {
		t.Fatalf("expected client id, got empty")
	}
	return res.ClientID
}

// waitFor reads messages until one of type msgType satisfies match.
func waitFor(t *testing.T, fc *fakeConn, msgType string, match func(protocol.Envelope) bool) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T == msgType && (match == nil || match(env)) {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

func stateWhere(t *testing.T, pred func(protocol.State) bool) func(protocol.Envelope) bool {
	return func(env protocol.Envelope) bool {
		st, err := protocol.DecodePayload[protocol.State](env)
		if err != nil {
			t.Fatalf("decode state: %v", err)
		}
		return pred(st)
	}
}

func feedbackIntent(t *testing.T, intent string) func(protocol.Envelope) bool {
	return func(env protocol.Envelope) bool {
		fb, err := protocol.DecodePayload[protocol.Feedback](env)
		if err != nil {
			t.Fatalf("decode feedback: %v", err)
		}
		return fb.Intent == intent
	}
}

func TestTableJoinSendsWelcomeThenState(t *testing.T) {
	tb := newTestTable(t, false)
	fc := newFakeConn()
	id := join(t, tb, fc)

	waitFor(t, fc, protocol.MsgWelcome, func(env protocol.Envelope) bool {
		w, err := protocol.DecodePayload[protocol.Welcome](env)
		if err != nil {
			t.Fatalf("decode welcome: %v", err)
		}
		if w.ClientID != id || w.Table != "TEST01" || w.SampleHz != protocol.SampleHz {
			t.Fatalf("welcome = %+v", w)
		}
		return true
	})
	waitFor(t, fc, protocol.MsgState, stateWhere(t, func(st protocol.State) bool {
		return st.Phase == "idle" && st.WinningScore == 11
	}))
	if tb.NumClients() != 1 {
		t.Fatalf("NumClients = %d, want 1", tb.NumClients())
	}
}

func TestTableTwoClientsGetUniqueIDs(t *testing.T) {
	tb := newTestTable(t, false)
	a := join(t, tb, newFakeConn())
	b := join(t, tb, newFakeConn())
	if a == b {
		t.Fatalf("expected unique client ids, got same: %q", a)
	}
}

func TestTableStartEnablesSampling(t *testing.T) {
	tb := newTestTable(t, false)
	fc := newFakeConn()
	id := join(t, tb, fc)

	tb.Post(Command{ClientID: id, Action: protocol.ActionStart})
	waitFor(t, fc, protocol.MsgSampling, func(env protocol.Envelope) bool {
		s, err := protocol.DecodePayload[protocol.Sampling](env)
		if err != nil {
			t.Fatalf("decode sampling: %v", err)
		}
		return s.Enabled && s.IntervalMs == 16
	})
	waitFor(t, fc, protocol.MsgState, stateWhere(t, func(st protocol.State) bool {
		return st.Phase == "serve_ready" && st.CanServe
	}))
	if got := tb.Phase(); got != "serve_ready" {
		t.Fatalf("Phase() = %q, want serve_ready", got)
	}
}

func TestTableMotionTossesBall(t *testing.T) {
	tb := newTestTable(t, false)
	fc := newFakeConn()
	id := join(t, tb, fc)

	// Ignored: sampling is off until the game starts.
	tb.Post(Motion{ClientID: id, Motion: protocol.Motion{Z: -3}})
	tb.Post(Command{ClientID: id, Action: protocol.ActionStart})
	waitFor(t, fc, protocol.MsgState, stateWhere(t, func(st protocol.State) bool {
		return st.Phase == "serve_ready"
	}))

	tb.Post(Motion{ClientID: id, Motion: protocol.Motion{Z: -3}})
	waitFor(t, fc, protocol.MsgFeedback, feedbackIntent(t, "hit"))
	waitFor(t, fc, protocol.MsgFeedback, feedbackIntent(t, "toss"))
	waitFor(t, fc, protocol.MsgState, stateWhere(t, func(st protocol.State) bool {
		return st.Phase == "serve_tossing" && st.ServeHeight > 0
	}))
}

func TestTableScoreRequiresDebug(t *testing.T) {
	tb := newTestTable(t, false)
	fc := newFakeConn()
	id := join(t, tb, fc)

	tb.Post(Command{ClientID: id, Action: protocol.ActionScore})
	waitFor(t, fc, protocol.MsgError, nil)

	tb.Post(Command{ClientID: id, Action: "dance"})
	waitFor(t, fc, protocol.MsgError, func(env protocol.Envelope) bool {
		e, err := protocol.DecodePayload[protocol.Error](env)
		if err != nil {
			t.Fatalf("decode error: %v", err)
		}
		return e.Message == `unknown action "dance"`
	})
}

func TestTableDebugScore(t *testing.T) {
	tb := newTestTable(t, true)
	fc := newFakeConn()
	id := join(t, tb, fc)

	tb.Post(Command{ClientID: id, Action: protocol.ActionStart})
	tb.Post(Command{ClientID: id, Action: protocol.ActionScore})
	waitFor(t, fc, protocol.MsgFeedback, feedbackIntent(t, "point_won"))
	waitFor(t, fc, protocol.MsgState, stateWhere(t, func(st protocol.State) bool {
		return st.PlayerScore == 1 && st.Phase == "point_settling"
	}))
}

func TestTableLastLeaveEndsGameAndEmpties(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tb := New("EMPTY1", Options{Logger: logger})
	emptied := make(chan string, 1)
	tb.OnEmpty = func(code string) { emptied <- code }
	go tb.Run()
	defer tb.Stop()

	fc := newFakeConn()
	id := join(t, tb, fc)
	tb.Post(Command{ClientID: id, Action: protocol.ActionStart})
	tb.Post(Leave{ClientID: id})

	select {
	case code := <-emptied:
		if code != "EMPTY1" {
			t.Fatalf("OnEmpty(%q), want EMPTY1", code)
		}
	case <-time.After(time.Second):
		t.Fatalf("OnEmpty not called")
	}
	select {
	case <-fc.closed:
	case <-time.After(time.Second):
		t.Fatalf("conn not closed on leave")
	}
	if tb.NumClients() != 0 {
		t.Fatalf("NumClients = %d, want 0", tb.NumClients())
	}
	if got := tb.Phase(); got != "idle" {
		t.Fatalf("Phase() = %q, want idle", got)
	}
}

func TestTablePostAfterStop(t *testing.T) {
	tb := newTestTable(t, false)
	tb.Stop()
	if tb.Post(Leave{ClientID: "c1"}) {
		t.Fatalf("Post succeeded on a stopped table")
	}
}

type slowConn struct {
	sendCh chan []byte
	block  chan struct{}
}

func (s *slowConn) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	s.sendCh <- cp
	<-s.block // block until released
	return nil
}
func (s *slowConn) Close() error { return nil }

func TestTableBroadcastDoesNotDeadlockOnSlowConn(t *testing.T) {
	tb := newTestTable(t, false)

	sc := &slowConn{
		sendCh: make(chan []byte, 1),
		block:  make(chan struct{}),
	}
	join(t, tb, sc)

	select {
	case <-sc.sendCh:
		close(sc.block)
	case <-time.After(1 * time.Second):
		t.Fatalf("expected at least one send; possible deadlock")
	}
}

func TestTableStateBroadcastRateBounded(t *testing.T) {
	tb := newTestTable(t, false)
	fc := newFakeConn()
	id := join(t, tb, fc)
	tb.Post(Command{ClientID: id, Action: protocol.ActionStart})
	tb.Post(Motion{ClientID: id, Motion: protocol.Motion{Z: -3}})

	// The toss changes state every tick; snapshots still go out at 20Hz.
	deadline := time.After(300 * time.Millisecond)
	count := 0
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err == nil && env.T == protocol.MsgState {
				count++
			}
		case <-deadline:
			if count < 1 || count > 12 {
				t.Fatalf("unexpected state broadcast count in 300ms: %d", count)
			}
			return
		}
	}
}

func TestTableStopAnswersQueuedJoins(t *testing.T) {
	logger, _ := test.NewNullLogger()
	for i := 0; i < 50; i++ {
		tb := New("RACE01", Options{Logger: logger})
		fc := newFakeConn()
		reply := make(chan JoinResult, 1)
		// Accepted into the inbox before the table stops.
		tb.Inbox <- Join{Conn: fc, Name: "late", Reply: reply}
		tb.Stop()
		go tb.Run()

		select {
		case <-reply:
		case <-time.After(time.Second):
			t.Fatalf("run %d: queued join never answered", i)
		}
		select {
		case <-fc.closed:
		case <-time.After(time.Second):
			t.Fatalf("run %d: conn not closed after table stopped", i)
		}
		select {
		case <-tb.Done():
		default:
			t.Fatalf("run %d: Done not closed after Stop", i)
		}
	}
}

func TestTableLeaveThenJoinNeverHangs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := NewManager(Options{Logger: logger})
	defer m.Shutdown()

	for i := 0; i < 50; i++ {
		tb := m.GetOrCreateTable("RACE02")
		id := join(t, tb, newFakeConn())
		tb.Post(Leave{ClientID: id})

		reply := make(chan JoinResult, 1)
		if !tb.Post(Join{Conn: newFakeConn(), Name: "b", Reply: reply}) {
			continue
		}
		select {
		case res := <-reply:
			if res.ClientID != "" {
				tb.Post(Leave{ClientID: res.ClientID})
			}
		case <-tb.Done():
		case <-time.After(time.Second):
			t.Fatalf("run %d: join neither answered nor table stopped", i)
		}
		// Wait for the table to be removed before reusing its code.
		deadline := time.Now().Add(time.Second)
		for len(m.ListTables()) != 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
	}
}
