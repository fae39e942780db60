// Package network exposes tables over WebSocket and a small JSON API.
package network

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"airpong/protocol"
	"airpong/table"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	helloWait      = 10 * time.Second
	maxMessageSize = 1 << 20 // 1MB
	sendQueueSize  = 64
)

type Server struct {
	mgr      *table.Manager
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewServer(mgr *table.Manager, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		mgr: mgr,
		log: log,
		upgrader: websocket.Upgrader{
			// For dev, allow all origins. Lock this down in prod.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler routes /ws and /api/tables.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/tables", s.handleTables)
	return mux
}

// TableList is the body of GET /api/tables.
type TableList struct {
	Created int64             `json:"created"` // tables started since boot
	Tables  []table.TableInfo `json:"tables"`
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, TableList{
			Created: s.mgr.Created(),
			Tables:  s.mgr.ListTables(),
		})
	case http.MethodPost:
		code := s.mgr.CreateTable()
		s.log.WithField("table", code).Info("table created via api")
		writeJSON(w, http.StatusCreated, map[string]string{"code": code})
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade")
		return
	}
	log := s.log.WithField("remote", r.RemoteAddr)

	// Basic timeouts + pong handling (keeps connections healthy)
	ws.SetReadLimit(maxMessageSize)
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	_ = ws.SetReadDeadline(time.Now().Add(helloWait))
	hello, err := readHello(ws)
	if err != nil {
		log.WithError(err).Info("rejecting connection")
		writeDirect(ws, protocol.MsgError, protocol.Error{Message: err.Error()})
		_ = ws.Close()
		return
	}
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))

	code := strings.ToUpper(strings.TrimSpace(hello.Table))
	if code == "" {
		code = s.mgr.CreateTable()
	}
	t := s.mgr.GetOrCreateTable(code)

	conn := newWSConn(ws)
	go conn.writeLoop()

	id, ok := join(t, conn, hello.Name)
	if !ok {
		log.WithField("table", code).Warn("table closed before join")
		conn.sendMessage(protocol.MsgError, protocol.Error{Message: errTableClosed.Error()})
		_ = conn.Close()
		return
	}
	log = log.WithFields(logrus.Fields{"table": code, "client": id})
	log.Debug("connection joined")

	s.readLoop(ws, conn, t, id, log)

	t.Post(table.Leave{ClientID: id})
	_ = conn.Close()
}

var (
	errHelloRequired = errors.New("first message must be hello")
	errTableClosed   = errors.New("table closed, reconnect to join")
)

// join posts a Join and waits until the table answers or stops.
func join(t *table.Table, conn table.Conn, name string) (string, bool) {
	reply := make(chan table.JoinResult, 1)
	if !t.Post(table.Join{Conn: conn, Name: name, Reply: reply}) {
		return "", false
	}
	var res table.JoinResult
	select {
	case res = <-reply:
	case <-t.Done():
		select {
		case res = <-reply:
		default:
		}
	}
	return res.ClientID, res.ClientID != ""
}

func readHello(ws *websocket.Conn) (protocol.Hello, error) {
	_, msg, err := ws.ReadMessage()
	if err != nil {
		return protocol.Hello{}, err
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return protocol.Hello{}, err
	}
	if env.T != protocol.MsgHello {
		return protocol.Hello{}, errHelloRequired
	}
	if len(env.P) == 0 {
		return protocol.Hello{}, nil
	}
	return protocol.DecodePayload[protocol.Hello](env)
}

func (s *Server) readLoop(ws *websocket.Conn, conn *wsConn, t *table.Table, id string, log logrus.FieldLogger) {
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Info("read")
			}
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			log.WithError(err).Debug("bad message")
			conn.sendMessage(protocol.MsgError, protocol.Error{Message: err.Error()})
			continue
		}

		var cmd any
		switch env.T {
		case protocol.MsgMotion:
			m, err := protocol.DecodePayload[protocol.Motion](env)
			if err != nil {
				conn.sendMessage(protocol.MsgError, protocol.Error{Message: err.Error()})
				continue
			}
			cmd = table.Motion{ClientID: id, Motion: m}
		case protocol.MsgCommand:
			c, err := protocol.DecodePayload[protocol.Command](env)
			if err != nil {
				conn.sendMessage(protocol.MsgError, protocol.Error{Message: err.Error()})
				continue
			}
			cmd = table.Command{ClientID: id, Action: c.Action}
		default:
			log.WithField("type", env.T).Debug("ignoring message")
			continue
		}
		if !t.Post(cmd) {
			return
		}
	}
}

func writeDirect(ws *websocket.Conn, msgType string, payload any) {
	b, err := protocol.Encode(msgType, payload)
	if err != nil {
		return
	}
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.TextMessage, b)
}
