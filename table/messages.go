package table

import "airpong/protocol"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello parsed
type Join struct {
	Conn  Conn
	Name  string
	Reply chan<- JoinResult
}

type JoinResult struct {
	ClientID string
}

// Motion: one accelerometer reading from a client
type Motion struct {
	ClientID string
	Motion   protocol.Motion
}

// Command: a game command from a client
type Command struct {
	ClientID string
	Action   string
}

// Leave: issued on disconnect
type Leave struct {
	ClientID string
}
