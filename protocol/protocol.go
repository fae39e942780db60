package protocol

import (
	"encoding/json"
)

const (
	MsgHello    = "hello"
	MsgMotion   = "motion"
	MsgCommand  = "command"
	MsgWelcome  = "welcome"
	MsgState    = "state"
	MsgFeedback = "feedback"
	MsgSampling = "sampling"
	MsgError    = "error"
)

const (
	SampleHz    = 60
	BroadcastHz = 20
)

const (
	ActionStart = "start"
	ActionEnd   = "end"
	ActionScore = "score" // debug builds only
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
