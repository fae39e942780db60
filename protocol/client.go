package protocol

// Messages coming in from the device.

type Hello struct {
	V     int    `json:"v"`               // version
	Name  string `json:"name,omitempty"`  // optional name
	Table string `json:"table,omitempty"` // join this table; empty creates one
}

// Motion is one accelerometer reading in g.
type Motion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Command struct {
	Action string `json:"action"`
}
