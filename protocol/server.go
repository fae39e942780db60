package protocol

type Welcome struct {
	ClientID string `json:"clientId"`
	Table    string `json:"table"`
	SampleHz int    `json:"sampleHz"`
}

type State struct {
	Phase           string  `json:"phase"`
	PlayerScore     int     `json:"playerScore"`
	OpponentScore   int     `json:"opponentScore"`
	WinningScore    int     `json:"winningScore"`
	GameOver        bool    `json:"gameOver"`
	ServeHeight     float64 `json:"serveHeight"`
	BallProximity   float64 `json:"ballProximity"`
	BallInPlay      bool    `json:"ballInPlay"`
	Serving         bool    `json:"serving"`
	CanServe        bool    `json:"canServe"`
	CanHitBall      bool    `json:"canHitBall"`
	LastHitWasSmash bool    `json:"lastHitWasSmash,omitempty"`
	OrientedToServe bool    `json:"orientedToServe"`
	CanStartNewGame bool    `json:"canStartNewGame"`
}

// Feedback asks the device to play a haptic pattern.
type Feedback struct {
	Intent string           `json:"intent"`
	Events []HapticSnapshot `json:"events"`
}

type HapticSnapshot struct {
	Kind       string  `json:"kind"`
	Intensity  float64 `json:"intensity"`
	Sharpness  float64 `json:"sharpness"`
	AtMs       int64   `json:"atMs"`
	DurationMs int64   `json:"durationMs,omitempty"`
}

// Sampling turns the device's accelerometer stream on or off.
type Sampling struct {
	Enabled    bool `json:"enabled"`
	IntervalMs int  `json:"intervalMs,omitempty"`
}

type Error struct {
	Message string `json:"message"`
}
