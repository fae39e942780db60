package game

// Match is the score line of one game.
type Match struct {
	PlayerScore   int
	OpponentScore int
	WinningScore  int

	gameOver bool
}

func NewMatch(winningScore int) Match {
	return Match{WinningScore: winningScore}
}

func (m *Match) IsGameOver() bool { return m.gameOver }

// IncrementPlayerScore is a no-op once the game is over.
func (m *Match) IncrementPlayerScore() {
	if m.gameOver {
		return
	}
	m.PlayerScore++
	m.update()
}

// IncrementOpponentScore is a no-op once the game is over.
func (m *Match) IncrementOpponentScore() {
	if m.gameOver {
		return
	}
	m.OpponentScore++
	m.update()
}

func (m *Match) Reset() {
	m.PlayerScore = 0
	m.OpponentScore = 0
	m.gameOver = false
}

func (m *Match) update() {
	m.gameOver = m.PlayerScore >= m.WinningScore || m.OpponentScore >= m.WinningScore
}
