// game/constants.go
package game

import "time"

// Phase durations and scoring constants. These are game-balance values
// tuned by play, not derived from a model; keep the arithmetic exact.
const (
	WordChooseTime   = 10 * time.Second
	DrawingTime      = 60 * time.Second
	EndRoundTime     = 5 * time.Second
	WinnerShowTime   = 10 * time.Second
	InitialHintsTime = 30 * time.Second
	HintsTime        = 10 * time.Second

	DisconnectGrace = 8 * time.Second

	TotalRounds  = 3
	DrawerPoints = 10
	GuessPoints  = 200
	WordChoices  = 3
)
