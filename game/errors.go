// game/errors.go
package game

import "errors"

// Validation errors surfaced to the originating client. Consistency guards
// (stale drawer, double round end) are handled as silent no-ops instead.
var (
	ErrRoomFull         = errors.New("the room you're trying to join is full")
	ErrRoomIDRequired   = errors.New("room id is required")
	ErrNotCreator       = errors.New("you are not the host")
	ErrGameInProgress   = errors.New("game already started")
	ErrNotEnoughPlayers = errors.New("at least 2 players required to start the game")
	ErrNotDrawer        = errors.New("only the current drawer can do that")
	ErrInvalidSetting   = errors.New("invalid setting value")
)
