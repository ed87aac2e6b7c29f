package game

import "fmt"

// Expected rejections of a player or moderator request. None of them changes state.
var (
	ErrGameNotActive       = fmt.Errorf("game is not active")
	ErrAlreadyJoined       = fmt.Errorf("player already joined")
	ErrNotJoined           = fmt.Errorf("player has no card")
	ErrAlreadyWon          = fmt.Errorf("player already completed a line")
	ErrNotAwaitingApproval = fmt.Errorf("player is not awaiting approval")
	ErrPositionOutOfRange  = fmt.Errorf("position out of range")
	ErrIndexOutOfRange     = fmt.Errorf("index out of range")
	ErrInvalidGridShape    = fmt.Errorf("invalid grid shape")
	ErrInsufficientPhrases = fmt.Errorf("insufficient phrases")
)
