package model

import (
	"time"

	"github.com/google/uuid"
)

type Player struct {
	Identity         string    `json:"identity"`
	GameID           uuid.UUID `json:"gameId"`
	Rows             int       `json:"rows"`
	Columns          int       `json:"columns"`
	Cells            []string  `json:"cells"`
	Marked           []bool    `json:"marked"`
	HasWon           bool      `json:"hasWon"`
	AwaitingApproval bool      `json:"awaitingApproval"`
	JoinedAt         time.Time `json:"joinedAt"`
}

func (p *Player) HasCard() bool {
	return len(p.Cells) > 0
}

// IsFinished reports whether the player completed a line, confirmed or not.
func (p *Player) IsFinished() bool {
	return p.HasWon || p.AwaitingApproval
}
