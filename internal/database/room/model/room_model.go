package model

import (
	"time"

	"github.com/google/uuid"
)

// Settings is the game configuration a room was activated with.
type Settings struct {
	Rows             int  `json:"rows"`
	Columns          int  `json:"columns"`
	ApprovalRequired bool `json:"approvalRequired"`
	// ConsumePhrases marks drawn phrases used so no other card receives them.
	ConsumePhrases bool `json:"consumePhrases"`
}

func (s Settings) Cells() int {
	return s.Rows * s.Columns
}

type Room struct {
	ID               string    `json:"id"`
	Active           bool      `json:"active"`
	PendingApprovals int       `json:"pendingApprovals"`
	GameID           uuid.UUID `json:"gameId"`
	Settings         Settings  `json:"settings"`
	ActivatedAt      time.Time `json:"activatedAt"`
	DeactivatedAt    time.Time `json:"deactivatedAt"`
}

type Phrase struct {
	Text string `json:"phrase"`
	Used bool   `json:"used"`
}
