package database

import (
	"context"
	"fmt"

	"github.com/bloops-games/bingo/internal/database/room/model"
)

var (
	ErrNotFound = fmt.Errorf("not found")
	// ErrConflict is returned when a transaction lost a race against a concurrent writer
	// and can be run again.
	ErrConflict = fmt.Errorf("store transaction conflict")
	// ErrUnavailable covers an unreachable store, timeouts and a closed handle.
	ErrUnavailable = fmt.Errorf("store unavailable")
	ErrReadOnly    = fmt.Errorf("read-only transaction")
)

// Store keeps the documents of every room. Each Update call is one serializable,
// all-or-nothing transaction over the room document, its players and its phrases.
type Store interface {
	Update(ctx context.Context, roomID string, fn func(tx Tx) error) error
	View(ctx context.Context, roomID string, fn func(tx Tx) error) error
	Close(ctx context.Context) error
}

// Tx is the view of one room inside a transaction. Writes made through a Tx
// returned by View fail.
type Tx interface {
	Room() (model.Room, error)
	PutRoom(room model.Room) error

	Player(identity string) (model.Player, error)
	Players() ([]model.Player, error)
	PutPlayer(player model.Player) error
	DeletePlayers() error

	Phrases() ([]model.Phrase, error)
	PutPhrases(phrases ...model.Phrase) error
}
