package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/bloops-games/bingo/internal/strpool"
	"github.com/enescakir/emoji"
)

const ellipsis = "…"

// Render formats the player's card for a chat line. A player without a card
// renders as an empty string. The game does not have to be running.
func (e *Engine) Render(ctx context.Context, roomID, identity string) (string, error) {
	var text string
	if err := e.store.View(ctx, roomID, func(tx database.Tx) error {
		text = ""
		player, err := tx.Player(identity)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}

			return fmt.Errorf("fetch player: %w", err)
		}

		if !player.HasCard() {
			return nil
		}

		card, err := cardFromPlayer(player)
		if err != nil {
			return err
		}

		text = RenderCard(player, card)

		return nil
	}); err != nil {
		return "", fmt.Errorf("render %s in room %s: %w", identity, roomID, err)
	}

	return Truncate(text, e.renderLimit), nil
}

// Show renders the player's card of the running game.
func (e *Engine) Show(ctx context.Context, roomID, identity string) (string, error) {
	var text string
	if err := e.store.View(ctx, roomID, func(tx database.Tx) error {
		text = ""
		if _, err := activeRoom(tx); err != nil {
			return err
		}

		player, err := fetchPlayer(tx, identity)
		if err != nil {
			return err
		}

		card, err := cardFromPlayer(player)
		if err != nil {
			return err
		}

		text = RenderCard(player, card)

		return nil
	}); err != nil {
		return "", fmt.Errorf("show %s in room %s: %w", identity, roomID, err)
	}

	return Truncate(text, e.renderLimit), nil
}

// RenderPlayer renders the card held by the player record.
func RenderPlayer(player model.Player) (string, error) {
	card, err := cardFromPlayer(player)
	if err != nil {
		return "", err
	}

	return RenderCard(player, card), nil
}

// RenderCard writes rows separated by " | ", each cell as "<position>.<phrase>"
// with marked cells prefixed by a check mark.
func RenderCard(player model.Player, card *Card) string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	buf.WriteString(emoji.GameDie.String())
	buf.WriteString(" ")
	buf.WriteString(player.Identity)
	buf.WriteString(" ")
	buf.WriteString(strconv.Itoa(card.Rows()))
	buf.WriteString("x")
	buf.WriteString(strconv.Itoa(card.Columns()))
	buf.WriteString(": ")

	for i := 0; i < card.Len(); i++ {
		switch {
		case i == 0:
		case i%card.Columns() == 0:
			buf.WriteString(" | ")
		default:
			buf.WriteString(" ")
		}

		buf.WriteString(strconv.Itoa(i + 1))
		buf.WriteString(".")
		if card.IsMarked(i) {
			buf.WriteString(emoji.CheckMarkButton.String())
		}
		buf.WriteString(card.Cell(i))
	}

	switch {
	case player.HasWon:
		buf.WriteString(" ")
		buf.WriteString(emoji.Trophy.String())
		buf.WriteString(" BINGO")
	case player.AwaitingApproval:
		buf.WriteString(" ")
		buf.WriteString(emoji.HourglassNotDone.String())
		buf.WriteString(" awaiting approval")
	}

	return buf.String()
}

// Truncate cuts s to at most limit runes, ending with an ellipsis when cut.
// A non-positive limit disables truncation.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	var n int
	for i := range s {
		if n == limit-1 {
			return s[:i] + ellipsis
		}
		n++
	}

	return s
}
