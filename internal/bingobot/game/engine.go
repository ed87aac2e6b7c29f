package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/bloops-games/bingo/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultRetryAttempts uint = 5
	DefaultRenderLimit        = 400
)

type MarkResult uint8

const (
	MarkResultUnchanged MarkResult = iota + 1
	MarkResultMarked
	MarkResultUnmarked
	MarkResultWon
	MarkResultSubmitted
)

func (r MarkResult) String() string {
	switch r {
	case MarkResultUnchanged:
		return "unchanged"
	case MarkResultMarked:
		return "marked"
	case MarkResultUnmarked:
		return "unmarked"
	case MarkResultWon:
		return "won"
	case MarkResultSubmitted:
		return "submitted for approval"
	default:
		return "unknown"
	}
}

type Status struct {
	Active           bool
	GameID           uuid.UUID
	Settings         model.Settings
	PendingApprovals int
	Players          int
	Winners          int
	Phrases          int
	UnusedPhrases    int
}

type Option func(*Engine)

func WithRetryAttempts(n uint) Option {
	return func(e *Engine) {
		e.retryAttempts = n
	}
}

func WithRenderLimit(n int) Option {
	return func(e *Engine) {
		e.renderLimit = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine runs the bingo games of every room on top of a store. It keeps no game
// state of its own: each operation is one store transaction.
type Engine struct {
	store         database.Store
	settings      model.Settings
	retryAttempts uint
	renderLimit   int
	now           func() time.Time
}

func NewEngine(store database.Store, settings model.Settings, opts ...Option) (*Engine, error) {
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("default settings: %w", err)
	}

	e := &Engine{
		store:         store,
		settings:      settings,
		retryAttempts: DefaultRetryAttempts,
		renderLimit:   DefaultRenderLimit,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) Settings() model.Settings {
	return e.settings
}

func (e *Engine) update(ctx context.Context, roomID string, fn func(tx database.Tx) error) error {
	return database.Retry(ctx, e.retryAttempts, func() error {
		return e.store.Update(ctx, roomID, fn)
	})
}

func activeRoom(tx database.Tx) (model.Room, error) {
	room, err := tx.Room()
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.Room{}, ErrGameNotActive
		}

		return model.Room{}, fmt.Errorf("fetch room: %w", err)
	}

	if !room.Active {
		return model.Room{}, ErrGameNotActive
	}

	return room, nil
}

func fetchPlayer(tx database.Tx, identity string) (model.Player, error) {
	player, err := tx.Player(identity)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.Player{}, ErrNotJoined
		}

		return model.Player{}, fmt.Errorf("fetch player: %w", err)
	}

	if !player.HasCard() {
		return model.Player{}, ErrNotJoined
	}

	return player, nil
}

// Activate starts a new game in the room with the engine's default settings.
func (e *Engine) Activate(ctx context.Context, roomID string) (model.Room, error) {
	return e.ActivateWith(ctx, roomID, e.settings)
}

// ActivateWith starts a new game in the room. Players of the previous game are
// removed and the approval queue is emptied.
func (e *Engine) ActivateWith(ctx context.Context, roomID string, settings model.Settings) (model.Room, error) {
	if err := ValidateSettings(settings); err != nil {
		return model.Room{}, err
	}

	var room model.Room
	if err := e.update(ctx, roomID, func(tx database.Tx) error {
		var err error
		room, err = tx.Room()
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("fetch room: %w", err)
			}

			room = model.Room{ID: roomID}
		}

		room.Active = true
		room.PendingApprovals = 0
		room.GameID = uuid.New()
		room.Settings = settings
		room.ActivatedAt = e.now()

		if err := tx.DeletePlayers(); err != nil {
			return fmt.Errorf("delete players: %w", err)
		}

		if err := tx.PutRoom(room); err != nil {
			return fmt.Errorf("put room: %w", err)
		}

		return nil
	}); err != nil {
		return model.Room{}, fmt.Errorf("activate room %s: %w", roomID, err)
	}

	logging.FromContext(ctx).Named("game.Activate").Infof(
		"room %s activated, game %s, %dx%d, approval %t", roomID, room.GameID,
		settings.Rows, settings.Columns, settings.ApprovalRequired,
	)

	return room, nil
}

// Deactivate ends the running game and reports whether one was running. Player
// cards stay readable until the next activation.
func (e *Engine) Deactivate(ctx context.Context, roomID string) (bool, error) {
	var wasActive bool
	if err := e.update(ctx, roomID, func(tx database.Tx) error {
		wasActive = false
		room, err := tx.Room()
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}

			return fmt.Errorf("fetch room: %w", err)
		}

		if !room.Active {
			return nil
		}

		wasActive = true
		room.Active = false
		room.DeactivatedAt = e.now()

		if err := tx.PutRoom(room); err != nil {
			return fmt.Errorf("put room: %w", err)
		}

		return nil
	}); err != nil {
		return false, fmt.Errorf("deactivate room %s: %w", roomID, err)
	}

	if wasActive {
		logging.FromContext(ctx).Named("game.Deactivate").Infof("room %s deactivated", roomID)
	}

	return wasActive, nil
}

// Join deals a new card to the player.
func (e *Engine) Join(ctx context.Context, roomID, identity string) (model.Player, error) {
	var player model.Player
	if err := e.update(ctx, roomID, func(tx database.Tx) error {
		room, err := activeRoom(tx)
		if err != nil {
			return err
		}

		existing, err := tx.Player(identity)
		switch {
		case err == nil && existing.HasCard():
			return ErrAlreadyJoined
		case err != nil && !errors.Is(err, database.ErrNotFound):
			return fmt.Errorf("fetch player: %w", err)
		}

		phrases, err := tx.Phrases()
		if err != nil {
			return fmt.Errorf("fetch phrases: %w", err)
		}

		pool := NewPool(phrases)
		drawn, err := pool.Draw(room.Settings.Cells())
		if err != nil {
			return err
		}

		card, err := NewCard(room.Settings.Rows, room.Settings.Columns, drawn)
		if err != nil {
			return err
		}

		if room.Settings.ConsumePhrases {
			if err := tx.PutPhrases(pool.Consume(drawn)...); err != nil {
				return fmt.Errorf("put phrases: %w", err)
			}
		}

		player = model.Player{
			Identity: identity,
			GameID:   room.GameID,
			Rows:     card.Rows(),
			Columns:  card.Columns(),
			Cells:    card.Cells(),
			Marked:   card.Marked(),
			JoinedAt: e.now(),
		}

		if err := tx.PutPlayer(player); err != nil {
			return fmt.Errorf("put player: %w", err)
		}

		return nil
	}); err != nil {
		return model.Player{}, fmt.Errorf("join %s to room %s: %w", identity, roomID, err)
	}

	return player, nil
}

// SetMark sets the cell at the 1-based position of the player's card and checks
// the card for a completed line.
func (e *Engine) SetMark(ctx context.Context, roomID, identity string, position int, value bool) (MarkResult, error) {
	var result MarkResult
	if err := e.update(ctx, roomID, func(tx database.Tx) error {
		result = 0
		room, err := activeRoom(tx)
		if err != nil {
			return err
		}

		player, err := fetchPlayer(tx, identity)
		if err != nil {
			return err
		}

		if player.IsFinished() {
			return ErrAlreadyWon
		}

		card, err := cardFromPlayer(player)
		if err != nil {
			return err
		}

		if position < 1 || position > card.Len() {
			return fmt.Errorf("%w: %d not in [1, %d]", ErrPositionOutOfRange, position, card.Len())
		}

		changed, err := card.Mark(position-1, value)
		if err != nil {
			return err
		}

		if !changed {
			result = MarkResultUnchanged
			return nil
		}

		result = MarkResultUnmarked
		if value {
			result = MarkResultMarked
		}

		player.Marked = card.Marked()
		if value && card.CheckWin() {
			if room.Settings.ApprovalRequired {
				player.AwaitingApproval = true
				room.PendingApprovals++
				if err := tx.PutRoom(room); err != nil {
					return fmt.Errorf("put room: %w", err)
				}
				result = MarkResultSubmitted
			} else {
				player.HasWon = true
				result = MarkResultWon
			}
		}

		if err := tx.PutPlayer(player); err != nil {
			return fmt.Errorf("put player: %w", err)
		}

		return nil
	}); err != nil {
		return 0, fmt.Errorf("set mark %d for %s in room %s: %w", position, identity, roomID, err)
	}

	if result == MarkResultWon || result == MarkResultSubmitted {
		logging.FromContext(ctx).Named("game.SetMark").Infof("room %s: %s completed a line, %s", roomID, identity, result)
	}

	return result, nil
}

// Approve confirms the pending win of the player.
func (e *Engine) Approve(ctx context.Context, roomID, identity string) error {
	if err := e.resolve(ctx, roomID, identity, true); err != nil {
		return fmt.Errorf("approve %s in room %s: %w", identity, roomID, err)
	}

	return nil
}

// Reject dismisses the pending win of the player, who keeps playing with the same
// marks.
func (e *Engine) Reject(ctx context.Context, roomID, identity string) error {
	if err := e.resolve(ctx, roomID, identity, false); err != nil {
		return fmt.Errorf("reject %s in room %s: %w", identity, roomID, err)
	}

	return nil
}

func (e *Engine) resolve(ctx context.Context, roomID, identity string, approve bool) error {
	return e.update(ctx, roomID, func(tx database.Tx) error {
		room, err := activeRoom(tx)
		if err != nil {
			return err
		}

		player, err := fetchPlayer(tx, identity)
		if err != nil {
			return err
		}

		if !player.AwaitingApproval {
			return ErrNotAwaitingApproval
		}

		player.AwaitingApproval = false
		player.HasWon = approve
		if room.PendingApprovals > 0 {
			room.PendingApprovals--
		}

		if err := tx.PutPlayer(player); err != nil {
			return fmt.Errorf("put player: %w", err)
		}

		if err := tx.PutRoom(room); err != nil {
			return fmt.Errorf("put room: %w", err)
		}

		return nil
	})
}

// Pending lists the players awaiting approval, sorted by identity.
func (e *Engine) Pending(ctx context.Context, roomID string) ([]string, error) {
	var identities []string
	if err := e.store.View(ctx, roomID, func(tx database.Tx) error {
		players, err := tx.Players()
		if err != nil {
			return fmt.Errorf("fetch players: %w", err)
		}

		identities = identities[:0]
		for _, p := range players {
			if p.AwaitingApproval {
				identities = append(identities, p.Identity)
			}
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("pending in room %s: %w", roomID, err)
	}

	sort.Strings(identities)

	return identities, nil
}

// AddPhrases inserts new phrases into the room pool and returns how many were
// added. Blank and already known phrases are skipped.
func (e *Engine) AddPhrases(ctx context.Context, roomID string, phrases []string) (int, error) {
	var added int
	if err := e.update(ctx, roomID, func(tx database.Tx) error {
		added = 0
		existing, err := tx.Phrases()
		if err != nil {
			return fmt.Errorf("fetch phrases: %w", err)
		}

		known := make(map[string]struct{}, len(existing)+len(phrases))
		for _, p := range existing {
			known[p.Text] = struct{}{}
		}

		var fresh []model.Phrase
		for _, text := range phrases {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}

			if _, ok := known[text]; ok {
				continue
			}

			known[text] = struct{}{}
			fresh = append(fresh, model.Phrase{Text: text})
		}

		if len(fresh) == 0 {
			return nil
		}

		if err := tx.PutPhrases(fresh...); err != nil {
			return fmt.Errorf("put phrases: %w", err)
		}

		added = len(fresh)

		return nil
	}); err != nil {
		return 0, fmt.Errorf("add phrases to room %s: %w", roomID, err)
	}

	return added, nil
}

func (e *Engine) Status(ctx context.Context, roomID string) (Status, error) {
	var status Status
	if err := e.store.View(ctx, roomID, func(tx database.Tx) error {
		status = Status{Settings: e.settings}
		room, err := tx.Room()
		switch {
		case err == nil:
			status.Active = room.Active
			status.GameID = room.GameID
			status.Settings = room.Settings
			status.PendingApprovals = room.PendingApprovals
		case !errors.Is(err, database.ErrNotFound):
			return fmt.Errorf("fetch room: %w", err)
		}

		players, err := tx.Players()
		if err != nil {
			return fmt.Errorf("fetch players: %w", err)
		}

		for _, p := range players {
			if !p.HasCard() {
				continue
			}
			status.Players++
			if p.HasWon {
				status.Winners++
			}
		}

		phrases, err := tx.Phrases()
		if err != nil {
			return fmt.Errorf("fetch phrases: %w", err)
		}

		pool := NewPool(phrases)
		status.Phrases = pool.Len()
		status.UnusedPhrases = pool.Unused()

		return nil
	}); err != nil {
		return Status{}, fmt.Errorf("status of room %s: %w", roomID, err)
	}

	return status, nil
}
