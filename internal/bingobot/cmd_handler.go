package bingobot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bloops-games/bingo/internal/bingobot/game"
	"github.com/bloops-games/bingo/internal/bingobot/resource"
	"github.com/bloops-games/bingo/internal/chat"
	"github.com/bloops-games/bingo/internal/logging"
)

var errUsage = fmt.Errorf("usage")

func (m *Manager) handleStartCommand(ctx context.Context, msg chat.Message, args string) (string, error) {
	settings := m.engine.Settings()
	if args != "" {
		rows, columns, err := parseShape(args)
		if err != nil {
			return resource.TextUsageStart, nil
		}
		settings.Rows, settings.Columns = rows, columns
	}

	room, err := m.engine.ActivateWith(ctx, msg.Room, settings)
	if err != nil {
		return "", fmt.Errorf("activate: %w", err)
	}

	text := resource.TextGameStarted
	if room.Settings.ApprovalRequired {
		text = resource.TextGameStartedApproval
	}

	return fmt.Sprintf(text, room.Settings.Rows, room.Settings.Columns), nil
}

// parseShape parses "4x5" into 4 rows and 5 columns.
func parseShape(s string) (int, int, error) {
	r, c, ok := strings.Cut(strings.ToLower(strings.Fields(s)[0]), "x")
	if !ok {
		return 0, 0, errUsage
	}

	rows, err := strconv.Atoi(r)
	if err != nil {
		return 0, 0, errUsage
	}

	columns, err := strconv.Atoi(c)
	if err != nil {
		return 0, 0, errUsage
	}

	return rows, columns, nil
}

func (m *Manager) handleEndCommand(ctx context.Context, msg chat.Message) (string, error) {
	wasActive, err := m.engine.Deactivate(ctx, msg.Room)
	if err != nil {
		return "", fmt.Errorf("deactivate: %w", err)
	}

	if !wasActive {
		return resource.TextGameNotRunning, nil
	}

	return resource.TextGameEnded, nil
}

func (m *Manager) handleJoinCommand(ctx context.Context, msg chat.Message) (string, error) {
	player, err := m.engine.Join(ctx, msg.Room, msg.Sender)
	if err != nil {
		return "", fmt.Errorf("join: %w", err)
	}

	card, err := game.RenderPlayer(player)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}

	return fmt.Sprintf(resource.TextJoined, msg.Sender, card), nil
}

func (m *Manager) handleMarkCommand(ctx context.Context, msg chat.Message, args string, value bool) (string, error) {
	usage := resource.TextUsageCheck
	if !value {
		usage = resource.TextUsageUncheck
	}

	fields := strings.Fields(args)
	if len(fields) == 0 {
		return usage, nil
	}

	position, err := strconv.Atoi(strings.TrimPrefix(fields[0], "#"))
	if err != nil {
		return usage, nil
	}

	result, err := m.engine.SetMark(ctx, msg.Room, msg.Sender, position, value)
	if err != nil {
		return "", fmt.Errorf("set mark: %w", err)
	}

	switch result {
	case game.MarkResultWon:
		return fmt.Sprintf(resource.TextWon, msg.Sender), nil
	case game.MarkResultSubmitted:
		return fmt.Sprintf(resource.TextSubmitted, msg.Sender, msg.Sender, msg.Sender), nil
	case game.MarkResultUnchanged:
		if value {
			return fmt.Sprintf(resource.TextAlreadyMarked, msg.Sender, position), nil
		}
		return fmt.Sprintf(resource.TextAlreadyCleared, msg.Sender, position), nil
	default:
		card, err := m.engine.Show(ctx, msg.Room, msg.Sender)
		if err != nil {
			return "", fmt.Errorf("show: %w", err)
		}
		return fmt.Sprintf(resource.TextMarked, msg.Sender, card), nil
	}
}

func (m *Manager) handleShowCommand(ctx context.Context, msg chat.Message) (string, error) {
	card, err := m.engine.Show(ctx, msg.Room, msg.Sender)
	if err != nil {
		return "", fmt.Errorf("show: %w", err)
	}

	return fmt.Sprintf(resource.TextMarked, msg.Sender, card), nil
}

func (m *Manager) handleResolveCommand(ctx context.Context, msg chat.Message, args string, approve bool) (string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		if approve {
			return resource.TextUsageApprove, nil
		}
		return resource.TextUsageReject, nil
	}

	target := strings.ToLower(strings.TrimPrefix(fields[0], "@"))
	resolve, text := m.engine.Reject, resource.TextRejected
	if approve {
		resolve, text = m.engine.Approve, resource.TextApproved
	}

	if err := resolve(ctx, msg.Room, target); err != nil {
		if errors.Is(err, game.ErrNotAwaitingApproval) || errors.Is(err, game.ErrNotJoined) {
			return fmt.Sprintf(resource.TextNotAwaiting, target), nil
		}
		return "", fmt.Errorf("resolve %s: %w", target, err)
	}

	return fmt.Sprintf(text, target), nil
}

func (m *Manager) handlePendingCommand(ctx context.Context, msg chat.Message) (string, error) {
	pending, err := m.engine.Pending(ctx, msg.Room)
	if err != nil {
		return "", fmt.Errorf("pending: %w", err)
	}

	if len(pending) == 0 {
		return resource.TextNothingPending, nil
	}

	return fmt.Sprintf(resource.TextPending, strings.Join(pending, ", ")), nil
}

func (m *Manager) handleStatusCommand(ctx context.Context, msg chat.Message) (string, error) {
	status, err := m.engine.Status(ctx, msg.Room)
	if err != nil {
		return "", fmt.Errorf("status: %w", err)
	}

	return renderStatus(status), nil
}

func (m *Manager) handleAddCommand(ctx context.Context, msg chat.Message, args string) (string, error) {
	if args == "" {
		return resource.TextUsageAdd, nil
	}

	added, err := m.engine.AddPhrases(ctx, msg.Room, strings.Split(args, ";"))
	if err != nil {
		return "", fmt.Errorf("add phrases: %w", err)
	}

	return fmt.Sprintf(resource.TextPhrasesAdded, added), nil
}

// replyForError turns an engine error into a chat reply. Rejected requests are
// expected and logged at debug level, store faults at error level.
func (m *Manager) replyForError(ctx context.Context, msg chat.Message, err error) string {
	logger := logging.FromContext(ctx).Named("bingobot.replyForError")

	var reply string
	switch {
	case errors.Is(err, game.ErrGameNotActive):
		reply = resource.TextGameNotRunning
	case errors.Is(err, game.ErrAlreadyJoined):
		reply = fmt.Sprintf(resource.TextAlreadyJoined, msg.Sender)
	case errors.Is(err, game.ErrNotJoined):
		reply = fmt.Sprintf(resource.TextNotJoined, msg.Sender)
	case errors.Is(err, game.ErrAlreadyWon):
		reply = fmt.Sprintf(resource.TextAlreadyWon, msg.Sender)
	case errors.Is(err, game.ErrPositionOutOfRange):
		reply = fmt.Sprintf(resource.TextPositionRange, msg.Sender)
	case errors.Is(err, game.ErrInsufficientPhrases):
		reply = fmt.Sprintf(resource.TextNoPhrases, msg.Sender)
	case errors.Is(err, game.ErrInvalidGridShape):
		reply = fmt.Sprintf(resource.TextInvalidShape, game.MaxDimension, game.MaxDimension)
	default:
		logger.Errorf("%s in %s: %v", msg.Sender, msg.Room, err)
		return fmt.Sprintf(resource.TextTransientFailure, msg.Sender)
	}

	logger.Debugf("%s in %s: %v", msg.Sender, msg.Room, err)

	return reply
}
