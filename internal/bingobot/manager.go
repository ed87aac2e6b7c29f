package bingobot

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/bloops-games/bingo/internal/bingobot/game"
	"github.com/bloops-games/bingo/internal/bingobot/resource"
	"github.com/bloops-games/bingo/internal/cache"
	"github.com/bloops-games/bingo/internal/chat"
	"github.com/bloops-games/bingo/internal/logging"
	"golang.org/x/sync/errgroup"
)

var ErrCommandNotFound = fmt.Errorf("command not found")

func NewManager(transport chat.Transport, engine *game.Engine, config *Config) (*Manager, error) {
	limiters, err := cache.NewARC(config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("limiter cache: %w", err)
	}

	moderators := make(map[string]struct{}, len(config.Moderators))
	for _, m := range config.Moderators {
		moderators[strings.ToLower(strings.TrimPrefix(m, "@"))] = struct{}{}
	}

	return &Manager{
		transport:  transport,
		engine:     engine,
		config:     config,
		limiters:   limiters,
		moderators: moderators,
	}, nil
}

// Manager reads chat messages and turns bingo commands into engine calls.
type Manager struct {
	transport  chat.Transport
	engine     *game.Engine
	config     *Config
	moderators map[string]struct{}

	mtx      sync.Mutex
	limiters cache.Cache
}

// Run handles messages with a pool of workers until ctx ends or the transport
// closes its message channel.
func (m *Manager) Run(ctx context.Context) error {
	poolWorkerNum := m.config.WorkerNum
	if poolWorkerNum <= 0 {
		poolWorkerNum = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < poolWorkerNum; i++ {
		g.Go(func() error {
			m.pool(ctx)
			return nil
		})
	}

	return g.Wait()
}

func (m *Manager) pool(ctx context.Context) {
	logger := logging.FromContext(ctx).Named("bingobot.pool")
	messages := m.transport.Messages()
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return
			}

			if err := m.Handle(ctx, msg); err != nil {
				logger.Errorf("handle message from %s in %s: %v", msg.Sender, msg.Room, err)
			}
		case <-ctx.Done():
			// shutdown
			return
		}
	}
}

// Handle runs the command in msg, if any, and sends the reply to its room.
func (m *Manager) Handle(ctx context.Context, msg chat.Message) error {
	cmd, args, ok := parseCommand(msg.Text)
	if !ok {
		return nil
	}

	logger := logging.FromContext(ctx).Named("bingobot.Handle")
	handler, err := m.commandHandler(cmd)
	if err != nil {
		logger.Debugf("unknown command %q from %s", cmd, msg.Sender)
		return nil
	}

	if !m.allow(msg) {
		logger.Debugf("rate limited %s in %s", msg.Sender, msg.Room)
		return nil
	}

	reply, err := handler(ctx, msg, args)
	if err != nil {
		reply = m.replyForError(ctx, msg, err)
	}

	if reply == "" {
		return nil
	}

	if err := m.transport.Send(ctx, msg.Room, game.Truncate(reply, m.config.MessageLimit)); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	return nil
}

// parseCommand splits "!BingoCheck 5" into "!bingocheck" and "5".
func parseCommand(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(strings.ToLower(text), resource.CommandPrefix) {
		return "", "", false
	}

	cmd := strings.Fields(text)[0]

	return strings.ToLower(cmd), strings.TrimSpace(text[len(cmd):]), true
}

type commandFunc func(ctx context.Context, msg chat.Message, args string) (string, error)

func (m *Manager) moderatorOnly(fn commandFunc) commandFunc {
	return func(ctx context.Context, msg chat.Message, args string) (string, error) {
		if !m.isModerator(msg) {
			return fmt.Sprintf(resource.TextModeratorsOnly, msg.Sender), nil
		}

		return fn(ctx, msg, args)
	}
}

func (m *Manager) commandHandler(cmd string) (commandFunc, error) {
	switch cmd {
	case resource.CmdHelp, resource.CmdHelpAlias:
		return func(context.Context, chat.Message, string) (string, error) {
			return resource.TextHelp, nil
		}, nil
	case resource.CmdStart, resource.CmdActivate:
		return m.moderatorOnly(m.handleStartCommand), nil
	case resource.CmdEnd, resource.CmdStop:
		return m.moderatorOnly(func(ctx context.Context, msg chat.Message, _ string) (string, error) {
			return m.handleEndCommand(ctx, msg)
		}), nil
	case resource.CmdJoin:
		return func(ctx context.Context, msg chat.Message, _ string) (string, error) {
			return m.handleJoinCommand(ctx, msg)
		}, nil
	case resource.CmdCheck, resource.CmdUncheck:
		value := cmd == resource.CmdCheck
		return func(ctx context.Context, msg chat.Message, args string) (string, error) {
			return m.handleMarkCommand(ctx, msg, args, value)
		}, nil
	case resource.CmdShow:
		return func(ctx context.Context, msg chat.Message, _ string) (string, error) {
			return m.handleShowCommand(ctx, msg)
		}, nil
	case resource.CmdApprove, resource.CmdReject:
		approve := cmd == resource.CmdApprove
		return m.moderatorOnly(func(ctx context.Context, msg chat.Message, args string) (string, error) {
			return m.handleResolveCommand(ctx, msg, args, approve)
		}), nil
	case resource.CmdPending:
		return m.moderatorOnly(func(ctx context.Context, msg chat.Message, _ string) (string, error) {
			return m.handlePendingCommand(ctx, msg)
		}), nil
	case resource.CmdStatus:
		return func(ctx context.Context, msg chat.Message, _ string) (string, error) {
			return m.handleStatusCommand(ctx, msg)
		}, nil
	case resource.CmdAdd:
		return m.moderatorOnly(m.handleAddCommand), nil
	default:
		return nil, ErrCommandNotFound
	}
}
