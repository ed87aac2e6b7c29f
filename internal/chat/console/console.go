// Package console plays the chat from a terminal: every input line is a chat
// message, replies are printed.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bloops-games/bingo/internal/chat"
)

var _ chat.Transport = (*Transport)(nil)

type Config struct {
	Room string
	// Identity of lines without an "@name" prefix
	Identity   string
	Moderators []string
}

// Transport reads messages line by line. A line "@bob !bingojoin" is posted as
// bob, any other line as the configured identity.
type Transport struct {
	in         io.Reader
	config     Config
	moderators map[string]struct{}
	messages   chan chat.Message

	mtx sync.Mutex
	out io.Writer
}

func New(in io.Reader, out io.Writer, config Config) *Transport {
	moderators := make(map[string]struct{}, len(config.Moderators))
	for _, m := range config.Moderators {
		moderators[strings.ToLower(m)] = struct{}{}
	}

	return &Transport{
		in:         in,
		out:        out,
		config:     config,
		moderators: moderators,
		messages:   make(chan chat.Message),
	}
}

func (t *Transport) Messages() <-chan chat.Message {
	return t.messages
}

// Run returns at the end of input or when ctx ends.
func (t *Transport) Run(ctx context.Context) error {
	defer close(t.messages)

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}

			msg, ok := t.parse(line)
			if !ok {
				continue
			}

			select {
			case t.messages <- msg:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (t *Transport) parse(line string) (chat.Message, bool) {
	line = strings.TrimSpace(line)
	sender := t.config.Identity
	if strings.HasPrefix(line, "@") {
		name, rest, _ := strings.Cut(line[1:], " ")
		sender, line = name, strings.TrimSpace(rest)
	}

	sender = strings.ToLower(sender)
	if line == "" || sender == "" {
		return chat.Message{}, false
	}

	_, moderator := t.moderators[sender]

	return chat.Message{
		Room:        t.config.Room,
		Sender:      sender,
		DisplayName: sender,
		Moderator:   moderator,
		Text:        line,
		ReceivedAt:  time.Now(),
	}, true
}

func (t *Transport) Send(_ context.Context, room, text string) error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if _, err := fmt.Fprintf(t.out, "[%s] %s\n", room, text); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}

	return nil
}
