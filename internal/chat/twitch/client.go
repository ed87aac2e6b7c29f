package twitch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bloops-games/bingo/internal/chat"
	"github.com/bloops-games/bingo/internal/logging"
	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var (
	ErrAuthFailed   = fmt.Errorf("twitch authentication failed")
	ErrNotConnected = fmt.Errorf("not connected to twitch")

	errReconnect = fmt.Errorf("server requested reconnect")
)

var _ chat.Transport = (*Client)(nil)

// Client is a Twitch chat connection over IRC-on-WebSocket. It reconnects with
// exponential backoff until its context ends.
type Client struct {
	config   *Config
	dialer   *websocket.Dialer
	limiter  *rate.Limiter
	messages chan chat.Message

	mtx  sync.Mutex
	conn *websocket.Conn
}

func New(config *Config) *Client {
	if config.URL == "" {
		config.URL = DefaultURL
	}

	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 6 * time.Minute
	}

	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}

	if config.SendRate <= 0 {
		config.SendRate = float64(rate.Inf)
	}

	if config.SendBurst <= 0 {
		config.SendBurst = 1
	}

	return &Client{
		config:   config,
		dialer:   websocket.DefaultDialer,
		limiter:  rate.NewLimiter(rate.Limit(config.SendRate), config.SendBurst),
		messages: make(chan chat.Message, 256),
	}
}

func (c *Client) Messages() <-chan chat.Message {
	return c.messages
}

func (c *Client) Run(ctx context.Context) error {
	defer close(c.messages)
	logger := logging.FromContext(ctx).Named("twitch.Client")

	b := backoff.NewExponentialBackOff()
	b.MaxInterval = c.config.ReconnectMaxWait

	for {
		connected, err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if errors.Is(err, ErrAuthFailed) {
			return err
		}

		if connected {
			b.Reset()
		}

		wait := b.NextBackOff()
		logger.Warnf("twitch connection lost: %v, reconnecting in %s", err, wait)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// session runs one connection and reports whether login succeeded.
func (c *Client) session(ctx context.Context) (bool, error) {
	logger := logging.FromContext(ctx).Named("twitch.Client")

	conn, _, err := c.dialer.DialContext(ctx, c.config.URL, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", c.config.URL, err)
	}

	c.mtx.Lock()
	c.conn = conn
	c.mtx.Unlock()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})

	defer func() {
		stop()
		c.mtx.Lock()
		c.conn = nil
		c.mtx.Unlock()
		_ = conn.Close()
	}()

	for _, cmd := range []string{
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
		"PASS " + c.config.pass(),
		"NICK " + strings.ToLower(c.config.Username),
	} {
		if err := c.write(cmd); err != nil {
			return false, fmt.Errorf("login: %w", err)
		}
	}

	var connected bool
	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout)); err != nil {
			return connected, fmt.Errorf("set read deadline: %w", err)
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return connected, fmt.Errorf("read: %w", err)
		}

		for _, raw := range strings.Split(string(data), "\r\n") {
			if raw == "" {
				continue
			}

			line, err := ParseLine(raw)
			if err != nil {
				logger.Debugf("skip line: %v", err)
				continue
			}

			switch line.Command {
			case "PING":
				if err := c.write("PONG :" + line.Trailing()); err != nil {
					return connected, fmt.Errorf("pong: %w", err)
				}
			case "001":
				connected = true
				logger.Infof("logged in as %s", c.config.Username)
				for _, ch := range c.config.Channels {
					if err := c.write("JOIN " + channel(ch)); err != nil {
						return connected, fmt.Errorf("join %s: %w", ch, err)
					}
				}
			case "JOIN":
				if strings.EqualFold(line.Nick(), c.config.Username) && len(line.Params) > 0 {
					logger.Infof("joined %s", line.Params[0])
				}
			case "NOTICE":
				text := line.Trailing()
				if strings.Contains(text, "authentication failed") || strings.Contains(text, "Improperly formatted auth") {
					return connected, fmt.Errorf("%w: %s", ErrAuthFailed, text)
				}
				logger.Debugf("notice: %s", text)
			case "RECONNECT":
				return connected, errReconnect
			case "PRIVMSG":
				msg, ok := toMessage(line)
				if !ok {
					continue
				}

				select {
				case c.messages <- msg:
				case <-ctx.Done():
					return connected, ctx.Err()
				}
			}
		}
	}
}

func toMessage(line Line) (chat.Message, bool) {
	if len(line.Params) < 2 {
		return chat.Message{}, false
	}

	sender := strings.ToLower(line.Nick())
	if login := line.Tags["login"]; login != "" {
		sender = login
	}

	displayName := line.Tags["display-name"]
	if displayName == "" {
		displayName = sender
	}

	return chat.Message{
		Room:        strings.ToLower(line.Params[0]),
		Sender:      sender,
		DisplayName: displayName,
		Moderator:   line.Tags["mod"] == "1" || hasModeratorBadge(line.Tags["badges"]),
		Text:        line.Trailing(),
		ReceivedAt:  time.Now(),
	}, true
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Send posts text to the room, waiting for the outbound rate limiter.
func (c *Client) Send(ctx context.Context, room, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("send rate limit: %w", err)
	}

	if err := c.write("PRIVMSG " + channel(room) + " :" + lineBreaks.Replace(text)); err != nil {
		return fmt.Errorf("send to %s: %w", room, err)
	}

	return nil
}

func (c *Client) write(line string) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	return c.conn.WriteMessage(websocket.TextMessage, []byte(line+"\r\n"))
}
