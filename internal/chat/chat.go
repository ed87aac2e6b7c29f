// Package chat holds the types shared by the chat transports and the bot.
package chat

import (
	"context"
	"time"
)

// Message is one inbound chat line.
type Message struct {
	// Room is the channel the line was posted to, e.g. "#somestreamer".
	Room string
	// Sender is the lowercase login of the author.
	Sender      string
	DisplayName string
	// Moderator is set for channel moderators and the broadcaster.
	Moderator  bool
	Text       string
	ReceivedAt time.Time
}

// Transport delivers inbound chat lines and posts replies to a room. Run blocks
// until ctx ends or the transport fails; Messages is closed when Run returns.
type Transport interface {
	Run(ctx context.Context) error
	Messages() <-chan Message
	Send(ctx context.Context, room, text string) error
}
