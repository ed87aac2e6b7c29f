package bingobot

import (
	"github.com/bloops-games/bingo/internal/chat/twitch"
	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room/model"
)

type Config struct {
	// Debug logging with the console encoder
	Debug bool `envconfig:"BINGO_DEBUG" default:"false"`

	// Port of the health check server
	Port string `envconfig:"BINGO_PORT" default:"1234"`

	// Number of message handlers, 0 means one per CPU
	WorkerNum int `envconfig:"BINGO_WORKER_NUM" default:"0"`

	// Number of viewers whose rate limiters are kept
	CacheSize int `envconfig:"BINGO_CACHE_SIZE" default:"1024"`

	// Replies longer than this many characters are cut
	MessageLimit int `envconfig:"BINGO_MESSAGE_LIMIT" default:"400"`

	// Commands per second a viewer may send, 0 disables the limit
	ViewerRate  float64 `envconfig:"BINGO_VIEWER_RATE" default:"0.5"`
	ViewerBurst int     `envconfig:"BINGO_VIEWER_BURST" default:"3"`

	// Logins treated as moderators in every room besides the badge holders
	Moderators []string `envconfig:"BINGO_MODERATORS"`

	Game   GameConfig
	Db     database.Config
	Twitch twitch.Config
}

// GameConfig holds the settings a room is activated with unless the moderator
// picks a card size.
type GameConfig struct {
	Rows             int  `envconfig:"BINGO_ROWS" default:"5"`
	Columns          int  `envconfig:"BINGO_COLUMNS" default:"5"`
	ApprovalRequired bool `envconfig:"BINGO_APPROVAL_REQUIRED" default:"false"`
	ConsumePhrases   bool `envconfig:"BINGO_CONSUME_PHRASES" default:"false"`
}

func (c GameConfig) Settings() model.Settings {
	return model.Settings{
		Rows:             c.Rows,
		Columns:          c.Columns,
		ApprovalRequired: c.ApprovalRequired,
		ConsumePhrases:   c.ConsumePhrases,
	}
}
