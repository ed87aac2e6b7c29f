package twitch

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const DefaultURL = "wss://irc-ws.chat.twitch.tv:443"

type Config struct {
	URL string `envconfig:"BINGO_TWITCH_URL" default:"wss://irc-ws.chat.twitch.tv:443"`
	// Login of the bot account
	Username string `envconfig:"BINGO_TWITCH_USERNAME"`
	// Chat token, with or without the "oauth:" prefix
	Token    string   `envconfig:"BINGO_TWITCH_TOKEN"`
	Channels []string `envconfig:"BINGO_TWITCH_CHANNELS"`

	// JSON file with OAUTH_TOKEN, USERNAME and CHANNEL, filling whatever the
	// variables above leave empty
	CredentialsFile string `envconfig:"BINGO_TWITCH_CREDENTIALS_FILE"`

	// Twitch allows 20 messages per 30 seconds for regular accounts
	SendRate  float64 `envconfig:"BINGO_TWITCH_SEND_RATE" default:"0.66"`
	SendBurst int     `envconfig:"BINGO_TWITCH_SEND_BURST" default:"5"`

	// Silence after which the connection is considered dead
	ReadTimeout      time.Duration `envconfig:"BINGO_TWITCH_READ_TIMEOUT" default:"6m"`
	WriteTimeout     time.Duration `envconfig:"BINGO_TWITCH_WRITE_TIMEOUT" default:"10s"`
	ReconnectMaxWait time.Duration `envconfig:"BINGO_TWITCH_RECONNECT_MAX_WAIT" default:"2m"`
}

type credentials struct {
	OAuthToken string `json:"OAUTH_TOKEN"`
	Username   string `json:"USERNAME"`
	Channel    string `json:"CHANNEL"`
}

// LoadCredentials fills the empty credential fields from CredentialsFile.
func (c *Config) LoadCredentials() error {
	if c.CredentialsFile == "" {
		return nil
	}

	bytes, err := os.ReadFile(c.CredentialsFile)
	if err != nil {
		return fmt.Errorf("read credentials file: %w", err)
	}

	var creds credentials
	if err := json.Unmarshal(bytes, &creds); err != nil {
		return fmt.Errorf("unmarshal credentials file: %w", err)
	}

	if c.Token == "" {
		c.Token = creds.OAuthToken
	}

	if c.Username == "" {
		c.Username = creds.Username
	}

	if len(c.Channels) == 0 && creds.Channel != "" {
		c.Channels = []string{creds.Channel}
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Username == "" || c.Token == "" {
		return fmt.Errorf("twitch username and token are required")
	}

	if len(c.Channels) == 0 {
		return fmt.Errorf("at least one twitch channel is required")
	}

	return nil
}

func (c *Config) pass() string {
	if strings.HasPrefix(c.Token, "oauth:") {
		return c.Token
	}

	return "oauth:" + c.Token
}

// channel normalizes "SomeStreamer" and "#somestreamer" to "#somestreamer".
func channel(name string) string {
	return "#" + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "#"))
}
