package twitch

import (
	"fmt"
	"strings"
)

var ErrMalformedLine = fmt.Errorf("malformed irc line")

// Line is one IRC message with IRCv3 tags.
type Line struct {
	Tags    map[string]string
	Prefix  string
	Command string
	Params  []string
}

// Nick returns the nickname part of a "nick!user@host" prefix.
func (l Line) Nick() string {
	nick, _, _ := strings.Cut(l.Prefix, "!")
	return nick
}

// Trailing returns the last parameter, which holds the chat text of a PRIVMSG.
func (l Line) Trailing() string {
	if len(l.Params) == 0 {
		return ""
	}

	return l.Params[len(l.Params)-1]
}

// ParseLine parses "[@tags] [:prefix] COMMAND [params] [:trailing]".
func ParseLine(raw string) (Line, error) {
	var line Line
	s := strings.TrimRight(raw, "\r\n")

	if strings.HasPrefix(s, "@") {
		tags, rest, ok := strings.Cut(s[1:], " ")
		if !ok {
			return line, fmt.Errorf("%w: %q", ErrMalformedLine, raw)
		}
		line.Tags = parseTags(tags)
		s = strings.TrimLeft(rest, " ")
	}

	if strings.HasPrefix(s, ":") {
		prefix, rest, ok := strings.Cut(s[1:], " ")
		if !ok {
			return line, fmt.Errorf("%w: %q", ErrMalformedLine, raw)
		}
		line.Prefix = prefix
		s = strings.TrimLeft(rest, " ")
	}

	for s != "" {
		if strings.HasPrefix(s, ":") && line.Command != "" {
			line.Params = append(line.Params, s[1:])
			break
		}

		token, rest, _ := strings.Cut(s, " ")
		if line.Command == "" {
			line.Command = strings.ToUpper(token)
		} else {
			line.Params = append(line.Params, token)
		}
		s = strings.TrimLeft(rest, " ")
	}

	if line.Command == "" {
		return line, fmt.Errorf("%w: no command in %q", ErrMalformedLine, raw)
	}

	return line, nil
}

func parseTags(raw string) map[string]string {
	tags := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		tags[key] = unescapeTag(value)
	}

	return tags
}

var tagUnescaper = strings.NewReplacer(`\:`, ";", `\s`, " ", `\\`, `\`, `\r`, "\r", `\n`, "\n")

func unescapeTag(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}

	return tagUnescaper.Replace(v)
}

// hasModeratorBadge reports whether the badges tag ("moderator/1,subscriber/12")
// names a moderator or the broadcaster.
func hasModeratorBadge(badges string) bool {
	for _, badge := range strings.Split(badges, ",") {
		name, _, _ := strings.Cut(badge, "/")
		if name == "moderator" || name == "broadcaster" {
			return true
		}
	}

	return false
}
