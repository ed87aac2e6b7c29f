package bingobot

import (
	"strconv"

	"github.com/bloops-games/bingo/internal/bingobot/game"
	"github.com/bloops-games/bingo/internal/bingobot/resource"
	"github.com/bloops-games/bingo/internal/strpool"
	"github.com/enescakir/emoji"
)

func renderStatus(status game.Status) string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	if !status.Active {
		buf.WriteString(resource.TextStatusNotRunning)
	} else {
		buf.WriteString(emoji.GameDie.String())
		buf.WriteString(" ")
		buf.WriteString(resource.TextStatusRunning)
		buf.WriteString(" (")
		buf.WriteString(strconv.Itoa(status.Settings.Rows))
		buf.WriteString("x")
		buf.WriteString(strconv.Itoa(status.Settings.Columns))
		if status.Settings.ApprovalRequired {
			buf.WriteString(", ")
			buf.WriteString(resource.TextStatusApprovalNote)
		}
		buf.WriteString(")")
	}

	buf.WriteString(": ")
	buf.WriteString(strconv.Itoa(status.Players))
	buf.WriteString(" players, ")
	buf.WriteString(emoji.Trophy.String())
	buf.WriteString(" ")
	buf.WriteString(strconv.Itoa(status.Winners))
	buf.WriteString(" winners")

	if status.PendingApprovals > 0 {
		buf.WriteString(", ")
		buf.WriteString(emoji.HourglassNotDone.String())
		buf.WriteString(" ")
		buf.WriteString(strconv.Itoa(status.PendingApprovals))
		buf.WriteString(" pending")
	}

	buf.WriteString(", ")
	buf.WriteString(strconv.Itoa(status.UnusedPhrases))
	buf.WriteString("/")
	buf.WriteString(strconv.Itoa(status.Phrases))
	buf.WriteString(" phrases unused")

	return buf.String()
}
