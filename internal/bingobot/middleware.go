package bingobot

import (
	"github.com/bloops-games/bingo/internal/chat"
	"golang.org/x/time/rate"
)

func (m *Manager) isModerator(msg chat.Message) bool {
	if msg.Moderator {
		return true
	}

	_, ok := m.moderators[msg.Sender]

	return ok
}

// allow drops command floods from one viewer before they reach the store.
// Moderators are never limited.
func (m *Manager) allow(msg chat.Message) bool {
	if m.config.ViewerRate <= 0 || m.isModerator(msg) {
		return true
	}

	key := msg.Room + "/" + msg.Sender

	m.mtx.Lock()
	var limiter *rate.Limiter
	if v, ok := m.limiters.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rate.Limit(m.config.ViewerRate), m.config.ViewerBurst)
		m.limiters.Add(key, limiter)
	}
	m.mtx.Unlock()

	return limiter.Allow()
}
