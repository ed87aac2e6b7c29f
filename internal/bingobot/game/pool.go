package game

import (
	"fmt"

	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/valyala/fastrand"
)

// Pool is the question pool of a room as read inside one transaction.
type Pool struct {
	phrases []model.Phrase
}

func NewPool(phrases []model.Phrase) *Pool {
	return &Pool{phrases: phrases}
}

func (p *Pool) Len() int {
	return len(p.phrases)
}

func (p *Pool) Unused() int {
	var n int
	for _, phrase := range p.phrases {
		if !phrase.Used {
			n++
		}
	}

	return n
}

// Draw picks n distinct unused phrases uniformly at random. The pool itself is not
// changed; see Consume.
func (p *Pool) Draw(n int) ([]string, error) {
	unused := make([]string, 0, len(p.phrases))
	for _, phrase := range p.phrases {
		if !phrase.Used {
			unused = append(unused, phrase.Text)
		}
	}

	if n > len(unused) {
		return nil, fmt.Errorf("%w: need %d, %d unused", ErrInsufficientPhrases, n, len(unused))
	}

	// partial Fisher-Yates: the first n slots end up holding the sample
	for i := 0; i < n; i++ {
		j := i + int(fastrand.Uint32n(uint32(len(unused)-i)))
		unused[i], unused[j] = unused[j], unused[i]
	}

	drawn := make([]string, n)
	copy(drawn, unused[:n])

	return drawn, nil
}

// Consume marks the given phrases used and returns the changed records.
func (p *Pool) Consume(texts []string) []model.Phrase {
	consume := make(map[string]struct{}, len(texts))
	for _, text := range texts {
		consume[text] = struct{}{}
	}

	var changed []model.Phrase
	for i := range p.phrases {
		if _, ok := consume[p.phrases[i].Text]; ok && !p.phrases[i].Used {
			p.phrases[i].Used = true
			changed = append(changed, p.phrases[i])
		}
	}

	return changed
}
