package game

import (
	"errors"
	"testing"

	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/google/go-cmp/cmp"
)

func poolOf(texts ...string) []model.Phrase {
	list := make([]model.Phrase, len(texts))
	for i, text := range texts {
		list[i] = model.Phrase{Text: text}
	}

	return list
}

func TestPoolDraw(t *testing.T) {
	t.Parallel()

	phrases := poolOf(letters...)
	phrases[0].Used = true
	phrases[1].Used = true
	pool := NewPool(phrases)

	if got := pool.Unused(); got != 7 {
		t.Fatalf("unused: got %d, want 7", got)
	}

	for i := 0; i < 100; i++ {
		drawn, err := pool.Draw(5)
		if err != nil {
			t.Fatalf("draw: %v", err)
		}

		seen := map[string]struct{}{}
		for _, text := range drawn {
			if text == "A" || text == "B" {
				t.Fatalf("drew used phrase %q", text)
			}
			if _, ok := seen[text]; ok {
				t.Fatalf("drew %q twice: %v", text, drawn)
			}
			seen[text] = struct{}{}
		}
	}

	if diff := cmp.Diff(poolOf(letters...)[2:], phrases[2:]); diff != "" {
		t.Errorf("draw changed the pool (-want, +got):\n%s", diff)
	}
}

func TestPoolDrawCoversAllPhrases(t *testing.T) {
	t.Parallel()

	pool := NewPool(poolOf(letters...))
	seen := map[string]int{}
	for i := 0; i < 500; i++ {
		drawn, err := pool.Draw(1)
		if err != nil {
			t.Fatalf("draw: %v", err)
		}
		seen[drawn[0]]++
	}

	for _, text := range letters {
		if seen[text] == 0 {
			t.Errorf("phrase %q never drawn in 500 draws", text)
		}
	}
}

func TestPoolDrawInsufficient(t *testing.T) {
	t.Parallel()

	pool := NewPool(poolOf("A", "B", "C", "D"))
	if _, err := pool.Draw(5); !errors.Is(err, ErrInsufficientPhrases) {
		t.Errorf("draw 5 of 4: got %v, want %v", err, ErrInsufficientPhrases)
	}

	drawn, err := pool.Draw(4)
	if err != nil {
		t.Fatalf("draw 4 of 4: %v", err)
	}

	if len(drawn) != 4 {
		t.Errorf("drawn: got %d, want 4", len(drawn))
	}
}

func TestPoolConsume(t *testing.T) {
	t.Parallel()

	pool := NewPool(poolOf("A", "B", "C"))
	changed := pool.Consume([]string{"A", "C", "Z"})

	want := []model.Phrase{{Text: "A", Used: true}, {Text: "C", Used: true}}
	if diff := cmp.Diff(want, changed); diff != "" {
		t.Errorf("consume (-want, +got):\n%s", diff)
	}

	if got := pool.Unused(); got != 1 {
		t.Errorf("unused: got %d, want 1", got)
	}

	if changed := pool.Consume([]string{"A"}); len(changed) != 0 {
		t.Errorf("consume used phrase: got %v, want none", changed)
	}
}
