package game

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/enescakir/emoji"
)

func TestRenderCard(t *testing.T) {
	t.Parallel()

	card, err := NewCard(2, 2, []string{"A", "B", "C", "D"})
	if err != nil {
		t.Fatalf("new card: %v", err)
	}

	if _, err := card.Mark(1, true); err != nil {
		t.Fatalf("mark: %v", err)
	}

	got := RenderCard(model.Player{Identity: "alice"}, card)
	want := emoji.GameDie.String() + " alice 2x2: 1.A 2." + emoji.CheckMarkButton.String() + "B | 3.C 4.D"
	if got != want {
		t.Errorf("render: got %q, want %q", got, want)
	}

	got = RenderCard(model.Player{Identity: "alice", HasWon: true}, card)
	if !strings.HasSuffix(got, "BINGO") {
		t.Errorf("render winner: got %q", got)
	}

	got = RenderCard(model.Player{Identity: "alice", AwaitingApproval: true}, card)
	if !strings.HasSuffix(got, "awaiting approval") {
		t.Errorf("render pending: got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "bingo", limit: 10, want: "bingo"},
		{name: "exact", in: "bingo", limit: 5, want: "bingo"},
		{name: "cut", in: "bingo card", limit: 6, want: "bingo…"},
		{name: "runes", in: "ёжик в тумане", limit: 5, want: "ёжик…"},
		{name: "disabled", in: "bingo", limit: 0, want: "bingo"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Truncate(tc.in, tc.limit)
			if got != tc.want {
				t.Errorf("truncate: got %q, want %q", got, tc.want)
			}

			if tc.limit > 0 && utf8.RuneCountInString(got) > tc.limit {
				t.Errorf("truncate: %d runes over limit %d", utf8.RuneCountInString(got), tc.limit)
			}
		})
	}
}
