package bingobot

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bloops-games/bingo/internal/bingobot/game"
	"github.com/bloops-games/bingo/internal/bingobot/resource"
	"github.com/bloops-games/bingo/internal/chat"
	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room"
	"github.com/bloops-games/bingo/internal/database/room/model"
)

const testRoom = "#stream"

type sent struct {
	room string
	text string
}

type fakeTransport struct {
	messages chan chat.Message

	mtx  sync.Mutex
	sent []sent
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{messages: make(chan chat.Message, 64)}
}

func (f *fakeTransport) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (f *fakeTransport) Messages() <-chan chat.Message {
	return f.messages
}

func (f *fakeTransport) Send(_ context.Context, room, text string) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.sent = append(f.sent, sent{room: room, text: text})
	return nil
}

func (f *fakeTransport) last() sent {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if len(f.sent) == 0 {
		return sent{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeTransport) count() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return len(f.sent)
}

func newTestManager(t *testing.T, settings model.Settings, config *Config) (*Manager, *fakeTransport) {
	t.Helper()
	ctx := context.Background()

	store, err := room.Open(ctx, &database.Config{
		Driver:   database.DriverBolt,
		FilePath: filepath.Join(t.TempDir(), "bingo.db"),
		Timeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	engine, err := game.NewEngine(store, settings)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	phrases := make([]string, 30)
	for i := range phrases {
		phrases[i] = "phrase " + strconv.Itoa(i)
	}
	if _, err := engine.AddPhrases(ctx, testRoom, phrases); err != nil {
		t.Fatalf("add phrases: %v", err)
	}

	if config == nil {
		config = &Config{CacheSize: 16, MessageLimit: 400}
	}

	transport := newFakeTransport()
	m, err := NewManager(transport, engine, config)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	return m, transport
}

func viewer(name, text string) chat.Message {
	return chat.Message{Room: testRoom, Sender: name, DisplayName: name, Text: text}
}

func moderator(name, text string) chat.Message {
	msg := viewer(name, text)
	msg.Moderator = true
	return msg
}

// say handles msg and returns the reply, or "" when nothing was sent.
func say(t *testing.T, m *Manager, f *fakeTransport, msg chat.Message) string {
	t.Helper()
	before := f.count()
	if err := m.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle %q: %v", msg.Text, err)
	}

	if f.count() == before {
		return ""
	}

	reply := f.last()
	if reply.room != msg.Room {
		t.Errorf("reply room: got %q, want %q", reply.room, msg.Room)
	}

	return reply.text
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		text     string
		wantCmd  string
		wantArgs string
		wantOK   bool
	}{
		{text: "!bingocheck 5", wantCmd: "!bingocheck", wantArgs: "5", wantOK: true},
		{text: "!bingocheck\t5", wantCmd: "!bingocheck", wantArgs: "5", wantOK: true},
		{text: "!BINGOSTART\n4x4", wantCmd: "!bingostart", wantArgs: "4x4", wantOK: true},
		{text: "  !BingoAdd  free space ", wantCmd: "!bingoadd", wantArgs: "free space", wantOK: true},
		{text: "!bingo", wantCmd: "!bingo", wantOK: true},
		{text: "bingo!"},
		{text: "!uptime"},
		{text: ""},
	}

	for _, tc := range testCases {
		cmd, args, ok := parseCommand(tc.text)
		if cmd != tc.wantCmd || args != tc.wantArgs || ok != tc.wantOK {
			t.Errorf("parse %q: got (%q, %q, %t), want (%q, %q, %t)",
				tc.text, cmd, args, ok, tc.wantCmd, tc.wantArgs, tc.wantOK)
		}
	}
}

func TestParseShape(t *testing.T) {
	t.Parallel()

	rows, columns, err := parseShape("4X3")
	if err != nil || rows != 4 || columns != 3 {
		t.Errorf("parse 4X3: got %d, %d, %v", rows, columns, err)
	}

	for _, s := range []string{"4", "x3", "4x", "axb"} {
		if _, _, err := parseShape(s); err == nil {
			t.Errorf("parse %q: no error", s)
		}
	}
}

func TestManagerGame(t *testing.T) {
	t.Parallel()
	m, f := newTestManager(t, model.Settings{Rows: 3, Columns: 3}, nil)

	if got := say(t, m, f, viewer("alice", "just chatting")); got != "" {
		t.Errorf("chatter got a reply: %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingojoin")); got != resource.TextGameNotRunning {
		t.Errorf("join before start: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingostart")); !strings.Contains(got, "only moderators") {
		t.Errorf("start by viewer: got %q", got)
	}

	if got := say(t, m, f, moderator("mod", "!BINGOSTART")); !strings.Contains(got, "3x3") {
		t.Errorf("start: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingojoin")); !strings.HasPrefix(got, "@alice here is your card") {
		t.Errorf("join: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingojoin")); !strings.Contains(got, "already have a card") {
		t.Errorf("join twice: got %q", got)
	}

	for _, text := range []string{"!bingocheck", "!bingocheck five", "!bingouncheck"} {
		if got := say(t, m, f, viewer("alice", text)); !strings.HasPrefix(got, "Usage:") {
			t.Errorf("%q: got %q", text, got)
		}
	}

	if got := say(t, m, f, viewer("alice", "!bingocheck 10")); !strings.Contains(got, "pick a square") {
		t.Errorf("check out of range: got %q", got)
	}

	if got := say(t, m, f, viewer("bob", "!bingocheck 1")); !strings.Contains(got, "no card yet") {
		t.Errorf("check without card: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingocheck #1")); !strings.Contains(got, "1.") {
		t.Errorf("check: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingocheck 1")); !strings.Contains(got, "already marked") {
		t.Errorf("check twice: got %q", got)
	}

	say(t, m, f, viewer("alice", "!bingocheck 2"))
	if got := say(t, m, f, viewer("alice", "!bingocheck 3")); !strings.Contains(got, "BINGO! @alice") {
		t.Errorf("winning check: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingouncheck 3")); !strings.Contains(got, "already complete") {
		t.Errorf("uncheck after win: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingostatus")); !strings.Contains(got, "1 players") || !strings.Contains(got, "1 winners") {
		t.Errorf("status: got %q", got)
	}

	if got := say(t, m, f, moderator("mod", "!bingoend")); got != resource.TextGameEnded {
		t.Errorf("end: got %q", got)
	}

	if got := say(t, m, f, moderator("mod", "!bingostop")); got != resource.TextGameNotRunning {
		t.Errorf("end twice: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingoshow")); got != resource.TextGameNotRunning {
		t.Errorf("show after end: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingounknown")); got != "" {
		t.Errorf("unknown command: got %q", got)
	}
}

func TestManagerApproval(t *testing.T) {
	t.Parallel()
	m, f := newTestManager(t, model.Settings{Rows: 2, Columns: 2, ApprovalRequired: true}, &Config{
		CacheSize:    16,
		MessageLimit: 400,
		Moderators:   []string{"@Host"},
	})

	if got := say(t, m, f, viewer("host", "!bingostart 3x3")); !strings.Contains(got, "3x3") || !strings.Contains(got, "moderator confirms") {
		t.Errorf("start by configured moderator: got %q", got)
	}

	if got := say(t, m, f, viewer("host", "!bingostart 11x11")); !strings.Contains(got, "between 1x1 and 10x10") {
		t.Errorf("start with invalid shape: got %q", got)
	}

	if got := say(t, m, f, viewer("host", "!bingostart big")); got != resource.TextUsageStart {
		t.Errorf("start with bad shape: got %q", got)
	}

	say(t, m, f, viewer("host", "!bingostart 2x2"))
	say(t, m, f, viewer("alice", "!bingojoin"))
	say(t, m, f, viewer("alice", "!bingocheck 1"))
	if got := say(t, m, f, viewer("alice", "!bingocheck 4")); !strings.Contains(got, "waiting for a moderator") {
		t.Errorf("winning check: got %q", got)
	}

	if got := say(t, m, f, viewer("bob", "!bingopending")); !strings.Contains(got, "only moderators") {
		t.Errorf("pending by viewer: got %q", got)
	}

	if got := say(t, m, f, moderator("mod", "!bingopending")); got != "Waiting for approval: alice" {
		t.Errorf("pending: got %q", got)
	}

	if got := say(t, m, f, moderator("mod", "!bingoapprove")); got != resource.TextUsageApprove {
		t.Errorf("approve without user: got %q", got)
	}

	if got := say(t, m, f, moderator("mod", "!bingoreject @carol")); got != "@carol has no bingo waiting for approval" {
		t.Errorf("reject unknown: got %q", got)
	}

	if got := say(t, m, f, moderator("mod", "!bingoapprove @Alice")); !strings.Contains(got, "BINGO confirmed for @alice") {
		t.Errorf("approve: got %q", got)
	}

	if got := say(t, m, f, moderator("mod", "!bingopending")); got != resource.TextNothingPending {
		t.Errorf("pending after approve: got %q", got)
	}
}

func TestManagerAddPhrases(t *testing.T) {
	t.Parallel()
	m, f := newTestManager(t, model.Settings{Rows: 3, Columns: 3}, nil)

	if got := say(t, m, f, moderator("mod", "!bingoadd")); got != resource.TextUsageAdd {
		t.Errorf("add without phrases: got %q", got)
	}

	if got := say(t, m, f, moderator("mod", "!bingoadd streamer laughs; chat spams LUL ; phrase 1")); got != "Added 2 phrases to the pool" {
		t.Errorf("add: got %q", got)
	}

	if got := say(t, m, f, viewer("alice", "!bingoadd spam")); !strings.Contains(got, "only moderators") {
		t.Errorf("add by viewer: got %q", got)
	}
}

func TestManagerRateLimit(t *testing.T) {
	t.Parallel()
	m, f := newTestManager(t, model.Settings{Rows: 3, Columns: 3}, &Config{
		CacheSize:    16,
		MessageLimit: 400,
		ViewerRate:   0.001,
		ViewerBurst:  2,
	})

	for i := 0; i < 5; i++ {
		_ = m.Handle(context.Background(), viewer("alice", "!bingostatus"))
	}

	if got := f.count(); got != 2 {
		t.Errorf("replies to a flooding viewer: got %d, want 2", got)
	}

	for i := 0; i < 3; i++ {
		_ = m.Handle(context.Background(), moderator("mod", "!bingostatus"))
	}

	if got := f.count(); got != 5 {
		t.Errorf("replies with moderators unlimited: got %d, want 5", got)
	}
}

func TestManagerUnknownCommandsKeepRateBudget(t *testing.T) {
	t.Parallel()
	m, f := newTestManager(t, model.Settings{Rows: 3, Columns: 3}, &Config{
		CacheSize:    16,
		MessageLimit: 400,
		ViewerRate:   0.001,
		ViewerBurst:  1,
	})

	for i := 0; i < 5; i++ {
		if got := say(t, m, f, viewer("alice", "!bingosomething")); got != "" {
			t.Errorf("unknown command: got %q", got)
		}
	}

	if got := say(t, m, f, viewer("alice", "!bingostatus")); got == "" {
		t.Error("status after unknown commands was rate limited")
	}
}

func TestManagerStoreFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := room.Open(ctx, &database.Config{
		Driver:   database.DriverBolt,
		FilePath: filepath.Join(t.TempDir(), "bingo.db"),
		Timeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	engine, err := game.NewEngine(store, model.Settings{Rows: 3, Columns: 3})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	f := newFakeTransport()
	m, err := NewManager(f, engine, &Config{CacheSize: 16, MessageLimit: 400})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := store.Close(ctx); err != nil {
		t.Fatalf("close store: %v", err)
	}

	testCases := []chat.Message{
		moderator("mod", "!bingostart"),
		viewer("alice", "!bingojoin"),
		viewer("alice", "!bingocheck 1"),
		viewer("alice", "!bingostatus"),
	}

	for _, msg := range testCases {
		want := fmt.Sprintf(resource.TextTransientFailure, msg.Sender)
		if got := say(t, m, f, msg); got != want {
			t.Errorf("%q with a closed store: got %q, want %q", msg.Text, got, want)
		}
	}
}

func TestManagerTruncatesReplies(t *testing.T) {
	t.Parallel()
	m, f := newTestManager(t, model.Settings{Rows: 3, Columns: 3}, &Config{CacheSize: 16, MessageLimit: 20})

	if got := say(t, m, f, viewer("alice", "!bingo")); len([]rune(got)) != 20 {
		t.Errorf("help reply: %d runes, want 20", len([]rune(got)))
	}
}

func TestManagerRun(t *testing.T) {
	t.Parallel()
	m, f := newTestManager(t, model.Settings{Rows: 3, Columns: 3}, &Config{CacheSize: 16, MessageLimit: 400, WorkerNum: 4})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	f.messages <- moderator("mod", "!bingostart")
	for i := 0; i < 10; i++ {
		f.messages <- viewer("viewer"+strconv.Itoa(i), "!bingostatus")
	}
	close(f.messages)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after the transport closed")
	}

	if got := f.count(); got != 11 {
		t.Errorf("replies: got %d, want 11", got)
	}
}
