// Package sqlite provides a SQLite-backed room store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/bloops-games/bingo/internal/database/room/sqlite/migrations"
	"github.com/bloops-games/bingo/internal/logging"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var _ database.Store = (*Store)(nil)

// Store persists rooms in SQLite. Write transactions start with BEGIN IMMEDIATE so
// concurrent writers are serialized by the database lock.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite room store and applies embedded migrations.
func Open(ctx context.Context, path string, busyTimeout time.Duration) (*Store, error) {
	logger := logging.FromContext(ctx)
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	logger.Infof("opening sqlite store, file: %s", path)
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		filepath.Clean(path),
		busyTimeout.Milliseconds(),
	)

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %w", database.ErrUnavailable, err)
	}

	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %w", database.ErrUnavailable, err)
	}

	if err := migrate(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

func migrate(ctx context.Context, sqlDB *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

func (s *Store) Close(ctx context.Context) error {
	logging.FromContext(ctx).Infof("closing sqlite store")
	if s == nil || s.sqlDB == nil {
		return nil
	}

	return s.sqlDB.Close()
}

func (s *Store) Update(ctx context.Context, roomID string, fn func(tx database.Tx) error) error {
	return s.run(ctx, roomID, true, fn)
}

func (s *Store) View(ctx context.Context, roomID string, fn func(tx database.Tx) error) error {
	return s.run(ctx, roomID, false, fn)
}

func (s *Store) run(ctx context.Context, roomID string, writable bool, fn func(tx database.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapErr("begin transaction", err)
	}

	defer tx.Rollback() // nolint

	if err := fn(&roomTx{ctx: ctx, tx: tx, roomID: roomID, writable: writable}); err != nil {
		return mapErr("transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return mapErr("committing transaction", err)
	}

	return nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, database.ErrConflict) || errors.Is(err, database.ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%s: %w: %w", op, database.ErrConflict, err)
		case sqlite3lib.SQLITE_CANTOPEN, sqlite3lib.SQLITE_IOERR:
			return fmt.Errorf("%s: %w: %w", op, database.ErrUnavailable, err)
		}
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%s: %w: %w", op, database.ErrUnavailable, err)
	case strings.Contains(err.Error(), "database is closed"):
		return fmt.Errorf("%s: %w: %w", op, database.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

type roomTx struct {
	ctx      context.Context
	tx       *sql.Tx
	roomID   string
	writable bool
}

func (t *roomTx) Room() (model.Room, error) {
	var room model.Room
	var doc string

	err := t.tx.QueryRowContext(t.ctx, `SELECT doc FROM rooms WHERE room_id = ?`, t.roomID).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return room, database.ErrNotFound
		}
		return room, fmt.Errorf("select room: %w", err)
	}

	if err := json.Unmarshal([]byte(doc), &room); err != nil {
		return room, fmt.Errorf("unmarshal room %s: %w", t.roomID, err)
	}

	return room, nil
}

func (t *roomTx) PutRoom(room model.Room) error {
	if !t.writable {
		return database.ErrReadOnly
	}

	doc, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if _, err := t.tx.ExecContext(
		t.ctx,
		`INSERT INTO rooms (room_id, doc) VALUES (?, ?)
		 ON CONFLICT (room_id) DO UPDATE SET doc = excluded.doc`,
		t.roomID,
		string(doc),
	); err != nil {
		return fmt.Errorf("upsert room: %w", err)
	}

	return nil
}

func (t *roomTx) Player(identity string) (model.Player, error) {
	var p model.Player
	var doc string

	err := t.tx.QueryRowContext(
		t.ctx,
		`SELECT doc FROM players WHERE room_id = ? AND identity = ?`,
		t.roomID,
		identity,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, database.ErrNotFound
		}
		return p, fmt.Errorf("select player: %w", err)
	}

	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return p, fmt.Errorf("unmarshal player %s: %w", identity, err)
	}

	return p, nil
}

func (t *roomTx) Players() ([]model.Player, error) {
	rows, err := t.tx.QueryContext(t.ctx, `SELECT doc FROM players WHERE room_id = ? ORDER BY identity`, t.roomID)
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	defer rows.Close()

	var list []model.Player
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}

		var p model.Player
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("json unmarshal error, %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}

	return list, nil
}

func (t *roomTx) PutPlayer(p model.Player) error {
	if !t.writable {
		return database.ErrReadOnly
	}

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if _, err := t.tx.ExecContext(
		t.ctx,
		`INSERT INTO players (room_id, identity, doc) VALUES (?, ?, ?)
		 ON CONFLICT (room_id, identity) DO UPDATE SET doc = excluded.doc`,
		t.roomID,
		p.Identity,
		string(doc),
	); err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}

	return nil
}

func (t *roomTx) DeletePlayers() error {
	if !t.writable {
		return database.ErrReadOnly
	}

	if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM players WHERE room_id = ?`, t.roomID); err != nil {
		return fmt.Errorf("delete players: %w", err)
	}

	return nil
}

func (t *roomTx) Phrases() ([]model.Phrase, error) {
	rows, err := t.tx.QueryContext(
		t.ctx,
		`SELECT phrase, used FROM phrases WHERE room_id = ? ORDER BY phrase`,
		t.roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("select phrases: %w", err)
	}
	defer rows.Close()

	var list []model.Phrase
	for rows.Next() {
		var p model.Phrase
		if err := rows.Scan(&p.Text, &p.Used); err != nil {
			return nil, fmt.Errorf("scan phrase: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phrases: %w", err)
	}

	return list, nil
}

func (t *roomTx) PutPhrases(phrases ...model.Phrase) error {
	if !t.writable {
		return database.ErrReadOnly
	}

	for _, p := range phrases {
		if _, err := t.tx.ExecContext(
			t.ctx,
			`INSERT INTO phrases (room_id, phrase, used) VALUES (?, ?, ?)
			 ON CONFLICT (room_id, phrase) DO UPDATE SET used = excluded.used`,
			t.roomID,
			p.Text,
			p.Used,
		); err != nil {
			return fmt.Errorf("upsert phrase: %w", err)
		}
	}

	return nil
}
