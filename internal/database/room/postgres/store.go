// Package postgres provides a Postgres-backed room store running every write as a
// serializable transaction.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/bloops-games/bingo/internal/database/room/postgres/migrations"
	"github.com/bloops-games/bingo/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var _ database.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and applies embedded migrations.
func Open(ctx context.Context, connString string) (*Store, error) {
	logger := logging.FromContext(ctx)
	if connString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	if err := migrate(ctx, connString); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", database.ErrUnavailable, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", database.ErrUnavailable, err)
	}

	logger.Infof("postgres store connected")

	return &Store{pool: pool}, nil
}

func migrate(ctx context.Context, connString string) error {
	migrationDB, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("%w: open db for migrations: %w", database.ErrUnavailable, err)
	}
	defer migrationDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, migrationDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

func (s *Store) Close(ctx context.Context) error {
	logging.FromContext(ctx).Infof("closing postgres store")
	s.pool.Close()
	return nil
}

func (s *Store) Update(ctx context.Context, roomID string, fn func(tx database.Tx) error) error {
	return s.run(ctx, roomID, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}

func (s *Store) View(ctx context.Context, roomID string, fn func(tx database.Tx) error) error {
	return s.run(ctx, roomID, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (s *Store) run(ctx context.Context, roomID string, opts pgx.TxOptions, fn func(tx database.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return mapErr("begin transaction", err)
	}

	defer tx.Rollback(ctx) // nolint

	writable := opts.AccessMode != pgx.ReadOnly
	if err := fn(&roomTx{ctx: ctx, tx: tx, roomID: roomID, writable: writable}); err != nil {
		return mapErr("transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapErr("committing transaction", err)
	}

	return nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, database.ErrConflict) || errors.Is(err, database.ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%s: %w: %w", op, database.ErrConflict, err)
		}
	}

	var connectErr *pgconn.ConnectError
	switch {
	case errors.As(err, &connectErr),
		pgconn.Timeout(err),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, database.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

type roomTx struct {
	ctx      context.Context
	tx       pgx.Tx
	roomID   string
	writable bool
}

func (t *roomTx) Room() (model.Room, error) {
	var room model.Room
	var doc []byte

	err := t.tx.QueryRow(t.ctx, `SELECT doc FROM rooms WHERE room_id = $1`, t.roomID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return room, database.ErrNotFound
		}
		return room, fmt.Errorf("select room: %w", err)
	}

	if err := json.Unmarshal(doc, &room); err != nil {
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

	if _, err := t.tx.Exec(
		t.ctx,
		`INSERT INTO rooms (room_id, doc) VALUES ($1, $2)
		 ON CONFLICT (room_id) DO UPDATE SET doc = EXCLUDED.doc`,
		t.roomID,
		doc,
	); err != nil {
		return fmt.Errorf("upsert room: %w", err)
	}

	return nil
}

func (t *roomTx) Player(identity string) (model.Player, error) {
	var p model.Player
	var doc []byte

	err := t.tx.QueryRow(
		t.ctx,
		`SELECT doc FROM players WHERE room_id = $1 AND identity = $2`,
		t.roomID,
		identity,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, database.ErrNotFound
		}
		return p, fmt.Errorf("select player: %w", err)
	}

	if err := json.Unmarshal(doc, &p); err != nil {
		return p, fmt.Errorf("unmarshal player %s: %w", identity, err)
	}

	return p, nil
}

func (t *roomTx) Players() ([]model.Player, error) {
	rows, err := t.tx.Query(t.ctx, `SELECT doc FROM players WHERE room_id = $1 ORDER BY identity`, t.roomID)
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	defer rows.Close()

	var list []model.Player
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}

		var p model.Player
		if err := json.Unmarshal(doc, &p); err != nil {
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

	if _, err := t.tx.Exec(
		t.ctx,
		`INSERT INTO players (room_id, identity, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (room_id, identity) DO UPDATE SET doc = EXCLUDED.doc`,
		t.roomID,
		p.Identity,
		doc,
	); err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}

	return nil
}

func (t *roomTx) DeletePlayers() error {
	if !t.writable {
		return database.ErrReadOnly
	}

	if _, err := t.tx.Exec(t.ctx, `DELETE FROM players WHERE room_id = $1`, t.roomID); err != nil {
		return fmt.Errorf("delete players: %w", err)
	}

	return nil
}

func (t *roomTx) Phrases() ([]model.Phrase, error) {
	rows, err := t.tx.Query(
		t.ctx,
		`SELECT phrase, used FROM phrases WHERE room_id = $1 ORDER BY phrase`,
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

	if len(phrases) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range phrases {
		batch.Queue(
			`INSERT INTO phrases (room_id, phrase, used) VALUES ($1, $2, $3)
			 ON CONFLICT (room_id, phrase) DO UPDATE SET used = EXCLUDED.used`,
			t.roomID,
			p.Text,
			p.Used,
		)
	}

	if err := t.tx.SendBatch(t.ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert phrases: %w", err)
	}

	return nil
}
