package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room/model"
	bolt "go.etcd.io/bbolt"
)

const (
	prefix        = "rooms"
	roomKey       = "room"
	playersBucket = "players"
	phrasesBucket = "phrases"
)

var _ database.Store = (*DB)(nil)

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

// DB keeps every room in its own nested bucket:
//
//	rooms/<roomID>/room          room document
//	rooms/<roomID>/players/<id>  player documents
//	rooms/<roomID>/phrases/<p>   question pool
type DB struct {
	sDB *database.DB
}

func (db *DB) Update(ctx context.Context, roomID string, fn func(tx database.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", database.ErrUnavailable, err)
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists([]byte(prefix))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}

		b, err := root.CreateBucketIfNotExists([]byte(roomID))
		if err != nil {
			return fmt.Errorf("create room bucket %s: %w", roomID, err)
		}

		return fn(&roomTx{roomID: roomID, b: b, writable: true})
	}); err != nil {
		return mapErr("update transaction", err)
	}

	return nil
}

func (db *DB) View(ctx context.Context, roomID string, fn func(tx database.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", database.ErrUnavailable, err)
	}

	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		var b *bolt.Bucket
		if root := tx.Bucket([]byte(prefix)); root != nil {
			b = root.Bucket([]byte(roomID))
		}

		return fn(&roomTx{roomID: roomID, b: b})
	}); err != nil {
		return mapErr("view transaction", err)
	}

	return nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.sDB.Close(ctx)
}

func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, bolt.ErrDatabaseNotOpen), errors.Is(err, bolt.ErrTimeout):
		return fmt.Errorf("%s: %w: %w", op, database.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

type roomTx struct {
	roomID   string
	b        *bolt.Bucket
	writable bool
}

func (t *roomTx) bucket(name string) (*bolt.Bucket, error) {
	if t.b == nil {
		return nil, nil
	}

	if b := t.b.Bucket([]byte(name)); b != nil || !t.writable {
		return b, nil
	}

	b, err := t.b.CreateBucket([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("create bucket %s: %w", name, err)
	}

	return b, nil
}

func (t *roomTx) Room() (model.Room, error) {
	var room model.Room
	if t.b == nil {
		return room, database.ErrNotFound
	}

	bytes := t.b.Get([]byte(roomKey))
	if len(bytes) == 0 {
		return room, database.ErrNotFound
	}

	if err := json.Unmarshal(bytes, &room); err != nil {
		return room, fmt.Errorf("unmarshal room %s: %w", t.roomID, err)
	}

	return room, nil
}

func (t *roomTx) PutRoom(room model.Room) error {
	if !t.writable {
		return database.ErrReadOnly
	}

	bytes, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := t.b.Put([]byte(roomKey), bytes); err != nil {
		return fmt.Errorf("put to bucket error: %w", err)
	}

	return nil
}

func (t *roomTx) Player(identity string) (model.Player, error) {
	var p model.Player
	b, err := t.bucket(playersBucket)
	if err != nil {
		return p, err
	}

	if b == nil {
		return p, database.ErrNotFound
	}

	bytes := b.Get([]byte(identity))
	if len(bytes) == 0 {
		return p, database.ErrNotFound
	}

	if err := json.Unmarshal(bytes, &p); err != nil {
		return p, fmt.Errorf("unmarshal player %s: %w", identity, err)
	}

	return p, nil
}

func (t *roomTx) Players() ([]model.Player, error) {
	var list []model.Player
	b, err := t.bucket(playersBucket)
	if err != nil || b == nil {
		return list, err
	}

	if err := b.ForEach(func(k, v []byte) error {
		var p model.Player
		if err := json.Unmarshal(v, &p); err != nil {
			return fmt.Errorf("json unmarshal error, %w", err)
		}
		list = append(list, p)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("bucket for each: %w", err)
	}

	return list, nil
}

func (t *roomTx) PutPlayer(p model.Player) error {
	if !t.writable {
		return database.ErrReadOnly
	}

	b, err := t.bucket(playersBucket)
	if err != nil {
		return err
	}

	bytes, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := b.Put([]byte(p.Identity), bytes); err != nil {
		return fmt.Errorf("put to bucket error: %w", err)
	}

	return nil
}

func (t *roomTx) DeletePlayers() error {
	if !t.writable {
		return database.ErrReadOnly
	}

	if err := t.b.DeleteBucket([]byte(playersBucket)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
		return fmt.Errorf("delete bucket: %w", err)
	}

	return nil
}

func (t *roomTx) Phrases() ([]model.Phrase, error) {
	var list []model.Phrase
	b, err := t.bucket(phrasesBucket)
	if err != nil || b == nil {
		return list, err
	}

	if err := b.ForEach(func(k, v []byte) error {
		var p model.Phrase
		if err := json.Unmarshal(v, &p); err != nil {
			return fmt.Errorf("json unmarshal error, %w", err)
		}
		list = append(list, p)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("bucket for each: %w", err)
	}

	return list, nil
}

func (t *roomTx) PutPhrases(phrases ...model.Phrase) error {
	if !t.writable {
		return database.ErrReadOnly
	}

	b, err := t.bucket(phrasesBucket)
	if err != nil {
		return err
	}

	for _, p := range phrases {
		bytes, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}

		if err := b.Put([]byte(p.Text), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
	}

	return nil
}
