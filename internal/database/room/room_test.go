package room_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room"
	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/bloops-games/bingo/internal/database/room/roomtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	for name, store := range roomtest.OpenStores(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("EmptyRoom", func(t *testing.T) {
				err := store.View(ctx, "nobody", func(tx database.Tx) error {
					_, err := tx.Room()
					assert.ErrorIs(t, err, database.ErrNotFound)

					_, err = tx.Player("alice")
					assert.ErrorIs(t, err, database.ErrNotFound)

					players, err := tx.Players()
					assert.NoError(t, err)
					assert.Empty(t, players)

					phrases, err := tx.Phrases()
					assert.NoError(t, err)
					assert.Empty(t, phrases)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("RoundTrip", func(t *testing.T) {
				stored := model.Room{
					ID:               "roundtrip",
					Active:           true,
					PendingApprovals: 2,
					GameID:           uuid.New(),
					Settings:         model.Settings{Rows: 3, Columns: 3, ApprovalRequired: true},
					ActivatedAt:      time.Now().UTC().Truncate(time.Millisecond),
				}
				player := model.Player{
					Identity: "alice",
					GameID:   stored.GameID,
					Rows:     1,
					Columns:  2,
					Cells:    []string{"a", "b"},
					Marked:   []bool{true, false},
				}

				err := store.Update(ctx, stored.ID, func(tx database.Tx) error {
					if err := tx.PutRoom(stored); err != nil {
						return err
					}
					if err := tx.PutPlayer(player); err != nil {
						return err
					}
					return tx.PutPhrases(model.Phrase{Text: "b"}, model.Phrase{Text: "a", Used: true})
				})
				require.NoError(t, err)

				err = store.View(ctx, stored.ID, func(tx database.Tx) error {
					got, err := tx.Room()
					require.NoError(t, err)
					assert.Equal(t, stored.GameID, got.GameID)
					assert.Equal(t, stored.PendingApprovals, got.PendingApprovals)
					assert.Equal(t, stored.Settings, got.Settings)
					assert.True(t, stored.ActivatedAt.Equal(got.ActivatedAt))

					gotPlayer, err := tx.Player("alice")
					require.NoError(t, err)
					assert.Equal(t, player.Cells, gotPlayer.Cells)
					assert.Equal(t, player.Marked, gotPlayer.Marked)

					phrases, err := tx.Phrases()
					require.NoError(t, err)
					assert.Equal(t, []model.Phrase{{Text: "a", Used: true}, {Text: "b"}}, phrases)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("PhraseUpsert", func(t *testing.T) {
				err := store.Update(ctx, "upsert", func(tx database.Tx) error {
					return tx.PutPhrases(model.Phrase{Text: "x"})
				})
				require.NoError(t, err)

				err = store.Update(ctx, "upsert", func(tx database.Tx) error {
					return tx.PutPhrases(model.Phrase{Text: "x", Used: true})
				})
				require.NoError(t, err)

				err = store.View(ctx, "upsert", func(tx database.Tx) error {
					phrases, err := tx.Phrases()
					require.NoError(t, err)
					assert.Equal(t, []model.Phrase{{Text: "x", Used: true}}, phrases)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("DeletePlayersIsScopedToRoom", func(t *testing.T) {
				for _, roomID := range []string{"left", "right"} {
					err := store.Update(ctx, roomID, func(tx database.Tx) error {
						return tx.PutPlayer(model.Player{Identity: "bob", Cells: []string{"a"}, Marked: []bool{false}})
					})
					require.NoError(t, err)
				}

				err := store.Update(ctx, "left", func(tx database.Tx) error {
					return tx.DeletePlayers()
				})
				require.NoError(t, err)

				err = store.View(ctx, "left", func(tx database.Tx) error {
					_, err := tx.Player("bob")
					assert.ErrorIs(t, err, database.ErrNotFound)
					return nil
				})
				require.NoError(t, err)

				err = store.View(ctx, "right", func(tx database.Tx) error {
					players, err := tx.Players()
					require.NoError(t, err)
					assert.Len(t, players, 1)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("RollbackOnError", func(t *testing.T) {
				errAbort := errors.New("abort")
				err := store.Update(ctx, "rollback", func(tx database.Tx) error {
					if err := tx.PutRoom(model.Room{ID: "rollback", Active: true}); err != nil {
						return err
					}
					return errAbort
				})
				assert.ErrorIs(t, err, errAbort)

				err = store.View(ctx, "rollback", func(tx database.Tx) error {
					_, err := tx.Room()
					assert.ErrorIs(t, err, database.ErrNotFound)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("ViewIsReadOnly", func(t *testing.T) {
				err := store.Update(ctx, "readonly", func(tx database.Tx) error {
					return tx.PutRoom(model.Room{ID: "readonly"})
				})
				require.NoError(t, err)

				err = store.View(ctx, "readonly", func(tx database.Tx) error {
					return tx.PutRoom(model.Room{ID: "readonly", Active: true})
				})
				assert.ErrorIs(t, err, database.ErrReadOnly)
			})
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := room.Open(context.Background(), &database.Config{Driver: "mongo"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenConcurrentMigrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	const stores = 8
	var wg sync.WaitGroup
	errs := make(chan error, stores)
	for i := 0; i < stores; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store, err := room.Open(ctx, &database.Config{
				Driver:   database.DriverSQLite,
				FilePath: filepath.Join(dir, fmt.Sprintf("concurrent-%d.db", i)),
				Timeout:  time.Second,
			})
			if err != nil {
				errs <- err
				return
			}
			defer store.Close(ctx)

			errs <- store.Update(ctx, "migrated", func(tx database.Tx) error {
				return tx.PutPhrases(model.Phrase{Text: "ready"})
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
