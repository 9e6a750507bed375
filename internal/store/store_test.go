package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpenko/sweeper/internal/game"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := openTestStore(t)

	state, err := game.New(game.Params{Rows: 9, Cols: 9, MineCount: 10})
	require.NoError(t, err)
	state.Elapsed = 42 * time.Second

	require.NoError(t, s.Save("main", state))

	got, err := s.Load("main")
	require.NoError(t, err)
	assert.Equal(t, state.Params, got.Params)
	assert.Equal(t, state.Elapsed, got.Elapsed)
	assert.Len(t, got.Player, 81)
}

func TestSaveOverwritesSlot(t *testing.T) {
	s := openTestStore(t)

	first, err := game.New(game.Params{Rows: 9, Cols: 9, MineCount: 10})
	require.NoError(t, err)
	second, err := game.New(game.Params{Rows: 16, Cols: 30, MineCount: 99})
	require.NoError(t, err)

	require.NoError(t, s.Save("main", first))
	require.NoError(t, s.Save("main", second))

	got, err := s.Load("main")
	require.NoError(t, err)
	assert.Equal(t, second.Params, got.Params)
}

func TestSlotsAreIndependent(t *testing.T) {
	s := openTestStore(t)

	small, err := game.New(game.Params{Rows: 9, Cols: 9, MineCount: 10})
	require.NoError(t, err)
	big, err := game.New(game.Params{Rows: 16, Cols: 30, MineCount: 99})
	require.NoError(t, err)

	require.NoError(t, s.Save("small", small))
	require.NoError(t, s.Save("big", big))

	got, err := s.Load("small")
	require.NoError(t, err)
	assert.Equal(t, small.Params, got.Params)

	got, err = s.Load("big")
	require.NoError(t, err)
	assert.Equal(t, big.Params, got.Params)
}

func TestLoadMissingSlot(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	state, err := game.New(game.Params{Rows: 9, Cols: 9, MineCount: 10})
	require.NoError(t, err)
	require.NoError(t, s.Save("main", state))

	require.NoError(t, s.Delete("main"))
	_, err = s.Load("main")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent slot is not an error.
	assert.NoError(t, s.Delete("main"))
}
