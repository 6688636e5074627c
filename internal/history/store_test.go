package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "hilo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpen_MigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hilo.db")

	st, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(ctx, path)
	require.NoError(t, err)
	defer st.Close()

	var n int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestInsertAndSummary(t *testing.T) {
	ctx := context.Background()
	st := openTest(t)

	sum, err := st.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)

	require.NoError(t, st.Insert(ctx, Result{GameID: "a", Mode: "normal", Max: 100, Attempts: 6}))
	require.NoError(t, st.Insert(ctx, Result{GameID: "b", Mode: "normal", Max: 100, Attempts: 4}))
	// duplicate ignored
	require.NoError(t, st.Insert(ctx, Result{GameID: "b", Mode: "normal", Max: 100, Attempts: 40}))

	sum, err = st.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Games)
	assert.Equal(t, 4, sum.BestAttempts)
	assert.InDelta(t, 5.0, sum.AvgAttempts, 0.001)
}

func TestInsert_Validation(t *testing.T) {
	ctx := context.Background()
	st := openTest(t)

	assert.Error(t, st.Insert(ctx, Result{Mode: "normal", Max: 10, Attempts: 1}))
	assert.Error(t, st.Insert(ctx, Result{GameID: "x", Mode: "ranked", Max: 10, Attempts: 1}))
	assert.Error(t, st.Insert(ctx, Result{GameID: "y", Mode: "normal", Max: 10, Attempts: 0}))
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	st := openTest(t)

	rows := []Result{
		{GameID: "slow", Mode: "daily", Date: "2026-10-15", Max: 100, Attempts: 5, ElapsedMs: 9000},
		{GameID: "fast", Mode: "daily", Date: "2026-10-15", Max: 100, Attempts: 5, ElapsedMs: 3000},
		{GameID: "best", Mode: "daily", Date: "2026-10-15", Max: 100, Attempts: 3, ElapsedMs: 20000},
		{GameID: "other-day", Mode: "daily", Date: "2026-10-14", Max: 100, Attempts: 1},
		{GameID: "free", Mode: "normal", Date: "", Max: 100, Attempts: 1},
	}
	for _, r := range rows {
		require.NoError(t, st.Insert(ctx, r))
	}

	lb, err := st.Leaderboard(ctx, "2026-10-15", 0)
	require.NoError(t, err)
	require.Len(t, lb, 3)
	assert.Equal(t, []string{"best", "fast", "slow"}, []string{lb[0].GameID, lb[1].GameID, lb[2].GameID})

	lb, err = st.Leaderboard(ctx, "2026-10-15", 1)
	require.NoError(t, err)
	assert.Len(t, lb, 1)

	lb, err = st.Leaderboard(ctx, "1999-01-01", 5)
	require.NoError(t, err)
	assert.Empty(t, lb)
}
