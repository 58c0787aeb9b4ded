package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/curebird/backend/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *TrendsRepo {
	t.Helper()
	ctx := context.Background()

	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewTrendsRepo(db)
}

func TestTrendsRepo_SaveLoad(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.Save(ctx, []core.DiseaseTrend{
		{Disease: "Dengue", Outbreaks: 500, Year: "2024"},
		{Disease: "Malaria", Outbreaks: 1200, Year: "2023"},
		{Disease: "", Outbreaks: 10}, // skipped
	})
	require.NoError(t, err)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by outbreaks descending
	assert.Equal(t, "Malaria", got[0].Disease)
	assert.Equal(t, int64(1200), got[0].Outbreaks)
	assert.Equal(t, "Dengue", got[1].Disease)
	assert.Equal(t, "Local Archive", got[0].Source)
}

func TestTrendsRepo_UpsertOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []core.DiseaseTrend{{Disease: "Dengue", Outbreaks: 100, Year: "2023"}}))
	require.NoError(t, repo.Save(ctx, []core.DiseaseTrend{{Disease: "Dengue", Outbreaks: 900, Year: "2024"}}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(900), got[0].Outbreaks)
	assert.Equal(t, "2024", got[0].Year)
}

func TestTrendsRepo_LoadEmpty(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
