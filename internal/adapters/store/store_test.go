package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

var storeNow = time.Date(2025, time.June, 18, 9, 0, 0, 0, time.UTC)

func sampleEntry(id string, ttl time.Duration) *core.StoredResult {
	return &core.StoredResult{
		Result: &core.ProcessedResult{
			ID:             id,
			Classification: "INFIRMIÈRE",
			Requirements: &core.RequirementRecord{
				Professions:   []string{"INFIRMIÈRE"},
				Shifts:        []string{"quart de nuit"},
				Locations:     []string{"Montréal"},
				Dates:         []string{"15/03/2025"},
				ShiftDuration: "12h",
				Urgent:        true,
			},
			From:        "rh@cisss.example",
			Processed:   true,
			ProcessedAt: storeNow,
		},
		StoredAt:  storeNow,
		ExpiresAt: storeNow.Add(ttl),
	}
}

type repository interface {
	core.ResultRepository
	Stop()
}

func exerciseRepository(t *testing.T, repo repository, setClock func(time.Time)) {
	ctx := context.Background()
	setClock(storeNow)

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Set(ctx, sampleEntry("a", time.Hour)))
	require.NoError(t, repo.Set(ctx, sampleEntry("b", 2*time.Hour)))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Result.ID)
	assert.Equal(t, "INFIRMIÈRE", got.Result.Classification)
	assert.Equal(t, []string{"Montréal"}, got.Result.Requirements.Locations)
	assert.Equal(t, "12h", got.Result.Requirements.ShiftDuration)
	assert.True(t, got.Result.Requirements.Urgent)
	assert.True(t, got.Result.Processed)
	assert.True(t, got.ExpiresAt.Equal(storeNow.Add(time.Hour)))

	// Replacing keeps a single entry per message
	replacement := sampleEntry("a", time.Hour)
	replacement.Result.Classification = "PAB"
	require.NoError(t, repo.Set(ctx, replacement))
	got, err = repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "PAB", got.Result.Classification)

	// Expired entries are invisible, then removed by Cleanup
	setClock(storeNow.Add(90 * time.Minute))
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, repo.Cleanup(ctx))
	setClock(storeNow)
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Get(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "b"))
	_, err = repo.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 0)
	defer s.Stop()

	exerciseRepository(t, s, func(now time.Time) { s.now = func() time.Time { return now } })
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"), zap.NewNop(), 0)
	require.NoError(t, err)
	defer s.Stop()

	exerciseRepository(t, s, func(now time.Time) { s.now = func() time.Time { return now } })
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Millisecond)
	s.Stop()
	s.Stop()
}
