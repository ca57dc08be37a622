package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-sizing/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func testRun(label string) *Run {
	return &Run{
		Label: label,
		Best: model.CostResult{
			PVCapacityKW:       6,
			BatteryCapacityKWh: 10,
			PVCost:             660,
			BatteryCost:        350,
			ResidualCost:       120,
			ExportCredit:       40,
			TotalCost:          1090,
		},
		Surface: []model.CostResult{
			{PVCapacityKW: 0, BatteryCapacityKWh: 0, ResidualCost: 2000, TotalCost: 2000},
			{PVCapacityKW: 6, BatteryCapacityKWh: 10, TotalCost: 1090},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := testRun("base-case")
	require.NoError(t, s.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "base-case", got.Label)
	assert.Equal(t, run.Best, got.Best)
	assert.Nil(t, got.Surface) // surface is fetched separately

	surface, err := s.GetSurface(ctx, run.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, run.Surface, surface)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "nope")
	require.ErrorIs(t, err, ErrRunNotFound)

	surface, err := s.GetSurface(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, surface)
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, testRun("first")))
	require.NoError(t, s.SaveRun(ctx, testRun("second")))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	runs, err = s.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
