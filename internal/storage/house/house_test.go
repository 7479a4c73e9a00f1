package storage_house

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porchrate/core/internal/infra/memory"
	"github.com/porchrate/core/internal/model"
)

func newStorage() *Storage {
	return New(memory.New())
}

func TestFindOrCreateByProximity(t *testing.T) {
	t.Parallel()

	base := model.House{Latitude: 40.7128, Longitude: -74.0060}

	testCases := []struct {
		name       string
		lat        float64
		lng        float64
		threshold  float64
		wantSame   bool
		wantCreate bool
	}{
		{
			name:      "Should match the same coordinates",
			lat:       40.7128,
			lng:       -74.0060,
			threshold: 50,
			wantSame:  true,
		},
		{
			name:      "Should match a point a few meters away",
			lat:       40.71283,
			lng:       -74.00603,
			threshold: 50,
			wantSame:  true,
		},
		{
			name:       "Should create a new house outside the threshold",
			lat:        40.7228,
			lng:        -74.0060,
			threshold:  50,
			wantCreate: true,
		},
		{
			name:       "Should create when the threshold is tighter than the gap",
			lat:        40.71283,
			lng:        -74.00603,
			threshold:  1,
			wantCreate: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := newStorage()

			first, created, err := s.FindOrCreateByProximity(ctx, base.Latitude, base.Longitude, tc.threshold)
			require.NoError(t, err)
			require.True(t, created)

			got, created, err := s.FindOrCreateByProximity(ctx, tc.lat, tc.lng, tc.threshold)
			require.NoError(t, err)

			if tc.wantSame {
				assert.False(t, created)
				assert.Equal(t, first.ID, got.ID)
			}
			if tc.wantCreate {
				assert.True(t, created)
				assert.NotEqual(t, first.ID, got.ID)
			}
		})
	}
}

func TestFindOrCreateByProximityPicksClosest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStorage()

	far, _, err := s.FindOrCreateByProximity(ctx, 40.7131, -74.0060, 1)
	require.NoError(t, err)
	near, _, err := s.FindOrCreateByProximity(ctx, 40.7128, -74.0060, 1)
	require.NoError(t, err)
	require.NotEqual(t, far.ID, near.ID)

	got, created, err := s.FindOrCreateByProximity(ctx, 40.71281, -74.0060, 50)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, near.ID, got.ID)
}

func TestFindOrCreateByAddress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStorage()

	first, created, err := s.FindOrCreateByAddress(ctx, 40.7128, -74.0060, "13 Elm Street")
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, "13 Elm Street", first.Address)

	t.Run("Should match case-insensitively with drifted coordinates", func(t *testing.T) {
		got, created, err := s.FindOrCreateByAddress(ctx, 40.7129, -74.0061, "13 elm street")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, first.Latitude, got.Latitude)
		assert.Equal(t, first.Longitude, got.Longitude)
	})

	t.Run("Should create for a different address", func(t *testing.T) {
		got, created, err := s.FindOrCreateByAddress(ctx, 41.0, -75.0, "14 Elm Street")
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, got.ID)
	})
}

func TestProximityCreateUsesCoordinateAddress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStorage()

	house, created, err := s.FindOrCreateByProximity(ctx, 40.7128, -74.0060, 50)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, model.CoordAddress(40.7128, -74.0060, 6), house.Address)
}

func TestByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStorage()

	house, _, err := s.FindOrCreateByAddress(ctx, 40.7128, -74.0060, "13 Elm Street")
	require.NoError(t, err)

	got, ok := s.ByID(ctx, house.ID)
	assert.True(t, ok)
	assert.Equal(t, house.ID, got.ID)

	_, ok = s.ByID(ctx, "house-missing")
	assert.False(t, ok)
}

func TestConcurrentResolveMintsOneHouse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStorage()

	const workers = 32
	var wg sync.WaitGroup
	ids := make([]model.HouseID, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			house, _, err := s.FindOrCreateByProximity(ctx, 40.7128, -74.0060, 50)
			assert.NoError(t, err)
			ids[i] = house.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, s.GetAll(ctx), 1)
}
