package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porchrate/core/internal/model"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

func TestScaleTo5(t *testing.T) {
	testCases := []struct {
		in       int
		expected int
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{5, 3},
		{7, 4},
		{8, 4},
		{9, 5},
		{10, 5},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ScaleTo5(tc.in), "ScaleTo5(%d)", tc.in)
	}
}

func TestNormalizeLegacyRecord(t *testing.T) {
	raw := Raw{
		ID:              "legacy-1",
		Lat:             f64(40.7128),
		Lng:             f64(-74.0060),
		Candy:           i(7),
		Decorations:     i(10),
		UserFingerprint: "fp-1",
		Timestamp:       "2023-10-31T19:00:00Z",
	}

	got := Normalize(raw)

	assert.Equal(t, "legacy-1", got.ID)
	assert.Equal(t, model.DeriveHouseID(40.7128, -74.0060), got.HouseID)
	assert.Equal(t, 4, got.Rating1, "ceil(7/10*5)")
	assert.Equal(t, 5, got.Rating2, "ceil(10/10*5)")
	assert.Equal(t, "40.7128, -74.0060", got.Address)
	assert.Equal(t, model.ThemeHalloween, got.Theme)

	expected, err := time.Parse(time.RFC3339, "2023-10-31T19:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.CreatedDate.Equal(expected))
}

func TestNormalizeCurrentRecordFillsHouseID(t *testing.T) {
	raw := Raw{
		ID:              "r-2",
		Latitude:        f64(40.7128),
		Longitude:       f64(-74.0060),
		Rating1:         i(3),
		Rating2:         i(5),
		UserFingerprint: "fp-2",
		Theme:           "christmas",
		CreatedDate:     "2024-12-24T18:30:00Z",
	}

	got := Normalize(raw)

	assert.Equal(t, "house-40.71280--74.00600", got.HouseID)
	assert.Equal(t, 3, got.Rating1)
	assert.Equal(t, 5, got.Rating2)
	assert.Equal(t, model.ThemeChristmas, got.Theme)
}

func TestNormalizeCurrentRecordKeepsHouseID(t *testing.T) {
	raw := Raw{
		HouseID:   "house-existing",
		Latitude:  f64(1),
		Longitude: f64(2),
		Rating1:   i(1),
		Rating2:   i(1),
	}

	got := Normalize(raw)

	assert.Equal(t, "house-existing", got.HouseID)
	assert.Equal(t, model.DefaultTheme, got.Theme, "missing theme defaults to the primary theme")
}

func TestNormalizeMidGenerationFieldNames(t *testing.T) {
	raw := Raw{
		Latitude:          f64(1),
		Longitude:         f64(2),
		CandyRating:       i(4),
		DecorationsRating: i(2),
	}

	got := Normalize(raw)

	assert.Equal(t, 4, got.Rating1)
	assert.Equal(t, 2, got.Rating2)
}

func TestNormalizeDefaultsDateToNow(t *testing.T) {
	before := time.Now().UTC()
	got := Normalize(Raw{Lat: f64(1), Lng: f64(2), Candy: i(5), Decorations: i(5)})
	after := time.Now().UTC()

	assert.False(t, got.CreatedDate.Before(before))
	assert.False(t, got.CreatedDate.After(after))
}

func TestNormalizeUnknownThemeFallsBack(t *testing.T) {
	got := Normalize(Raw{Latitude: f64(1), Longitude: f64(2), Theme: "easter"})
	assert.Equal(t, model.DefaultTheme, got.Theme)
}
