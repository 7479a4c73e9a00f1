// Package normalize converts any historically persisted rating shape into
// the current canonical model.Rating. It is the only place that knows about
// old schemas: read paths feed every stored record through Normalize instead
// of running destructive migrations.
package normalize

import (
	"math"
	"time"

	"github.com/porchrate/core/internal/model"
)

// Raw is the tagged union of every rating shape the ledger has ever
// persisted. Pointer fields distinguish "absent" from zero values.
type Raw struct {
	ID              string   `json:"id"`
	HouseID         string   `json:"house_id"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Rating1         *int     `json:"rating1"`
	Rating2         *int     `json:"rating2"`
	Notes           string   `json:"notes"`
	Address         string   `json:"address"`
	UserFingerprint string   `json:"userFingerprint"`
	CreatedDate     string   `json:"created_date"`
	Theme           string   `json:"theme"`

	// Mid-generation field names, already on the 1..5 scale.
	CandyRating       *int `json:"candy_rating"`
	DecorationsRating *int `json:"decorations_rating"`

	// First-generation fields: lat/lng plus 1..10 scores and a bare
	// timestamp.
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Candy       *int     `json:"candy"`
	Decorations *int     `json:"decorations"`
	Timestamp   string   `json:"timestamp"`
}

// ScaleTo5 converts a first-generation 1..10 score to the 1..5 scale.
func ScaleTo5(v int) int {
	return int(math.Ceil(float64(v) / 10.0 * 5.0))
}

// Normalize maps a raw record to the canonical shape. It is total over
// well-formed input: absent optional fields degrade to documented defaults
// rather than failing the read.
func Normalize(raw Raw) model.Rating {
	if raw.Latitude != nil && raw.Longitude != nil {
		return normalizeCurrent(raw)
	}
	return normalizeLegacy(raw)
}

func normalizeCurrent(raw Raw) model.Rating {
	lat, lng := *raw.Latitude, *raw.Longitude

	r := model.Rating{
		ID:              raw.ID,
		HouseID:         raw.HouseID,
		Latitude:        lat,
		Longitude:       lng,
		Notes:           raw.Notes,
		Address:         raw.Address,
		UserFingerprint: raw.UserFingerprint,
		CreatedDate:     parseDate(raw.CreatedDate, raw.Timestamp),
		Theme:           normalizeTheme(raw.Theme),
	}
	if r.HouseID == model.EmptyHouseID {
		r.HouseID = model.DeriveHouseID(lat, lng)
	}

	r.Rating1 = pick(raw.Rating1, raw.CandyRating)
	r.Rating2 = pick(raw.Rating2, raw.DecorationsRating)

	return r
}

func normalizeLegacy(raw Raw) model.Rating {
	var lat, lng float64
	if raw.Lat != nil {
		lat = *raw.Lat
	} else if raw.Latitude != nil {
		lat = *raw.Latitude
	}
	if raw.Lng != nil {
		lng = *raw.Lng
	} else if raw.Longitude != nil {
		lng = *raw.Longitude
	}

	r := model.Rating{
		ID:              raw.ID,
		HouseID:         raw.HouseID,
		Latitude:        lat,
		Longitude:       lng,
		Notes:           raw.Notes,
		Address:         raw.Address,
		UserFingerprint: raw.UserFingerprint,
		CreatedDate:     parseDate(raw.Timestamp, raw.CreatedDate),
		Theme:           normalizeTheme(raw.Theme),
	}
	if r.HouseID == model.EmptyHouseID {
		r.HouseID = model.DeriveHouseID(lat, lng)
	}
	if r.Address == "" {
		r.Address = model.CoordAddress(lat, lng, 4)
	}
	if raw.Candy != nil {
		r.Rating1 = ScaleTo5(*raw.Candy)
	}
	if raw.Decorations != nil {
		r.Rating2 = ScaleTo5(*raw.Decorations)
	}

	return r
}

func pick(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func normalizeTheme(v string) model.Theme {
	t := model.Theme(v)
	if !t.Valid() {
		return model.DefaultTheme
	}
	return t
}

func parseDate(candidates ...string) time.Time {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, c); err == nil {
			return ts
		}
	}
	return time.Now().UTC()
}
