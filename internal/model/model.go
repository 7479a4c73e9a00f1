package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type HouseID = string

const EmptyHouseID HouseID = ""

// House is a logical location entity that ratings attach to. Houses are
// shared across themes and never deleted.
type House struct {
	ID          HouseID   `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Address     string    `json:"address,omitempty"`
	CreatedDate time.Time `json:"created_date"`
}

// Rating is a single user's evaluation of a house under one theme.
// Rating1 is candy quality (halloween) or lights (christmas), Rating2 is
// decorations. Both are on the 1..5 scale.
type Rating struct {
	ID              string    `json:"id"`
	HouseID         HouseID   `json:"house_id"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Rating1         int       `json:"rating1"`
	Rating2         int       `json:"rating2"`
	Notes           string    `json:"notes,omitempty"`
	Address         string    `json:"address,omitempty"`
	UserFingerprint string    `json:"userFingerprint"`
	CreatedDate     time.Time `json:"created_date"`
	Theme           Theme     `json:"theme"`
}

const (
	RatingMin = 1
	RatingMax = 5
)

// RatingDraft is a validated submission the ledger has not stored yet. The
// ledger assigns the id and timestamp and fills the house/address defaults.
type RatingDraft struct {
	HouseID         HouseID
	Latitude        float64
	Longitude       float64
	Rating1         int
	Rating2         int
	Notes           string
	Address         string
	UserFingerprint string
	Theme           Theme
}

func NewHouseID() HouseID {
	return "house-" + uuid.NewString()
}

// DeriveHouseID builds the deterministic identity legacy records fall back
// to when they carry no house reference: coordinates rounded to 5 decimals.
func DeriveHouseID(lat, lng float64) HouseID {
	return fmt.Sprintf("house-%.5f-%.5f", lat, lng)
}

// CoordAddress formats a coordinate pair as a display address.
func CoordAddress(lat, lng float64, decimals int) string {
	return fmt.Sprintf("%.*f, %.*f", decimals, lat, decimals, lng)
}
