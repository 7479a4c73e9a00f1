package storage_house

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/porchrate/core/internal/geo"
	"github.com/porchrate/core/internal/metrics"
	"github.com/porchrate/core/internal/model"
	"github.com/porchrate/core/internal/storage/collection"
)

// Storage is the house registry over a whole-collection store. Find-or-create
// runs entirely inside one Store.Update, so two concurrent submissions for
// the same spot cannot both mint a house.
type Storage struct {
	store collection.Store

	// collisionRadius only flags (never merges) a new house created within
	// matching range of an existing one via a different address string.
	collisionRadius float64

	logger *slog.Logger
}

type StorageOption func(*Storage)

func WithLogger(logger *slog.Logger) StorageOption {
	return func(s *Storage) {
		s.logger = logger
	}
}

func WithCollisionRadius(meters float64) StorageOption {
	return func(s *Storage) {
		s.collisionRadius = meters
	}
}

func New(store collection.Store, opts ...StorageOption) *Storage {
	s := &Storage{
		store:           store,
		collisionRadius: 50,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll fails open: an unreadable backing store behaves as an empty
// registry so downstream creation logic still proceeds.
func (s *Storage) GetAll(ctx context.Context) []model.House {
	data, err := s.store.Get(ctx, collection.HousesCollection)
	if err != nil {
		s.logger.Warn("houses read failed, treating registry as empty", slog.String("error", err.Error()))
		metrics.StorageFailOpenTotal.WithLabelValues(collection.HousesCollection).Inc()
		return nil
	}
	return s.decode(data)
}

// ByID scans the registry for a house.
func (s *Storage) ByID(ctx context.Context, id model.HouseID) (model.House, bool) {
	for _, h := range s.GetAll(ctx) {
		if h.ID == id {
			return h, true
		}
	}
	return model.House{}, false
}

// FindOrCreateByAddress resolves a house by case-insensitive exact address
// match. On a match the stored house is returned unchanged; its coordinates
// are authoritative over the incoming ones.
func (s *Storage) FindOrCreateByAddress(ctx context.Context, lat, lng float64, address string) (model.House, bool, error) {
	var (
		result  model.House
		created bool
	)

	err := s.store.Update(ctx, collection.HousesCollection, func(cur []byte) ([]byte, error) {
		houses := s.decode(cur)
		for _, h := range houses {
			if h.Address != "" && strings.EqualFold(h.Address, address) {
				result = h
				return nil, collection.ErrNoChange
			}
		}

		result = s.newHouse(lat, lng, address)
		created = true
		s.flagClusterCollision(houses, result)
		return json.Marshal(append(houses, result))
	})
	if err != nil && !errors.Is(err, collection.ErrNoChange) {
		return model.House{}, false, err
	}
	return result, created, nil
}

// FindOrCreateByProximity returns the closest existing house when it lies
// within thresholdMeters, creating a new one with a coordinate-derived
// address otherwise. Exact distance ties resolve to the first house in
// storage order.
func (s *Storage) FindOrCreateByProximity(ctx context.Context, lat, lng, thresholdMeters float64) (model.House, bool, error) {
	var (
		result  model.House
		created bool
	)

	err := s.store.Update(ctx, collection.HousesCollection, func(cur []byte) ([]byte, error) {
		houses := s.decode(cur)

		closest := -1
		closestDist := math.Inf(1)
		for i, h := range houses {
			if d := geo.Distance(lat, lng, h.Latitude, h.Longitude); d < closestDist {
				closestDist = d
				closest = i
			}
		}
		if closest >= 0 && closestDist <= thresholdMeters {
			result = houses[closest]
			return nil, collection.ErrNoChange
		}

		result = s.newHouse(lat, lng, model.CoordAddress(lat, lng, 6))
		created = true
		return json.Marshal(append(houses, result))
	})
	if err != nil && !errors.Is(err, collection.ErrNoChange) {
		return model.House{}, false, err
	}
	return result, created, nil
}

func (s *Storage) newHouse(lat, lng float64, address string) model.House {
	return model.House{
		ID:          model.NewHouseID(),
		Latitude:    lat,
		Longitude:   lng,
		Address:     address,
		CreatedDate: time.Now().UTC(),
	}
}

// flagClusterCollision logs when an address-created house lands inside the
// proximity-matching radius of an existing one. Address-first and
// coordinate-first entry points can legitimately mint distinct houses at
// nearly the same spot; we surface it instead of silently merging.
func (s *Storage) flagClusterCollision(existing []model.House, created model.House) {
	for _, h := range existing {
		d := geo.Distance(created.Latitude, created.Longitude, h.Latitude, h.Longitude)
		if d <= s.collisionRadius {
			s.logger.Warn("new house created within matching radius of an existing house",
				slog.String("new_id", created.ID),
				slog.String("existing_id", h.ID),
				slog.Float64("distance_m", d))
			return
		}
	}
}

func (s *Storage) decode(data []byte) []model.House {
	if len(data) == 0 {
		return nil
	}
	var houses []model.House
	if err := json.Unmarshal(data, &houses); err != nil {
		s.logger.Warn("houses collection undecodable, treating registry as empty", slog.String("error", err.Error()))
		return nil
	}
	return houses
}
