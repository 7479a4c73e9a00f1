package storage_rating

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/porchrate/core/internal/metrics"
	"github.com/porchrate/core/internal/model"
	"github.com/porchrate/core/internal/normalize"
	"github.com/porchrate/core/internal/storage/collection"
	usecase_rating "github.com/porchrate/core/internal/usecase/rating"
)

// DuplicateIndex is the per-user/per-theme set of already-rated house ids.
// Best-effort only: entries may be missing after index outages and stale
// after deletes, so every positive answer is re-verified against the ledger.
type DuplicateIndex interface {
	MarkRated(ctx context.Context, fingerprint string, theme model.Theme, houseID model.HouseID) error
	Contains(ctx context.Context, fingerprint string, theme model.Theme, houseID model.HouseID) (bool, error)
	Hint(ctx context.Context, fingerprint string, theme model.Theme) (map[model.HouseID]struct{}, error)
}

// Storage is the theme-partitioned rating ledger. Appends run inside one
// exclusive Store.Update so the dedup check and the write cannot interleave
// with a concurrent submission for the same (user, house, theme).
type Storage struct {
	store  collection.Store
	index  DuplicateIndex
	logger *slog.Logger
}

type StorageOption func(*Storage)

func WithLogger(logger *slog.Logger) StorageOption {
	return func(s *Storage) {
		s.logger = logger
	}
}

func New(store collection.Store, index DuplicateIndex, opts ...StorageOption) *Storage {
	s := &Storage{
		store:  store,
		index:  index,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll returns the theme's ledger in storage order, oldest first, with
// every record normalized on read. Records from the pre-theme global ledger
// that normalize into this theme come first. Fails open to empty on storage
// errors.
func (s *Storage) GetAll(ctx context.Context, theme model.Theme) []model.Rating {
	out := s.legacyForTheme(ctx, theme)

	key := collection.RatingsCollection(string(theme))
	data, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("ledger read failed, treating partition as empty",
			slog.String("collection", key),
			slog.String("error", err.Error()))
		metrics.StorageFailOpenTotal.WithLabelValues(key).Inc()
		return out
	}
	return append(out, s.decode(data)...)
}

// HasUserRated scans the full theme ledger. The scan, not the duplicate
// index, is authoritative. Fails open to false when the store is unreadable:
// availability of the rating flow wins over strict dedup during an outage.
func (s *Storage) HasUserRated(ctx context.Context, fingerprint string, houseID model.HouseID, theme model.Theme) bool {
	for _, r := range s.GetAll(ctx, theme) {
		if r.UserFingerprint == fingerprint && r.HouseID == houseID {
			return true
		}
	}
	return false
}

// Save assigns id and timestamp, re-checks the duplicate invariant inside
// the exclusive update and appends to the theme partition. The duplicate
// index is updated after the write; its failures are logged and dropped.
func (s *Storage) Save(ctx context.Context, draft model.RatingDraft) (model.Rating, error) {
	theme := draft.Theme
	if !theme.Valid() {
		theme = model.DefaultTheme
	}
	houseID := draft.HouseID
	if houseID == model.EmptyHouseID {
		houseID = model.DeriveHouseID(draft.Latitude, draft.Longitude)
	}

	// Index fast path: skip the write lock when a positive hint is
	// confirmed by the ledger.
	if hit, err := s.index.Contains(ctx, draft.UserFingerprint, theme, houseID); err != nil {
		metrics.DupIndexErrorsTotal.Inc()
	} else if hit && s.HasUserRated(ctx, draft.UserFingerprint, houseID, theme) {
		metrics.DupIndexHitsTotal.Inc()
		return model.Rating{}, usecase_rating.ErrAlreadyRated
	}

	// The global pre-theme ledger is never written, so reading it outside
	// the update cannot race a concurrent append.
	legacy := s.legacyForTheme(ctx, theme)

	var stored model.Rating
	err := s.store.Update(ctx, collection.RatingsCollection(string(theme)), func(cur []byte) ([]byte, error) {
		raws := s.decodeRaw(cur)

		for _, r := range append(legacy, s.decode(cur)...) {
			if r.UserFingerprint == draft.UserFingerprint && r.HouseID == houseID {
				return nil, usecase_rating.ErrAlreadyRated
			}
		}

		address := draft.Address
		if address == "" {
			address = model.CoordAddress(draft.Latitude, draft.Longitude, 4)
		}

		stored = model.Rating{
			ID:              uuid.NewString(),
			HouseID:         houseID,
			Latitude:        draft.Latitude,
			Longitude:       draft.Longitude,
			Rating1:         draft.Rating1,
			Rating2:         draft.Rating2,
			Notes:           draft.Notes,
			Address:         address,
			UserFingerprint: draft.UserFingerprint,
			CreatedDate:     time.Now().UTC(),
			Theme:           theme,
		}

		encoded, err := json.Marshal(stored)
		if err != nil {
			return nil, err
		}
		return json.Marshal(append(raws, json.RawMessage(encoded)))
	})
	if err != nil {
		return model.Rating{}, err
	}

	if err := s.index.MarkRated(ctx, stored.UserFingerprint, theme, stored.HouseID); err != nil {
		metrics.DupIndexErrorsTotal.Inc()
		s.logger.Warn("duplicate index update failed",
			slog.String("house_id", stored.HouseID),
			slog.String("error", err.Error()))
	}

	metrics.RatingsSubmittedTotal.WithLabelValues(string(theme)).Inc()
	return stored, nil
}

// Delete searches every theme partition plus the legacy global ledger and
// removes the first record matching the id. The duplicate index is left
// alone: stale positive hints are harmless because reads re-verify.
func (s *Storage) Delete(ctx context.Context, ratingID string) (bool, error) {
	keys := make([]string, 0, len(model.Themes())+1)
	for _, t := range model.Themes() {
		keys = append(keys, collection.RatingsCollection(string(t)))
	}
	keys = append(keys, collection.LegacyRatingsCollection)

	for _, key := range keys {
		err := s.store.Update(ctx, key, func(cur []byte) ([]byte, error) {
			if len(cur) == 0 {
				return nil, collection.ErrNoChange
			}

			var raws []json.RawMessage
			if err := json.Unmarshal(cur, &raws); err != nil {
				s.logger.Warn("ledger partition undecodable during delete",
					slog.String("collection", key),
					slog.String("error", err.Error()))
				return nil, collection.ErrNoChange
			}

			removed := false
			kept := make([]json.RawMessage, 0, len(raws))
			for _, raw := range raws {
				var probe struct {
					ID string `json:"id"`
				}
				if !removed && json.Unmarshal(raw, &probe) == nil && probe.ID == ratingID {
					removed = true
					continue
				}
				kept = append(kept, raw)
			}
			if !removed {
				return nil, collection.ErrNoChange
			}
			return json.Marshal(kept)
		})
		if errors.Is(err, collection.ErrNoChange) {
			continue
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// RatedHouses returns the set of house ids the user already rated under the
// theme, for UI hinting. The duplicate index answers when it can; an empty
// or failing index falls back to the ledger scan. Never authoritative.
func (s *Storage) RatedHouses(ctx context.Context, fingerprint string, theme model.Theme) map[model.HouseID]struct{} {
	hint, err := s.index.Hint(ctx, fingerprint, theme)
	if err != nil {
		metrics.DupIndexErrorsTotal.Inc()
	} else if len(hint) > 0 {
		return hint
	}

	ids := make(map[model.HouseID]struct{})
	for _, r := range s.GetAll(ctx, theme) {
		if r.UserFingerprint == fingerprint {
			ids[r.HouseID] = struct{}{}
		}
	}
	return ids
}

func (s *Storage) legacyForTheme(ctx context.Context, theme model.Theme) []model.Rating {
	data, err := s.store.Get(ctx, collection.LegacyRatingsCollection)
	if err != nil {
		s.logger.Warn("legacy ledger read failed, skipping",
			slog.String("error", err.Error()))
		metrics.StorageFailOpenTotal.WithLabelValues(collection.LegacyRatingsCollection).Inc()
		return nil
	}

	var out []model.Rating
	for _, r := range s.decode(data) {
		if r.Theme == theme {
			out = append(out, r)
		}
	}
	return out
}

func (s *Storage) decode(data []byte) []model.Rating {
	if len(data) == 0 {
		return nil
	}

	var raws []normalize.Raw
	if err := json.Unmarshal(data, &raws); err != nil {
		s.logger.Warn("ledger collection undecodable, treating as empty",
			slog.String("error", err.Error()))
		return nil
	}

	out := make([]model.Rating, 0, len(raws))
	for _, raw := range raws {
		out = append(out, normalize.Normalize(raw))
	}
	return out
}

func (s *Storage) decodeRaw(data []byte) []json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil
	}
	return raws
}
