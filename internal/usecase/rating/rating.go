package usecase_rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/porchrate/core/internal/metrics"
	"github.com/porchrate/core/internal/model"
)

var (
	ErrAlreadyRated = errors.New("user already rated this house for this theme")
	ErrSave         = errors.New("failed to save rating")
	ErrDelete       = errors.New("failed to delete rating")
	ErrResolveHouse = errors.New("failed to resolve house")
)

// ValidationError reports a field-specific problem with a submission. It is
// surfaced to the caller and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Ledger is the theme-partitioned append-only rating store.
//
// GetAll and HasUserRated fail open: a broken backing store reads as an
// empty ledger so the rating flow stays available during outages.
type Ledger interface {
	GetAll(ctx context.Context, theme model.Theme) []model.Rating
	Save(ctx context.Context, draft model.RatingDraft) (model.Rating, error)
	HasUserRated(ctx context.Context, fingerprint string, houseID model.HouseID, theme model.Theme) bool
	Delete(ctx context.Context, ratingID string) (bool, error)
	RatedHouses(ctx context.Context, fingerprint string, theme model.Theme) map[model.HouseID]struct{}
}

// HouseResolver attaches a submission to a stable house identity.
type HouseResolver interface {
	ResolveByAddress(ctx context.Context, lat, lng float64, address string) (model.House, error)
}

// Notifier fans a committed ledger change out to live map clients.
// Best-effort: it runs after the write is durable.
type Notifier interface {
	RatingCreated(rating model.Rating)
	RatingDeleted(ratingID string)
}

type Usecase struct {
	ledger   Ledger
	resolver HouseResolver
	notifier Notifier
}

type UsecaseOption func(*Usecase)

// WithNotifier wires the live map hub. Without it, submissions simply skip
// the broadcast.
func WithNotifier(n Notifier) UsecaseOption {
	return func(u *Usecase) {
		u.notifier = n
	}
}

func New(ledger Ledger, resolver HouseResolver, opts ...UsecaseOption) *Usecase {
	u := &Usecase{
		ledger:   ledger,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// SubmitParams is a raw submission from the boundary, before validation.
type SubmitParams struct {
	Latitude        float64
	Longitude       float64
	Rating1         int
	Rating2         int
	Notes           string
	Address         string
	UserFingerprint string
	Theme           model.Theme
}

// Submit resolves the house for a submission, enforces the one-rating-per
// user-per-house-per-theme invariant and appends to the ledger.
func (u *Usecase) Submit(ctx context.Context, p SubmitParams) (model.Rating, error) {
	if err := validate(p); err != nil {
		metrics.ValidationFailuresTotal.Inc()
		return model.Rating{}, err
	}

	theme := p.Theme
	if theme == "" {
		theme = model.DefaultTheme
	}

	house, err := u.resolver.ResolveByAddress(ctx, p.Latitude, p.Longitude, p.Address)
	if err != nil {
		return model.Rating{}, fmt.Errorf("%w : %w", ErrResolveHouse, err)
	}

	if u.ledger.HasUserRated(ctx, p.UserFingerprint, house.ID, theme) {
		metrics.DuplicateSubmissionsTotal.WithLabelValues(string(theme)).Inc()
		return model.Rating{}, ErrAlreadyRated
	}

	address := house.Address
	if address == "" {
		address = p.Address
	}

	rating, err := u.ledger.Save(ctx, model.RatingDraft{
		HouseID:         house.ID,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		Rating1:         p.Rating1,
		Rating2:         p.Rating2,
		Notes:           p.Notes,
		Address:         address,
		UserFingerprint: p.UserFingerprint,
		Theme:           theme,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyRated) {
			metrics.DuplicateSubmissionsTotal.WithLabelValues(string(theme)).Inc()
			return model.Rating{}, err
		}
		return model.Rating{}, fmt.Errorf("%w : %w", ErrSave, err)
	}

	if u.notifier != nil {
		u.notifier.RatingCreated(rating)
	}
	return rating, nil
}

// List returns the theme's ledger, normalized, oldest first.
func (u *Usecase) List(ctx context.Context, theme model.Theme) []model.Rating {
	if !theme.Valid() {
		theme = model.DefaultTheme
	}
	return u.ledger.GetAll(ctx, theme)
}

// ListForUser returns the user's own ratings under the theme.
func (u *Usecase) ListForUser(ctx context.Context, fingerprint string, theme model.Theme) []model.Rating {
	var out []model.Rating
	for _, r := range u.List(ctx, theme) {
		if r.UserFingerprint == fingerprint {
			out = append(out, r)
		}
	}
	return out
}

// RatedHouses is the UI hint of house ids the user already rated. May be
// stale; submission always re-checks against the ledger.
func (u *Usecase) RatedHouses(ctx context.Context, fingerprint string, theme model.Theme) map[model.HouseID]struct{} {
	if !theme.Valid() {
		theme = model.DefaultTheme
	}
	return u.ledger.RatedHouses(ctx, fingerprint, theme)
}

// Delete removes a rating by id across all theme partitions. A miss is a
// false, not an error.
func (u *Usecase) Delete(ctx context.Context, ratingID string) (bool, error) {
	removed, err := u.ledger.Delete(ctx, ratingID)
	if err != nil {
		return false, fmt.Errorf("%w : %w", ErrDelete, err)
	}
	if removed && u.notifier != nil {
		u.notifier.RatingDeleted(ratingID)
	}
	return removed, nil
}

func validate(p SubmitParams) error {
	switch {
	case p.Latitude == 0 && p.Longitude == 0:
		return &ValidationError{Field: "location", Message: "latitude and longitude are required"}
	case p.Latitude < -90 || p.Latitude > 90:
		return &ValidationError{Field: "latitude", Message: "must be between -90 and 90"}
	case p.Longitude < -180 || p.Longitude > 180:
		return &ValidationError{Field: "longitude", Message: "must be between -180 and 180"}
	case p.Address == "":
		return &ValidationError{Field: "address", Message: "house address is required"}
	case p.UserFingerprint == "":
		return &ValidationError{Field: "userFingerprint", Message: "fingerprint is required"}
	case p.Rating1 < model.RatingMin || p.Rating1 > model.RatingMax:
		return &ValidationError{Field: "rating1", Message: "must be between 1 and 5"}
	case p.Rating2 < model.RatingMin || p.Rating2 > model.RatingMax:
		return &ValidationError{Field: "rating2", Message: "must be between 1 and 5"}
	case p.Theme != "" && !p.Theme.Valid():
		return &ValidationError{Field: "theme", Message: "unknown theme"}
	}
	return nil
}
