package usecase_house

import (
	"context"
	"errors"
	"fmt"

	"github.com/porchrate/core/internal/metrics"
	"github.com/porchrate/core/internal/model"
)

var ErrResolve = errors.New("failed to resolve house")

// Registry is the house collection with its two find-or-create strategies.
type Registry interface {
	GetAll(ctx context.Context) []model.House
	ByID(ctx context.Context, id model.HouseID) (model.House, bool)
	FindOrCreateByAddress(ctx context.Context, lat, lng float64, address string) (model.House, bool, error)
	FindOrCreateByProximity(ctx context.Context, lat, lng, thresholdMeters float64) (model.House, bool, error)
}

type Usecase struct {
	registry Registry

	// matchRadiusMeters is the proximity threshold for coordinate-only
	// resolution.
	matchRadiusMeters float64
}

func New(registry Registry, matchRadiusMeters float64) *Usecase {
	return &Usecase{
		registry:          registry,
		matchRadiusMeters: matchRadiusMeters,
	}
}

// Resolve finds the closest house within the configured radius, creating
// one when nothing matches.
func (u *Usecase) Resolve(ctx context.Context, lat, lng float64) (model.House, error) {
	house, created, err := u.registry.FindOrCreateByProximity(ctx, lat, lng, u.matchRadiusMeters)
	if err != nil {
		return model.House{}, fmt.Errorf("%w : %w", ErrResolve, err)
	}
	if created {
		metrics.HousesCreatedTotal.WithLabelValues("proximity").Inc()
	}
	return house, nil
}

// ResolveByAddress resolves by case-insensitive exact address match,
// creating the house when absent. Calling it twice with the same address is
// idempotent regardless of coordinate drift on the second call.
func (u *Usecase) ResolveByAddress(ctx context.Context, lat, lng float64, address string) (model.House, error) {
	house, created, err := u.registry.FindOrCreateByAddress(ctx, lat, lng, address)
	if err != nil {
		return model.House{}, fmt.Errorf("%w : %w", ErrResolve, err)
	}
	if created {
		metrics.HousesCreatedTotal.WithLabelValues("address").Inc()
	}
	return house, nil
}

func (u *Usecase) List(ctx context.Context) []model.House {
	return u.registry.GetAll(ctx)
}

func (u *Usecase) ByID(ctx context.Context, id model.HouseID) (model.House, bool) {
	return u.registry.ByID(ctx, id)
}
