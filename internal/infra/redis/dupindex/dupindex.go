package infra_redis_dupindex

import (
	"context"

	"github.com/go-redis/redis"

	"github.com/porchrate/core/internal/model"
)

// Driver keeps one Redis set per (theme, fingerprint) of house ids that user
// already rated. It is a pure acceleration structure: the ledger scan is the
// source of truth and index failures never block a submission.
type Driver struct {
	client *redis.Client
	key    string
}

func New(
	client *redis.Client,
	key string,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
	}
}

func (d *Driver) MarkRated(_ context.Context, fingerprint string, theme model.Theme, houseID model.HouseID) error {
	if houseID == model.EmptyHouseID {
		return nil
	}
	return d.client.SAdd(d.setKey(fingerprint, theme), string(houseID)).Err()
}

func (d *Driver) Contains(_ context.Context, fingerprint string, theme model.Theme, houseID model.HouseID) (bool, error) {
	return d.client.SIsMember(d.setKey(fingerprint, theme), string(houseID)).Result()
}

func (d *Driver) Hint(_ context.Context, fingerprint string, theme model.Theme) (map[model.HouseID]struct{}, error) {
	members, err := d.client.SMembers(d.setKey(fingerprint, theme)).Result()
	if err != nil {
		return nil, err
	}

	ids := make(map[model.HouseID]struct{}, len(members))
	for _, m := range members {
		ids[model.HouseID(m)] = struct{}{}
	}
	return ids, nil
}

func (d *Driver) setKey(fingerprint string, theme model.Theme) string {
	return d.key + ":" + string(theme) + ":" + fingerprint
}
