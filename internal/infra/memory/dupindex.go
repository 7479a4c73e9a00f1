package memory

import (
	"context"
	"sync"

	"github.com/porchrate/core/internal/model"
)

// DupIndex mirrors the Redis duplicate index for tests and the in-memory
// storage mode.
type DupIndex struct {
	mu   sync.RWMutex
	sets map[string]map[model.HouseID]struct{}
}

func NewDupIndex() *DupIndex {
	return &DupIndex{
		sets: make(map[string]map[model.HouseID]struct{}),
	}
}

func (d *DupIndex) MarkRated(_ context.Context, fingerprint string, theme model.Theme, houseID model.HouseID) error {
	if houseID == model.EmptyHouseID {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := d.setKey(fingerprint, theme)
	if d.sets[key] == nil {
		d.sets[key] = make(map[model.HouseID]struct{})
	}
	d.sets[key][houseID] = struct{}{}
	return nil
}

func (d *DupIndex) Contains(_ context.Context, fingerprint string, theme model.Theme, houseID model.HouseID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.sets[d.setKey(fingerprint, theme)][houseID]
	return ok, nil
}

func (d *DupIndex) Hint(_ context.Context, fingerprint string, theme model.Theme) (map[model.HouseID]struct{}, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	src := d.sets[d.setKey(fingerprint, theme)]
	ids := make(map[model.HouseID]struct{}, len(src))
	for id := range src {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (d *DupIndex) setKey(fingerprint string, theme model.Theme) string {
	return string(theme) + ":" + fingerprint
}
