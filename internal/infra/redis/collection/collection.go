package infra_redis_collection

import (
	"context"
	"errors"

	"github.com/go-redis/redis"

	"github.com/porchrate/core/internal/storage/collection"
)

// Each collection lives under one key holding the whole JSON array. Updates
// run as WATCH/MULTI optimistic transactions with bounded retries.
const txRetries = 16

var errRetriesExhausted = errors.New("redis collection: tx retries exhausted")

type Store struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

func (s *Store) Get(_ context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(s.fullKey(name)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) Update(_ context.Context, name string, fn collection.UpdateFunc) error {
	key := s.fullKey(name)

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(key).Bytes()
		if err == redis.Nil {
			cur = nil
		} else if err != nil {
			return err
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}

		_, err = tx.Pipelined(func(pipe redis.Pipeliner) error {
			pipe.Set(key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < txRetries; i++ {
		err := s.client.Watch(txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return errRetriesExhausted
}

func (s *Store) fullKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}
