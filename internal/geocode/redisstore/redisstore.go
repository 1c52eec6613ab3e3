// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package redisstore implements a geocode.Store backed by Redis, so that multiple bot
// instances share one geocoding cache.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/wneessen/tenki/internal/geocode"
)

// KeyPrefix is prepended to every cache key written to Redis.
const KeyPrefix = "tenki:geocode:"

type Store struct {
	client *redis.Client
}

// New returns a Store connected to the Redis server at addr.
func New(addr string, db int) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, DB: db}))
}

func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) (geocode.Coordinate, bool, error) {
	var coords geocode.Coordinate
	data, err := s.client.Get(ctx, KeyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return coords, false, nil
	case err != nil:
		return coords, false, fmt.Errorf("failed to read cache entry from redis: %w", err)
	}
	if err = json.Unmarshal(data, &coords); err != nil {
		return coords, false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return coords, true, nil
}

func (s *Store) Set(ctx context.Context, key string, coords geocode.Coordinate, ttl time.Duration) error {
	data, err := json.Marshal(coords)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err = s.client.Set(ctx, KeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry to redis: %w", err)
	}
	return nil
}

// Ping checks that the Redis server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
