// Package redis provides a StateStore backed by a single Redis key, letting
// the machine's current state survive process restarts or be shared with
// other services.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// ErrStateNotFound is returned by Get when the key does not exist and no seed
// value was configured.
var ErrStateNotFound = errors.New("state not found")

// Store implements espalier.StateStore[string] on top of one Redis key.
type Store struct {
	client *backend.Client
	key    string
	ttl    time.Duration

	seed    string
	hasSeed bool
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets an expiration applied on every state write.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithSeed sets the value Get returns while the key does not exist yet. This
// mirrors the in-memory store being seeded at construction; without it, Get
// on a missing key fails with ErrStateNotFound.
func WithSeed(initial string) Option {
	return func(s *Store) {
		s.seed = initial
		s.hasSeed = true
	}
}

// New creates a Redis store with its own client. The key names the cell
// holding the current state identifier.
func New(address, password string, db int, key string, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, key, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, key string, opts ...Option) *Store {
	store := &Store{
		client: client,
		key:    key,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Get returns the current state identifier.
func (s *Store) Get(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == backend.Nil {
			if s.hasSeed {
				return s.seed, nil
			}
			return "", fmt.Errorf("%w: key %q", ErrStateNotFound, s.key)
		}
		return "", fmt.Errorf("failed to get state from redis: %w", err)
	}
	return val, nil
}

// Set stores a new current state identifier.
func (s *Store) Set(ctx context.Context, state string) error {
	if err := s.client.Set(ctx, s.key, state, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save state to redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
