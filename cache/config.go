package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds query cache tuning shared by all backends.
type Config struct {
	// Capacity bounds the number of cached result sets.
	Capacity int

	// NumShards controls concurrent access sharding in the in-memory
	// backend. Ignored by backends without sharding.
	NumShards int

	// TTL is the inactivity horizon after which unused entries are
	// garbage-collected.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the cache
	// hits capacity (1-100).
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are collected. Zero
	// uses the backend default.
	EvictionInterval time.Duration
}

// DefaultConfig returns the defaults used across the client: 5 minute TTL,
// capacity for ten thousand result sets, 256 shards.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}
