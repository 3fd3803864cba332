// Package cache provides key/value caching for routing results and rendered
// artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache] stores entries as JSON files, for CLI use
//   - [RedisCache] stores entries in Redis, for the HTTP service
//   - [NullCache] stores nothing, for tests or when caching is disabled
//
// Keys are derived by a [Keyer] from a hash of the input design and every
// option that changes the result, so a cached entry is only reused for an
// identical routing run.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached entries.
const (
	TTLResult   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Keys
// =============================================================================

// ResultKeyOpts lists the options that change a routing result.
type ResultKeyOpts struct {
	Net        string   `json:"net,omitempty"` // empty for a full sweep
	Solver     string   `json:"solver"`
	RowColPad  int      `json:"row_col_pad"`
	LayerPad   int      `json:"layer_pad"`
	Factors    []int64  `json:"factors,omitempty"`
	Directions []string `json:"directions,omitempty"`
}

// ArtifactKeyOpts lists the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Net    string `json:"net,omitempty"`
	Labels bool   `json:"labels,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey returns the key of a routing result for a design.
	ResultKey(designHash string, opts ResultKeyOpts) string

	// ArtifactKey returns the key of a rendered artifact for a result.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the design hash together with all options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements [Keyer].
func (DefaultKeyer) ResultKey(designHash string, opts ResultKeyOpts) string {
	return hashKey("result", designHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}
