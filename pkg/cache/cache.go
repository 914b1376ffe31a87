// Package cache stores computed layouts so identical requests are served
// without re-running the engine.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory; the CLI default.
//   - [RedisCache]: a shared Redis instance; used by "growtree serve" when
//     several servers share results.
//   - [NullCache]: stores nothing; caching disabled.
//
// # Keys
//
// Keys are built by a [Keyer] from a hash of the input document and every
// option that changes the result: seed, geometry and the number of
// barycenter passes. A layout is a pure function of those, so entries never
// go stale; TTLs only bound disk and memory use.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/growtree/pkg/config"
)

// TTLLayout is how long a computed layout is kept.
const TTLLayout = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// LayoutKeyOpts lists everything besides the input that determines a layout.
type LayoutKeyOpts struct {
	Seed   uint64        `json:"seed"`
	Config config.Layout `json:"config"`
	Passes int           `json:"passes"`
	// Behaviors fingerprints a non-builtin behavior catalog; empty for the
	// built-in one.
	Behaviors string `json:"behaviors,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of the layout of the input with the given
	// hash under opts.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer builds "layout:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}
