package chash

import (
	"fmt"
	"math"

	"github.com/go-logr/logr"
)

// RemovePolicy selects what Remove does with a matched entry
type RemovePolicy int

const (
	// Tombstone clears the value and keeps the node in its chain
	Tombstone RemovePolicy = iota
	// Unlink removes the node from its chain
	Unlink
)

func (p RemovePolicy) String() string {
	switch p {
	case Tombstone:
		return "tombstone"
	case Unlink:
		return "unlink"
	}
	return fmt.Sprintf("RemovePolicy(%d)", int(p))
}

// Option configures a Table
type Option func(*options)

type options struct {
	hash       HashFunc
	loadFactor float64
	policy     RemovePolicy
	logger     logr.Logger
}

func defaultOptions() options {
	return options{
		hash:   DJB2,
		policy: Tombstone,
		logger: logr.Discard(),
	}
}

func (o *options) validate() error {
	if o.hash == nil {
		return fmt.Errorf("%w: nil hash function", ErrInvalidOption)
	}
	if math.IsNaN(o.loadFactor) || o.loadFactor < 0 {
		return fmt.Errorf("%w: load factor %v", ErrInvalidOption, o.loadFactor)
	}
	if o.policy != Tombstone && o.policy != Unlink {
		return fmt.Errorf("%w: remove policy %v", ErrInvalidOption, o.policy)
	}
	return nil
}

// WithHash replaces the default DJB2 hash
func WithHash(fn HashFunc) Option {
	return func(o *options) {
		o.hash = fn
	}
}

// WithLoadFactor enables automatic doubling before an insert that would raise
// the ratio of live entries to buckets above f. Zero disables it.
func WithLoadFactor(f float64) Option {
	return func(o *options) {
		o.loadFactor = f
	}
}

// WithRemovePolicy selects tombstoning or unlinking on Remove
func WithRemovePolicy(p RemovePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger sets the logger used for resize progress and not-found warnings
func WithLogger(l logr.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
