package chash

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
)

var (
	// ErrInvalidCapacity is returned by New when the capacity is less than one
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	// ErrInvalidOption is returned by New when an option carries an unusable value
	ErrInvalidOption = errors.New("invalid option")
	// ErrKeyNotFound is returned by Remove when no live entry holds the key
	ErrKeyNotFound = errors.New("key not found")
)

// entry is one node of a bucket chain
type entry[V any] struct {
	key   string
	value V
	live  bool
	next  *entry[V]
}

// Table is a string-keyed hash table resolving collisions by separate chaining.
// A Table is not safe for concurrent use.
type Table[V any] struct {
	buckets  []*entry[V]
	capacity int
	live     int
	dead     int
	resizes  int

	hash       HashFunc
	loadFactor float64
	policy     RemovePolicy
	log        logr.Logger
}

// New creates an empty table with the given number of buckets
func New[V any](capacity int, opts ...Option) (*Table[V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	return &Table[V]{
		buckets:    make([]*entry[V], capacity),
		capacity:   capacity,
		hash:       o.hash,
		loadFactor: o.loadFactor,
		policy:     o.policy,
		log:        o.logger,
	}, nil
}

// Capacity returns the current number of buckets
func (t *Table[V]) Capacity() int {
	return t.capacity
}

// Len returns the number of live keys
func (t *Table[V]) Len() int {
	return t.live
}

// BucketIndex returns the bucket the key addresses under the current capacity
func (t *Table[V]) BucketIndex(key string) int {
	return bucketFor(t.hash(key), t.capacity)
}

func bucketFor(h uint32, capacity int) int {
	return int(uint64(h) % uint64(capacity))
}

// Insert stores value under key, overwriting the value of an existing key
func (t *Table[V]) Insert(key string, value V) {
	if t.needGrow(key) {
		t.log.V(1).Info("load factor exceeded, resizing before insert",
			"live", t.live, "capacity", t.capacity, "loadFactor", t.loadFactor)
		t.Resize()
	}

	idx := t.BucketIndex(key)
	head := t.buckets[idx]
	if head == nil {
		t.buckets[idx] = &entry[V]{key: key, value: value, live: true}
		t.live++
		return
	}

	for n := head; ; n = n.next {
		if n.key == key {
			if !n.live {
				n.live = true
				t.dead--
				t.live++
			}
			n.value = value
			return
		}
		if n.next == nil {
			n.next = &entry[V]{key: key, value: value, live: true}
			t.live++
			return
		}
	}
}

// needGrow reports whether inserting key would push the live load factor
// above the configured threshold
func (t *Table[V]) needGrow(key string) bool {
	if t.loadFactor <= 0 {
		return false
	}
	if n := t.find(key); n != nil && n.live {
		return false
	}
	return float64(t.live+1)/float64(t.capacity) > t.loadFactor
}

// find returns the node holding key, live or not
func (t *Table[V]) find(key string) *entry[V] {
	for n := t.buckets[t.BucketIndex(key)]; n != nil; n = n.next {
		if n.key == key {
			return n
		}
	}
	return nil
}

// Retrieve returns the value stored under key. The boolean is false when the
// key was never inserted or has been removed.
func (t *Table[V]) Retrieve(key string) (V, bool) {
	if n := t.find(key); n != nil && n.live {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Remove deletes key according to the table's removal policy.
// It returns an error wrapping ErrKeyNotFound if no live entry holds the key.
func (t *Table[V]) Remove(key string) error {
	idx := t.BucketIndex(key)

	var prev *entry[V]
	for n := t.buckets[idx]; n != nil; prev, n = n, n.next {
		if n.key != key {
			continue
		}
		if !n.live {
			break
		}

		var zero V
		n.value = zero
		t.live--

		switch t.policy {
		case Unlink:
			if prev == nil {
				t.buckets[idx] = n.next
			} else {
				prev.next = n.next
			}
			n.next = nil
		default:
			n.live = false
			t.dead++
		}
		return nil
	}

	t.log.Info("key not found", "severity", "warning", "key", key, "bucket", idx)
	return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
}

// Resize doubles the capacity and rehashes every entry into the new buckets.
// Tombstones are carried over.
func (t *Table[V]) Resize() {
	newCapacity := t.capacity * 2
	t.log.V(1).Info("starting resize", "capacity", t.capacity, "newCapacity", newCapacity, "live", t.live)

	buckets := make([]*entry[V], newCapacity)
	tails := make([]*entry[V], newCapacity)

	for _, head := range t.buckets {
		for n := head; n != nil; {
			next := n.next
			n.next = nil

			idx := bucketFor(t.hash(n.key), newCapacity)
			if tails[idx] == nil {
				buckets[idx] = n
			} else {
				tails[idx].next = n
			}
			tails[idx] = n

			n = next
		}
	}

	t.buckets = buckets
	t.capacity = newCapacity
	t.resizes++

	t.log.V(1).Info("resize complete", "capacity", t.capacity, "live", t.live, "tombstones", t.dead)
}

// Stats is a point-in-time summary of a table's shape
type Stats struct {
	Capacity     int
	Entries      int
	Tombstones   int
	UsedBuckets  int
	LongestChain int
	Resizes      int
}

// LoadFactor is the ratio of live entries to buckets
func (s Stats) LoadFactor() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Entries) / float64(s.Capacity)
}

// Stats walks every bucket and reports the table's shape
func (t *Table[V]) Stats() Stats {
	s := Stats{
		Capacity:   t.capacity,
		Entries:    t.live,
		Tombstones: t.dead,
		Resizes:    t.resizes,
	}
	for _, head := range t.buckets {
		if head == nil {
			continue
		}
		s.UsedBuckets++
		n := 0
		for e := head; e != nil; e = e.next {
			n++
		}
		if n > s.LongestChain {
			s.LongestChain = n
		}
	}
	return s
}
