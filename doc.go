/*
Package chash provides an in-memory hash table with string keys that resolves
collisions by separate chaining.

Table keeps a slice of buckets. Each bucket is either empty or the head of a
singly linked chain of entries whose keys hash to that bucket under the current
capacity. Capacity is chosen at construction and only ever doubles.

Basic usage:

	import "github.com/theflywheel/chash"

	t, err := chash.New[string](2)
	if err != nil {
		log.Fatal(err)
	}

	t.Insert("line_1", "Tiny hash table")
	t.Insert("line_2", "Filled beyond capacity")
	t.Insert("line_3", "Linked list saves the day!")

	v, ok := t.Retrieve("line_3")

	t.Resize() // 2 -> 4 buckets, every entry rehashed

	if err := t.Remove("missing"); errors.Is(err, chash.ErrKeyNotFound) {
		// not fatal
	}

Features:

  - DJB2 hashing by default, deterministic across processes
  - Optional xxhash-based hashing via WithHash(XXHash)
  - Insert of an existing key overwrites its value in place
  - New keys are appended at the tail of their chain
  - Explicit Resize, or automatic doubling with WithLoadFactor
  - Tombstone (default) or Unlink removal policy
  - Resize progress and not-found warnings go to a logr.Logger (discarded by default)

Implementation Details:

The bucket index of a key is hash(key) mod capacity. Resize allocates twice as
many buckets and moves every node, tombstones included, to the tail of its new
chain before the new buckets replace the old ones.

Under the Tombstone policy Remove clears the value and leaves the node linked, so
chain lengths do not change; inserting the key again revives the same node. Under
the Unlink policy the node is removed from its chain.

A Table is not safe for concurrent use. Callers sharing one must serialize every
call, including Stats.
*/
package chash
