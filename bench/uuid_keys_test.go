// Package chash_test provides scale testing for the chaining hash table.
//
// This file contains benchmarks with UUID keys and random string values,
// representing common real-world usage patterns.
// It measures:
//   - Insertion performance with UUID keys
//   - Retrieval performance per hash function
//   - Chain shape per hash function
package chash_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/theflywheel/chash"
)

// generateAlphanumeric creates a random alphanumeric string of given length
func generateAlphanumeric(r *rand.Rand, length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		result[i] = charset[r.Intn(len(charset))]
	}
	return string(result)
}

// BenchmarkUUIDKeys inserts one hundred thousand UUID keys with 100-character
// values into a growing table, once per hash function.
func BenchmarkUUIDKeys(b *testing.B) {
	// Force benchmark to run only once regardless of -benchtime flag
	b.N = 1

	numKeys := 100_000
	r := rand.New(rand.NewSource(1))

	keys := make([]string, numKeys)
	values := make([]string, numKeys)
	for i := range keys {
		keys[i] = uuid.NewString()
		values[i] = generateAlphanumeric(r, 100)
	}

	for _, h := range hashFuncs {
		b.Run(h.name, func(b *testing.B) {
			b.N = 1
			b.ResetTimer()
			b.StopTimer()

			metrics := BenchmarkMetrics{
				Name:       "UUIDKeys" + h.name,
				Category:   "scale",
				Operations: numKeys,
				Metrics:    make(map[string]float64),
			}

			ht, err := chash.New[string](1_024, chash.WithHash(h.fn), chash.WithLoadFactor(0.7))
			if err != nil {
				b.Fatalf("Failed to create table: %v", err)
			}

			b.StartTimer()
			writeStart := time.Now()
			for i := range keys {
				ht.Insert(keys[i], values[i])
			}
			b.StopTimer()
			writeTime := time.Since(writeStart)
			metrics.Metrics["insertion_rate"] = float64(numKeys) / writeTime.Seconds()
			b.Logf("Inserted %d UUID keys in %v %s", numKeys, writeTime, getMemoryUsage())

			b.StartTimer()
			readStart := time.Now()
			for i := range keys {
				val, found := ht.Retrieve(keys[i])
				if !found {
					b.Fatalf("Key %s not found", keys[i])
				}
				if val != values[i] {
					b.Fatalf("Value mismatch for key %s", keys[i])
				}
			}
			b.StopTimer()
			readTime := time.Since(readStart)
			metrics.Metrics["lookup_rate"] = float64(numKeys) / readTime.Seconds()

			s := ht.Stats()
			b.Logf("Capacity %d, longest chain %d, used buckets %d", s.Capacity, s.LongestChain, s.UsedBuckets)
			recordTableShape(&metrics, s)
			metrics.NsPerOp = float64(writeTime.Nanoseconds()+readTime.Nanoseconds()) / float64(2*numKeys)

			if err := saveBenchmarkResult(metrics, "latest.json"); err != nil {
				b.Logf("Failed to save benchmark result to latest.json: %v", err)
			}
		})
	}
}
