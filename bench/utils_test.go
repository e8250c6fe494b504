package chash_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/theflywheel/chash"
)

// BenchmarkMetrics represents metrics for a single benchmark
type BenchmarkMetrics struct {
	Name       string             `json:"name"`
	Category   string             `json:"category"`
	Operations int                `json:"operations"`
	NsPerOp    float64            `json:"ns_per_op"`
	Metrics    map[string]float64 `json:"metrics"`
}

// BenchmarkSummary represents all benchmark results
type BenchmarkSummary struct {
	Timestamp string             `json:"timestamp"`
	GoVersion string             `json:"go_version"`
	Results   []BenchmarkMetrics `json:"results"`
}

// getMemoryUsage returns the current memory stats as a formatted string
func getMemoryUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return fmt.Sprintf("Memory: Alloc=%.1fMB Sys=%.1fMB",
		float64(m.Alloc)/1024/1024,
		float64(m.Sys)/1024/1024)
}

// allocMB returns the live heap in megabytes
func allocMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Alloc) / (1024 * 1024)
}

// recordTableShape copies the table's chain statistics into metrics
func recordTableShape(metrics *BenchmarkMetrics, s chash.Stats) {
	metrics.Metrics["capacity"] = float64(s.Capacity)
	metrics.Metrics["load_factor"] = s.LoadFactor()
	metrics.Metrics["longest_chain"] = float64(s.LongestChain)
	metrics.Metrics["used_buckets_ratio"] = float64(s.UsedBuckets) / float64(s.Capacity)
	metrics.Metrics["resizes"] = float64(s.Resizes)
}

// saveBenchmarkResult appends a benchmark result to benchmark_history/<resultsFile>
// in the repository root. It is a no-op unless CHASH_BENCH_HISTORY is set.
func saveBenchmarkResult(metrics BenchmarkMetrics, resultsFile string) error {
	if os.Getenv("CHASH_BENCH_HISTORY") == "" {
		return nil
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	benchmarkDir := filepath.Join(filepath.Dir(currentDir), "benchmark_history")
	if err := os.MkdirAll(benchmarkDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	summary := BenchmarkSummary{
		Timestamp: time.Now().Format(time.RFC3339),
		GoVersion: runtime.Version(),
		Results:   []BenchmarkMetrics{metrics},
	}

	latestFile := filepath.Join(benchmarkDir, resultsFile)
	if existingData, err := os.ReadFile(latestFile); err == nil {
		var existing BenchmarkSummary
		if err := json.Unmarshal(existingData, &existing); err == nil {
			summary.Results = append(existing.Results, metrics)
		}
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	if err := os.WriteFile(latestFile, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	fmt.Printf("Benchmark results saved to: %s\n", latestFile)
	return nil
}

// numericKey formats i the way every numeric benchmark names its keys
func numericKey(i int) string {
	return fmt.Sprintf("key:%08d", i)
}
