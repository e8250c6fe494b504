package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/theflywheel/chash"
	"github.com/theflywheel/chash/config"
	"github.com/theflywheel/chash/metrics"
)

const metricsPath = "/metrics"

// CLI parameter variables
var (
	// configFile defines path to the table config file. Built-in defaults are used when empty.
	configFile string

	// metricsEndpoint defines the address to serve table metrics on after the demo. Empty means exit.
	metricsEndpoint string

	// verbose enables resize progress logging
	verbose bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Path to table config file.")
	flag.StringVar(&metricsEndpoint, "metrics-endpoint", "", "Serve Prometheus metrics on this address after the demo, e.g. :8888.")
	flag.BoolVar(&verbose, "verbose", false, "Log resize progress.")
}

// demoLines is the sequence stored into the table
var demoLines = []struct{ key, value string }{
	{"line_1", "Tiny hash table"},
	{"line_2", "Filled beyond capacity"},
	{"line_3", "Linked list saves the day!"},
}

func main() {
	flag.Parse()

	zapLog, err := newZapLogger(verbose)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLog.Sync()
	logger := zapr.NewLogger(zapLog)

	cfg := config.Default()
	cfg.Capacity = 2
	if configFile != "" {
		if cfg, err = config.Load(configFile); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	logger.Info("Using table config", "config", cfg.String())

	opts, err := cfg.Options()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	opts = append(opts, chash.WithLogger(logger.WithName("table")))

	table, err := chash.New[string](cfg.Capacity, opts...)
	if err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}

	if err := runDemo(os.Stdout, table); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}

	if metricsEndpoint == "" {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serveMetrics(ctx, logger, table); err != nil {
		log.Fatalf("Metrics server failed: %v", err)
	}
}

// runDemo stores more lines than the table has buckets, resizes, and checks the data survived
func runDemo(w io.Writer, table *chash.Table[string]) error {
	for _, l := range demoLines {
		table.Insert(l.key, l.value)
	}

	fmt.Fprintln(w)
	if err := printLines(w, table); err != nil {
		return err
	}

	oldCapacity := table.Capacity()
	table.Resize()
	newCapacity := table.Capacity()

	fmt.Fprintf(w, "\nResized from %d to %d.\n\n", oldCapacity, newCapacity)

	if err := printLines(w, table); err != nil {
		return err
	}

	// Not-found is reported, never fatal
	if err := table.Remove("line_4"); err != nil && !errors.Is(err, chash.ErrKeyNotFound) {
		return err
	}

	fmt.Fprintln(w)
	return nil
}

func printLines(w io.Writer, table *chash.Table[string]) error {
	for _, l := range demoLines {
		value, ok := table.Retrieve(l.key)
		if !ok {
			return fmt.Errorf("%s not found", l.key)
		}
		if value != l.value {
			return fmt.Errorf("%s: expected %q, got %q", l.key, l.value, value)
		}
		fmt.Fprintln(w, value)
	}
	return nil
}

func serveMetrics(ctx context.Context, logger logr.Logger, table *chash.Table[string]) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector("demo", table))

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              metricsEndpoint,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "Metrics server shutdown")
		}
	}()

	logger.Info("Serving metrics", "endpoint", metricsEndpoint, "path", metricsPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newZapLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if !verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return zc.Build()
}
