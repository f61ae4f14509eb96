package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/joseph-ayodele/receipt-analytics/internal/app"
	"github.com/joseph-ayodele/receipt-analytics/internal/async"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/ingest"
	"github.com/joseph-ayodele/receipt-analytics/internal/server"
)

func main() {
	envFile := getenv("RECEIPTS_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: load %s: %v\n", envFile, err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()

	fs := ff.NewFlagSet("receiptsd")
	var (
		grpcAddr      = fs.StringLong("grpc-addr", cfg.Server.GRPCAddr, "gRPC listen address")
		storeDriver   = fs.StringLong("store", cfg.Store.Driver, "store driver: memory, sqlite, bolt or postgres")
		storePath     = fs.StringLong("store-path", cfg.Store.Path, "database file for sqlite and bolt")
		dbURL         = fs.StringLong("db-url", cfg.Store.DSN, "postgres connection string")
		watchDirs     = fs.StringLong("watch", strings.Join(cfg.Ingest.WatchDirs, ","), "comma separated directories to ingest and watch")
		workers       = fs.IntLong("workers", cfg.Ingest.Workers, "ingest worker count")
		queueSize     = fs.IntLong("queue-size", cfg.Ingest.QueueSize, "ingest queue capacity")
		jobTimeout    = fs.DurationLong("job-timeout", cfg.Ingest.JobTimeout, "per-document processing timeout")
		minConfidence = fs.Float64Long("min-confidence", cfg.Extraction.MinConfidence, "confidence below which a receipt is marked error")
		logLevel      = fs.StringLong("log-level", cfg.Log.Level, "debug, info, warn or error")
		logFormat     = fs.StringLong("log-format", cfg.Log.Format, "text or json")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("RECEIPTS")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg.Server.GRPCAddr = *grpcAddr
	cfg.Store.Driver = *storeDriver
	cfg.Store.Path = *storePath
	cfg.Store.DSN = *dbURL
	cfg.Ingest.WatchDirs = splitList(*watchDirs)
	cfg.Ingest.Workers = *workers
	cfg.Ingest.QueueSize = *queueSize
	cfg.Ingest.JobTimeout = *jobTimeout
	cfg.Extraction.MinConfidence = *minConfidence
	cfg.Log.Level = *logLevel
	cfg.Log.Format = *logFormat

	logger, err := common.SetupLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("receiptsd stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *common.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	grpcServer, healthServer := server.New(server.NewAnalytics(a.Service, logger), logger)

	queue := async.NewProcessorQueue(a.IngestHandler(), logger,
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(cfg.Ingest.QueueSize),
		async.WithProcessTimeout(cfg.Ingest.JobTimeout),
	)

	var wg sync.WaitGroup
	if len(cfg.Ingest.WatchDirs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			watchInbox(ctx, cfg.Ingest, a.Enqueuer(queue), logger)
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("receiptsd listening", "addr", lis.Addr().String(), "store", cfg.Store.Driver)
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-serveErr:
		logger.Error("gRPC serve error", "error", err)
		stop()
	}

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)
	processed, failed := queue.Stats()
	logger.Info("ingest queue stopped", "processed", processed, "failed", failed)
	return err
}

// watchInbox ingests what is already in the watch directories, then follows
// changes until ctx is done. Content seen once is not ingested again.
func watchInbox(ctx context.Context, cfg common.IngestConfig, sink ingest.Sink, logger *slog.Logger) {
	exts := ingest.ExtSet(cfg.AllowedExts)
	seen := ingest.NewHashSet()
	for _, root := range cfg.WatchDirs {
		if !cfg.InitialScan {
			break
		}
		_, st, err := ingest.Directory(ctx, root, ingest.DirOptions{
			Exts:       exts,
			SkipHidden: cfg.SkipHidden,
			Seen:       seen,
			Logger:     logger,
		}, sink)
		if err != nil {
			logger.Error("initial directory ingest failed", "root", root, "error", err)
			continue
		}
		logger.Info("initial directory ingest done", "root", root,
			"matched", st.Matched, "succeeded", st.Succeeded, "deduplicated", st.Deduplicated, "failed", st.Failed)
	}

	paths, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Roots:       cfg.WatchDirs,
		AllowedExts: exts,
		SkipHidden:  cfg.SkipHidden,
		Debounce:    cfg.WatchDebounce,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("watcher start failed", "error", err)
		return
	}

	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			h, err := ingest.HashFile(p)
			if err != nil {
				logger.Warn("hash failed", "path", p, "error", err)
				continue
			}
			if !seen.Add(h) {
				logger.Debug("duplicate content skipped", "path", p)
				continue
			}
			if err := sink(ctx, p); err != nil {
				seen.Forget(h)
				logger.Warn("enqueue failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
