// Package app assembles the store, extraction engine, text acquisition and
// receipt service from a common.Config. Both binaries start here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-analytics/internal/async"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/extract"
	"github.com/joseph-ayodele/receipt-analytics/internal/ingest"
	"github.com/joseph-ayodele/receipt-analytics/internal/ocr"
	"github.com/joseph-ayodele/receipt-analytics/internal/receipts"
	"github.com/joseph-ayodele/receipt-analytics/internal/repository"
)

type App struct {
	Config  *common.Config
	Logger  *slog.Logger
	Store   repository.Store
	Service *receipts.Service
}

// New opens the configured store and wires the service on top of it.
// The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts ...receipts.Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := repository.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	engine, err := extract.NewEngine(
		extract.WithMinConfidence(cfg.Extraction.MinConfidence),
		extract.WithLogger(logger),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build extraction engine: %w", err)
	}

	text := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	base := []receipts.Option{
		receipts.WithTextSource(text),
		receipts.WithLogger(logger),
		receipts.WithMaxFileSize(cfg.Ingest.MaxFileSize),
		receipts.WithAllowedExts(cfg.Ingest.AllowedExts),
	}
	svc := receipts.NewService(store, engine, append(base, opts...)...)

	logger.Info("receipt service ready", "store", cfg.Store.Driver, "min_confidence", cfg.Extraction.MinConfidence)
	return &App{Config: cfg, Logger: logger, Store: store, Service: svc}, nil
}

// IngestHandler runs one queued file through the service.
func (a *App) IngestHandler() async.Handler {
	return func(ctx context.Context, job async.Job) error {
		rec, res, err := a.Service.Ingest(ctx, receipts.Document{
			FileName: job.FileName,
			Size:     job.Size,
			Path:     job.Path,
		})
		if err != nil {
			return err
		}
		common.LoggerFrom(ctx, a.Logger).Info("queued file ingested",
			"path", job.Path, "id", rec.ID, "status", rec.Status, "failures", len(res.Failures),
			"wait", time.Since(job.SubmittedAt))
		return nil
	}
}

// Enqueuer adapts q into an ingest.Sink for directory runs and the watcher.
func (a *App) Enqueuer(q async.Queue) ingest.Sink {
	return func(ctx context.Context, path string) error {
		job := async.Job{
			Path:        path,
			FileName:    filepath.Base(path),
			SubmittedAt: time.Now(),
			TraceID:     uuid.NewString(),
		}
		if fi, err := os.Stat(path); err == nil {
			job.Size = fi.Size()
		}
		return q.Enqueue(ctx, job)
	}
}

func (a *App) Close() error {
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("failed to close store", "error", err)
		return err
	}
	a.Logger.Info("store closed")
	return nil
}
