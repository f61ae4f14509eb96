package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
)

// DirOptions tunes a directory run.
type DirOptions struct {
	Exts       map[string]struct{} // nil -> constants.AllowedExtensions
	SkipHidden bool
	Seen       *HashSet // shared dedupe state; nil -> per-run
	Logger     *slog.Logger
}

// Directory walks root, filters by extension, skips hidden entries if requested,
// drops files whose content was already seen and hands the rest to sink.
// Per-file failures are recorded and the walk continues.
func Directory(ctx context.Context, root string, opts DirOptions, sink Sink) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seen := opts.Seen
	if seen == nil {
		seen = NewHashSet()
	}

	var (
		results []FileResult
		stats   DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path), opts.Exts) {
			return nil
		}
		stats.Matched++

		sum, err := HashFile(path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		if !seen.Add(sum) {
			logger.Debug("duplicate content skipped", "path", path, "sha256", sum)
			results = append(results, FileResult{Path: path, HashHex: sum, Deduplicated: true})
			stats.Succeeded++
			stats.Deduplicated++
			return nil
		}
		if err := sink(ctx, path); err != nil {
			seen.Forget(sum)
			logger.Warn("ingest failed", "path", path, "error", err)
			results = append(results, FileResult{Path: path, HashHex: sum, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, FileResult{Path: path, HashHex: sum})
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	logger.Info("directory ingested", "root", root, "scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed)
	return results, stats, nil
}
