// Package batch processes whole directories of entity-dump files through the
// detection pipeline on a worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
)

// ProcessBatch discovers drawing files from the given paths and runs the
// detection pipeline over all of them.
func ProcessBatch(ctx context.Context, appCfg *config.Config, paths []string, cfg Config) (*Result, error) {
	files, err := discoverDrawingFiles(paths, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering drawing files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no drawing files found")
	}

	// The batch overlay directory overrides the application default.
	runCfg := *appCfg
	if cfg.OverlayDir != "" {
		runCfg.Output.OverlayDir = cfg.OverlayDir
	}
	p := pipeline.New(&runCfg)

	failed := 0
	parCfg := pipeline.ParallelConfig{
		MaxWorkers:      cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
		ErrorHandler: func(path string, err error) {
			failed++
			slog.Warn("drawing failed", "path", path, "error", err)
		},
	}

	start := time.Now()
	results, err := p.ProcessFilesParallel(ctx, files, parCfg)
	duration := time.Since(start)

	if err != nil && !cfg.ContinueOnError {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	if cfg.OverlayDir != "" || cfg.ReportPDF != "" {
		if err := writeArtifacts(p, results, cfg); err != nil {
			return nil, err
		}
	}

	return &Result{
		Results:     results,
		FilePaths:   files,
		Failed:      failed,
		Duration:    duration,
		WorkerCount: cfg.Workers,
	}, nil
}

func writeArtifacts(p *pipeline.Pipeline, results []*pipeline.DrawingResult, cfg Config) error {
	if cfg.ReportPDF != "" {
		if err := p.WriteReviewReport(results, cfg.ReportPDF); err != nil {
			return err
		}
		return nil
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		if _, err := p.SaveOverlay(res); err != nil {
			return fmt.Errorf("overlay for %s: %w", res.SourceFile, err)
		}
	}
	return nil
}
