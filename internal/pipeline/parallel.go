package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// ParallelConfig holds settings for multi-file processing.
type ParallelConfig struct {
	// MaxWorkers is the worker pool size; 0 means runtime.NumCPU().
	MaxWorkers int
	// ContinueOnError keeps processing after per-file failures.
	ContinueOnError bool
	// ErrorHandler, when set, is called for every failed file.
	ErrorHandler func(path string, err error)
}

// DefaultParallelConfig returns sensible defaults for parallel processing.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		MaxWorkers:      runtime.NumCPU(),
		ContinueOnError: true,
	}
}

type fileJob struct {
	index int
	path  string
}

type fileResult struct {
	index  int
	result *DrawingResult
	err    error
}

// ProcessFilesParallel processes the files on a worker pool and returns
// results in input order. Failed files yield nil entries; the first error is
// returned after all files finish unless ContinueOnError is false, in which
// case remaining work is cancelled.
func (p *Pipeline) ProcessFilesParallel(ctx context.Context, paths []string, cfg ParallelConfig) ([]*DrawingResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan fileJob, len(paths))
	results := make(chan fileResult, len(paths))

	var wg sync.WaitGroup
	for range cfg.MaxWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job, ok := <-jobs:
					if !ok {
						return
					}
					res, err := p.ProcessFile(job.path)
					select {
					case results <- fileResult{index: job.index, result: res, err: err}:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, path := range paths {
			select {
			case jobs <- fileJob{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*DrawingResult, len(paths))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if cfg.ErrorHandler != nil {
				cfg.ErrorHandler(paths[r.index], r.err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", paths[r.index], r.err)
			}
			if !cfg.ContinueOnError {
				cancel()
			}
			continue
		}
		ordered[r.index] = r.result
	}

	if err := ctx.Err(); err != nil && firstErr == nil {
		return ordered, err
	}
	return ordered, firstErr
}
