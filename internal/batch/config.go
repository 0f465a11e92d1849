package batch

import (
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/framescan/internal/pipeline"
)

// Config holds all settings for batch processing.
type Config struct {
	// Output settings
	Format     string
	OutputFile string
	OverlayDir string
	ReportPDF  string

	// Parallel processing settings
	Workers         int
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	Quiet     bool
	ShowStats bool
}

// DefaultConfig returns batch defaults: JSON output, entity dumps only.
func DefaultConfig() Config {
	return Config{
		Format:          "json",
		Workers:         4,
		ContinueOnError: true,
		IncludePatterns: []string{"*.json"},
	}
}

// Result holds the outcome of one batch run.
type Result struct {
	Results     []*pipeline.DrawingResult
	FilePaths   []string
	Failed      int
	Duration    time.Duration
	WorkerCount int
}

// FormatResults renders the batch results in the given format.
func (r *Result) FormatResults(format string) (string, error) {
	return pipeline.Format(r.Results, format)
}

// SaveResults writes the formatted results to a file, or stdout when no file
// is configured.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("formatting results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		if !quiet {
			fmt.Fprintf(os.Stdout, "Results written to %s\n", outputFile)
		}
		return nil
	}
	_, _ = fmt.Fprint(os.Stdout, output)
	return nil
}

// PrintStats prints processing statistics to stdout.
func (r *Result) PrintStats(quiet bool) {
	if quiet {
		return
	}
	frames := 0
	sets := 0
	for _, res := range r.Results {
		if res == nil {
			continue
		}
		frames += len(res.Frames)
		sets += len(res.SheetSets)
	}
	fmt.Fprintf(os.Stdout, "\nProcessing Statistics:\n")
	fmt.Fprintf(os.Stdout, "  Total files: %d\n", len(r.FilePaths))
	fmt.Fprintf(os.Stdout, "  Failed: %d\n", r.Failed)
	fmt.Fprintf(os.Stdout, "  Frames: %d\n", frames)
	fmt.Fprintf(os.Stdout, "  Sheet-sets: %d\n", sets)
	fmt.Fprintf(os.Stdout, "  Workers: %d\n", r.WorkerCount)
	fmt.Fprintf(os.Stdout, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if n := len(r.FilePaths); n > 0 {
		fmt.Fprintf(os.Stdout, "  Avg per file: %v\n", (r.Duration / time.Duration(n)).Round(time.Millisecond))
	}
}
