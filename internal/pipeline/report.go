package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// WriteReviewReport renders one overlay per result and binds them into a
// single PDF for manual review, one page per drawing. Results without
// geometry are skipped; an empty batch produces no file.
func (p *Pipeline) WriteReviewReport(results []*DrawingResult, outPath string) error {
	var overlays []string
	for _, res := range results {
		if res == nil {
			continue
		}
		path, err := p.SaveOverlay(res)
		if err != nil {
			return fmt.Errorf("rendering overlay for %s: %w", res.SourceFile, err)
		}
		if path != "" {
			overlays = append(overlays, path)
		}
	}
	if len(overlays) == 0 {
		return nil
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}
	if err := api.ImportImagesFile(overlays, outPath, nil, nil); err != nil {
		return fmt.Errorf("writing review report: %w", err)
	}
	return nil
}
