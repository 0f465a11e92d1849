// Package pipeline orchestrates per-file processing: decode the entity
// stream, locate frames, extract title-block fields and group A4 sheet-sets.
package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/detector"
	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/sheetset"
	"github.com/MeKo-Tech/framescan/internal/timing"
	"github.com/MeKo-Tech/framescan/internal/titleblock"
)

// FlagScaleMismatch marks frames whose geometric scale factor disagrees with
// the scale denominator stated in the title block.
const FlagScaleMismatch = "scale_mismatch"

// DrawingResult is the complete outcome for one drawing file.
type DrawingResult struct {
	SourceFile string               `json:"source_file"`
	Frames     []*frame.Meta        `json:"frames"`
	SheetSets  []*sheetset.SheetSet `json:"sheet_sets,omitempty"`
	Flags      []string             `json:"flags,omitempty"`
	DurationMS int64                `json:"duration_ms"`
	StageMS    map[string]int64     `json:"stage_ms,omitempty"`
}

// FrameCount returns grouped pages plus ungrouped frames.
func (r *DrawingResult) FrameCount() int {
	n := len(r.Frames)
	for _, s := range r.SheetSets {
		n += len(s.Pages)
	}
	return n
}

// Pipeline runs the detection stages over entity collections. It holds no
// per-file state and is safe to share across goroutines.
type Pipeline struct {
	cfg       *config.Config
	locator   *detector.AnchorFirstLocator
	detect    *detector.FrameDetector
	extractor *titleblock.Extractor
	grouper   *sheetset.Grouper
}

// New builds a pipeline from a validated configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		locator:   detector.NewAnchorFirstLocator(&cfg.Detection, cfg.SheetSet.GapFactor),
		detect:    detector.NewFrameDetector(&cfg.Detection),
		extractor: titleblock.NewExtractor(&cfg.Detection),
		grouper:   sheetset.NewGrouper(cfg.SheetSet.GapFactor),
	}
}

// ProcessFile decodes one entity-dump file and processes it. Only an
// unreadable or unparseable document is an error; everything below that is
// absorbed into flags and empty fields.
func (p *Pipeline) ProcessFile(path string) (*DrawingResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening drawing: %w", err)
	}
	defer f.Close()

	col, err := entities.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parsing drawing %s: %w", path, err)
	}
	if col.Source == "" {
		col.Source = filepath.Base(path)
	}
	return p.Process(col), nil
}

// Process runs location, extraction and grouping over one collection.
func (p *Pipeline) Process(col *entities.Collection) *DrawingResult {
	clock := timing.NewStageClock()

	var frames []*frame.Meta
	var flags []string
	switch p.cfg.Detection.Anchor.LocateMode {
	case config.LocateCandidateFirst:
		frames, flags = p.detect.DetectFrames(col)
	default:
		frames, flags = p.locator.LocateFrames(col)
	}
	clock.Mark("locate")

	items, _ := entities.CollectTextItems(col, p.cfg.Detection.Anchor.MaxInsertDepth)
	for _, f := range frames {
		p.extractor.Extract(f, items)
		p.checkScaleMismatch(f)
	}
	clock.Mark("extract")

	remaining, sets := p.grouper.Group(frames)
	clock.Mark("group")

	result := &DrawingResult{
		SourceFile: col.Source,
		Frames:     remaining,
		SheetSets:  sets,
		Flags:      flags,
		DurationMS: clock.Total().Milliseconds(),
		StageMS:    clock.Milliseconds(),
	}
	slog.Info("drawing processed",
		"source", col.Source,
		"frames", len(remaining),
		"sheet_sets", len(sets),
		"duration", clock.Total(),
		"stages", clock.String())
	return result
}

// checkScaleMismatch compares the fitted geometric scale factor against the
// scale denominator the title block states, flagging but never correcting a
// disagreement.
func (p *Pipeline) checkScaleMismatch(f *frame.Meta) {
	denom := f.Titleblock.ScaleDenominator
	geom := f.Runtime.GeomScaleFactor
	if denom <= 0 || geom <= 0 {
		return
	}
	if math.Abs(geom-denom)/denom > p.cfg.Detection.Tolerances.ScaleMismatch {
		f.AddFlag(FlagScaleMismatch)
	}
}
