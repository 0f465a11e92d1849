// Package config holds the business configuration for frame detection and
// title-block extraction. The configuration is loaded once at process start
// and injected into each component's constructor as an immutable value.
package config

import (
	"fmt"
	"strings"
)

// Anchor match policies.
const (
	MatchDoubleHit = "double_hit_same_roi"
	MatchAnyHit    = "any_hit_accept"
)

// Frame location strategies.
const (
	LocateAnchorFirst    = "anchor_first"
	LocateCandidateFirst = "candidate_first"
)

// Well-known ROI field names. Profiles may define additional fields; the
// extractor parses the ones it knows and keeps raw text for the rest.
const (
	FieldAnchor        = "anchor"
	FieldInternalCode  = "internal_code"
	FieldExternalCode  = "external_code"
	FieldEngineeringNo = "engineering_no"
	FieldSubitemNo     = "subitem_no"
	FieldPaperSize     = "paper_size"
	FieldDiscipline    = "discipline"
	FieldScale         = "scale"
	FieldPageInfo      = "page_info"
	FieldTitle         = "title"
	FieldRevision      = "revision"
	FieldStatus        = "status"
	FieldDate          = "date"
)

// Config is the complete application configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Detection Detection `mapstructure:"detection" yaml:"detection" json:"detection"`
	SheetSet  SheetSet  `mapstructure:"sheetset" yaml:"sheetset" json:"sheetset"`
	Output    Output    `mapstructure:"output" yaml:"output" json:"output"`
	Server    Server    `mapstructure:"server" yaml:"server" json:"server"`
	Batch     Batch     `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// PaperVariant is one standard paper size in the catalog.
type PaperVariant struct {
	Width   float64 `mapstructure:"width" yaml:"width" json:"width"`
	Height  float64 `mapstructure:"height" yaml:"height" json:"height"`
	Profile string  `mapstructure:"profile" yaml:"profile" json:"profile"`
}

// ROIProfile maps field names to relative offset tuples
// [right, left, bottom, top], measured from the outer rectangle's right edge
// (x axis) and bottom edge (y axis) in paper units.
type ROIProfile struct {
	Description string               `mapstructure:"description" yaml:"description,omitempty" json:"description,omitempty"`
	Tolerance   float64              `mapstructure:"tolerance" yaml:"tolerance" json:"tolerance"`
	Fields      map[string][]float64 `mapstructure:"fields" yaml:"fields" json:"fields"`
}

// Anchor configures frame confirmation via known title-block text.
type Anchor struct {
	// PrimaryText is the anchor searched for first (typically the CJK
	// company name); SecondaryText the double-hit confirmation string.
	PrimaryText   string `mapstructure:"primary_text" yaml:"primary_text" json:"primary_text"`
	SecondaryText string `mapstructure:"secondary_text" yaml:"secondary_text" json:"secondary_text"`
	// ROIField names the profile field carrying the anchor box.
	ROIField       string `mapstructure:"roi_field" yaml:"roi_field" json:"roi_field"`
	MatchPolicy    string `mapstructure:"match_policy" yaml:"match_policy" json:"match_policy"`
	LocateMode     string `mapstructure:"locate_mode" yaml:"locate_mode" json:"locate_mode"`
	MaxInsertDepth int    `mapstructure:"max_insert_depth" yaml:"max_insert_depth" json:"max_insert_depth"`
}

// Fit configures paper-size fitting.
type Fit struct {
	AllowRotation        bool    `mapstructure:"allow_rotation" yaml:"allow_rotation" json:"allow_rotation"`
	UniformScaleRequired bool    `mapstructure:"uniform_scale_required" yaml:"uniform_scale_required" json:"uniform_scale_required"`
	UniformScaleTol      float64 `mapstructure:"uniform_scale_tol" yaml:"uniform_scale_tol" json:"uniform_scale_tol"`
}

// Tolerances groups the numeric tolerances of the detection stage.
type Tolerances struct {
	// Coord is the coordinate clustering tolerance in drawing units.
	Coord float64 `mapstructure:"coord" yaml:"coord" json:"coord"`
	// OrthogonalityDeg is the maximum angle a segment may deviate from an
	// axis and still count as horizontal/vertical.
	OrthogonalityDeg float64 `mapstructure:"orthogonality_deg" yaml:"orthogonality_deg" json:"orthogonality_deg"`
	// ROIMarginPercent expands restored ROIs on every side.
	ROIMarginPercent float64 `mapstructure:"roi_margin_percent" yaml:"roi_margin_percent" json:"roi_margin_percent"`
	// ScaleMismatch is the relative tolerance between the geometric scale
	// factor and the title block's stated scale denominator.
	ScaleMismatch float64 `mapstructure:"scale_mismatch" yaml:"scale_mismatch" json:"scale_mismatch"`
}

// Detection configures candidate finding, fitting and anchor validation.
type Detection struct {
	MinFrameDim   float64                 `mapstructure:"min_frame_dim" yaml:"min_frame_dim" json:"min_frame_dim"`
	MaxCandidates int                     `mapstructure:"max_candidates" yaml:"max_candidates" json:"max_candidates"`
	Papers        map[string]PaperVariant `mapstructure:"papers" yaml:"papers" json:"papers"`
	Profiles      map[string]ROIProfile   `mapstructure:"profiles" yaml:"profiles" json:"profiles"`
	Anchor        Anchor                  `mapstructure:"anchor" yaml:"anchor" json:"anchor"`
	Fit           Fit                     `mapstructure:"fit" yaml:"fit" json:"fit"`
	Tolerances    Tolerances              `mapstructure:"tolerances" yaml:"tolerances" json:"tolerances"`
}

// SheetSet configures A4 multi-page grouping.
type SheetSet struct {
	// GapFactor scales min(width, height) into the neighbor gap threshold.
	GapFactor float64 `mapstructure:"gap_factor" yaml:"gap_factor" json:"gap_factor"`
}

// Output configures result formatting.
type Output struct {
	Format     string  `mapstructure:"format" yaml:"format" json:"format"`
	File       string  `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir string  `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	ReportPDF  string  `mapstructure:"report_pdf" yaml:"report_pdf" json:"report_pdf"`
	// OverlayPPU is the overlay raster resolution in pixels per drawing unit.
	OverlayPPU float64 `mapstructure:"overlay_ppu" yaml:"overlay_ppu" json:"overlay_ppu"`
}

// Server configures the HTTP API.
type Server struct {
	Host        string `mapstructure:"host" yaml:"host" json:"host"`
	Port        int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin  string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec  int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// Batch configures multi-file processing.
type Batch struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns a configuration with the built-in ISO paper catalog
// and title-block layout.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Detection: Detection{
			MinFrameDim: 100.0,
			Papers:      defaultPapers(),
			Profiles:    defaultProfiles(),
			Anchor: Anchor{
				PrimaryText:    "中国核电工程有限公司",
				SecondaryText:  "CNPE",
				ROIField:       FieldAnchor,
				MatchPolicy:    MatchDoubleHit,
				LocateMode:     LocateAnchorFirst,
				MaxInsertDepth: 8,
			},
			Fit: Fit{
				AllowRotation:        true,
				UniformScaleRequired: true,
				UniformScaleTol:      0.02,
			},
			Tolerances: Tolerances{
				Coord:            0.5,
				OrthogonalityDeg: 1.0,
				ROIMarginPercent: 0.05,
				ScaleMismatch:    0.05,
			},
		},
		SheetSet: SheetSet{GapFactor: 0.5},
		Output: Output{
			Format:     "json",
			OverlayPPU: 1.0,
		},
		Server: Server{
			Host:        "localhost",
			Port:        8080,
			CORSOrigin:  "*",
			MaxUploadMB: 50,
			TimeoutSec:  30,
		},
		Batch: Batch{
			Workers:         4,
			ContinueOnError: true,
		},
	}
}

func defaultPapers() map[string]PaperVariant {
	return map[string]PaperVariant{
		"A0": {Width: 1189, Height: 841, Profile: "BASE10"},
		"A1": {Width: 841, Height: 594, Profile: "BASE10"},
		"A2": {Width: 594, Height: 420, Profile: "BASE10"},
		"A3": {Width: 420, Height: 297, Profile: "BASE10"},
		"A4": {Width: 210, Height: 297, Profile: "A4P"},
	}
}

// defaultProfiles describes the standard bottom-right title block: a 180-unit
// wide, 56-unit tall panel for A0–A3, and a compressed full-width variant for
// portrait A4 sheets.
func defaultProfiles() map[string]ROIProfile {
	return map[string]ROIProfile{
		"BASE10": {
			Description: "bottom-right title block, A0-A3 landscape",
			Tolerance:   0.5,
			Fields: map[string][]float64{
				FieldAnchor:        {10, 180, 46, 56},
				FieldTitle:         {70, 180, 14, 38},
				FieldInternalCode:  {10, 70, 0, 7},
				FieldExternalCode:  {70, 180, 0, 7},
				FieldEngineeringNo: {150, 180, 38, 46},
				FieldSubitemNo:     {120, 150, 38, 46},
				FieldDiscipline:    {100, 120, 38, 46},
				FieldPaperSize:     {40, 70, 31, 38},
				FieldScale:         {10, 40, 31, 38},
				FieldPageInfo:      {10, 40, 24, 31},
				FieldRevision:      {55, 70, 7, 24},
				FieldStatus:        {40, 55, 7, 24},
				FieldDate:          {25, 40, 7, 24},
			},
		},
		"A4P": {
			Description: "portrait A4 sheet, compressed title block",
			Tolerance:   0.5,
			Fields: map[string][]float64{
				FieldAnchor:        {5, 200, 25, 32},
				FieldTitle:         {80, 200, 8, 25},
				FieldInternalCode:  {5, 80, 0, 5},
				FieldExternalCode:  {80, 200, 0, 5},
				FieldEngineeringNo: {180, 200, 18, 25},
				FieldSubitemNo:     {160, 180, 18, 25},
				FieldPaperSize:     {40, 60, 18, 25},
				FieldScale:         {20, 40, 18, 25},
				FieldPageInfo:      {5, 20, 18, 25},
				FieldRevision:      {60, 80, 5, 18},
				FieldStatus:        {40, 60, 5, 18},
				FieldDate:          {20, 40, 5, 18},
			},
		},
	}
}

// Profile returns the named ROI profile, or nil if unknown.
func (d *Detection) Profile(id string) *ROIProfile {
	if p, ok := d.Profiles[id]; ok {
		return &p
	}
	return nil
}

// Validate validates the configuration and returns the first error found.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if err := c.Detection.validate(); err != nil {
		return err
	}

	if c.SheetSet.GapFactor <= 0 {
		return fmt.Errorf("invalid sheetset gap factor: %f (must be positive)", c.SheetSet.GapFactor)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}
	return nil
}

func (d *Detection) validate() error {
	if d.MinFrameDim <= 0 {
		return fmt.Errorf("invalid min frame dimension: %f (must be positive)", d.MinFrameDim)
	}
	if len(d.Papers) == 0 {
		return fmt.Errorf("paper catalog is empty")
	}
	for id, p := range d.Papers {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("paper %s: non-positive dimensions %fx%f", id, p.Width, p.Height)
		}
		if _, ok := d.Profiles[p.Profile]; !ok {
			return fmt.Errorf("paper %s references unknown profile %q", id, p.Profile)
		}
	}
	for id, profile := range d.Profiles {
		for field, offsets := range profile.Fields {
			if len(offsets) != 4 {
				return fmt.Errorf("profile %s field %s: offset tuple has %d values, want 4", id, field, len(offsets))
			}
		}
	}

	validPolicies := []string{MatchDoubleHit, MatchAnyHit}
	if !contains(validPolicies, d.Anchor.MatchPolicy) {
		return fmt.Errorf("invalid anchor match policy: %s (must be one of: %s)", d.Anchor.MatchPolicy, strings.Join(validPolicies, ", "))
	}
	validModes := []string{LocateAnchorFirst, LocateCandidateFirst}
	if !contains(validModes, d.Anchor.LocateMode) {
		return fmt.Errorf("invalid locate mode: %s (must be one of: %s)", d.Anchor.LocateMode, strings.Join(validModes, ", "))
	}
	if d.Anchor.PrimaryText == "" {
		return fmt.Errorf("anchor primary text is empty")
	}
	if d.Anchor.ROIField == "" {
		return fmt.Errorf("anchor ROI field is empty")
	}

	if d.Fit.UniformScaleTol < 0 {
		return fmt.Errorf("invalid uniform scale tolerance: %f", d.Fit.UniformScaleTol)
	}
	if d.Tolerances.Coord < 0 || d.Tolerances.OrthogonalityDeg < 0 || d.Tolerances.ROIMarginPercent < 0 {
		return fmt.Errorf("tolerances must be non-negative: %+v", d.Tolerances)
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
