package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/spf13/cobra"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// detectCmd represents the detect command.
var detectCmd = &cobra.Command{
	Use:   "detect [files...]",
	Short: "Detect title-block frames in drawing files",
	Long: `Process one or more drawing entity dumps, detect title-block frames,
extract title-block fields and group A4 multi-page sheet sets.

Input files are JSON entity dumps as produced by the DWG/DXF exporter.

Examples:
  framescan detect drawing.json
  framescan detect *.json --format csv
  framescan detect plant.json --output results.json --overlay-dir overlays/`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runDetectCommand,
}

func runDetectCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	cfg := GetConfig()

	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("overlay-dir") {
		cfg.Output.OverlayDir, _ = cmd.Flags().GetString("overlay-dir")
	}
	if cmd.Flags().Changed("locate-mode") {
		cfg.Detection.Anchor.LocateMode, _ = cmd.Flags().GetString("locate-mode")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	reportPath, _ := cmd.Flags().GetString("report")

	p := pipeline.New(cfg)

	results := make([]*pipeline.DrawingResult, 0, len(args))
	for _, path := range args {
		res, err := p.ProcessFile(path)
		if err != nil {
			return fmt.Errorf("processing %s failed: %w", path, err)
		}
		results = append(results, res)
	}

	out, err := pipeline.Format(results, format)
	if err != nil {
		return fmt.Errorf("formatting results failed: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	} else {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
	}

	if reportPath != "" {
		if err := p.WriteReviewReport(results, reportPath); err != nil {
			return fmt.Errorf("failed to write review report: %w", err)
		}
	} else if cfg.Output.OverlayDir != "" {
		for _, res := range results {
			if _, err := p.SaveOverlay(res); err != nil {
				return fmt.Errorf("failed to save overlay for %s: %w", res.SourceFile, err)
			}
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringP("format", "f", outputFormatJSON,
		fmt.Sprintf("output format: %s, %s, %s", outputFormatJSON, outputFormatCSV, outputFormatText))
	detectCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	detectCmd.Flags().String("overlay-dir", "", "directory to save overlay images")
	detectCmd.Flags().String("report", "", "write a PDF review report to the given path")
	detectCmd.Flags().String("locate-mode", "",
		fmt.Sprintf("frame location mode: %s or %s", config.LocateAnchorFirst, config.LocateCandidateFirst))
}
