package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ToJSON serializes a single result to pretty JSON.
func ToJSON(res *DrawingResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONResults serializes multiple results to pretty JSON.
func ToJSONResults(results []*DrawingResult) (string, error) {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPlainText renders a human-readable summary: one line per frame and
// sheet-set page.
func ToPlainText(res *DrawingResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d frame(s), %d sheet-set(s)\n", res.SourceFile, len(res.Frames), len(res.SheetSets))
	for _, f := range res.Frames {
		fmt.Fprintf(&b, "  %s %s %s\n",
			f.Runtime.PaperVariantID, f.Titleblock.InternalCode, f.Titleblock.TitleCN)
	}
	for _, s := range res.SheetSets {
		fmt.Fprintf(&b, "  sheet-set %s: %d page(s), total %d\n", s.ClusterID, len(s.Pages), s.PageTotal)
		if len(s.Flags) > 0 {
			fmt.Fprintf(&b, "    flags: %s\n", strings.Join(s.Flags, ", "))
		}
	}
	return b.String(), nil
}

var csvHeader = []string{
	"source_file", "frame_id", "paper_variant", "internal_code", "external_code",
	"engineering_no", "title_cn", "title_en", "scale", "page_index", "page_total",
	"revision", "status", "date", "flags",
}

// ToCSV exports per-frame structured data as CSV with a header row. Sheet-set
// master pages appear as ordinary rows; anchorless slave pages carry no
// fields and are omitted.
func ToCSV(results []*DrawingResult) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		frames := res.Frames
		for _, s := range res.SheetSets {
			if m := s.MasterPage(); m != nil && m.Frame != nil {
				frames = append(frames, m.Frame)
			}
		}
		for _, f := range frames {
			row := []string{
				res.SourceFile,
				f.Runtime.FrameID,
				f.Runtime.PaperVariantID,
				f.Titleblock.InternalCode,
				f.Titleblock.ExternalCode,
				f.Titleblock.EngineeringNo,
				f.Titleblock.TitleCN,
				f.Titleblock.TitleEN,
				f.Titleblock.ScaleText,
				strconv.Itoa(f.Titleblock.PageIndex),
				strconv.Itoa(f.Titleblock.PageTotal),
				f.Titleblock.Revision,
				f.Titleblock.Status,
				f.Titleblock.Date,
				strings.Join(f.Runtime.Flags, ";"),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Format renders results in the named output format (json, csv or text).
func Format(results []*DrawingResult, format string) (string, error) {
	switch format {
	case "json":
		return ToJSONResults(results)
	case "csv":
		return ToCSV(results)
	case "text":
		var b strings.Builder
		for _, res := range results {
			s, err := ToPlainText(res)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}
