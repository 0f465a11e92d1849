package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/geometry"
	"github.com/MeKo-Tech/framescan/internal/sheetset"
)

func sampleResult() *DrawingResult {
	return &DrawingResult{
		SourceFile: "plant.json",
		Frames: []*frame.Meta{
			{
				Runtime: frame.Runtime{
					FrameID:        "f-1",
					SourceFile:     "plant.json",
					OuterBBox:      geometry.NewRect(0, 0, 420, 297),
					PaperVariantID: "A3",
					Flags:          []string{FlagScaleMismatch},
				},
				Titleblock: frame.TitleblockFields{
					InternalCode: "1234567-JG001-001",
					TitleCN:      "反应堆厂房",
					ScaleText:    "1:100",
					PageIndex:    1,
					PageTotal:    1,
				},
			},
		},
	}
}

func TestToJSON(t *testing.T) {
	s, err := ToJSON(sampleResult())
	require.NoError(t, err)

	var decoded DrawingResult
	require.NoError(t, json.Unmarshal([]byte(s), &decoded))
	assert.Equal(t, "plant.json", decoded.SourceFile)
	require.Len(t, decoded.Frames, 1)
	assert.Equal(t, "1234567-JG001-001", decoded.Frames[0].Titleblock.InternalCode)

	_, err = ToJSON(nil)
	assert.Error(t, err)
}

func TestToPlainText(t *testing.T) {
	s, err := ToPlainText(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, s, "plant.json: 1 frame(s)")
	assert.Contains(t, s, "1234567-JG001-001")
}

func TestToCSV(t *testing.T) {
	s, err := ToCSV([]*DrawingResult{sampleResult(), nil})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(s), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "source_file,frame_id"))
	assert.Contains(t, lines[1], "1234567-JG001-001")
	assert.Contains(t, lines[1], FlagScaleMismatch)
}

func TestToCSVIncludesSheetSetMasters(t *testing.T) {
	res := &DrawingResult{
		SourceFile: "notes.json",
		SheetSets: []*sheetset.SheetSet{{
			ClusterID: "c-1",
			PageTotal: 2,
			Pages: []sheetset.PageInfo{
				{PageIndex: 1, HasTitleblock: true, Frame: &frame.Meta{
					Runtime:    frame.Runtime{FrameID: "m-1", PaperVariantID: "A4"},
					Titleblock: frame.TitleblockFields{InternalCode: "1234567-SM001-001"},
				}},
				{PageIndex: 2},
			},
		}},
	}
	s, err := ToCSV([]*DrawingResult{res})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(s), "\n")
	require.Len(t, lines, 2, "master row only, slave pages have no fields")
	assert.Contains(t, lines[1], "1234567-SM001-001")
}

func TestFormat(t *testing.T) {
	results := []*DrawingResult{sampleResult()}

	for _, format := range []string{"json", "csv", "text"} {
		s, err := Format(results, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, s, format)
	}

	_, err := Format(results, "xml")
	assert.Error(t, err)
}

func TestFrameCount(t *testing.T) {
	res := sampleResult()
	assert.Equal(t, 1, res.FrameCount())

	res.SheetSets = []*sheetset.SheetSet{{Pages: make([]sheetset.PageInfo, 3)}}
	assert.Equal(t, 4, res.FrameCount())
}
