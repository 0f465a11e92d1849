package entities

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/framescan/internal/geometry"
)

// DefaultMaxInsertDepth bounds recursive block-insert resolution.
const DefaultMaxInsertDepth = 8

// Glyph extent heuristics. True glyph metrics are unavailable from vector
// geometry alone; the estimated extent is good enough for ROI containment
// tests and must not be used for rendering.
const (
	charWidthFactor  = 0.6
	lineHeightFactor = 1.2
	defaultHeight    = 2.5
)

// TextItem is a normalized text occurrence with its insertion point and an
// estimated extent rectangle.
type TextItem struct {
	X      float64
	Y      float64
	Text   string
	Extent geometry.Rect
	Source string
}

// CollectTextItems walks the entity stream and converts every text-bearing
// entity into a TextItem. Block inserts are resolved recursively up to
// maxDepth levels (DefaultMaxInsertDepth when maxDepth <= 0); deeper nests
// are reported as flags rather than silently skipped.
func CollectTextItems(c *Collection, maxDepth int) ([]TextItem, []string) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxInsertDepth
	}
	var items []TextItem
	var flags []string
	for _, e := range c.Entities {
		walkEntity(e, "model", 0, maxDepth, &items, &flags)
	}
	return items, flags
}

func walkEntity(e Entity, source string, depth, maxDepth int, items *[]TextItem, flags *[]string) {
	switch v := e.(type) {
	case Text:
		if it, ok := textItem(v, source); ok {
			*items = append(*items, it)
		}
	case MText:
		if it, ok := mtextItem(v, source); ok {
			*items = append(*items, it)
		}
	case Insert:
		if depth >= maxDepth {
			*flags = append(*flags, fmt.Sprintf("insert_depth_exceeded:%s", v.Name))
			return
		}
		for _, a := range v.Attribs {
			if it, ok := textItem(a, source+":attrib"); ok {
				*items = append(*items, it)
			}
		}
		for _, child := range v.Children {
			walkEntity(child, source+":"+v.Name, depth+1, maxDepth, items, flags)
		}
	case Polyline, Line:
		// no text content
	}
}

func textItem(t Text, source string) (TextItem, bool) {
	text := strings.TrimSpace(t.Value)
	if text == "" {
		return TextItem{}, false
	}
	return TextItem{
		X:      t.Insert.X,
		Y:      t.Insert.Y,
		Text:   text,
		Extent: textExtent(text, t.Insert.X, t.Insert.Y, t.Height, t.HAlign, t.VAlign),
		Source: source,
	}, true
}

func mtextItem(t MText, source string) (TextItem, bool) {
	text := strings.TrimSpace(t.Value)
	if text == "" {
		return TextItem{}, false
	}
	return TextItem{
		X:      t.Insert.X,
		Y:      t.Insert.Y,
		Text:   text,
		Extent: mtextExtent(t, text),
		Source: source,
	}, true
}

// textExtent estimates a single-line text bounding rectangle from character
// count, font height and alignment flags.
func textExtent(text string, x, y, height float64, halign, valign int) geometry.Rect {
	if height <= 0 {
		height = defaultHeight
	}
	n := len([]rune(strings.ReplaceAll(text, " ", "")))
	if n < 1 {
		n = 1
	}
	w := float64(n) * height * charWidthFactor
	h := height * lineHeightFactor

	var xmin, xmax float64
	switch halign {
	case HAlignCenter:
		xmin, xmax = x-w/2, x+w/2
	case HAlignRight:
		xmin, xmax = x-w, x
	default:
		xmin, xmax = x, x+w
	}

	var ymin, ymax float64
	switch valign {
	case VAlignTop:
		ymin, ymax = y-h, y
	case VAlignMiddle:
		ymin, ymax = y-h/2, y+h/2
	default:
		ymin, ymax = y, y+h
	}
	return geometry.Rect{MinX: xmin, MinY: ymin, MaxX: xmax, MaxY: ymax}
}

// mtextExtent estimates a multi-line text bounding rectangle using the wrap
// width when present and the 1..9 attachment point.
func mtextExtent(t MText, text string) geometry.Rect {
	charH := t.CharHeight
	if charH <= 0 {
		charH = defaultHeight
	}
	lines := nonEmptyLines(text)
	nLines := len(lines)
	if nLines < 1 {
		nLines = 1
	}

	width := t.Width
	if width <= 0 {
		longest := 0
		for _, ln := range lines {
			if n := len([]rune(ln)); n > longest {
				longest = n
			}
		}
		if longest < 1 {
			longest = 1
		}
		width = float64(longest) * charH * charWidthFactor
	}
	height := float64(nLines) * charH * lineHeightFactor

	x, y := t.Insert.X, t.Insert.Y
	ap := t.Attachment
	if ap < 1 || ap > 9 {
		ap = 1
	}

	var ymin, ymax float64
	switch {
	case ap <= 3: // top row
		ymin, ymax = y-height, y
	case ap <= 6: // middle row
		ymin, ymax = y-height/2, y+height/2
	default: // bottom row
		ymin, ymax = y, y+height
	}

	var xmin, xmax float64
	switch ap % 3 {
	case 1: // left column
		xmin, xmax = x, x+width
	case 2: // center column
		xmin, xmax = x-width/2, x+width/2
	default: // right column
		xmin, xmax = x-width, x
	}
	return geometry.Rect{MinX: xmin, MinY: ymin, MaxX: xmax, MaxY: ymax}
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) != "" {
			out = append(out, ln)
		}
	}
	if len(out) == 0 && text != "" {
		out = append(out, text)
	}
	return out
}
