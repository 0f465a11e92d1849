package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/framescan/internal/detector"
	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

const overlayPadding = 20 // pixels around the drawing extent

var (
	frameColor  = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	roiColor    = color.RGBA{R: 40, G: 110, B: 220, A: 255}
	anchorColor = color.RGBA{R: 40, G: 180, B: 80, A: 255}
	labelColor  = color.RGBA{R: 20, G: 20, B: 20, A: 255}
)

// RenderOverlay rasterizes the detection result: the outer box of every frame
// and sheet-set page, the restored field ROIs of frames with a known profile,
// and a paper-variant label per frame. The drawing's y axis points up, so
// rows are flipped into image space. Returns nil when the result contains no
// geometry.
func (p *Pipeline) RenderOverlay(res *DrawingResult) *image.RGBA {
	boxes := collectBoxes(res)
	if len(boxes) == 0 {
		return nil
	}

	extent := boxes[0].Runtime.OuterBBox
	for _, f := range boxes[1:] {
		extent = union(extent, f.Runtime.OuterBBox)
	}

	ppu := p.cfg.Output.OverlayPPU
	if ppu <= 0 {
		ppu = 1
	}
	w := int(math.Ceil(extent.Width()*ppu)) + 2*overlayPadding
	h := int(math.Ceil(extent.Height()*ppu)) + 2*overlayPadding

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range dst.Pix {
		dst.Pix[i] = 0xff // white background
	}

	toPixel := func(x, y float64) (int, int) {
		px := int((x-extent.MinX)*ppu) + overlayPadding
		py := h - overlayPadding - int((y-extent.MinY)*ppu)
		return px, py
	}
	drawBox := func(r geometry.Rect, c color.Color, thickness int) {
		x1, y2 := toPixel(r.MinX, r.MinY)
		x2, y1 := toPixel(r.MaxX, r.MaxY)
		drawRect(dst, image.Rect(x1, y1, x2, y2), c, thickness)
	}

	for _, f := range boxes {
		drawBox(f.Runtime.OuterBBox, frameColor, 2)
		p.drawROIs(f, drawBox)

		px, py := toPixel(f.Runtime.OuterBBox.MinX, f.Runtime.OuterBBox.MaxY)
		drawLabel(dst, px+4, py+14, frameLabel(f))
	}
	return dst
}

// SaveOverlay renders the overlay and writes it as PNG into the configured
// overlay directory. Returns the written path, or "" when there was nothing
// to render.
func (p *Pipeline) SaveOverlay(res *DrawingResult) (string, error) {
	img := p.RenderOverlay(res)
	if img == nil {
		return "", nil
	}
	dir := p.cfg.Output.OverlayDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating overlay dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(res.SourceFile), filepath.Ext(res.SourceFile))
	if base == "" {
		base = "drawing"
	}
	path := filepath.Join(dir, base+".png")
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("saving overlay: %w", err)
	}
	return path, nil
}

func collectBoxes(res *DrawingResult) []*frame.Meta {
	if res == nil {
		return nil
	}
	boxes := append([]*frame.Meta(nil), res.Frames...)
	for _, s := range res.SheetSets {
		for _, page := range s.Pages {
			if page.Frame != nil {
				boxes = append(boxes, page.Frame)
				continue
			}
			boxes = append(boxes, &frame.Meta{Runtime: frame.Runtime{
				OuterBBox:      page.OuterBBox,
				PaperVariantID: "A4",
			}})
		}
	}
	return boxes
}

func (p *Pipeline) drawROIs(f *frame.Meta, drawBox func(geometry.Rect, color.Color, int)) {
	profile := p.cfg.Detection.Profile(f.Runtime.ROIProfileID)
	if profile == nil || f.Runtime.SX <= 0 || f.Runtime.SY <= 0 {
		return
	}
	for name, offsets := range profile.Fields {
		if len(offsets) != 4 {
			continue
		}
		roi := detector.RestoreROI(f.Runtime.OuterBBox, offsets, f.Runtime.SX, f.Runtime.SY)
		c := roiColor
		if name == p.cfg.Detection.Anchor.ROIField {
			c = anchorColor
		}
		drawBox(roi, c, 1)
	}
}

func frameLabel(f *frame.Meta) string {
	label := f.Runtime.PaperVariantID
	if label == "" {
		label = "?"
	}
	if f.Titleblock.InternalCode != "" {
		label += " " + f.Titleblock.InternalCode
	}
	return label
}

func union(a, b geometry.Rect) geometry.Rect {
	return geometry.Rect{
		MinX: min(a.MinX, b.MinX),
		MinY: min(a.MinY, b.MinY),
		MaxX: max(a.MaxX, b.MaxX),
		MaxY: max(a.MaxY, b.MaxY),
	}
}

// drawRect draws an axis-aligned rectangle outline with the given thickness.
func drawRect(img *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	r = r.Canon().Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for t := range thickness {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, r.Min.Y+t, c)
			img.Set(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.Set(r.Min.X+t, y, c)
			img.Set(r.Max.X-1-t, y, c)
		}
	}
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
