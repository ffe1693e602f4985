package render

import (
	"image"

	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// FrameState is the immutable input of one compose pass. Two ticks with equal
// FrameState values produce byte-identical frames, which is what the render
// loop relies on to suppress redundant redraws.
type FrameState struct {
	TimeText   string
	DateText   string
	StatusText string
	Color      RGB
	Brightness float64
	ShiftX     int
	ShiftY     int
}

type regionID int

const (
	timeRegion regionID = iota
	dateRegion
	statusRegion
	regionCount
)

type regionState struct {
	text       string
	color      RGB
	brightness float64
	dx         int
	dy         int
}

type region struct {
	has   bool
	state regionState
	rect  image.Rectangle
}

// GlyphSource is the part of the glyph cache the compositor needs.
type GlyphSource interface {
	Glyph(face FaceID, r rune, col RGB) (*Glyph, error)
	MeasureString(face FaceID, s string) int
	Ascent(face FaceID) int
	LineHeight(face FaceID) int
}

// Compositor assembles frames from cached glyphs onto a reusable canvas and
// reports which rectangles changed against the previous frame.
type Compositor struct {
	cache  GlyphSource
	canvas *Canvas

	statusEnabled bool
	margin        int

	regions [regionCount]region
}

const (
	// Vertical block centers relative to the canvas center.
	timeCenterOffset = -60
	dateCenterOffset = 100

	statusBottomPad = 4
	indicatorSize   = 6
	indicatorGap    = 6

	edgeMargin = 30
)

func NewCompositor(cache GlyphSource, canvas *Canvas, statusEnabled bool) *Compositor {
	return &Compositor{
		cache:         cache,
		canvas:        canvas,
		statusEnabled: statusEnabled,
		margin:        edgeMargin,
	}
}

// Canvas returns the frame buffer the compositor draws into.
func (cp *Compositor) Canvas() *Canvas { return cp.canvas }

// Reset forgets all remembered regions and blacks out the canvas. Used at
// startup and when leaving the blanked state, before a forced full redraw.
func (cp *Compositor) Reset() {
	cp.canvas.Clear()
	for i := range cp.regions {
		cp.regions[i] = region{}
	}
}

// ComposeFrame brings the canvas up to date with the given state and returns
// the rectangles that changed versus the previous pass. Regions whose inputs
// did not change are left untouched. When a repaint overwrote pixels of a
// region it did not repaint (regions can share rows when the configured faces
// are large), the pass degrades to one full recompose so no region is left
// half erased.
func (cp *Compositor) ComposeFrame(fs FrameState) ([]image.Rectangle, error) {
	var regionDirty [regionCount][]image.Rectangle
	var err error

	regionDirty[timeRegion], err = cp.composeText(timeRegion, TimeFace, fs.TimeText, cp.canvas.Height()/2+timeCenterOffset, fs)
	if err != nil {
		return nil, err
	}

	regionDirty[dateRegion], err = cp.composeText(dateRegion, DateFace, fs.DateText, cp.canvas.Height()/2+dateCenterOffset, fs)
	if err != nil {
		return nil, err
	}

	if cp.statusEnabled {
		regionDirty[statusRegion] = cp.composeStatus(fs)
	}

	if cp.crossRegionDamage(&regionDirty) {
		cp.Reset()
		if _, err := cp.composeText(timeRegion, TimeFace, fs.TimeText, cp.canvas.Height()/2+timeCenterOffset, fs); err != nil {
			return nil, err
		}
		if _, err := cp.composeText(dateRegion, DateFace, fs.DateText, cp.canvas.Height()/2+dateCenterOffset, fs); err != nil {
			return nil, err
		}
		if cp.statusEnabled {
			cp.composeStatus(fs)
		}
		return []image.Rectangle{cp.canvas.Bounds()}, nil
	}

	var dirty []image.Rectangle
	for id := range regionDirty {
		dirty = append(dirty, regionDirty[id]...)
	}
	return dirty, nil
}

// crossRegionDamage reports whether this pass cleared or painted rows that
// belong to a region it did not repaint.
func (cp *Compositor) crossRegionDamage(regionDirty *[regionCount][]image.Rectangle) bool {
	for id := range cp.regions {
		reg := &cp.regions[id]
		if !reg.has || reg.rect.Empty() {
			continue
		}
		for other := range regionDirty {
			if other == id {
				continue
			}
			for _, r := range regionDirty[other] {
				if r.Overlaps(reg.rect) {
					return true
				}
			}
		}
	}
	return false
}

// composeText redraws one centered text region if its inputs changed. The
// centering rule is floor division: when zone and text widths have different
// parity the extra pixel goes to the right side. The remembered rectangle is
// the union of pixels actually blitted, not the full line-height block, so
// neighbouring regions with generous line heights keep disjoint rectangles.
func (cp *Compositor) composeText(id regionID, face FaceID, text string, centerY int, fs FrameState) ([]image.Rectangle, error) {
	st := regionState{text: text, color: fs.Color, brightness: fs.Brightness, dx: fs.ShiftX, dy: fs.ShiftY}
	reg := &cp.regions[id]
	if reg.has && reg.state == st {
		return nil, nil
	}

	var dirty []image.Rectangle
	if reg.has && !reg.rect.Empty() {
		cp.canvas.Fill(reg.rect, 0)
		dirty = append(dirty, reg.rect)
	}

	drawn := image.Rectangle{}
	if text != "" {
		textWidth := cp.cache.MeasureString(face, text)
		textHeight := cp.cache.LineHeight(face)

		x := (cp.canvas.Width()-textWidth)/2 + fs.ShiftX
		y := centerY - textHeight/2 + fs.ShiftY
		x, y = cp.clampBlock(x, y, textWidth, textHeight)

		fullBright := fs.Brightness >= 1.0
		var table *CoverageTable
		if !fullBright {
			table = BuildCoverageTable(fs.Color, fs.Brightness)
		}

		ascent := cp.cache.Ascent(face)
		pen := fixed.I(x)
		for _, r := range text {
			g, err := cp.cache.Glyph(face, r, fs.Color)
			if err != nil {
				return dirty, err
			}
			gx := pen.Floor() + g.Left
			gy := y + ascent + g.Top
			var blitted image.Rectangle
			if fullBright {
				blitted = cp.canvas.BlitGlyphNative(g, gx, gy)
			} else {
				blitted = cp.canvas.BlitGlyph(g, gx, gy, table)
			}
			drawn = drawn.Union(blitted)
			pen += g.Advance
		}
		if !drawn.Empty() {
			dirty = append(dirty, drawn)
		}
	}

	reg.has = true
	reg.state = st
	reg.rect = drawn
	return dirty, nil
}

// clampBlock keeps a text block inside the canvas, preferring the configured
// edge margin. Oversized blocks degrade to a best effort and rely on blit
// clipping.
func (cp *Compositor) clampBlock(x, y, width, height int) (int, int) {
	if x < cp.margin {
		x = cp.margin
	}
	if x+width+cp.margin > cp.canvas.Width() {
		x = cp.canvas.Width() - width - cp.margin
		if x < 0 {
			x = 0
		}
	}
	if y < cp.margin {
		y = cp.margin
	}
	if y+height+cp.margin > cp.canvas.Height() {
		y = cp.canvas.Height() - height - cp.margin
		if y < 0 {
			y = 0
		}
	}
	return x, y
}

// composeStatus renders the bottom status line: a small activity indicator
// square plus a short label in the bitmap face. No TTF rasterization is
// involved and pixel shift does not apply here.
func (cp *Compositor) composeStatus(fs FrameState) []image.Rectangle {
	statusColor := fs.Color.Scale(0.6)
	st := regionState{text: fs.StatusText, color: statusColor, brightness: fs.Brightness}
	reg := &cp.regions[statusRegion]
	if reg.has && reg.state == st {
		return nil
	}

	var dirty []image.Rectangle
	if reg.has && !reg.rect.Empty() {
		cp.canvas.Fill(reg.rect, 0)
		dirty = append(dirty, reg.rect)
	}

	drawn := image.Rectangle{}
	if fs.StatusText != "" {
		metrics := bitmapfont.Face.Metrics()
		textHeight := metrics.Ascent.Ceil() + metrics.Descent.Ceil()
		textWidth := font.MeasureString(bitmapfont.Face, fs.StatusText).Ceil()
		total := indicatorSize + indicatorGap + textWidth

		x := (cp.canvas.Width() - total) / 2
		top := cp.canvas.Height() - textHeight - statusBottomPad
		lit := statusColor.Scale(fs.Brightness)

		cp.canvas.Fill(
			image.Rect(x, top+(textHeight-indicatorSize)/2, x+indicatorSize, top+(textHeight+indicatorSize)/2),
			PackRGB565(lit))

		drawer := &font.Drawer{
			Dst:  cp.canvas,
			Src:  image.NewUniform(rgbaFromRGB(lit)),
			Face: bitmapfont.Face,
			Dot:  fixed.P(x+indicatorSize+indicatorGap, top+metrics.Ascent.Ceil()),
		}
		drawer.DrawString(fs.StatusText)

		drawn = image.Rect(x, top, x+total, top+textHeight).Intersect(cp.canvas.Bounds())
		dirty = append(dirty, drawn)
	}

	reg.has = true
	reg.state = st
	reg.rect = drawn
	return dirty
}
