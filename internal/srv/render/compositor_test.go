package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGlyphs is a deterministic monospace glyph source: every rune renders as
// a fully opaque cellWidth x cellHeight block.
type fakeGlyphs struct {
	calls int
}

const (
	cellWidth  = 10
	cellHeight = 16
	cellAscent = 12
)

func (f *fakeGlyphs) Glyph(face FaceID, r rune, col RGB) (*Glyph, error) {
	f.calls++
	g := solidGlyph(cellWidth, cellHeight, col)
	g.Rune = r
	g.Top = -cellAscent
	return g, nil
}

func (f *fakeGlyphs) MeasureString(face FaceID, s string) int {
	return cellWidth * len([]rune(s))
}

func (f *fakeGlyphs) Ascent(face FaceID) int     { return cellAscent }
func (f *fakeGlyphs) LineHeight(face FaceID) int { return cellHeight }

func newTestCompositor(statusEnabled bool) (*Compositor, *fakeGlyphs) {
	glyphs := &fakeGlyphs{}
	// Tall enough that the time, date and status bands never share rows.
	return NewCompositor(glyphs, NewCanvas(400, 300), statusEnabled), glyphs
}

func baseState() FrameState {
	return FrameState{
		TimeText:   "10:00:00",
		DateText:   "Sat, Jan 10",
		Color:      RGB{G: 255},
		Brightness: 1.0,
	}
}

func TestComposeFrameInitialPassDirtiesAllRegions(t *testing.T) {
	cp, _ := newTestCompositor(false)

	dirty, err := cp.ComposeFrame(baseState())
	require.NoError(t, err)
	assert.Len(t, dirty, 2)
	for _, r := range dirty {
		assert.False(t, r.Empty())
	}
}

func TestComposeFrameUnchangedStateIsNoop(t *testing.T) {
	cp, _ := newTestCompositor(false)
	fs := baseState()

	_, err := cp.ComposeFrame(fs)
	require.NoError(t, err)

	dirty, err := cp.ComposeFrame(fs)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestComposeFrameTimeChangeExcludesDateRegion(t *testing.T) {
	cp, _ := newTestCompositor(false)
	fs := baseState()

	dirty, err := cp.ComposeFrame(fs)
	require.NoError(t, err)
	var dateRect image.Rectangle
	for _, r := range dirty {
		if r.Min.Y > cp.Canvas().Height()/2 {
			dateRect = r
		}
	}
	require.False(t, dateRect.Empty(), "expected a date rectangle below canvas center")

	fs.TimeText = "10:00:01"
	dirty, err = cp.ComposeFrame(fs)
	require.NoError(t, err)
	require.NotEmpty(t, dirty)
	for _, r := range dirty {
		assert.False(t, r.Overlaps(dateRect), "dirty rect %v overlaps date region %v", r, dateRect)
	}
}

func TestComposeFrameBrightnessChangeRedrawsText(t *testing.T) {
	cp, _ := newTestCompositor(false)
	fs := baseState()

	_, err := cp.ComposeFrame(fs)
	require.NoError(t, err)

	fs.Brightness = 0.3
	dirty, err := cp.ComposeFrame(fs)
	require.NoError(t, err)
	assert.NotEmpty(t, dirty)

	// The dimmed frame carries scaled pixels.
	canvas := cp.Canvas()
	dim := PackRGB565(RGB{G: 255}.Scale(0.3))
	found := false
	for i := 0; i < len(canvas.Pix()); i += 2 {
		p := uint16(canvas.Pix()[i]) | uint16(canvas.Pix()[i+1])<<8
		if p == dim {
			found = true
			break
		}
	}
	assert.True(t, found, "expected dimmed pixels on canvas")
}

func TestComposeFrameShiftNearEdgeDoesNotPanic(t *testing.T) {
	cp, _ := newTestCompositor(false)
	fs := baseState()
	fs.TimeText = "10:00:00 PM 10:00:00 PM 10:00:00 PM 10:00:00 PM"
	fs.ShiftX = 500
	fs.ShiftY = -500

	dirty, err := cp.ComposeFrame(fs)
	require.NoError(t, err)
	for _, r := range dirty {
		assert.True(t, r.In(cp.Canvas().Bounds()))
	}
}

func TestComposeFrameEmptyTextBlanksRegion(t *testing.T) {
	cp, _ := newTestCompositor(false)
	fs := baseState()

	_, err := cp.ComposeFrame(fs)
	require.NoError(t, err)

	fs.TimeText = ""
	dirty, err := cp.ComposeFrame(fs)
	require.NoError(t, err)
	require.Len(t, dirty, 1)

	// The cleared rectangle must be fully black again.
	r := dirty[0]
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			assert.Equal(t, uint16(0), pixelAt(cp.Canvas(), x, y))
		}
	}
}

func TestComposeFrameStatusBar(t *testing.T) {
	cp, _ := newTestCompositor(true)
	fs := baseState()
	fs.StatusText = "NET OK | SYNC 2m"

	dirty, err := cp.ComposeFrame(fs)
	require.NoError(t, err)
	assert.Len(t, dirty, 3)

	statusRect := dirty[len(dirty)-1]
	assert.Greater(t, statusRect.Min.Y, cp.Canvas().Height()-40)

	// Same status again: nothing to redraw.
	dirty, err = cp.ComposeFrame(fs)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

// wideGlyphs mimics large configured faces: the time face line height exceeds
// the gap between the time and date block centers, so on a 1920x1200 canvas
// the two blocks share rows.
type wideGlyphs struct{}

func (f *wideGlyphs) faceDims(face FaceID) (width, height, ascent int) {
	if face == TimeFace {
		return 150, 326, 260
	}
	return 52, 104, 84
}

func (f *wideGlyphs) Glyph(face FaceID, r rune, col RGB) (*Glyph, error) {
	w, h, a := f.faceDims(face)
	g := solidGlyph(w, h, col)
	g.Rune = r
	g.Top = -a
	return g, nil
}

func (f *wideGlyphs) MeasureString(face FaceID, s string) int {
	w, _, _ := f.faceDims(face)
	return w * len([]rune(s))
}

func (f *wideGlyphs) Ascent(face FaceID) int {
	_, _, a := f.faceDims(face)
	return a
}

func (f *wideGlyphs) LineHeight(face FaceID) int {
	_, h, _ := f.faceDims(face)
	return h
}

func TestComposeFrameTimeRedrawPreservesOverlappingDate(t *testing.T) {
	cp := NewCompositor(&wideGlyphs{}, NewCanvas(1920, 1200), false)
	fs := FrameState{
		TimeText:   "10:00:00",
		DateText:   "Sat, Jan 10",
		Color:      RGB{G: 255},
		Brightness: 1.0,
	}

	_, err := cp.ComposeFrame(fs)
	require.NoError(t, err)

	lit := PackRGB565(RGB{G: 255})
	// Row 650 belongs to both blocks, row 710 only to the date block.
	require.Equal(t, lit, pixelAt(cp.Canvas(), 745, 650))
	require.Equal(t, lit, pixelAt(cp.Canvas(), 745, 710))

	fs.TimeText = "10:00:01"
	dirty, err := cp.ComposeFrame(fs)
	require.NoError(t, err)
	require.NotEmpty(t, dirty)

	assert.Equal(t, lit, pixelAt(cp.Canvas(), 745, 650), "date pixel wiped by the time redraw")
	assert.Equal(t, lit, pixelAt(cp.Canvas(), 745, 710))
	for _, r := range dirty {
		assert.True(t, r.In(cp.Canvas().Bounds()))
	}
}

func TestResetForgetsRegions(t *testing.T) {
	cp, _ := newTestCompositor(false)
	fs := baseState()

	_, err := cp.ComposeFrame(fs)
	require.NoError(t, err)

	cp.Reset()
	dirty, err := cp.ComposeFrame(fs)
	require.NoError(t, err)
	assert.Len(t, dirty, 2, "full redraw expected after reset")
}
