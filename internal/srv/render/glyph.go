package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io/ioutil"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FaceID selects one of the configured point sizes.
type FaceID int

const (
	TimeFace FaceID = iota
	DateFace
	faceCount
)

// Glyph is a single character rasterized at a fixed face and color. Alpha is
// the coverage mask, Native the same pixels pre-converted to RGB565 at full
// brightness. Both buffers are immutable once built.
type Glyph struct {
	Rune    rune
	Width   int
	Height  int
	Left    int // horizontal offset from the pen position
	Top     int // vertical offset from the baseline, negative above it
	Advance fixed.Int26_6
	Alpha   []uint8
	Native  []uint16
}

type maskKey struct {
	face FaceID
	r    rune
}

type glyphKey struct {
	face FaceID
	r    rune
	rgb  uint32
}

type glyphMask struct {
	width   int
	height  int
	left    int
	top     int
	advance fixed.Int26_6
	alpha   []uint8
}

// GlyphCache rasterizes each character once per face and converts it once per
// foreground color. The character set of a clock display is closed and small,
// so entries are never evicted.
type GlyphCache struct {
	fnt   *sfnt.Font
	faces [faceCount]font.Face

	masks  map[maskKey]*glyphMask
	glyphs map[glyphKey]*Glyph

	rasterizeCount int
}

// NewGlyphCache loads the font file and prepares one face per configured
// size. A font that cannot be loaded is a startup failure: the caller must
// not continue with a half-configured renderer.
func NewGlyphCache(fontPath string, timeSize, dateSize float64) (*GlyphCache, error) {
	fontBytes, err := ioutil.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read font %s: %w", fontPath, err)
	}
	fnt, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("unable to parse font %s: %w", fontPath, err)
	}

	gc := &GlyphCache{
		fnt:    fnt,
		masks:  make(map[maskKey]*glyphMask),
		glyphs: make(map[glyphKey]*Glyph),
	}

	sizes := [faceCount]float64{TimeFace: timeSize, DateFace: dateSize}
	for faceID, size := range sizes {
		face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("unable to create %gpt face: %w", size, err)
		}
		gc.faces[faceID] = face
	}

	return gc, nil
}

// Glyph returns the cached glyph for (face, r, col), rasterizing the mask on
// first demand and converting it to the native pixel format on first demand
// for that color.
func (gc *GlyphCache) Glyph(face FaceID, r rune, col RGB) (*Glyph, error) {
	rgb := uint32(col.R)<<16 | uint32(col.G)<<8 | uint32(col.B)
	gk := glyphKey{face: face, r: r, rgb: rgb}
	if g, ok := gc.glyphs[gk]; ok {
		return g, nil
	}

	mask, err := gc.mask(face, r)
	if err != nil {
		return nil, err
	}

	native := make([]uint16, len(mask.alpha))
	table := BuildCoverageTable(col, 1.0)
	for i, cov := range mask.alpha {
		native[i] = table[cov]
	}

	g := &Glyph{
		Rune:    r,
		Width:   mask.width,
		Height:  mask.height,
		Left:    mask.left,
		Top:     mask.top,
		Advance: mask.advance,
		Alpha:   mask.alpha,
		Native:  native,
	}
	gc.glyphs[gk] = g
	return g, nil
}

func (gc *GlyphCache) mask(face FaceID, r rune) (*glyphMask, error) {
	mk := maskKey{face: face, r: r}
	if m, ok := gc.masks[mk]; ok {
		return m, nil
	}

	dr, maskImg, maskp, advance, ok := gc.faces[face].Glyph(fixed.Point26_6{}, r)
	if !ok {
		return nil, fmt.Errorf("font has no glyph for %q", r)
	}
	gc.rasterizeCount++

	width := dr.Dx()
	height := dr.Dy()
	alphaImg := image.NewAlpha(image.Rect(0, 0, width, height))
	draw.DrawMask(alphaImg, alphaImg.Bounds(),
		image.NewUniform(color.Alpha{A: 255}), image.Point{},
		maskImg, maskp, draw.Src)

	m := &glyphMask{
		width:   width,
		height:  height,
		left:    dr.Min.X,
		top:     dr.Min.Y,
		advance: advance,
		alpha:   alphaImg.Pix,
	}
	gc.masks[mk] = m
	return m, nil
}

// MeasureString returns the advance width of s in pixels.
func (gc *GlyphCache) MeasureString(face FaceID, s string) int {
	return font.MeasureString(gc.faces[face], s).Ceil()
}

// Ascent returns the face's ascent in pixels.
func (gc *GlyphCache) Ascent(face FaceID) int {
	return gc.faces[face].Metrics().Ascent.Ceil()
}

// LineHeight returns ascent plus descent in pixels.
func (gc *GlyphCache) LineHeight(face FaceID) int {
	metrics := gc.faces[face].Metrics()
	return metrics.Ascent.Ceil() + metrics.Descent.Ceil()
}

// RasterizeCount reports how many glyph masks have been rendered by the font
// backend since startup.
func (gc *GlyphCache) RasterizeCount() int {
	return gc.rasterizeCount
}
