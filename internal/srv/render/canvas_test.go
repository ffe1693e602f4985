package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/image/math/fixed"
)

func solidGlyph(width, height int, col RGB) *Glyph {
	alpha := make([]uint8, width*height)
	native := make([]uint16, width*height)
	packed := PackRGB565(col)
	for i := range alpha {
		alpha[i] = 255
		native[i] = packed
	}
	return &Glyph{
		Rune:    'X',
		Width:   width,
		Height:  height,
		Top:     -height,
		Advance: fixed.I(width),
		Alpha:   alpha,
		Native:  native,
	}
}

func TestCanvasFillClips(t *testing.T) {
	c := NewCanvas(8, 8)
	c.Fill(image.Rect(-4, -4, 4, 4), 0xffff)

	assert.Equal(t, uint16(0xffff), pixelAt(c, 0, 0))
	assert.Equal(t, uint16(0xffff), pixelAt(c, 3, 3))
	assert.Equal(t, uint16(0x0000), pixelAt(c, 4, 4))
}

func TestBlitGlyphClipsAtRightEdge(t *testing.T) {
	const width = 64
	c := NewCanvas(width, 32)
	g := solidGlyph(16, 16, RGB{G: 255})

	// Glyph positioned half off-canvas must clip, not fail.
	x := width - g.Width/2
	rect := c.BlitGlyphNative(g, x, 8)

	assert.Equal(t, image.Rect(x, 8, width, 24), rect)
	assert.LessOrEqual(t, rect.Dx(), width-x)
	assert.Equal(t, PackRGB565(RGB{G: 255}), pixelAt(c, width-1, 8))
}

func TestBlitGlyphFullyOffCanvas(t *testing.T) {
	c := NewCanvas(32, 32)
	g := solidGlyph(8, 8, RGB{R: 255})

	assert.True(t, c.BlitGlyphNative(g, 100, 100).Empty())
	assert.True(t, c.BlitGlyph(g, -20, -20, BuildCoverageTable(RGB{R: 255}, 0.5)).Empty())
}

func TestBlitGlyphAppliesBrightnessTable(t *testing.T) {
	c := NewCanvas(16, 16)
	col := RGB{R: 200, G: 100, B: 40}
	g := solidGlyph(4, 4, col)

	table := BuildCoverageTable(col, 0.5)
	c.BlitGlyph(g, 0, 0, table)

	assert.Equal(t, PackRGB565(col.Scale(0.5)), pixelAt(c, 1, 1))
}

func TestCanvasSetAt(t *testing.T) {
	c := NewCanvas(4, 4)
	c.Set(1, 2, rgbaFromRGB(RGB{R: 255, G: 255, B: 255}))

	r, g, b, _ := c.At(1, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)

	// Out-of-bounds access is a no-op.
	c.Set(-1, 0, rgbaFromRGB(RGB{R: 255}))
	c.Set(4, 4, rgbaFromRGB(RGB{R: 255}))
}

func pixelAt(c *Canvas, x, y int) uint16 {
	off := (y*c.Width() + x) * 2
	return uint16(c.Pix()[off]) | uint16(c.Pix()[off+1])<<8
}
