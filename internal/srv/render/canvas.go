package render

import (
	"image"
	"image/color"
)

// Canvas is a reusable in-memory frame in the display's native RGB565 layout,
// little-endian, with a row stride of exactly Width()*2 bytes. It implements
// draw.Image so small overlays can be drawn with the standard font.Drawer.
type Canvas struct {
	width  int
	height int
	pix    []byte
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*2),
	}
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// Pix exposes the raw RGB565 buffer for the framebuffer writer.
func (c *Canvas) Pix() []byte { return c.pix }

func (c *Canvas) ColorModel() color.Model {
	return color.ModelFunc(func(in color.Color) color.Color {
		r, g, b, _ := in.RGBA()
		p := PackRGB565(RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)})
		return rgbaFromRGB(UnpackRGB565(p))
	})
}

func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

func (c *Canvas) At(x, y int) color.Color {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return color.RGBA{}
	}
	off := (y*c.width + x) * 2
	p := uint16(c.pix[off]) | uint16(c.pix[off+1])<<8
	return rgbaFromRGB(UnpackRGB565(p))
}

func (c *Canvas) Set(x, y int, col color.Color) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	r, g, b, _ := col.RGBA()
	c.setPixel(x, y, PackRGB565(RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}))
}

func (c *Canvas) setPixel(x, y int, p uint16) {
	off := (y*c.width + x) * 2
	c.pix[off] = byte(p)
	c.pix[off+1] = byte(p >> 8)
}

// Fill paints a rectangle with a single RGB565 pixel value, clipped to the
// canvas bounds.
func (c *Canvas) Fill(r image.Rectangle, p uint16) {
	r = r.Intersect(c.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := (y*c.width + r.Min.X) * 2
		for x := r.Min.X; x < r.Max.X; x++ {
			c.pix[off] = byte(p)
			c.pix[off+1] = byte(p >> 8)
			off += 2
		}
	}
}

// Clear resets the whole canvas to black.
func (c *Canvas) Clear() {
	for i := range c.pix {
		c.pix[i] = 0
	}
}

// BlitGlyph copies a cached glyph onto the canvas with its top-left corner at
// (x, y), modulating coverage through the given table. Parts of the glyph
// falling outside the canvas are clipped; the returned rectangle is the area
// actually written, which may be empty.
func (c *Canvas) BlitGlyph(g *Glyph, x, y int, table *CoverageTable) image.Rectangle {
	target := image.Rect(x, y, x+g.Width, y+g.Height).Intersect(c.Bounds())
	if target.Empty() {
		return image.Rectangle{}
	}
	for dy := target.Min.Y; dy < target.Max.Y; dy++ {
		srcRow := (dy - y) * g.Width
		off := (dy*c.width + target.Min.X) * 2
		for dx := target.Min.X; dx < target.Max.X; dx++ {
			cov := g.Alpha[srcRow+(dx-x)]
			if cov > 0 {
				p := table[cov]
				c.pix[off] = byte(p)
				c.pix[off+1] = byte(p >> 8)
			}
			off += 2
		}
	}
	return target
}

// BlitGlyphNative is the full-brightness fast path: it copies the glyph's
// pre-converted RGB565 buffer instead of going through a coverage table.
func (c *Canvas) BlitGlyphNative(g *Glyph, x, y int) image.Rectangle {
	target := image.Rect(x, y, x+g.Width, y+g.Height).Intersect(c.Bounds())
	if target.Empty() {
		return image.Rectangle{}
	}
	for dy := target.Min.Y; dy < target.Max.Y; dy++ {
		srcRow := (dy - y) * g.Width
		off := (dy*c.width + target.Min.X) * 2
		for dx := target.Min.X; dx < target.Max.X; dx++ {
			if g.Alpha[srcRow+(dx-x)] > 0 {
				p := g.Native[srcRow+(dx-x)]
				c.pix[off] = byte(p)
				c.pix[off+1] = byte(p >> 8)
			}
			off += 2
		}
	}
	return target
}
