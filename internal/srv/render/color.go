package render

import (
	"fmt"
	"image/color"
)

// RGB is an 8-bit-per-channel foreground color.
type RGB struct {
	R, G, B uint8
}

// ParseHexColor interprets a "#RRGGBB" string, case-insensitive.
func ParseHexColor(s string) (RGB, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, fmt.Errorf("malformed color %q: want #RRGGBB", s)
	}
	var channels [3]uint8
	for i := 0; i < 3; i++ {
		hi, okHi := hexDigit(s[1+i*2])
		lo, okLo := hexDigit(s[2+i*2])
		if !okHi || !okLo {
			return RGB{}, fmt.Errorf("malformed color %q: want #RRGGBB", s)
		}
		channels[i] = hi<<4 | lo
	}
	return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Scale multiplies each channel by factor, clamped to [0, 255].
func (c RGB) Scale(factor float64) RGB {
	if factor < 0 {
		factor = 0
	} else if factor > 1 {
		factor = 1
	}
	return RGB{
		R: uint8(float64(c.R)*factor + 0.5),
		G: uint8(float64(c.G)*factor + 0.5),
		B: uint8(float64(c.B)*factor + 0.5),
	}
}

// PackRGB565 packs an 8-bit color into the device's 16-bit 5-6-5 layout.
func PackRGB565(c RGB) uint16 {
	r5 := uint16(c.R) >> 3
	g6 := uint16(c.G) >> 2
	b5 := uint16(c.B) >> 3
	return r5<<11 | g6<<5 | b5
}

// UnpackRGB565 expands a 5-6-5 pixel back to 8-bit channels, replicating the
// high bits into the low ones.
func UnpackRGB565(p uint16) RGB {
	r5 := uint8(p >> 11 & 0x1f)
	g6 := uint8(p >> 5 & 0x3f)
	b5 := uint8(p & 0x1f)
	return RGB{
		R: r5<<3 | r5>>2,
		G: g6<<2 | g6>>4,
		B: b5<<3 | b5>>2,
	}
}

// CoverageTable maps a glyph coverage value to the RGB565 pixel obtained by
// modulating a foreground color with that coverage. Built once per compose
// pass so that blits are a single table lookup per pixel.
type CoverageTable [256]uint16

func BuildCoverageTable(col RGB, brightness float64) *CoverageTable {
	lit := col.Scale(brightness)
	var table CoverageTable
	for cov := 0; cov < 256; cov++ {
		table[cov] = PackRGB565(RGB{
			R: uint8(int(lit.R) * cov / 255),
			G: uint8(int(lit.G) * cov / 255),
			B: uint8(int(lit.B) * cov / 255),
		})
	}
	return &table
}

func rgbaFromRGB(c RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
