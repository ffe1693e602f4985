package render

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFontPath(t *testing.T) string {
	t.Helper()
	candidates := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("no TrueType font available on this host")
	return ""
}

func TestNewGlyphCacheMissingFont(t *testing.T) {
	_, err := NewGlyphCache("/nonexistent/font.ttf", 280, 90)
	assert.Error(t, err)
}

func TestGlyphCacheIdempotence(t *testing.T) {
	gc, err := NewGlyphCache(testFontPath(t), 48, 24)
	require.NoError(t, err)

	col := RGB{G: 255}
	first, err := gc.Glyph(TimeFace, '7', col)
	require.NoError(t, err)
	count := gc.RasterizeCount()

	second, err := gc.Glyph(TimeFace, '7', col)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, count, gc.RasterizeCount(), "second lookup must not re-rasterize")
	assert.Equal(t, first.Alpha, second.Alpha)
	assert.Equal(t, first.Native, second.Native)
}

func TestGlyphCacheColorChangeReusesMask(t *testing.T) {
	gc, err := NewGlyphCache(testFontPath(t), 48, 24)
	require.NoError(t, err)

	green, err := gc.Glyph(TimeFace, '3', RGB{G: 255})
	require.NoError(t, err)
	count := gc.RasterizeCount()

	red, err := gc.Glyph(TimeFace, '3', RGB{R: 255})
	require.NoError(t, err)

	assert.Equal(t, count, gc.RasterizeCount(), "color change must not re-rasterize")
	assert.Equal(t, green.Alpha, red.Alpha)
	assert.NotEqual(t, green.Native, red.Native)
}

func TestGlyphCacheFacesDiffer(t *testing.T) {
	gc, err := NewGlyphCache(testFontPath(t), 48, 24)
	require.NoError(t, err)

	big, err := gc.Glyph(TimeFace, '0', RGB{G: 255})
	require.NoError(t, err)
	small, err := gc.Glyph(DateFace, '0', RGB{G: 255})
	require.NoError(t, err)

	assert.Greater(t, big.Height, small.Height)
	assert.Greater(t, gc.MeasureString(TimeFace, "00:00"), gc.MeasureString(DateFace, "00:00"))
}

func TestGlyphCacheMetrics(t *testing.T) {
	gc, err := NewGlyphCache(testFontPath(t), 48, 24)
	require.NoError(t, err)

	assert.Greater(t, gc.Ascent(TimeFace), 0)
	assert.Greater(t, gc.LineHeight(TimeFace), gc.Ascent(TimeFace))
}
