package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	col, err := ParseHexColor("#00FF00")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 0, G: 255, B: 0}, col)

	col, err = ParseHexColor("#a0B1c2")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 0xa0, G: 0xb1, B: 0xc2}, col)
}

func TestParseHexColorRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "#", "#zzzzzz", "#12345", "#1234567", "00FF00", "#00FF0g"} {
		_, err := ParseHexColor(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestPackRGB565(t *testing.T) {
	assert.Equal(t, uint16(0x0000), PackRGB565(RGB{}))
	assert.Equal(t, uint16(0xffff), PackRGB565(RGB{R: 255, G: 255, B: 255}))
	assert.Equal(t, uint16(0xf800), PackRGB565(RGB{R: 255}))
	assert.Equal(t, uint16(0x07e0), PackRGB565(RGB{G: 255}))
	assert.Equal(t, uint16(0x001f), PackRGB565(RGB{B: 255}))
}

func TestUnpackRGB565RoundTrip(t *testing.T) {
	for _, col := range []RGB{{}, {R: 255, G: 255, B: 255}, {R: 0x88, G: 0x44, B: 0x20}} {
		packed := PackRGB565(col)
		assert.Equal(t, packed, PackRGB565(UnpackRGB565(packed)))
	}
}

func TestScaleClamps(t *testing.T) {
	col := RGB{R: 100, G: 200, B: 50}
	assert.Equal(t, col, col.Scale(1.5))
	assert.Equal(t, RGB{}, col.Scale(-0.2))
	assert.Equal(t, RGB{R: 50, G: 100, B: 25}, col.Scale(0.5))
}

func TestBuildCoverageTable(t *testing.T) {
	table := BuildCoverageTable(RGB{R: 255, G: 255, B: 255}, 1.0)
	assert.Equal(t, uint16(0x0000), table[0])
	assert.Equal(t, uint16(0xffff), table[255])

	dim := BuildCoverageTable(RGB{R: 255, G: 255, B: 255}, 0.0)
	assert.Equal(t, uint16(0x0000), dim[255])
}
