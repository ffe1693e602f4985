package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimingWindowContains(t *testing.T) {
	w := TimingWindow{StartHour: 2, EndHour: 5}

	assert.False(t, w.Contains(1))
	assert.True(t, w.Contains(2))
	assert.True(t, w.Contains(3))
	assert.False(t, w.Contains(5))
	assert.False(t, w.Contains(6))
	assert.False(t, w.Contains(23))
}

func TestTimingWindowContainsWraparound(t *testing.T) {
	w := TimingWindow{StartHour: 22, EndHour: 6}

	assert.True(t, w.Contains(22))
	assert.True(t, w.Contains(23))
	assert.True(t, w.Contains(0))
	assert.True(t, w.Contains(3))
	assert.True(t, w.Contains(5))
	assert.False(t, w.Contains(6))
	assert.False(t, w.Contains(10))
	assert.False(t, w.Contains(21))
}

func TestTimingWindowEmpty(t *testing.T) {
	w := TimingWindow{StartHour: 7, EndHour: 7}

	for hour := 0; hour < 24; hour++ {
		assert.False(t, w.Contains(hour), "hour %d", hour)
	}
}
