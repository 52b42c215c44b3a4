package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapX(t *testing.T) {
	for i := 0; i <= 100; i++ {
		x := float64(i) / 100

		assert.InDelta(t, 240-x*480, MapX(x, false, HalfWidth), 1e-9, "x=%v", x)
		assert.InDelta(t, -(240 - x*480), MapX(x, true, HalfWidth), 1e-9, "x=%v mirrored", x)
	}

	tests := []struct {
		nx     float64
		mirror bool
		want   float64
	}{
		{nx: 0, want: 240},
		{nx: 0.5, want: 0},
		{nx: 1, want: -240},
		{nx: 0, mirror: true, want: -240},
		{nx: 1, mirror: true, want: 240},
		{nx: 0.25, mirror: true, want: -120},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, MapX(tt.nx, tt.mirror, HalfWidth), 1e-9)
	}
}

func TestMapY(t *testing.T) {
	for i := 0; i <= 100; i++ {
		y := float64(i) / 100
		assert.InDelta(t, 180-y*360, MapY(y, HalfHeight), 1e-9, "y=%v", y)
	}

	assert.Equal(t, 180.0, MapY(0, HalfHeight))
	assert.Equal(t, 0.0, MapY(0.5, HalfHeight))
	assert.Equal(t, -180.0, MapY(1, HalfHeight))
}

func TestMap_YIgnoresMirror(t *testing.T) {
	a := Map(0.3, 0.7, false)
	b := Map(0.3, 0.7, true)

	assert.Equal(t, a.Y, b.Y)
	assert.InDelta(t, -a.X, b.X, 1e-9)
}

func TestMirror(t *testing.T) {
	var m Mirror
	assert.False(t, m.Enabled())

	m.Set(true)
	assert.True(t, m.Enabled())

	m.Set(false)
	assert.False(t, m.Enabled())

	var nilMirror *Mirror
	assert.False(t, nilMirror.Enabled())
}
