package seek_test

import (
	"testing"

	"github.com/dargueta/sectorimg"
	"github.com/dargueta/sectorimg/seek"
	"github.com/stretchr/testify/assert"
)

func TestRotationalMap__NoSkewNoInterleave__IsIdentity(t *testing.T) {
	m := seek.RotationalMap(9, 0, 0, 0, 0, 1)
	for i, v := range m {
		assert.Equal(t, i, v)
	}
}

func TestRotationalMap__IsAPermutation(t *testing.T) {
	m := seek.RotationalMap(18, 5, 1, 2, 1, 4)
	seen := make(map[int]bool)
	for _, v := range m {
		assert.False(t, seen[v], "value %d repeated", v)
		seen[v] = true
	}
	assert.Len(t, seen, 18)
}

func TestTrackOffset__SequentialVsDefault(t *testing.T) {
	const trackSize = 4096
	seqOff, err := seek.TrackOffset(0, 80, 2, 5, 1, sectorimg.LayoutSequential, trackSize)
	assert.NoError(t, err)
	assert.EqualValues(t, (1*80+5)*trackSize, seqOff)

	defOff, err := seek.TrackOffset(0, 80, 2, 5, 1, 0, trackSize)
	assert.NoError(t, err)
	assert.EqualValues(t, (5*2+1)*trackSize, defOff)
}

func TestTrackOffset__SidesSwapped(t *testing.T) {
	const trackSize = 4096
	off0, err := seek.TrackOffset(0, 80, 2, 5, 0, sectorimg.LayoutSidesSwapped, trackSize)
	assert.NoError(t, err)
	off1, err := seek.TrackOffset(0, 80, 2, 5, 1, 0, trackSize)
	assert.NoError(t, err)
	assert.Equal(t, off1, off0)
}

func TestTrackOffset__OutOfRangeFails(t *testing.T) {
	_, err := seek.TrackOffset(0, 80, 2, 80, 0, 0, 4096)
	assert.Error(t, err)
}
