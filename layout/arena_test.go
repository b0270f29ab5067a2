package layout_test

import (
	"testing"

	"github.com/dargueta/sectorimg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena__SimpleGeometry__RoundTrips(t *testing.T) {
	a := layout.NewArena(0)
	require.NoError(t, a.InitTrackMap(80, 2))

	trk, trkIdx, err := a.AddTrackLayout(9)
	require.NoError(t, err)
	trk.IsFM = false
	for i := range a.Sectors(trkIdx) {
		a.Sectors(trkIdx)[i] = layout.Sec{R: uint8(i + 1), N: 2}
	}

	for cyl := 0; cyl < 80; cyl++ {
		for head := 0; head < 2; head++ {
			require.NoError(t, a.SetTrackMap(cyl, head, trkIdx))
		}
	}
	require.NoError(t, a.Finalise())

	gotTrk, secs, err := a.TrackAt(40, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, gotTrk.NrSectors)
	assert.Len(t, secs, 9)
	assert.EqualValues(t, 512, secs[0].Size())
}

func TestArena__Finalise__UnassignedTrackIsBadImage(t *testing.T) {
	a := layout.NewArena(0)
	require.NoError(t, a.InitTrackMap(2, 1))
	_, _, err := a.AddTrackLayout(9)
	require.NoError(t, err)
	// deliberately never call SetTrackMap for cylinder 1

	require.NoError(t, a.SetTrackMap(0, 0, 0))
	err = a.Finalise()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no assigned layout")
}

func TestArena__AddTrackLayout__RejectsOutOfRangeSectorCount(t *testing.T) {
	a := layout.NewArena(0)
	require.NoError(t, a.InitTrackMap(1, 1))
	_, _, err := a.AddTrackLayout(257)
	assert.Error(t, err)
}

func TestArena__TrackAt__OutOfRangeCylinderFails(t *testing.T) {
	a := layout.NewArena(0)
	require.NoError(t, a.InitTrackMap(40, 1))
	_, _, err := a.TrackAt(40, 0)
	assert.Error(t, err)
}

func TestArena__TrackFileOffset__AbsentUntilSet(t *testing.T) {
	a := layout.NewArena(0)
	require.NoError(t, a.InitTrackMap(2, 1))
	_, ok := a.TrackFileOffset(0, 0)
	assert.False(t, ok)

	require.NoError(t, a.SetTrackFileOffset(0, 0, 0))
	require.NoError(t, a.SetTrackFileOffset(1, 0, 4096))

	off, ok := a.TrackFileOffset(0, 0)
	assert.True(t, ok)
	assert.EqualValues(t, 0, off)

	off, ok = a.TrackFileOffset(1, 0)
	assert.True(t, ok)
	assert.EqualValues(t, 4096, off)
}

func TestArena__InitTrackMap__RespectsByteBudget(t *testing.T) {
	// A budget too small to even hold the track map should fail during
	// InitTrackMap, not silently succeed.
	a := layout.NewArena(4)
	err := a.InitTrackMap(80, 2)
	assert.Error(t, err)
}
