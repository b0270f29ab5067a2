package xdf_test

import (
	"testing"

	"github.com/dargueta/sectorimg/layout"
	"github.com/dargueta/sectorimg/xdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArena__FourDistinctLayoutsAssigned(t *testing.T) {
	a := layout.NewArena(0)
	require.NoError(t, xdf.BuildArena(a))
	require.NoError(t, a.Finalise())

	trk, secs, err := a.TrackAt(0, 0)
	require.NoError(t, err)
	assert.Len(t, secs, 8)
	assert.Equal(t, uint8(1), secs[0].R)

	trkN, secsN, err := a.TrackAt(5, 0)
	require.NoError(t, err)
	assert.Len(t, secsN, 4)
	assert.NotEqual(t, trk.SecOff, trkN.SecOff)
}

func TestFileSecOffsets__IsCumulativeSum(t *testing.T) {
	offs := xdf.FileSecOffsets(xdf.CylNH0)
	assert.Equal(t, []int64{0, 8192, 8192 + 2048, 8192 + 2048*2}, offs)
}

func TestTrackDelayBitCells__OnlyHead1PastCylinder0(t *testing.T) {
	assert.Zero(t, xdf.TrackDelayBitCells(0, 1))
	assert.Zero(t, xdf.TrackDelayBitCells(5, 0))
	assert.Equal(t, 10000, xdf.TrackDelayBitCells(5, 1))
}

func TestTotalImageSize__MatchesCylinder0PlusUniformRest(t *testing.T) {
	cyl0Bytes := int64(7552) * 2  // Cyl0H0 + Cyl0H1
	restBytes := int64(14336) * 2 // CylNH0 + CylNH1, per cylinder
	want := cyl0Bytes + 79*restBytes
	assert.Equal(t, want, xdf.TotalImageSize())
}

func TestBuildArena__SetsPerTrackFileOffsets(t *testing.T) {
	a := layout.NewArena(0)
	require.NoError(t, xdf.BuildArena(a))

	off00, ok := a.TrackFileOffset(0, 0)
	require.True(t, ok)
	assert.EqualValues(t, 0, off00)

	off01, ok := a.TrackFileOffset(0, 1)
	require.True(t, ok)
	assert.EqualValues(t, 7552, off01)

	off10, ok := a.TrackFileOffset(1, 0)
	require.True(t, ok)
	assert.EqualValues(t, 7552*2, off10)

	off11, ok := a.TrackFileOffset(1, 1)
	require.True(t, ok)
	assert.EqualValues(t, 7552*2+14336, off11)
}
