package imgopen_test

import (
	"strings"
	"testing"

	"github.com/dargueta/sectorimg"
	"github.com/dargueta/sectorimg/imgopen"
	"github.com/dargueta/sectorimg/xdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen__PC1440__MatchesGenericFallback(t *testing.T) {
	res, err := imgopen.Open(1474560, make([]byte, 512))
	require.NoError(t, err)
	assert.Equal(t, "pc-dos", res.Format)
	nrCyls, nrSides := res.Arena.Geometry()
	assert.Equal(t, 80, nrCyls)
	assert.Equal(t, 2, nrSides)
}

func TestOpen__ATRSignature__IsRecognizedBeforeGenericFallback(t *testing.T) {
	sector0 := make([]byte, 512)
	sector0[0] = 0x96
	sector0[1] = 0x02
	fileSize := int64(16) + 40*18*128 // atr-90k
	res, err := imgopen.Open(fileSize, sector0)
	require.NoError(t, err)
	assert.Equal(t, "atr", res.Format)

	trk, _, err := res.Arena.TrackAt(0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 130, trk.DataRate, "FM 125kbps + 4%% Atari drive quirk")
	assert.EqualValues(t, 9, trk.Interleave, "atr-90k has 18 sectors/track, interleave = nr_sectors/2")
	assert.True(t, trk.InvertData)
}

func TestOpen__IBM3174__BuildsTwoLayoutArena(t *testing.T) {
	cyl0Bytes := int64(15) * 512 * 2
	restBytes := int64(30) * 512 * 2
	fileSize := cyl0Bytes + 79*restBytes
	res, err := imgopen.Open(fileSize, make([]byte, 512))
	require.NoError(t, err)
	assert.Equal(t, "ibm-3174", res.Format)

	trk0, _, err := res.Arena.TrackAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 15, trk0.NrSectors)

	trk1, _, err := res.Arena.TrackAt(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, trk1.NrSectors)
}

func TestOpen__D81__SetsSidesSwappedFlag(t *testing.T) {
	fileSize := int64(80) * 10 * 512 * 2
	res, err := imgopen.Open(fileSize, make([]byte, 512))
	require.NoError(t, err)
	assert.Equal(t, "d81", res.Format)
	assert.NotZero(t, res.LayoutFlags&sectorimg.LayoutSidesSwapped)
}

func TestOpen__XDFSize__BuildsNonUniformArena(t *testing.T) {
	res, err := imgopen.Open(xdf.TotalImageSize(), make([]byte, 512))
	require.NoError(t, err)
	assert.Equal(t, "xdf", res.Format)

	trk0, secs0, err := res.Arena.TrackAt(0, 0)
	require.NoError(t, err)
	assert.Len(t, secs0, 8)
	assert.Equal(t, 0, trk0.Head)

	off, ok := res.Arena.TrackFileOffset(1, 0)
	require.True(t, ok)
	assert.EqualValues(t, 7552*2, off)
}

func TestOpen__NoMatch__ReportsErrNotThisFormat(t *testing.T) {
	_, err := imgopen.Open(12345, make([]byte, 512))
	assert.ErrorIs(t, err, imgopen.ErrNotThisFormat)
}

func TestOpenTagged__ScoresTaggedSectionOverDefault(t *testing.T) {
	src := strings.NewReader(strings.Join([]string{
		"[]",
		"cyls=1",
		"[mytag::737280]",
		"cyls=80",
		"heads=2",
		"secs=9",
		"bps=512",
	}, "\n"))
	res, err := imgopen.OpenTagged(src, "mytag", 737280)
	require.NoError(t, err)
	assert.Equal(t, "tagged-config", res.Format)
	nrCyls, nrSides := res.Arena.Geometry()
	assert.Equal(t, 80, nrCyls)
	assert.Equal(t, 2, nrSides)
}

func TestOpenTagged__TracksDirective__GivesSelectedZoneItsOwnLayout(t *testing.T) {
	src := strings.NewReader(strings.Join([]string{
		"[mytag::737280]",
		"cyls=80",
		"heads=2",
		"secs=9",
		"bps=512",
		"tracks=0-1",
	}, "\n"))
	res, err := imgopen.OpenTagged(src, "mytag", 737280)
	require.NoError(t, err)

	trk0, secs0, err := res.Arena.TrackAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 9, trk0.NrSectors)
	assert.Len(t, secs0, 9)

	trk5, _, err := res.Arena.TrackAt(5, 0)
	require.NoError(t, err)
	// The zone selector's cylinders get their own Trk record, distinct
	// from the default layout that still covers every other cylinder.
	assert.NotEqual(t, trk0, trk5)
	assert.Equal(t, 3, res.Arena.NumTrackLayouts())
}

func TestOpenTagged__FileLayoutDirective__SetsLayoutFlags(t *testing.T) {
	src := strings.NewReader(strings.Join([]string{
		"[mytag::737280]",
		"cyls=80",
		"heads=2",
		"secs=9",
		"bps=512",
		"file-layout=sides-swapped,reverse-side1",
	}, "\n"))
	res, err := imgopen.OpenTagged(src, "mytag", 737280)
	require.NoError(t, err)
	assert.NotZero(t, res.LayoutFlags&sectorimg.LayoutSidesSwapped)
	assert.NotZero(t, res.LayoutFlags&sectorimg.ReverseSideBit(1))
	assert.Zero(t, res.LayoutFlags&sectorimg.ReverseSideBit(0))
}

func TestOpenTagged__NoSectionScoresPositive__ReportsErrNotThisFormat(t *testing.T) {
	src := strings.NewReader("[othertag::99]\ncyls=1\nheads=1\nsecs=1\n")
	_, err := imgopen.OpenTagged(src, "mytag", 737280)
	assert.ErrorIs(t, err, imgopen.ErrNotThisFormat)
}
