package geometry_test

import (
	"testing"

	"github.com/dargueta/sectorimg/geometry"
	"github.com/dargueta/sectorimg/mfm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogue__Match__PC1440(t *testing.T) {
	// 80 cyls * 18 secs * 512 bytes * 2 sides == 1474560, the canonical
	// 1.44MB PC floppy size.
	tbl, cyls, err := geometry.Default.Match(1474560)
	require.NoError(t, err)
	assert.Equal(t, 80, cyls)
	assert.Equal(t, "pc-dos-1440", tbl.Host)
	assert.Equal(t, 512, tbl.SectorSize())
}

func TestCatalogue__Match__OffByOneByteFails(t *testing.T) {
	_, _, err := geometry.Default.Match(1474560 + 1)
	assert.Error(t, err)

	_, _, err = geometry.Default.Match(1474560 - 1)
	assert.Error(t, err)
}

func TestCatalogue__Match__EveryValidCylinderCountInClass(t *testing.T) {
	tbl := geometry.Default[4] // pc-dos-1440, 80-class
	minC, maxC := tbl.Cyls.Range()
	for c := minC; c <= maxC; c++ {
		size := int64(c) * int64(tbl.NrSectors) * int64(tbl.SectorSize()) * int64(tbl.NrSides)
		gotCyls, ok := tbl.Match(size)
		assert.True(t, ok, "cylinder count %d in class should match", c)
		assert.Equal(t, c, gotCyls)
	}
}

func TestTable__RPM__ClassEncoding(t *testing.T) {
	assert.Equal(t, 360, geometry.Table{RPMClass: 1}.RPM())
	assert.Equal(t, 300, geometry.Table{RPMClass: 0}.RPM())
	assert.Equal(t, 180, geometry.Table{RPMClass: -2}.RPM())
}

func TestPC1440__SpinsAt300RPMWithStandardTrackLength(t *testing.T) {
	// The 1.44MB PC floppy is a 300 RPM HD drive, not 360; only the 1.2MB
	// 5.25" entry spins at 360.
	tbl, _, err := geometry.Default.Match(1474560)
	require.NoError(t, err)
	assert.Equal(t, "pc-dos-1440", tbl.Host)
	assert.Equal(t, 300, tbl.RPM())
	assert.Equal(t, 200000, mfm.StandardTrackLength(mfm.RateMFM500, uint(tbl.RPM())))
}

func TestD81__SidesSwappedGeometryMatches(t *testing.T) {
	// 80 cyls * 10 secs * 512 bytes * 2 sides == 819200
	tbl, cyls, err := geometry.D81.Match(819200)
	require.NoError(t, err)
	assert.Equal(t, 80, cyls)
	assert.Equal(t, "d81", tbl.Host)
}
