// Package xdf implements the XDF (extended-density) special case (§4.8):
// per-cylinder, non-uniform sector-size layouts, a head-1 bit-cell track
// delay standing in for head skew, and the file_sec_offsets table that
// bypasses the ordinary contiguous byte-offset formula.
//
// Grounded on img.c's xdf_open/xdf_setup_track and the fdutils XDF layout
// convention it implements: cylinder 0 carries a different, smaller
// layout than the rest of the disk on each side, and its two extra AUX
// regions hold a second copy of the FAT so either side can be read
// without seeking to the other side's data.
package xdf

import "github.com/dargueta/sectorimg/layout"

// SectorSpec is one sector's on-wire id and payload size, in the order it
// appears within its track's file_sec_offsets table (not necessarily
// rotational order).
type SectorSpec struct {
	R    uint8
	Size int
}

// NrCyls and NrSides are XDF's fixed geometry: 80 cylinders, 2 sides, the
// only disk this format was ever produced for (the 1.86MB PC XDF media).
const (
	NrCyls  = 80
	NrSides = 2
)

// Cyl0H0 and Cyl0H1 are cylinder 0's two side layouts: more, smaller
// sectors (eight, of 128 to 2048 bytes) than the four-sector layout of the
// rest of the disk.
var Cyl0H0 = []SectorSpec{
	{R: 1, Size: 128}, {R: 2, Size: 256}, {R: 3, Size: 512}, {R: 4, Size: 512},
	{R: 5, Size: 1024}, {R: 6, Size: 1024}, {R: 7, Size: 2048}, {R: 8, Size: 2048},
}

var Cyl0H1 = []SectorSpec{
	{R: 129, Size: 128}, {R: 130, Size: 256}, {R: 131, Size: 512}, {R: 132, Size: 512},
	{R: 133, Size: 1024}, {R: 134, Size: 1024}, {R: 135, Size: 2048}, {R: 136, Size: 2048},
}

// CylNH0 and CylNH1 are the uniform layout every cylinder past 0 uses on
// each side: one 8KiB sector and three 2KiB sectors.
var CylNH0 = []SectorSpec{
	{R: 1, Size: 8192}, {R: 2, Size: 2048}, {R: 3, Size: 2048}, {R: 4, Size: 2048},
}

var CylNH1 = []SectorSpec{
	{R: 129, Size: 8192}, {R: 130, Size: 2048}, {R: 131, Size: 2048}, {R: 132, Size: 2048},
}

// LayoutFor returns the SectorSpec slice that (cyl, head) uses: one of the
// four fixed layouts named in §4.8.
func LayoutFor(cyl, head int) []SectorSpec {
	if cyl == 0 {
		if head == 0 {
			return Cyl0H0
		}
		return Cyl0H1
	}
	if head == 0 {
		return CylNH0
	}
	return CylNH1
}

// FileSecOffsets returns the cumulative byte offset of every sector in
// specs from the start of its track's data, replacing the contiguous
// sum-of-prior-sector-sizes computation with the precomputed table §4.8
// calls for.
func FileSecOffsets(specs []SectorSpec) []int64 {
	offs := make([]int64, len(specs))
	var running int64
	for i, s := range specs {
		offs[i] = running
		running += int64(s.Size)
	}
	return offs
}

// TrackDelayBitCells returns the head-1 bit-cell track shift §4.8 uses to
// emulate head skew: nonzero only for head 1 on any cylinder past 0.
func TrackDelayBitCells(cyl, head int) int {
	if head == 1 && cyl > 0 {
		return 10000
	}
	return 0
}

// AuxRegion and MainRegion split cylinder 0's eight-sector layout on each
// side into the fdutils AUX (sectors 1-8, second FAT copy addressable
// without a side seek) and MAIN (sectors 129+ on side 1) regions §4.8
// describes; this module hands back the index ranges only; interpreting
// FAT contents is filesystem understanding this engine does not do.
func AuxRegion() (firstIdx, lastIdx int) { return 0, 3 } // sectors R=1..4 on side 0
func MainRegion() (firstIdx, lastIdx int) { return 4, 7 } // sectors R=5..8 on side 0

// BuildArena populates a fresh Arena with all four XDF layouts and assigns
// them across every physical track of the fixed 80x2 geometry.
func BuildArena(a *layout.Arena) error {
	if err := a.InitTrackMap(NrCyls, NrSides); err != nil {
		return err
	}

	trkIdx := make(map[[2]int]uint8)
	for _, key := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		cyl, head := key[0], key[1]
		specs := LayoutFor(cyl, head)
		trk, idx, err := a.AddTrackLayout(len(specs))
		if err != nil {
			return err
		}
		trk.HasIAM = true
		trk.RPM = 300
		trk.Head = head
		secs := a.Sectors(idx)
		for i, s := range specs {
			secs[i].R = s.R
			secs[i].N = sizeCode(s.Size)
		}
		trkIdx[key] = idx
	}

	var fileOff int64
	for cyl := 0; cyl < NrCyls; cyl++ {
		for head := 0; head < NrSides; head++ {
			cylClass := 1
			if cyl == 0 {
				cylClass = 0
			}
			idx := trkIdx[[2]int{cylClass, head}]
			if err := a.SetTrackMap(cyl, head, idx); err != nil {
				return err
			}
			if err := a.SetTrackFileOffset(cyl, head, fileOff); err != nil {
				return err
			}
			for _, s := range LayoutFor(cyl, head) {
				fileOff += int64(s.Size)
			}
		}
	}
	return nil
}

// TotalImageSize returns the total byte size of a fully populated XDF
// image: cylinder 0's smaller layout on both sides plus the uniform
// larger layout on every remaining cylinder.
func TotalImageSize() int64 {
	var total int64
	for cyl := 0; cyl < NrCyls; cyl++ {
		for head := 0; head < NrSides; head++ {
			for _, s := range LayoutFor(cyl, head) {
				total += int64(s.Size)
			}
		}
	}
	return total
}

func sizeCode(size int) uint8 {
	n := uint8(0)
	for sz := 128; sz < size; sz <<= 1 {
		n++
	}
	return n
}
