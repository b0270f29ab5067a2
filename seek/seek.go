// Package seek implements the seek/position engine (C5): resolving a
// physical track number to a layout.Trk, building its sector
// rotational-order map, and computing that track's byte offset within a
// contiguously laid-out backing file.
package seek

import (
	"fmt"

	"github.com/dargueta/sectorimg"
	"github.com/dargueta/sectorimg/layout"
	"github.com/dargueta/sectorimg/mfm"
)

// RotationalMap builds sec_map: starting from pos = (cyl*cskew +
// side*hskew) mod nrSectors, assigns sec_map[pos] = i for i in
// [0,nrSectors) and advances pos by interleave each step, skipping slots
// already filled.
func RotationalMap(nrSectors int, cyl, side int, cskew, hskew, interleave uint) []int {
	if nrSectors == 0 {
		return nil
	}
	if interleave == 0 {
		interleave = 1
	}
	secMap := make([]int, nrSectors)
	filled := make([]bool, nrSectors)

	pos := (cyl*int(cskew) + side*int(hskew)) % nrSectors
	if pos < 0 {
		pos += nrSectors
	}

	for i := 0; i < nrSectors; i++ {
		for filled[pos] {
			pos = (pos + 1) % nrSectors
		}
		secMap[pos] = i
		filled[pos] = true
		pos = (pos + int(interleave)) % nrSectors
	}
	return secMap
}

// InRotationalOrder returns secs reordered so index k holds the sector
// that occupies the k-th rotational slot, per secMap.
func InRotationalOrder(secs []layout.Sec, secMap []int) []layout.Sec {
	out := make([]layout.Sec, len(secs))
	for slot, secIdx := range secMap {
		out[slot] = secs[secIdx]
	}
	return out
}

// LayoutBits mirrors the persisted-image layout modifiers from the image
// envelope: SEQUENTIAL changes the outer index from cylinder-major to
// side-major, SIDES_SWAPPED exchanges head 0 and 1, and REVERSE_SIDE(side)
// reverses cylinder order on one side only.
type LayoutBits = sectorimg.LayoutFlag

// TrackOffset computes a physical track's byte offset within a
// contiguously laid out backing file: base_off + (outer_index *
// sectors_per_track + k) * sector_size for the uniform case, per §6's
// persisted image layout formula. Non-uniform (XDF) layouts do not use
// this function; their per-track offsets are recorded with
// layout.Arena.SetTrackFileOffset and read back by the image package.
func TrackOffset(baseOff int64, nrCyls, nrSides int, cyl, side int, bits LayoutBits, encodedTrackSize int64) (int64, error) {
	if cyl < 0 || cyl >= nrCyls || side < 0 || side >= nrSides {
		return 0, fmt.Errorf("seek: (cyl=%d, side=%d) out of range for %dx%d geometry", cyl, side, nrCyls, nrSides)
	}

	c, s := cyl, side
	if bits&sectorimg.ReverseSideBit(side) != 0 {
		c = nrCyls - 1 - cyl
	}
	if bits&sectorimg.LayoutSidesSwapped != 0 {
		s = s ^ (nrSides - 1)
	}

	var outerIndex int
	if bits&sectorimg.LayoutSequential != 0 {
		outerIndex = s*nrCyls + c
	} else {
		outerIndex = c*nrSides + s
	}

	return baseOff + int64(outerIndex)*encodedTrackSize, nil
}

// ResolveDataRate applies §4.6's data-rate inference: for MFM, the smallest
// of DD/HD/ED that fits minBitCells; for FM, the smaller of 125/250 kbps.
func ResolveDataRate(isFM bool, minBitCells int, rpm uint) mfm.DataRateKbps {
	if isFM {
		return mfm.InferFMDataRate(minBitCells, rpm)
	}
	return mfm.InferMFMDataRate(minBitCells, rpm)
}

// EstimateMinBitCells sums the bit-cells a track's fixed fields need with
// gap_3 held at zero: gap_4a, an optional IAM, and each sector's IDAM
// preamble, header, gap_2, DAM preamble, and data (each byte costing 16
// bit-cells). It is used only to pick a data rate before gap_3 is fitted
// into the resulting slack, matching the original engine's two-phase
// approach of inferring the rate from a zero-gap3 track length and only
// then fitting gap_3 into the real remaining space.
func EstimateMinBitCells(isFM, hasIAM bool, secs []layout.Sec) int {
	gapSync := mfm.MFMGapSync
	gap1 := mfm.MFMGap1
	gap2 := mfm.MFMGap2DD
	iamFrame := 3 + 1          // sync + mark
	idamFrame := 3 + 1 + 4 + 2 // sync + mark + CHRN + crc
	damFrame := 3 + 1 + 2      // sync + mark + crc
	if isFM {
		gapSync = mfm.FMGapSync
		gap1 = mfm.FMGap1
		gap2 = mfm.FMGap2
		iamFrame = 1
		idamFrame = 1 + 4 + 2
		damFrame = 1 + 2
	}

	total := mfm.MFMGap4ADef
	if isFM {
		total = 16
	}
	if hasIAM {
		total += gapSync + iamFrame + gap1
	}
	for _, sec := range secs {
		total += gapSync + idamFrame + gap2
		total += gapSync + damFrame + sec.Size()
	}
	return total * 16
}
