// Package track implements the track assembler (C4): turning one geometry
// catalogue choice, or a sequence of tagged config zones, into populated
// layout.Trk records and a finished track map.
package track

import (
	"fmt"

	"github.com/dargueta/sectorimg/geometry"
	"github.com/dargueta/sectorimg/layout"
)

// SimpleLayout creates one Trk per side (per geometry.Table) and assigns it
// to every cylinder of arena's track map, filling sector ids
// baseID[side]+j for j in [0, nrSectors). If hasEmptyTrailingHalf is true
// and the total track count is odd, the very last physical track's map
// cell is instead pointed at a zero-sector empty layout, mirroring the
// TRD "half cylinder" quirk.
func SimpleLayout(a *layout.Arena, tbl geometry.Table, nrCyls int, baseID [2]uint8, hasEmptyTrailingHalf bool) error {
	if err := a.InitTrackMap(nrCyls, tbl.NrSides); err != nil {
		return err
	}

	sideTrk := make([]uint8, tbl.NrSides)
	for side := 0; side < tbl.NrSides; side++ {
		trk, idx, err := a.AddTrackLayout(tbl.NrSectors)
		if err != nil {
			return err
		}
		trk.IsFM = tbl.IsFM
		trk.HasIAM = tbl.HasIAM
		trk.Interleave = uint(tbl.Interleave)
		trk.CSkew = uint(tbl.CSkew)
		trk.HSkew = uint(tbl.HSkew)
		trk.RPM = uint(tbl.RPM())
		for j, sec := range a.Sectors(idx) {
			sec.R = baseID[side] + uint8(j)
			sec.N = uint8(tbl.N)
			a.Sectors(idx)[j] = sec
		}
		if tbl.Gap3 != 0 {
			trk.Gap3 = tbl.Gap3
		}
		sideTrk[side] = idx
	}

	var emptyTrkIdx uint8
	haveEmpty := false
	if hasEmptyTrailingHalf && (nrCyls*tbl.NrSides)%2 != 0 {
		_, idx, err := a.AddTrackLayout(0)
		if err != nil {
			return err
		}
		emptyTrkIdx = idx
		haveEmpty = true
	}

	totalTracks := nrCyls * tbl.NrSides
	for cyl := 0; cyl < nrCyls; cyl++ {
		for side := 0; side < tbl.NrSides; side++ {
			physIdx := cyl*tbl.NrSides + side
			if haveEmpty && physIdx == totalTracks-1 {
				if err := a.SetTrackMap(cyl, side, emptyTrkIdx); err != nil {
					return err
				}
				continue
			}
			if err := a.SetTrackMap(cyl, side, sideTrk[side]); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddZoneLayout appends one multi-zone Trk (as produced by a "tracks="
// config directive) and assigns it across the cylinder/head selection the
// caller resolved from that directive's TrackSelector.
func AddZoneLayout(a *layout.Arena, nrSectors int, cyls []int, heads []int, fill func(trk *layout.Trk, secs []layout.Sec)) error {
	trk, idx, err := a.AddTrackLayout(nrSectors)
	if err != nil {
		return err
	}
	fill(trk, a.Sectors(idx))

	for _, cyl := range cyls {
		for _, head := range heads {
			if err := a.SetTrackMap(cyl, head, idx); err != nil {
				return fmt.Errorf("track: assigning zone layout: %w", err)
			}
		}
	}
	return nil
}
