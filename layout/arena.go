// Package layout implements the append-only sector/track layout arena (C1):
// Sec and Trk descriptors indexed by small integers rather than pointers,
// and a per-physical-track map from (cyl, head) onto one Trk.
//
// The original engine this is modeled on bump-allocates Sec and Trk records
// downward from the top of a small fixed scratch buffer shared with the
// read/write ring buffers, and treats "less than 1024 bytes of headroom
// left" as a fatal BadImage condition. Go has no equivalent buffer to run
// out of, so Arena instead tracks its own accounting footprint against a
// configurable budget and fails the same way, preserving the "layouts must
// stay small" invariant without the manual pointer arithmetic.
package layout

import (
	"fmt"

	"github.com/boljen/go-bitmap"
)

// DefaultMaxArenaBytes mirrors the original embedded engine's small
// dedicated layout scratch region.
const DefaultMaxArenaBytes = 16 * 1024

const bytesPerSec = 4  // accounting size of one Sec entry
const bytesPerTrk = 32 // accounting size of one Trk entry

// Sec is one sector slot in a track's layout: its on-wire id byte and its
// size code (sector size in bytes is 128<<N).
type Sec struct {
	R uint8
	N uint8
}

// Size returns the sector's payload size in bytes.
func (s Sec) Size() int {
	return 128 << s.N
}

// Trk is one distinct track layout. Several physical (cyl, head) positions
// may point at the same Trk through the track map when their layout is
// identical, exactly as a single simple_layout call in the source engine
// can be replayed across every cylinder.
type Trk struct {
	NrSectors int
	SecOff    int // offset into the arena's flat sector slice

	IsFM       bool
	HasIAM     bool
	InvertData bool

	DataRate   uint // kbps, 0 = infer from geometry
	RPM        uint // 0 => 300
	Interleave uint
	CSkew      uint
	HSkew      uint
	IDBase     uint8

	// Head pins this layout to one physical head (0 or 1); AutoHead means
	// "use whichever head the track map cell was assigned for".
	Head int

	// Gap2, Gap3, Gap4A hold explicit gap byte counts, or AutoGap to defer
	// to the track assembler's auto-fit computation.
	Gap2, Gap3, Gap4A int
}

const AutoHead = -1
const AutoGap = -1

// NewTrk returns a Trk with every optional field defaulted the way
// simple_layout initializes one before the caller overrides specifics.
func NewTrk(nrSectors int) Trk {
	return Trk{
		NrSectors:  nrSectors,
		Head:       AutoHead,
		Gap2:       AutoGap,
		Gap3:       AutoGap,
		Gap4A:      AutoGap,
		Interleave: 1,
	}
}

// Arena owns every Sec and Trk allocated while opening one image, plus the
// track map that associates each physical track with one of them.
type Arena struct {
	sectors []Sec
	tracks  []Trk

	trkMap   []uint8
	assigned bitmap.Bitmap

	// fileOffsets holds an explicit per-physical-track byte offset into the
	// backing file, overriding the contiguous seek.TrackOffset formula for
	// formats like XDF whose track sizes vary. Only populated on demand by
	// SetTrackFileOffset; hasFileOffset tracks which cells were actually set
	// since 0 is a legitimate offset (cylinder 0, head 0).
	fileOffsets   []int64
	hasFileOffset bitmap.Bitmap

	nrCyls  int
	nrSides int

	maxBytes int
}

// NewArena returns an empty arena bounded to maxBytes of layout accounting
// footprint. A maxBytes of 0 selects DefaultMaxArenaBytes.
func NewArena(maxBytes int) *Arena {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxArenaBytes
	}
	return &Arena{maxBytes: maxBytes}
}

// InitTrackMap allocates the physical track map for a geometry of nrCyls
// cylinders by nrSides sides. It must be called exactly once, before any
// call to AddTrackLayout or SetTrackMap.
func (a *Arena) InitTrackMap(nrCyls, nrSides int) error {
	if a.trkMap != nil {
		return fmt.Errorf("layout: InitTrackMap called twice")
	}
	if nrSides < 1 || nrSides > 2 {
		return fmt.Errorf("layout: nrSides must be 1 or 2, got %d", nrSides)
	}
	if nrCyls < 1 || nrCyls > 256 {
		return fmt.Errorf("layout: nrCyls must be in [1,256], got %d", nrCyls)
	}
	a.nrCyls, a.nrSides = nrCyls, nrSides
	a.trkMap = make([]uint8, nrCyls*nrSides)
	a.assigned = bitmap.New(nrCyls * nrSides)
	if a.footprint() > a.maxBytes {
		return fmt.Errorf("layout: track map for %d cyls x %d sides exceeds arena budget of %d bytes",
			nrCyls, nrSides, a.maxBytes)
	}
	return nil
}

func (a *Arena) footprint() int {
	return len(a.trkMap) + len(a.tracks)*bytesPerTrk + len(a.sectors)*bytesPerSec
}

// AddTrackLayout appends a new track layout of nrSectors sectors to the
// arena and returns a pointer into the arena's internal slice the caller
// may fill in before it is referenced from the track map. Layouts must be
// added in the order they will be indexed: the returned layout's index is
// len(a.tracks)-1 immediately after the call.
func (a *Arena) AddTrackLayout(nrSectors int) (*Trk, uint8, error) {
	if nrSectors < 0 || nrSectors > 256 {
		return nil, 0, fmt.Errorf("layout: nrSectors must be in [0,256], got %d", nrSectors)
	}
	if len(a.tracks) >= 256 {
		return nil, 0, fmt.Errorf("layout: arena already holds the maximum 256 track layouts")
	}

	secOff := len(a.sectors)
	a.sectors = append(a.sectors, make([]Sec, nrSectors)...)

	trk := NewTrk(nrSectors)
	trk.SecOff = secOff
	a.tracks = append(a.tracks, trk)
	trkIdx := uint8(len(a.tracks) - 1)

	if a.footprint() > a.maxBytes {
		return nil, 0, fmt.Errorf("layout: adding track layout would exceed arena budget of %d bytes", a.maxBytes)
	}
	return &a.tracks[trkIdx], trkIdx, nil
}

// SetTrackMap assigns the track layout trkIdx to physical track (cyl, head).
func (a *Arena) SetTrackMap(cyl, head int, trkIdx uint8) error {
	idx, err := a.physIndex(cyl, head)
	if err != nil {
		return err
	}
	if int(trkIdx) >= len(a.tracks) {
		return fmt.Errorf("layout: track layout index %d does not exist", trkIdx)
	}
	a.trkMap[idx] = trkIdx
	a.assigned.Set(idx, true)
	return nil
}

// SetTrackFileOffset records an explicit file byte offset for physical
// track (cyl, head), for formats whose persisted track sizes are not
// uniform enough for the contiguous seek.TrackOffset formula to derive.
func (a *Arena) SetTrackFileOffset(cyl, head int, off int64) error {
	idx, err := a.physIndex(cyl, head)
	if err != nil {
		return err
	}
	if a.fileOffsets == nil {
		a.fileOffsets = make([]int64, a.nrCyls*a.nrSides)
		a.hasFileOffset = bitmap.New(a.nrCyls * a.nrSides)
	}
	a.fileOffsets[idx] = off
	a.hasFileOffset.Set(idx, true)
	return nil
}

// TrackFileOffset returns the explicit byte offset SetTrackFileOffset
// recorded for (cyl, head), if any. ok is false for every arena that never
// calls SetTrackFileOffset, in which case the caller should fall back to
// the contiguous seek.TrackOffset formula.
func (a *Arena) TrackFileOffset(cyl, head int) (off int64, ok bool) {
	idx, err := a.physIndex(cyl, head)
	if err != nil || a.hasFileOffset == nil || !a.hasFileOffset.Get(idx) {
		return 0, false
	}
	return a.fileOffsets[idx], true
}

func (a *Arena) physIndex(cyl, head int) (int, error) {
	if a.trkMap == nil {
		return 0, fmt.Errorf("layout: InitTrackMap was never called")
	}
	if cyl < 0 || cyl >= a.nrCyls || head < 0 || head >= a.nrSides {
		return 0, fmt.Errorf("layout: (cyl=%d, head=%d) out of range for %dx%d geometry", cyl, head, a.nrCyls, a.nrSides)
	}
	return cyl*a.nrSides + head, nil
}

// Sectors returns the sector slots belonging to track layout trkIdx.
func (a *Arena) Sectors(trkIdx uint8) []Sec {
	t := a.tracks[trkIdx]
	return a.sectors[t.SecOff : t.SecOff+t.NrSectors]
}

// TrackLayout returns a mutable pointer to track layout trkIdx, letting an
// image opener apply per-format quirks (data rate overrides, gap sizes,
// invert_data) after SimpleLayout or AddZoneLayout has populated it.
func (a *Arena) TrackLayout(trkIdx uint8) *Trk {
	return &a.tracks[trkIdx]
}

// TrackAt resolves the physical track at (cyl, head) to its Trk pointer and
// sector slots.
func (a *Arena) TrackAt(cyl, head int) (*Trk, []Sec, error) {
	idx, err := a.physIndex(cyl, head)
	if err != nil {
		return nil, nil, err
	}
	if !a.assigned.Get(idx) {
		return nil, nil, fmt.Errorf("layout: physical track (cyl=%d, head=%d) was never assigned a layout", cyl, head)
	}
	trkIdx := a.trkMap[idx]
	return &a.tracks[trkIdx], a.Sectors(trkIdx), nil
}

// Geometry returns the cylinder and side counts InitTrackMap was called
// with.
func (a *Arena) Geometry() (nrCyls, nrSides int) {
	return a.nrCyls, a.nrSides
}

// NumTrackLayouts returns how many distinct Trk records have been added.
func (a *Arena) NumTrackLayouts() int {
	return len(a.tracks)
}

// Finalise validates every physical track has an assigned, well-formed
// layout: every cell in the track map must have been assigned and every
// track's sector size code must be within range. Sector ids are not
// checked. Every violation found is collected rather than returned on
// the first one, so a caller can report a complete diagnosis at once.
func (a *Arena) Finalise() error {
	var problems []string

	for cyl := 0; cyl < a.nrCyls; cyl++ {
		for head := 0; head < a.nrSides; head++ {
			idx, _ := a.physIndex(cyl, head)
			if !a.assigned.Get(idx) {
				problems = append(problems, fmt.Sprintf("physical track (cyl=%d, head=%d) has no assigned layout", cyl, head))
				continue
			}
			trkIdx := a.trkMap[idx]
			if int(trkIdx) >= len(a.tracks) {
				problems = append(problems, fmt.Sprintf("physical track (cyl=%d, head=%d) references undefined layout %d", cyl, head, trkIdx))
				continue
			}
			for i, sec := range a.Sectors(trkIdx) {
				if sec.N > 6 {
					problems = append(problems, fmt.Sprintf("track (cyl=%d, head=%d) sector %d has out-of-range size code %d", cyl, head, i, sec.N))
				}
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &InvariantError{Problems: problems}
}

// InvariantError aggregates every Finalise failure found in one pass.
type InvariantError struct {
	Problems []string
}

func (e *InvariantError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0]
	}
	return fmt.Sprintf("%d layout invariant violations, first: %s", len(e.Problems), e.Problems[0])
}
