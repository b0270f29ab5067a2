// Package image wires C1 through C7 together behind the sectorimg.Handler
// vtable: it opens a file through imgopen, resolves per-track parameters
// through the seek engine, and drives the mfm encoder/decoder against a
// caller-supplied FileCollaborator.
package image

import (
	"fmt"
	"io"

	"github.com/dargueta/sectorimg"
	"github.com/dargueta/sectorimg/imgopen"
	"github.com/dargueta/sectorimg/layout"
	"github.com/dargueta/sectorimg/mfm"
	"github.com/dargueta/sectorimg/seek"
)

// Image is the concrete sectorimg.Handler this module ships: one opened
// geometry, arena, and pair of encoder/decoder state machines bound to one
// FileCollaborator.
type Image struct {
	fc          sectorimg.FileCollaborator
	arena       *layout.Arena
	format      string
	layoutFlags sectorimg.LayoutFlag
	baseOff     int64

	curCyl, curHead int
	curTrk          *layout.Trk
	curSecs         []layout.Sec
	curSecMap       []int

	enc *mfm.Encoder
	dec *mfm.Decoder
}

var _ sectorimg.Handler = (*Image)(nil)

// Open recognizes fc's contents through imgopen.Open and returns a ready
// Handler. baseOff is the number of leading bytes in fc that hold a
// container header and are skipped by every sector offset computation.
func Open(fc sectorimg.FileCollaborator, baseOff int64) (*Image, error) {
	size, err := fc.Size()
	if err != nil {
		return nil, sectorimg.ErrIOFailed.Wrap(err)
	}

	// More than one sector is read: TR-DOS keeps its disk-type byte at 0x8e0.
	sector0 := make([]byte, 0x900)
	n, err := fc.ReadAt(sector0, baseOff)
	if err != nil && err != io.EOF {
		return nil, sectorimg.ErrIOFailed.Wrap(err)
	}
	sector0 = sector0[:n]

	res, err := imgopen.Open(size-baseOff, sector0)
	if err != nil {
		if err == imgopen.ErrNotThisFormat {
			return nil, sectorimg.ErrBadImage.WithMessage("no format handler recognized this image")
		}
		return nil, sectorimg.ErrBadImage.Wrap(err)
	}

	return &Image{fc: fc, arena: res.Arena, format: res.Format, layoutFlags: res.LayoutFlags, baseOff: baseOff}, nil
}

// OpenTagged is Open's counterpart when a sidecar configuration is
// present: the tagged-config probe runs before falling back to Open's
// ordinary header/size dispatch.
func OpenTagged(fc sectorimg.FileCollaborator, baseOff int64, sidecar io.Reader, tag string) (*Image, error) {
	size, err := fc.Size()
	if err != nil {
		return nil, sectorimg.ErrIOFailed.Wrap(err)
	}
	res, err := imgopen.OpenTagged(sidecar, tag, size-baseOff)
	if err == nil {
		return &Image{fc: fc, arena: res.Arena, format: res.Format, layoutFlags: res.LayoutFlags, baseOff: baseOff}, nil
	}
	if err != imgopen.ErrNotThisFormat {
		return nil, err
	}
	return Open(fc, baseOff)
}

// Name identifies the recognized format.
func (im *Image) Name() string { return im.format }

// Geometry reports the opened image's track-map dimensions.
func (im *Image) Geometry() (nrCyls, nrSides int) { return im.arena.Geometry() }

// TrackInfo exposes one physical track's resolved layout and sector table
// for inspection tooling, without going through SetupTrack's decoder setup.
func (im *Image) TrackInfo(cyl, head int) (*layout.Trk, []layout.Sec, error) {
	return im.arena.TrackAt(cyl, head)
}

// SetupTrack resolves (cyl, head)'s Trk and rotational sector map, and
// resolves an auto ("infer") data rate to a concrete one exactly once per
// track, caching the result on the Trk so repeated visits are free.
func (im *Image) SetupTrack(cyl, head int) error {
	trk, secs, err := im.arena.TrackAt(cyl, head)
	if err != nil {
		return sectorimg.ErrBadImage.Wrap(err)
	}

	if trk.DataRate == 0 {
		minCells := seek.EstimateMinBitCells(trk.IsFM, trk.HasIAM, secs)
		rate := seek.ResolveDataRate(trk.IsFM, minCells, trk.RPM)
		trk.DataRate = uint(rate)
	}

	im.curCyl, im.curHead = cyl, head
	im.curTrk = trk
	im.curSecs = secs
	im.curSecMap = seek.RotationalMap(trk.NrSectors, cyl, head, trk.CSkew, trk.HSkew, trk.Interleave)
	im.dec = mfm.NewDecoder(trk.IsFM, trk.InvertData, seek.InRotationalOrder(secs, im.curSecMap))
	return nil
}

// trackBaseOffset computes this track's byte offset in the backing file
// using the persisted image layout formula (§6), honoring the format's
// layout modifiers.
func (im *Image) trackBaseOffset() (int64, error) {
	if off, ok := im.arena.TrackFileOffset(im.curCyl, im.curHead); ok {
		return im.baseOff + off, nil
	}
	nrCyls, nrSides := im.arena.Geometry()
	trackSize := sectorsByteSize(im.curSecs)
	return seek.TrackOffset(im.baseOff, nrCyls, nrSides, im.curCyl, im.curHead, im.layoutFlags, int64(trackSize))
}

func sectorsByteSize(secs []layout.Sec) int {
	total := 0
	for _, s := range secs {
		total += s.Size()
	}
	return total
}

// sectorOffsetWithinTrack returns the byte offset of sector index idx
// (into curSecs, the file's on-disk order) relative to the start of its
// track's data.
func (im *Image) sectorOffsetWithinTrack(idx int) int64 {
	var off int64
	for i := 0; i < idx; i++ {
		off += int64(im.curSecs[i].Size())
	}
	return off
}

// collaboratorSource adapts an Image's FileCollaborator into the
// mfm.SectorSource the encoder pulls payload bytes through.
type collaboratorSource struct {
	im       *Image
	trackOff int64
}

func (s collaboratorSource) ReadSector(rotationalIndex int) ([]byte, error) {
	secIdx := s.im.curSecMap[rotationalIndex]
	sec := s.im.curSecs[secIdx]
	buf := make([]byte, sec.Size())
	off := s.trackOff + s.im.sectorOffsetWithinTrack(secIdx)
	if _, err := s.im.fc.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, sectorimg.ErrIOFailed.Wrap(err)
	}
	return buf, nil
}

// ReadTrack renders the physical track at (cyl, head) into an *mfm.Encoder
// ready to be pulled from by the front end's read path. If (cyl, head) is
// not the track most recently set up, it calls SetupTrack first.
func (im *Image) ReadTrack(cyl, head int) error {
	if im.curTrk == nil || im.curCyl != cyl || im.curHead != head {
		if err := im.SetupTrack(cyl, head); err != nil {
			return err
		}
	}

	trackOff, err := im.trackBaseOffset()
	if err != nil {
		return sectorimg.ErrBadImage.Wrap(err)
	}

	spec := mfm.TrackSpec{
		IsFM:       im.curTrk.IsFM,
		HasIAM:     im.curTrk.HasIAM,
		InvertData: im.curTrk.InvertData,
		Gap2:       im.curTrk.Gap2,
		Gap3:       im.curTrk.Gap3,
		Gap4A:      im.curTrk.Gap4A,
		DataRate:   mfm.DataRateKbps(im.curTrk.DataRate),
		RPM:        im.curTrk.RPM,
		C:          uint8(cyl),
		H:          headByte(im.curTrk, head),
		Sectors:    seek.InRotationalOrder(im.curSecs, im.curSecMap),
		Data:       collaboratorSource{im: im, trackOff: trackOff},
	}

	enc, err := mfm.NewEncoder(spec)
	if err != nil {
		return fmt.Errorf("image: rendering track (cyl=%d, head=%d): %w", cyl, head, err)
	}
	im.enc = enc
	return nil
}

func headByte(trk *layout.Trk, physicalHead int) uint8 {
	if trk.Head != layout.AutoHead {
		return uint8(trk.Head)
	}
	return uint8(physicalHead)
}

// Encoder returns the current track's rendered bit-cell reader, valid
// after a successful ReadTrack.
func (im *Image) Encoder() *mfm.Encoder { return im.enc }

// Extend reports the byte offset one past the last sector this format
// would occupy if the image grew to include physical track (cyl, head),
// summing every physical track's raw sector bytes in cylinder-major
// order up to and including it. It does not itself grow the file; callers
// use the offset to size a Truncate call.
func (im *Image) Extend(cyl, head int) (int64, bool) {
	nrCyls, nrSides := im.arena.Geometry()
	if cyl < 0 || cyl >= nrCyls || head < 0 || head >= nrSides {
		return 0, false
	}
	var total int64
	for c := 0; c <= cyl; c++ {
		for h := 0; h < nrSides; h++ {
			if c == cyl && h > head {
				continue
			}
			_, secs, err := im.arena.TrackAt(c, h)
			if err != nil {
				return 0, false
			}
			total += int64(sectorsByteSize(secs))
		}
	}
	return im.baseOff + total, true
}

// ConsumeWriteWord feeds one bit-cell word from the front end's write
// ring buffer into the current track's decoder, and once a full sector's
// data plus CRC has been recovered, writes the decoded (and un-inverted,
// if invert_data applies) bytes back to the FileCollaborator at the
// sector's file offset. It reports the decoded event so the caller can
// log CRC mismatches without this package needing a logger of its own.
//
// This lives on Image rather than sectorimg.Handler because only one
// decoder instance exists per open track regardless of how many Handler
// implementations exist; the vtable's read path is per-format, but the
// write path's resync state is inherently per-open-image.
func (im *Image) ConsumeWriteWord(word uint16) (mfm.Event, error) {
	ev, err := im.dec.Consume(word)
	if err != nil {
		return ev, err
	}
	if ev.Kind == mfm.EventIDAM && !ev.CrcOK {
		return ev, sectorimg.ErrCrcMismatch
	}
	if ev.Kind != mfm.EventSectorData {
		return ev, nil
	}
	if ev.SectorIdx < 0 || ev.SectorIdx >= len(im.curSecMap) {
		return ev, sectorimg.ErrMidTrackWriteUnresolvable
	}

	fileIdx := im.curSecMap[ev.SectorIdx]
	trackOff, err := im.trackBaseOffset()
	if err != nil {
		return ev, sectorimg.ErrBadImage.Wrap(err)
	}
	off := trackOff + im.sectorOffsetWithinTrack(fileIdx)

	// ev.Data has already been un-inverted by the decoder when InvertData
	// is set; CRC mismatches are written anyway, matching the firmware
	// write path's "log but keep the write" convention.
	if _, err := im.fc.WriteAt(ev.Data, off); err != nil {
		return ev, sectorimg.ErrIOFailed.Wrap(err)
	}
	return ev, nil
}
