package mfm

import (
	"fmt"

	"github.com/dargueta/sectorimg/layout"
)

// Sentinel values for Decoder.WriteSector, matching the firmware
// convention this engine emulates: NoIDAMSeen means a DAM has arrived with
// no IDAM yet observed on this track (the write started mid-rotation) and
// must be localized by FindFirstWriteSector; WriteSectorInvalid means an
// IDAM was seen but named a sector id absent from the track, or a DAM was
// already consumed and a fresh IDAM is required before another is honored.
const (
	NoIDAMSeen        = -1
	WriteSectorInvalid = -2
)

// EventKind classifies what a call to Decoder.Consume produced.
type EventKind int

const (
	EventNone EventKind = iota
	EventIDAM
	EventSectorData
)

// Event reports one decoded field. CrcOK is meaningful for both EventIDAM
// and EventSectorData; a false CrcOK on EventSectorData is not itself
// fatal, matching "log but keep the write" from the write path's firmware
// convention.
type Event struct {
	Kind   EventKind
	C, H, R, N byte
	SectorIdx  int // rotational index into Decoder.Sectors, or -1
	Data       []byte
	CrcOK      bool
}

type decState int

const (
	stHunt decState = iota
	stCollectIDAM
	stCollectDAM
)

// Decoder consumes one physical track's already-clocked bit-cell words
// (the same representation Encoder.Read produces) and recovers IDAM and
// sector-data events, tracking the write_sector resync state a firmware
// write path needs.
type Decoder struct {
	IsFM       bool
	InvertData bool
	Sectors    []layout.Sec // rotational order for the current track

	WriteSector int

	state      decState
	syncRun    int
	pendingIDAM []byte
	pendingDAM  []byte
	damSectorIdx int
	damWant      int

	wordPos          int
	expectedDamStart []int // lazily computed rotational DAM-start word offsets
}

// ResyncToleranceWords bounds how far an orphaned DAM's observed position
// may drift from a sector's expected DAM start and still be attributed to
// that sector, the equivalent of the original engine's 64-bit-cell window
// expressed in this decoder's one-word-per-byte units.
const ResyncToleranceWords = 4

// NewDecoder returns a decoder positioned at the start of a fresh track
// (mirrors the "setup_track invalidates all per-track state" reset rule).
func NewDecoder(isFM, invertData bool, sectors []layout.Sec) *Decoder {
	return &Decoder{
		IsFM:        isFM,
		InvertData:  invertData,
		Sectors:     sectors,
		WriteSector: NoIDAMSeen,
		state:       stHunt,
	}
}

// Reset returns the decoder to its post-setup_track state without
// reallocating, used when a seek invalidates in-progress decode state.
func (d *Decoder) Reset() {
	d.state = stHunt
	d.syncRun = 0
	d.pendingIDAM = nil
	d.pendingDAM = nil
	d.WriteSector = NoIDAMSeen
}

func decodeDataByte(word uint16) byte {
	var b byte
	for i := 0; i < 8; i++ {
		b |= byte((word>>uint(2*i))&1) << uint(i)
	}
	return b
}

// Consume feeds one bit-cell word to the decoder and returns the event, if
// any, that word completed.
func (d *Decoder) Consume(word uint16) (Event, error) {
	defer func() { d.wordPos++ }()
	switch d.state {
	case stHunt:
		return d.consumeHunt(word)
	case stCollectIDAM:
		return d.consumeIDAMByte(word)
	case stCollectDAM:
		return d.consumeDAMByte(word)
	default:
		return Event{}, fmt.Errorf("mfm: decoder in unknown state %d", d.state)
	}
}

func (d *Decoder) consumeHunt(word uint16) (Event, error) {
	if d.IsFM {
		switch word {
		case FMSyncWord(MarkIDAM, FMSyncClk):
			d.beginIDAM()
			return Event{}, nil
		case FMSyncWord(MarkDAM, FMSyncClk):
			d.beginDAM()
			return Event{}, nil
		case FMSyncWord(MarkIAM, FMIAMClk):
			return Event{}, nil
		default:
			return Event{}, nil
		}
	}

	if word == MFMSync {
		d.syncRun++
		return Event{}, nil
	}
	if d.syncRun > 0 {
		mark := decodeDataByte(word)
		d.syncRun = 0
		switch mark {
		case MarkIDAM:
			d.beginIDAM()
		case MarkDAM:
			d.beginDAM()
		case MarkIAM:
			// no state to track; IAM carries no address info.
		}
		return Event{}, nil
	}
	return Event{}, nil
}

func (d *Decoder) beginIDAM() {
	d.state = stCollectIDAM
	d.pendingIDAM = d.pendingIDAM[:0]
}

func (d *Decoder) beginDAM() {
	d.state = stCollectDAM
	d.pendingDAM = d.pendingDAM[:0]
	d.damSectorIdx, d.damWant = d.resolveWriteSector()
}

// idamFieldLen is the number of header+CRC bytes following the mark: C, H,
// R, N, CRC-hi, CRC-lo.
const idamFieldLen = 6

func (d *Decoder) consumeIDAMByte(word uint16) (Event, error) {
	d.pendingIDAM = append(d.pendingIDAM, decodeDataByte(word))
	if len(d.pendingIDAM) < idamFieldLen {
		return Event{}, nil
	}
	d.state = stHunt

	c, h, r, n := d.pendingIDAM[0], d.pendingIDAM[1], d.pendingIDAM[2], d.pendingIDAM[3]
	gotCRC := uint16(d.pendingIDAM[4])<<8 | uint16(d.pendingIDAM[5])

	crc := markCRCMFM(MarkIDAM)
	if d.IsFM {
		crc = markCRCFM(MarkIDAM)
	}
	crc = CRC16CCITT(crc, d.pendingIDAM[:4])
	crcOK := crc == gotCRC

	idx := -1
	if crcOK {
		for i, sec := range d.Sectors {
			if sec.R == r {
				idx = i
				break
			}
		}
	}
	if idx >= 0 {
		d.WriteSector = idx
	} else {
		d.WriteSector = WriteSectorInvalid
	}

	return Event{Kind: EventIDAM, C: c, H: h, R: r, N: n, SectorIdx: idx, CrcOK: crcOK}, nil
}

// resolveWriteSector implements the DAM-arrival dispatch: use the sector an
// immediately preceding IDAM named, run FindFirstWriteSector when no IDAM
// has been seen yet on this track, or fail closed when the previous IDAM
// or DAM already consumed this slot.
func (d *Decoder) resolveWriteSector() (idx int, wantBytes int) {
	switch {
	case d.WriteSector == NoIDAMSeen:
		if resolved, ok := d.FindFirstWriteSector(); ok {
			d.WriteSector = resolved
		} else {
			return -1, 0
		}
	case d.WriteSector == WriteSectorInvalid:
		return -1, 0
	}
	idx = d.WriteSector
	if idx < 0 || idx >= len(d.Sectors) {
		return -1, 0
	}
	return idx, d.Sectors[idx].Size()
}

func (d *Decoder) consumeDAMByte(word uint16) (Event, error) {
	if d.damSectorIdx < 0 {
		// Orphaned DAM that could not be localized; drop bytes until the
		// mark's CRC-sized field would have ended, then resume hunting.
		d.pendingDAM = append(d.pendingDAM, decodeDataByte(word))
		if len(d.pendingDAM) >= 2 {
			d.state = stHunt
			d.WriteSector = WriteSectorInvalid
		}
		return Event{}, nil
	}

	d.pendingDAM = append(d.pendingDAM, decodeDataByte(word))
	if len(d.pendingDAM) < d.damWant+2 {
		return Event{}, nil
	}
	d.state = stHunt
	d.WriteSector = WriteSectorInvalid // "reset" rule: fresh IDAM required before next DAM

	payload := make([]byte, d.damWant)
	copy(payload, d.pendingDAM[:d.damWant])
	gotCRC := uint16(d.pendingDAM[d.damWant])<<8 | uint16(d.pendingDAM[d.damWant+1])

	crc := markCRCMFM(MarkDAM)
	if d.IsFM {
		crc = markCRCFM(MarkDAM)
	}
	crc = CRC16CCITT(crc, payload)
	crcOK := crc == gotCRC

	if d.InvertData {
		for i := range payload {
			payload[i] = ^payload[i]
		}
	}

	return Event{Kind: EventSectorData, SectorIdx: d.damSectorIdx, Data: payload, CrcOK: crcOK}, nil
}

// idamFrameWords and damPreambleWords approximate the fixed-size portions
// of a sector's IDAM and DAM framing in this decoder's one-word-per-byte
// units: gap_sync + triple sync + mark (+ header/CRC for IDAM).
func idamFrameWords(isFM bool) int {
	if isFM {
		return FMGapSync + idamFieldLen + 1
	}
	return MFMGapSync + 3 + 1 + idamFieldLen
}

func damPreambleWords(isFM bool) int {
	if isFM {
		return FMGapSync + 1
	}
	return MFMGapSync + 3 + 1
}

// buildExpectedDamStarts computes, for each sector in rotational order, the
// word offset from the start of the track at which that sector's DAM
// preamble begins, assuming the track was laid out with this decoder's
// default gap sizing. Real gap sizes vary per format, so this is a
// best-effort rotational estimate: FindFirstWriteSector picks the closest
// expected start and rejects the resync when even that one is more than
// ResyncToleranceWords (64 bit-cells) away.
func (d *Decoder) buildExpectedDamStarts() {
	d.expectedDamStart = make([]int, len(d.Sectors))
	pos := 0
	for i, sec := range d.Sectors {
		pos += idamFrameWords(d.IsFM)
		pos += damPreambleWords(d.IsFM)
		d.expectedDamStart[i] = pos
		pos += sec.Size() + 2 // data + CRC
	}
}

// FindFirstWriteSector localizes an orphaned DAM (no preceding IDAM
// observed yet on this track) by comparing the current word position
// against every sector's expected DAM start and picking the closest one
// within ResyncToleranceWords, mirroring raw_find_first_write_sector's
// rotational bit-cell search.
func (d *Decoder) FindFirstWriteSector() (idx int, ok bool) {
	if len(d.Sectors) == 0 {
		return -1, false
	}
	if d.expectedDamStart == nil {
		d.buildExpectedDamStarts()
	}

	best := -1
	bestDelta := ResyncToleranceWords + 1
	for i, expected := range d.expectedDamStart {
		delta := d.wordPos - expected
		if delta < 0 {
			delta = -delta
		}
		if delta < bestDelta {
			bestDelta = delta
			best = i
		}
	}
	if best < 0 || bestDelta > ResyncToleranceWords {
		return -1, false
	}
	return best, true
}
