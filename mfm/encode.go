// Package mfm implements the IBM System-34 MFM/FM bit-cell codec: the
// track encoder (C6) that turns a track's sector layout and payload bytes
// into a stream of 16-bit bit-cell words, and the track decoder (C7) that
// consumes such a stream and recovers sector payloads plus CRC and
// resynchronization diagnostics.
package mfm

import (
	"fmt"
	"io"

	"github.com/dargueta/sectorimg/layout"
)

// SectorSource supplies the current payload bytes for one sector, indexed
// by its position in rotational order, the way the seek engine's sector
// map addresses sectors while assembling a track.
type SectorSource interface {
	ReadSector(rotationalIndex int) ([]byte, error)
}

// TrackSpec carries every per-track parameter the encoder needs. DataRate
// must already be concrete (NewEncoder rejects 0; image.Image.SetupTrack
// infers it through seek.ResolveDataRate). Gap fields may be left at Auto:
// the encoder resolves them itself, including fitting gap_3 into the space
// the standard track length leaves.
type TrackSpec struct {
	IsFM         bool
	HasIAM       bool
	InvertData   bool
	PostCRCSyncs int
	Gap2, Gap3, Gap4A int
	DataRate     DataRateKbps
	RPM          uint
	C, H         uint8 // header cylinder/head values baked into every IDAM
	Sectors      []layout.Sec
	Data         SectorSource
}

type element struct {
	raw     bool
	word    uint16
	b       byte
	contOne bool // for raw: does the underlying byte's low bit read as 1
}

func byteElem(b byte) element  { return element{b: b} }
func rawElem(w uint16, contOne bool) element {
	return element{raw: true, word: w, contOne: contOne}
}

// Encoder renders one physical track's full bit-cell stream up front and
// then hands it out through Read, the same backpressure contract an
// io.Reader gives any consumer: callers pull as many words as they have
// room for and get io.EOF once the track is exhausted.
type Encoder struct {
	spec     TrackSpec
	rendered []uint16
	pos      int
}

// NewEncoder validates spec and renders the track.
func NewEncoder(spec TrackSpec) (*Encoder, error) {
	if spec.DataRate == 0 {
		return nil, fmt.Errorf("mfm: TrackSpec.DataRate must be resolved before encoding")
	}
	e := &Encoder{spec: spec}
	if err := e.render(); err != nil {
		return nil, err
	}
	return e, nil
}

// Read copies up to len(buf) bit-cell words into buf, returning io.EOF once
// the whole track has been delivered.
func (e *Encoder) Read(buf []uint16) (int, error) {
	if e.pos >= len(e.rendered) {
		return 0, io.EOF
	}
	n := copy(buf, e.rendered[e.pos:])
	e.pos += n
	if e.pos >= len(e.rendered) {
		return n, io.EOF
	}
	return n, nil
}

// Len returns the total number of bit-cell words the track renders to.
func (e *Encoder) Len() int {
	return len(e.rendered)
}

func (e *Encoder) fillByte() byte {
	if e.spec.IsFM {
		return fillFM
	}
	return fillMFM
}

func (e *Encoder) gapSyncLen() int {
	if e.spec.IsFM {
		return FMGapSync
	}
	return MFMGapSync
}

func appendFill(elems []element, fill byte, count int) []element {
	for i := 0; i < count; i++ {
		elems = append(elems, byteElem(fill))
	}
	return elems
}

// appendMarkPreamble appends gap_sync zero bytes, the triple sync (MFM) or
// single fm_sync word (FM), and the mark byte itself, returning the CRC
// state immediately after the mark so the caller can keep summing header
// or data bytes into it.
func (e *Encoder) appendMarkPreamble(elems []element, mark byte, clockByte byte) ([]element, uint16) {
	elems = appendFill(elems, 0x00, e.gapSyncLen())
	if e.spec.IsFM {
		elems = append(elems, rawElem(FMSyncWord(mark, clockByte), mark&1 == 1))
		return elems, markCRCFM(mark)
	}
	for i := 0; i < 3; i++ {
		elems = append(elems, rawElem(MFMSync, true)) // 0xa1, LSB 1
	}
	elems = append(elems, byteElem(mark))
	return elems, markCRCMFM(mark)
}

func (e *Encoder) appendIAM(elems []element) []element {
	elems = appendFill(elems, 0x00, e.gapSyncLen())
	if e.spec.IsFM {
		elems = append(elems, rawElem(FMSyncWord(MarkIAM, FMIAMClk), MarkIAM&1 == 1))
		return appendFill(elems, e.fillByte(), FMGap1)
	}
	for i := 0; i < 3; i++ {
		elems = append(elems, rawElem(MFMIAMSync, false)) // 0xc2, LSB 0
	}
	elems = append(elems, byteElem(MarkIAM))
	return appendFill(elems, e.fillByte(), MFMGap1)
}

func (e *Encoder) resolvedGap2() int {
	if e.spec.Gap2 != layout.AutoGap {
		return e.spec.Gap2
	}
	if e.spec.IsFM {
		return FMGap2
	}
	if e.spec.DataRate >= RateMFM1000 {
		return MFMGap2ED
	}
	return MFMGap2DD
}

// resolvedGap3 implements the auto-fit rule: infer the track's minimum
// length with gap_3 held at zero, then fit gap_3 into whatever space is left
// before the standard track length, capped at the size code's ceiling. A
// manually specified Gap3 bypasses this and is used as-is for every sector.
func (e *Encoder) resolvedGap3(payloads [][]byte) int {
	if e.spec.Gap3 != layout.AutoGap {
		return e.spec.Gap3
	}
	nrSectors := len(e.spec.Sectors)
	if nrSectors == 0 {
		return 0
	}
	zeroGapLen := e.fixedTrackLength(payloads, 0)
	standard := StandardTrackLength(e.spec.DataRate, e.spec.RPM)
	space := standard - zeroGapLen
	if space < 0 {
		space = 0
	}
	ceiling := Gap3Ceiling(e.spec.IsFM, int(e.spec.Sectors[0].N))
	fit := space / (16 * nrSectors)
	if fit < ceiling {
		return fit
	}
	return ceiling
}

// fixedTrackLength renders the track's element stream with gap_3 pinned to
// the given value and returns its length in bit-cells, used both to probe
// the zero-gap length for the auto-fit formula above and, implicitly, by
// render's own final assembly.
func (e *Encoder) fixedTrackLength(payloads [][]byte, gap3 int) int {
	var elems []element
	elems = appendFill(elems, e.fillByte(), e.resolvedGap4a())
	if e.spec.HasIAM {
		elems = e.appendIAM(elems)
	}
	for k, sec := range e.spec.Sectors {
		elems, _ = e.appendSector(elems, sec, payloads[k], gap3)
	}
	return len(elems) * 16
}

func (e *Encoder) resolvedGap4a() int {
	if e.spec.Gap4A != layout.AutoGap {
		return e.spec.Gap4A
	}
	if e.spec.IsFM {
		if e.spec.HasIAM {
			return 40
		}
		return 16
	}
	return MFMGap4ADef
}

func (e *Encoder) appendSector(elems []element, sec layout.Sec, payload []byte, gap3 int) ([]element, error) {
	idamClock := byte(0xc7)
	elems, crc := e.appendMarkPreamble(elems, MarkIDAM, idamClock)
	header := []byte{e.spec.C, e.spec.H, sec.R, sec.N}
	crc = CRC16CCITT(crc, header)
	for _, b := range header {
		elems = append(elems, byteElem(b))
	}
	elems = append(elems, byteElem(byte(crc>>8)), byteElem(byte(crc)))

	for i := 0; i < e.spec.PostCRCSyncs; i++ {
		elems = append(elems, rawElem(MFMSync, true))
	}
	elems = appendFill(elems, e.fillByte(), e.resolvedGap2())

	elems, crc = e.appendMarkPreamble(elems, MarkDAM, idamClock)
	for _, b := range payload {
		db := b
		if e.spec.InvertData {
			db = ^b
		}
		crc = CRC16CCITT(crc, []byte{db})
		elems = append(elems, byteElem(db))
	}
	elems = append(elems, byteElem(byte(crc>>8)), byteElem(byte(crc)))

	for i := 0; i < e.spec.PostCRCSyncs; i++ {
		elems = append(elems, rawElem(MFMSync, true))
	}
	elems = appendFill(elems, e.fillByte(), gap3)
	return elems, nil
}

func (e *Encoder) render() error {
	var elems []element
	fill := e.fillByte()

	payloads := make([][]byte, len(e.spec.Sectors))
	for k, sec := range e.spec.Sectors {
		payload, err := e.spec.Data.ReadSector(k)
		if err != nil {
			return fmt.Errorf("mfm: reading sector %d: %w", k, err)
		}
		if len(payload) != sec.Size() {
			return fmt.Errorf("mfm: sector %d payload is %d bytes, want %d", k, len(payload), sec.Size())
		}
		payloads[k] = payload
	}
	gap3 := e.resolvedGap3(payloads)

	elems = appendFill(elems, fill, e.resolvedGap4a())
	if e.spec.HasIAM {
		elems = e.appendIAM(elems)
	}

	for k, sec := range e.spec.Sectors {
		var err error
		elems, err = e.appendSector(elems, sec, payloads[k], gap3)
		if err != nil {
			return err
		}
	}

	standard := StandardTrackLength(e.spec.DataRate, e.spec.RPM)
	minNeeded := len(elems) * 16
	actual := ActualTrackLength(standard, minNeeded)
	remainder := (actual - minNeeded) / 16
	if remainder > 0 {
		elems = appendFill(elems, fill, remainder)
	}

	e.rendered = renderElements(elems, e.spec.IsFM)
	return nil
}

func renderElements(elems []element, isFM bool) []uint16 {
	out := make([]uint16, 0, len(elems))
	prevBitOne := false
	for _, el := range elems {
		if el.raw {
			out = append(out, el.word)
			prevBitOne = el.contOne
			continue
		}
		if isFM {
			out = append(out, EncodeFMByte(el.b))
		} else {
			out = append(out, EncodeMFMByte(el.b, prevBitOne))
			prevBitOne = el.b&1 == 1
		}
	}
	return out
}

// EncodeMFMByte interleaves clock and data bits for one byte, assuming the
// bit immediately before it was 0, then clears the leading clock bit if
// prevBitWasOne is true. This is the "suppress the leading clock bit of
// each emitted word when the previous word's low bit was 1" rule.
func EncodeMFMByte(data byte, prevBitWasOne bool) uint16 {
	var word uint16
	prev := byte(0)
	for i := 7; i >= 0; i-- {
		bit := (data >> uint(i)) & 1
		clock := byte(0)
		if prev == 0 && bit == 0 {
			clock = 1
		}
		word = (word << 2) | uint16(clock)<<1 | uint16(bit)
		prev = bit
	}
	if prevBitWasOne {
		word &^= 1 << 15
	}
	return word
}

// EncodeFMByte interleaves a constant all-ones clock pattern with data
// bits, the standard FM encoding for a non-address-mark byte.
func EncodeFMByte(data byte) uint16 {
	var word uint16
	for i := 7; i >= 0; i-- {
		bit := (data >> uint(i)) & 1
		word = (word << 2) | (1 << 1) | uint16(bit)
	}
	return word
}
