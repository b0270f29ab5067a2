// Package bpb reads just enough of a BIOS Parameter Block (or the Volume
// Information Block sibling formats use) to disambiguate an otherwise
// size-ambiguous geometry match. It does not understand file systems: it
// exists purely to answer "how many heads, how many sectors per track, how
// many total sectors does this header claim" for the image opener's
// geometry disambiguation step.
package bpb

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// RawBPB is the on-disk layout of the fields the opener cares about, read
// starting at sector 0 byte 11 (skipping the 3-byte jump and 8-byte OEM
// name every BPB-bearing boot sector begins with).
type RawBPB struct {
	BytesPerSector  uint16
	SectorsPerClus  uint8
	ReservedSectors uint16
	NumFATs         uint8
	RootEntryCount  uint16
	TotalSectors16  uint16
	Media           uint8
	SectorsPerFAT   uint16
	SectorsPerTrack uint16
	NumHeads        uint16
	HiddenSectors   uint32
	TotalSectors32  uint32
}

// Signature is the 0xaa55 boot-sector signature the header probe checks at
// offset 0x1fe before trusting anything else in the sector.
const Signature = 0xaa55

// Probe parses a RawBPB out of the first 512 (or fewer, if bytesPerSector
// says so) bytes of sector 0. It does not validate the 0xaa55 signature;
// callers check that separately since it lives beyond the BPB fields
// proper and its offset depends on sector size.
func Probe(sector0 []byte) (RawBPB, error) {
	if len(sector0) < 36 {
		return RawBPB{}, fmt.Errorf("bpb: sector too short to hold a BPB: %d bytes", len(sector0))
	}
	var raw RawBPB
	r := bytes.NewReader(sector0[11:])
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return RawBPB{}, fmt.Errorf("bpb: %w", err)
	}
	return raw, nil
}

// HasBootSignature reports whether the 2-byte signature at the very end of
// a sectorSize-byte sector 0 is 0xaa55.
func HasBootSignature(sector0 []byte, sectorSize int) bool {
	if len(sector0) < sectorSize || sectorSize < 2 {
		return false
	}
	sig := binary.LittleEndian.Uint16(sector0[sectorSize-2:])
	return sig == Signature
}

// TotalSectors returns whichever of the 16- and 32-bit total sector counts
// is non-zero, preferring the 16-bit field the way FAT readers do.
func (b RawBPB) TotalSectors() uint32 {
	if b.TotalSectors16 != 0 {
		return uint32(b.TotalSectors16)
	}
	return b.TotalSectors32
}

// AgreesWithFileSize reports whether the BPB's own idea of total sectors *
// bytes per sector accounts for fileSize, the disambiguation rule spec'd
// as "prefer the BPB unless it contradicts the file size".
func (b RawBPB) AgreesWithFileSize(fileSize int64) bool {
	if b.BytesPerSector == 0 {
		return false
	}
	return int64(b.TotalSectors())*int64(b.BytesPerSector) == fileSize
}
