package bpb

import "fmt"

// VIBSignature is the 3-byte "DSK" identifier TI-99 Volume Information
// Blocks carry at the start of sector 0.
var VIBSignature = [3]byte{'D', 'S', 'K'}

// VIB is the subset of the TI-99 Volume Information Block the opener needs
// to disambiguate SSDD from DSSD and the 80-cylinder DSDD variant.
type VIB struct {
	TotalSectors  uint16
	SectorsPerTrk uint8
	NumSides      uint8
	Density       uint8
}

// ProbeVIB validates the "DSK" signature and decodes the fields the TI-99
// opener needs out of sector 0.
func ProbeVIB(sector0 []byte) (VIB, error) {
	if len(sector0) < 24 {
		return VIB{}, fmt.Errorf("bpb: sector too short to hold a VIB: %d bytes", len(sector0))
	}
	if sector0[0] != VIBSignature[0] || sector0[1] != VIBSignature[1] || sector0[2] != VIBSignature[2] {
		return VIB{}, fmt.Errorf("bpb: missing DSK signature")
	}
	return VIB{
		TotalSectors:  uint16(sector0[0x0a])<<8 | uint16(sector0[0x0b]),
		SectorsPerTrk: sector0[0x0c],
		NumSides:      sector0[0x12],
		Density:       sector0[0x13],
	}, nil
}
