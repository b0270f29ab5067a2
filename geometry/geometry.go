// Package geometry holds the compile-time catalogue of host-specific
// candidate geometries (C2) and the matcher that picks one from a file
// size: "file size equals nr_cyls * nr_secs * (128<<n) * nr_sides for some
// nr_cyls in the entry's cylinder class; first match wins."
package geometry

import "fmt"

// CylsClass names the two cylinder-count families every catalogue entry
// belongs to.
type CylsClass int

const (
	Cyls40 CylsClass = iota // 38..42 cylinders, single/double step 40-track drives
	Cyls80                  // 77..85 cylinders, 80-track drives
)

// Range returns the inclusive cylinder count range a class allows.
func (c CylsClass) Range() (min, max int) {
	switch c {
	case Cyls40:
		return 38, 42
	case Cyls80:
		return 77, 85
	default:
		return 0, 0
	}
}

// Table is one candidate geometry: everything the track assembler
// (track.SimpleLayout) needs to lay out a track.
type Table struct {
	Host string

	NrSectors  int
	NrSides    int
	HasIAM     bool
	IsFM       bool
	Gap3       int // 0 selects auto-fit
	Interleave int
	N          int // sector size code, size = 128<<N
	BaseID     int
	CSkew      int
	HSkew      int
	Cyls       CylsClass
	RPMClass   int // rpm = (class+5)*60
}

// RPM returns the table's rotation speed in revolutions per minute.
func (t Table) RPM() int {
	return (t.RPMClass + 5) * 60
}

// SectorSize returns the sector payload size in bytes.
func (t Table) SectorSize() int {
	return 128 << t.N
}

// Match reports the number of cylinders that makes this table's total
// encoded capacity equal fileSize, or ok=false if no cylinder count in the
// table's class produces an exact match.
func (t Table) Match(fileSize int64) (nrCyls int, ok bool) {
	minC, maxC := t.Cyls.Range()
	perCyl := int64(t.NrSectors) * int64(t.SectorSize()) * int64(t.NrSides)
	if perCyl == 0 {
		return 0, false
	}
	for c := minC; c <= maxC; c++ {
		if int64(c)*perCyl == fileSize {
			return c, true
		}
	}
	return 0, false
}

// Catalogue is a named, ordered list of candidate tables to try in order;
// the first one that matches a given file size wins.
type Catalogue []Table

// Match runs every table in the catalogue in order and returns the first
// one whose Match succeeds.
func (c Catalogue) Match(fileSize int64) (Table, int, error) {
	for _, t := range c {
		if nrCyls, ok := t.Match(fileSize); ok {
			return t, nrCyls, nil
		}
	}
	return Table{}, 0, fmt.Errorf("geometry: no catalogue entry matches file size %d", fileSize)
}

// Default is the built-in PC-DOS-derived table tried when no host-specific
// handler recognized the image, mirroring the fallback table the original
// engine consults after every named format has declined a file.
var Default = Catalogue{
	{Host: "pc-dos-320", NrSectors: 8, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "pc-dos-360", NrSectors: 9, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "pc-dos-720", NrSectors: 9, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
	{Host: "pc-dos-1200", NrSectors: 15, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 1},
	{Host: "pc-dos-1440", NrSectors: 18, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
	{Host: "pc-dos-2880", NrSectors: 36, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}
