package imgopen

import (
	"fmt"

	"github.com/dargueta/sectorimg"
	"github.com/dargueta/sectorimg/bpb"
	"github.com/dargueta/sectorimg/geometry"
	"github.com/dargueta/sectorimg/layout"
	"github.com/dargueta/sectorimg/track"
	"github.com/dargueta/sectorimg/xdf"
)

// openFromCatalogue is the common path shared by every host whose geometry
// is fully described by a Catalogue entry picked purely by file size: lay
// out one Trk per side across every cylinder, apply an optional quirk to
// the freshly built layouts, then finalize.
func openFromCatalogue(name string, cat geometry.Catalogue, fileSize int64, quirk func(a *layout.Arena, tbl geometry.Table)) (*Result, error) {
	tbl, cyls, err := cat.Match(fileSize)
	if err != nil {
		return nil, ErrNotThisFormat
	}
	a := layout.NewArena(0)
	baseID := [2]uint8{uint8(tbl.BaseID), uint8(tbl.BaseID)}
	if err := track.SimpleLayout(a, tbl, cyls, baseID, false); err != nil {
		return nil, err
	}
	if quirk != nil {
		quirk(a, tbl)
	}
	if err := a.Finalise(); err != nil {
		return nil, err
	}
	return &Result{Format: name, Arena: a}, nil
}

// forEachSideLayout applies fn once per distinct per-side Trk that
// SimpleLayout created (cheap: it only ever creates NrSides distinct
// layouts), letting a quirk mutate every cylinder's track at once.
func forEachSideLayout(a *layout.Arena, nrSides int, fn func(trk *layout.Trk)) {
	seen := map[uint8]bool{}
	for side := 0; side < nrSides; side++ {
		trk, _, err := a.TrackAt(0, side)
		if err != nil {
			continue
		}
		idx := trackIndexOf(a, trk)
		if seen[idx] {
			continue
		}
		seen[idx] = true
		fn(trk)
	}
}

// openATR recognizes Atari 8-bit disk images: a 16-byte header beginning
// with the 0x0296 signature, followed by raw single-density FM sectors
// where track 0 alone uses 128-byte sectors even on otherwise
// double-density images (a quirk this catalogue's fixed N=0 already
// captures for the 90K/130K/180K sizes it lists).
func openATR(fileSize int64, sector0 []byte) (*Result, error) {
	if len(sector0) < 16 || sector0[0] != 0x96 || sector0[1] != 0x02 {
		return nil, ErrNotThisFormat
	}
	dataSize := fileSize - 16
	return openFromCatalogue("atr", geometry.ATR, dataSize, func(a *layout.Arena, tbl geometry.Table) {
		forEachSideLayout(a, tbl.NrSides, func(trk *layout.Trk) {
			trk.DataRate = 125 + 125/25 // +4% over 125kbps FM standard, matching Atari 810 drive timing
			trk.Interleave = uint(tbl.NrSectors / 2)
			trk.InvertData = true
		})
	})
}

// openIBM3174 recognizes the IBM 3174 terminal controller's fixed 2.4MB
// layout: an oddball cylinder 0 (15 sectors/track) followed by 79
// cylinders of 30 sectors/track, both 512-byte sectors, 2 sides. This
// format mixes two layouts in one image so it can't use Catalogue.Match.
func openIBM3174(fileSize int64, sector0 []byte) (*Result, error) {
	cyl0 := geometry.IBM3174Cyl0
	rest := geometry.IBM3174Rest
	totalCyls := geometry.IBM3174TotalCyls

	cyl0Bytes := int64(cyl0.NrSectors) * int64(cyl0.SectorSize()) * int64(cyl0.NrSides)
	restBytes := int64(rest.NrSectors) * int64(rest.SectorSize()) * int64(rest.NrSides)
	if fileSize != cyl0Bytes+int64(totalCyls-1)*restBytes {
		return nil, ErrNotThisFormat
	}

	a := layout.NewArena(0)
	if err := a.InitTrackMap(totalCyls, 2); err != nil {
		return nil, err
	}

	cyl0Trk := make([]uint8, 2)
	restTrk := make([]uint8, 2)
	for side := 0; side < 2; side++ {
		trk, idx, err := a.AddTrackLayout(cyl0.NrSectors)
		if err != nil {
			return nil, err
		}
		fillSectors(trk, a.Sectors(idx), cyl0)
		cyl0Trk[side] = idx

		trk2, idx2, err := a.AddTrackLayout(rest.NrSectors)
		if err != nil {
			return nil, err
		}
		fillSectors(trk2, a.Sectors(idx2), rest)
		restTrk[side] = idx2
	}

	for side := 0; side < 2; side++ {
		if err := a.SetTrackMap(0, side, cyl0Trk[side]); err != nil {
			return nil, err
		}
		for cyl := 1; cyl < totalCyls; cyl++ {
			if err := a.SetTrackMap(cyl, side, restTrk[side]); err != nil {
				return nil, err
			}
		}
	}

	if err := a.Finalise(); err != nil {
		return nil, err
	}
	return &Result{Format: "ibm-3174", Arena: a}, nil
}

func fillSectors(trk *layout.Trk, secs []layout.Sec, tbl geometry.Table) {
	trk.HasIAM = tbl.HasIAM
	trk.IsFM = tbl.IsFM
	trk.Interleave = uint(tbl.Interleave)
	trk.RPM = uint(tbl.RPM())
	for j := range secs {
		secs[j].R = uint8(tbl.BaseID + j)
		secs[j].N = uint8(tbl.N)
	}
}

// openD81 recognizes the Commodore 1581 3.5" format: 80 cylinders, 2
// sides, 10 512-byte sectors/track, stored with the SIDES_SWAPPED file
// layout (side 1 precedes side 0 in the backing file).
func openD81(fileSize int64, sector0 []byte) (*Result, error) {
	res, err := openFromCatalogue("d81", geometry.D81, fileSize, nil)
	if err != nil {
		return nil, err
	}
	res.LayoutFlags |= sectorimg.LayoutSidesSwapped
	return res, nil
}

// openVDK recognizes Dragon/CoCo "dk" images: a header starting "dk",
// followed by a 2-byte little-endian header length. Headers shorter than
// 12 bytes are malformed and rejected outright rather than guessed at.
func openVDK(fileSize int64, sector0 []byte) (*Result, error) {
	if len(sector0) < 4 || sector0[0] != 'd' || sector0[1] != 'k' {
		return nil, ErrNotThisFormat
	}
	hlen := int64(sector0[2]) | int64(sector0[3])<<8
	if hlen < 12 {
		return nil, sectorimg.ErrBadImage.WithMessage(fmt.Sprintf("VDK header length %d is below the minimum 12 bytes", hlen))
	}
	return openFromCatalogue("vdk", geometry.VDK, fileSize-hlen, nil)
}

// openJVC recognizes TRS-80 Color Computer JVC images, which carry an
// optional 0-to-32-byte trailer header whose exact length has to be
// guessed by trying each legal size in turn.
func openJVC(fileSize int64, sector0 []byte) (*Result, error) {
	for _, hlen := range []int64{0, 1, 2, 4, 8, 16, 32} {
		if res, err := openFromCatalogue("jvc", geometry.JVC, fileSize-hlen, nil); err == nil {
			return res, nil
		}
	}
	return nil, ErrNotThisFormat
}

// openTRD recognizes ZX Spectrum TR-DOS images by the 0x10 disk-type
// signature byte the format stores in its catalogue footer at offset
// 0x8e0, then applies the odd-track-count "trailing half cylinder is
// empty" quirk.
func openTRD(fileSize int64, sector0 []byte) (*Result, error) {
	const footerOffset = 0x8e0
	if len(sector0) <= footerOffset || sector0[footerOffset] != 0x10 {
		return nil, ErrNotThisFormat
	}
	tbl, cyls, err := geometry.TRD.Match(fileSize)
	if err != nil {
		return nil, ErrNotThisFormat
	}
	a := layout.NewArena(0)
	if err := track.SimpleLayout(a, tbl, cyls, [2]uint8{uint8(tbl.BaseID), uint8(tbl.BaseID)}, true); err != nil {
		return nil, err
	}
	if err := a.Finalise(); err != nil {
		return nil, err
	}
	return &Result{Format: "trd", Arena: a}, nil
}

// openUKNC recognizes the Soviet UKNC PDP-11 clone's fixed DSDD geometry
// and applies its gap_2=24 / gap_4a=27 quirks. No sync words are emitted
// after the CRCs: the tracks it sets up carry no post_crc_syncs setting.
func openUKNC(fileSize int64, sector0 []byte) (*Result, error) {
	return openFromCatalogue("uknc", geometry.UKNC, fileSize, func(a *layout.Arena, tbl geometry.Table) {
		forEachSideLayout(a, tbl.NrSides, func(trk *layout.Trk) {
			trk.Gap2 = 24
			trk.Gap4A = 27
		})
	})
}

// openTI99 recognizes TI-99/4A floppy images. When sector 0 carries a
// "DSK" Volume Information Block it is used to disambiguate SSDD from
// DSSD from the 80-cylinder DSDD variant directly; otherwise the catalogue
// falls back to matching on file size alone.
func openTI99(fileSize int64, sector0 []byte) (*Result, error) {
	if vib, err := bpb.ProbeVIB(sector0); err == nil {
		for _, tbl := range geometry.TI99 {
			if int(vib.SectorsPerTrk) == tbl.NrSectors && int(vib.NumSides) == tbl.NrSides {
				if nrCyls, ok := tbl.Match(fileSize); ok {
					a := layout.NewArena(0)
					if err := track.SimpleLayout(a, tbl, nrCyls, [2]uint8{uint8(tbl.BaseID), uint8(tbl.BaseID)}, false); err != nil {
						return nil, err
					}
					if err := a.Finalise(); err != nil {
						return nil, err
					}
					return &Result{Format: "ti99", Arena: a}, nil
				}
			}
		}
	}
	return openFromCatalogue("ti99", geometry.TI99, fileSize, nil)
}

// openMSX disambiguates the ambiguous MSX 320KiB case (single-sided 80
// cylinders vs. double-sided 40) using the disk's own BPB when a boot
// signature is present, falling back to catalogue order otherwise.
func openMSX(fileSize int64, sector0 []byte) (*Result, error) {
	if bpb.HasBootSignature(sector0, 512) {
		if raw, err := bpb.Probe(sector0); err == nil && raw.AgreesWithFileSize(fileSize) {
			for _, tbl := range geometry.MSX {
				if int(raw.NumHeads) == tbl.NrSides && int(raw.SectorsPerTrack) == tbl.NrSectors {
					if nrCyls, ok := tbl.Match(fileSize); ok {
						a := layout.NewArena(0)
						if err := track.SimpleLayout(a, tbl, nrCyls, [2]uint8{uint8(tbl.BaseID), uint8(tbl.BaseID)}, false); err != nil {
							return nil, err
						}
						if err := a.Finalise(); err != nil {
							return nil, err
						}
						return &Result{Format: "msx", Arena: a}, nil
					}
				}
			}
		}
	}
	return openFromCatalogue("msx", geometry.MSX, fileSize, nil)
}

// openSDU recognizes Sinclair QL Sandy SuperDisk images: a 46-byte header
// precedes the raw sector data.
func openSDU(fileSize int64, sector0 []byte) (*Result, error) {
	const hlen = 46
	if len(sector0) < hlen {
		return nil, ErrNotThisFormat
	}
	return openFromCatalogue("sdu", geometry.SDU, fileSize-hlen, nil)
}

// openOPD recognizes Opus Discovery images: headerless, disambiguated
// purely by file size against the Acorn-derivative catalogue.
func openOPD(fileSize int64, sector0 []byte) (*Result, error) {
	return openFromCatalogue("opd", geometry.OPD, fileSize, nil)
}

// openDFS recognizes headerless Acorn plain DFS single-sided images.
func openDFS(fileSize int64, sector0 []byte) (*Result, error) {
	return openFromCatalogue("dfs", geometry.DFS, fileSize, nil)
}

// openDSD recognizes headerless Acorn Watford DDFS double-sided images.
func openDSD(fileSize int64, sector0 []byte) (*Result, error) {
	return openFromCatalogue("dsd", geometry.DSD, fileSize, nil)
}

// openPC98FDI recognizes NEC PC-98 FDI images: a fixed 4096-byte header
// whose density byte at offset 0x1a selects between the 2DD and 2HD
// tables.
func openPC98FDI(fileSize int64, sector0 []byte) (*Result, error) {
	const hlen = 4096
	const densityOff = 0x1a
	if len(sector0) <= densityOff {
		return nil, ErrNotThisFormat
	}
	var tbl geometry.Table
	switch sector0[densityOff] {
	case 0x00:
		tbl = geometry.PC98FDI[0]
	case 0x30:
		tbl = geometry.PC98FDI[1]
	default:
		return nil, ErrNotThisFormat
	}
	nrCyls, ok := tbl.Match(fileSize - hlen)
	if !ok {
		return nil, ErrNotThisFormat
	}
	a := layout.NewArena(0)
	if err := track.SimpleLayout(a, tbl, nrCyls, [2]uint8{uint8(tbl.BaseID), uint8(tbl.BaseID)}, false); err != nil {
		return nil, err
	}
	if err := a.Finalise(); err != nil {
		return nil, err
	}
	return &Result{Format: "pc98fdi", Arena: a}, nil
}

// openMBD recognizes headerless Amstrad PCW/MBD 3-inch images.
func openMBD(fileSize int64, sector0 []byte) (*Result, error) {
	return openFromCatalogue("mbd", geometry.MBD, fileSize, nil)
}

// openST recognizes headerless Atari ST images.
func openST(fileSize int64, sector0 []byte) (*Result, error) {
	return openFromCatalogue("st", geometry.ST, fileSize, nil)
}

// openXDF recognizes the fixed-size 1.86MB XDF image: headerless, its 80x2
// non-uniform per-cylinder layout is unique enough (2,280,192 bytes) that a
// plain size match is unambiguous, exactly the way the other headerless
// catalogue entries disambiguate. Unlike every catalogue-driven handler,
// the resulting arena carries an explicit per-track file offset table,
// since XDF's cylinder-0 tracks are smaller than the rest of the disk and
// the contiguous seek.TrackOffset formula can't express that.
func openXDF(fileSize int64, sector0 []byte) (*Result, error) {
	if fileSize != xdf.TotalImageSize() {
		return nil, ErrNotThisFormat
	}
	a := layout.NewArena(0)
	if err := xdf.BuildArena(a); err != nil {
		return nil, err
	}
	if err := a.Finalise(); err != nil {
		return nil, err
	}
	return &Result{Format: "xdf", Arena: a}, nil
}

// openPCDOS is the fallback opener every other handler declines to:
// straight PC-DOS geometry matched purely by file size.
func openPCDOS(fileSize int64, sector0 []byte) (*Result, error) {
	return openFromCatalogue("pc-dos", geometry.Default, fileSize, nil)
}
