package geometry

// Per-host catalogues, one per platform. Most are used by a dedicated opener
// in imgopen; ADFS, Akai, Casio, DEC, Ensoniq, Fluke, Memotech and Nascom
// have no opener there. Each mirrors a sibling table of the PC-DOS table in the host
// geometry catalogue: same shape (nr_secs, nr_sides, has_iam, gap3,
// interleave, n, base-id, cskew, hskew, cyls-class, rpm-class), different
// numbers.

// ST is Atari ST, derived from the PC-DOS 80-cylinder table with no IAM and
// 9-sector variants carrying cylinder/head skew.
var ST = Catalogue{
	{Host: "st-360", NrSectors: 9, NrSides: 1, HasIAM: false, Interleave: 1, N: 2, BaseID: 1, CSkew: 2, Cyls: Cyls80, RPMClass: 0},
	{Host: "st-720", NrSectors: 9, NrSides: 2, HasIAM: false, Interleave: 1, N: 2, BaseID: 1, CSkew: 4, HSkew: 2, Cyls: Cyls80, RPMClass: 0},
	{Host: "st-800", NrSectors: 10, NrSides: 2, HasIAM: false, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// MSX covers the ambiguous 320 KiB case (80/1/8 vs 40/2/8) as two entries;
// the opener's BPB probe, not table order, breaks the tie.
var MSX = Catalogue{
	{Host: "msx-ss", NrSectors: 8, NrSides: 1, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
	{Host: "msx-ds-40", NrSectors: 8, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "msx-ds-80", NrSectors: 9, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// TI99 covers SSDD, DSSD, and the 80-cylinder DSDD variant; VIB disambiguation
// lives in imgopen, not here.
var TI99 = Catalogue{
	{Host: "ti99-ssdd", NrSectors: 9, NrSides: 1, HasIAM: true, Interleave: 5, N: 1, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "ti99-dssd", NrSectors: 9, NrSides: 2, HasIAM: true, Interleave: 5, N: 0, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "ti99-dsdd80", NrSectors: 18, NrSides: 2, HasIAM: true, Interleave: 5, N: 1, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// UKNC is a Soviet PDP-11 clone's DSDD floppy: fixed 10 sectors/track, no
// IAM, and the gap_2=24 / gap_4a=27 quirks applied by imgopen after a
// match. The post-CRC sync word of real UKNC tracks is not reproduced.
var UKNC = Catalogue{
	{Host: "uknc", NrSectors: 10, NrSides: 2, HasIAM: false, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// TRD is the Russian TR-DOS format for the ZX Spectrum Beta Disk interface.
var TRD = Catalogue{
	{Host: "trd-ss40", NrSectors: 16, NrSides: 1, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "trd-ds40", NrSectors: 16, NrSides: 2, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "trd-ds80", NrSectors: 16, NrSides: 2, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// JVC covers TRS-80 Color Computer disk images.
var JVC = Catalogue{
	{Host: "jvc-ssdd", NrSectors: 18, NrSides: 1, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "jvc-dsdd", NrSectors: 18, NrSides: 2, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
}

// VDK covers Dragon/CoCo "dk" images, single density, single or double
// sided.
var VDK = Catalogue{
	{Host: "vdk-ss", NrSectors: 18, NrSides: 1, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "vdk-ds", NrSectors: 18, NrSides: 2, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
}

// SDU covers Sinclair QL Sandy SuperDisk images with an explicit 46-byte
// header naming max geometry; the catalogue entries below are the values
// that header can select among.
var SDU = Catalogue{
	{Host: "sdu-80x2x9", NrSectors: 9, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
	{Host: "sdu-80x2x10", NrSectors: 10, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// OPD covers Opus Discovery Acorn DFS-derivative images, cskew=13,
// interleave=13, FM.
var OPD = Catalogue{
	{Host: "opd-ss40", NrSectors: 18, NrSides: 1, HasIAM: false, IsFM: true, Interleave: 13, N: 0, BaseID: 0, CSkew: 13, Cyls: Cyls40, RPMClass: 0},
	{Host: "opd-ds80", NrSectors: 18, NrSides: 2, HasIAM: false, IsFM: true, Interleave: 13, N: 0, BaseID: 0, CSkew: 13, Cyls: Cyls80, RPMClass: 0},
}

// DFS covers Acorn plain DFS single-sided images (.ssd); cskew=3, FM.
var DFS = Catalogue{
	{Host: "dfs-ss40", NrSectors: 10, NrSides: 1, HasIAM: false, IsFM: true, Interleave: 1, N: 0, BaseID: 0, CSkew: 3, Cyls: Cyls40, RPMClass: 0},
	{Host: "dfs-ss80", NrSectors: 10, NrSides: 1, HasIAM: false, IsFM: true, Interleave: 1, N: 0, BaseID: 0, CSkew: 3, Cyls: Cyls80, RPMClass: 0},
}

// SSD is DFS with an interleaved second side stored as odd tracks (.dsd is
// the two-file-per-side variant); geometry-wise identical to DFS doubled.
var SSD = DFS

// DSD covers Acorn Watford DDFS-style double-sided single-file images.
var DSD = Catalogue{
	{Host: "dsd-ds40", NrSectors: 10, NrSides: 2, HasIAM: false, IsFM: true, Interleave: 1, N: 0, BaseID: 0, CSkew: 3, Cyls: Cyls40, RPMClass: 0},
	{Host: "dsd-ds80", NrSectors: 10, NrSides: 2, HasIAM: false, IsFM: true, Interleave: 1, N: 0, BaseID: 0, CSkew: 3, Cyls: Cyls80, RPMClass: 0},
}

// PC98FDI covers NEC PC-98 2HD/2DD images; the density byte in the 4096-byte
// header selects between these two entries.
var PC98FDI = Catalogue{
	{Host: "pc98fdi-2dd", NrSectors: 8, NrSides: 2, HasIAM: true, Interleave: 1, N: 3, BaseID: 1, Cyls: Cyls80, RPMClass: 1},
	{Host: "pc98fdi-2hd", NrSectors: 15, NrSides: 2, HasIAM: true, Interleave: 1, N: 3, BaseID: 1, Cyls: Cyls80, RPMClass: 1},
}

// MBD covers the Amstrad PCW/MBD 3-inch format.
var MBD = Catalogue{
	{Host: "mbd-ss40", NrSectors: 9, NrSides: 1, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
}

// ADFS covers Acorn's own ADFS D/E/F/L/M/S geometries.
var ADFS = Catalogue{
	{Host: "adfs-s", NrSectors: 16, NrSides: 1, HasIAM: false, Interleave: 1, N: 2, BaseID: 0, Cyls: Cyls40, RPMClass: 0},
	{Host: "adfs-m", NrSectors: 16, NrSides: 1, HasIAM: false, Interleave: 1, N: 2, BaseID: 0, Cyls: Cyls80, RPMClass: 0},
	{Host: "adfs-l", NrSectors: 16, NrSides: 2, HasIAM: false, Interleave: 1, N: 2, BaseID: 0, Cyls: Cyls80, RPMClass: 0},
	{Host: "adfs-d", NrSectors: 5, NrSides: 2, HasIAM: false, Interleave: 1, N: 4, BaseID: 0, Cyls: Cyls80, RPMClass: 0},
	{Host: "adfs-e", NrSectors: 5, NrSides: 2, HasIAM: false, Interleave: 1, N: 4, BaseID: 0, Cyls: Cyls80, RPMClass: 0},
	{Host: "adfs-f", NrSectors: 10, NrSides: 2, HasIAM: false, Interleave: 1, N: 4, BaseID: 0, Cyls: Cyls80, RPMClass: 0},
}

// Akai covers the Akai S900/S950/S1000/S3000 sampler disk formats.
var Akai = Catalogue{
	{Host: "akai-dd", NrSectors: 10, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
	{Host: "akai-hd", NrSectors: 20, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// Casio covers the Casio FZ-1 sampler's proprietary disk format.
var Casio = Catalogue{
	{Host: "casio-fz1", NrSectors: 8, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 1},
}

// DEC covers DEC RX50 400 KiB single-sided quad-density images.
var DEC = Catalogue{
	{Host: "dec-rx50", NrSectors: 10, NrSides: 1, HasIAM: true, Interleave: 2, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// Ensoniq covers Ensoniq sampler (Mirage/EPS) disk formats.
var Ensoniq = Catalogue{
	{Host: "ensoniq-ss", NrSectors: 10, NrSides: 1, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
	{Host: "ensoniq-ds", NrSectors: 10, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// Fluke covers Fluke 9000-series test equipment disk formats.
var Fluke = Catalogue{
	{Host: "fluke", NrSectors: 16, NrSides: 2, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// Memotech covers the Memotech MTX FDX floppy controller's disk format.
var Memotech = Catalogue{
	{Host: "memotech-ss", NrSectors: 16, NrSides: 1, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
	{Host: "memotech-ds", NrSectors: 16, NrSides: 2, HasIAM: true, Interleave: 1, N: 1, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// Nascom covers the Nascom/Gemini NAS-SYS disk format.
var Nascom = Catalogue{
	{Host: "nascom", NrSectors: 10, NrSides: 1, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// ATR is the Atari 8-bit single-density table; imgopen applies the
// FM/125kbps+4% and track-0-is-128-bytes quirks on top of a match.
var ATR = Catalogue{
	{Host: "atr-90k", NrSectors: 18, NrSides: 1, HasIAM: true, IsFM: true, Interleave: 1, N: 0, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "atr-130k", NrSectors: 26, NrSides: 1, HasIAM: true, IsFM: true, Interleave: 1, N: 0, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
	{Host: "atr-180k", NrSectors: 18, NrSides: 2, HasIAM: true, IsFM: true, Interleave: 1, N: 0, BaseID: 1, Cyls: Cyls40, RPMClass: 0},
}

// D81 is the Commodore 1581 3.5" format: 80 cylinders, 2 sides, 10 sectors
// of 512 bytes, SIDES_SWAPPED file layout applied by imgopen.
var D81 = Catalogue{
	{Host: "d81", NrSectors: 10, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, Cyls: Cyls80, RPMClass: 0},
}

// IBM3174Cyl0 and IBM3174Rest describe the IBM 3174 terminal controller's
// 2.4MB format's two cylinder layouts. Because the format mixes them in one
// image, imgopen sizes the file directly rather than using Catalogue.Match.
var IBM3174Cyl0 = Table{Host: "ibm-3174-cyl0", NrSectors: 15, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, RPMClass: 1}
var IBM3174Rest = Table{Host: "ibm-3174-rest", NrSectors: 30, NrSides: 2, HasIAM: true, Interleave: 1, N: 2, BaseID: 1, RPMClass: -2}

// IBM3174TotalCyls is the fixed cylinder count of the IBM 3174 format: one
// special cylinder 0 plus 79 uniform cylinders.
const IBM3174TotalCyls = 80
