// Package imgopen implements the image opener (C3): given a candidate
// file's size and its first sector, and optionally a tagged sidecar
// configuration, it picks the geometry catalogue entry that recognizes the
// image and returns a populated layout.Arena.
//
// Handlers are tried in a fixed order, exactly as the original engine
// walks its table of per-format open routines: each one either recognizes
// the image and returns a Result, or declines with ErrNotThisFormat so the
// next handler gets a turn.
package imgopen

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dargueta/sectorimg"
	"github.com/dargueta/sectorimg/config"
	"github.com/dargueta/sectorimg/geometry"
	"github.com/dargueta/sectorimg/layout"
	"github.com/dargueta/sectorimg/track"
)

// ErrNotThisFormat is returned by a Handler that declines to recognize the
// candidate file, so Open can move on to the next one in line.
var ErrNotThisFormat = errors.New("imgopen: file does not match this format")

// Result is what a successful Handler hands back to the caller: a
// finalized layout arena plus the persisted-image layout modifiers the
// caller's seek engine needs to compute track offsets.
type Result struct {
	Format      string
	Arena       *layout.Arena
	LayoutFlags sectorimg.LayoutFlag
}

// Handler recognizes one image format from its size and first sector, and
// on success builds a fully finalized Result.
type Handler struct {
	Name string
	Try  func(fileSize int64, sector0 []byte) (*Result, error)
}

// Handlers lists every built-in format handler in the order Open tries
// them, mirroring the original engine's dispatch order: the ambiguous,
// signature-bearing formats first, generic PC-DOS sizing last.
var Handlers = []Handler{
	{Name: "atr", Try: openATR},
	{Name: "ibm-3174", Try: openIBM3174},
	{Name: "d81", Try: openD81},
	{Name: "vdk", Try: openVDK},
	{Name: "jvc", Try: openJVC},
	{Name: "trd", Try: openTRD},
	{Name: "uknc", Try: openUKNC},
	{Name: "ti99", Try: openTI99},
	{Name: "msx", Try: openMSX},
	{Name: "sdu", Try: openSDU},
	{Name: "opd", Try: openOPD},
	{Name: "dfs", Try: openDFS},
	{Name: "dsd", Try: openDSD},
	{Name: "pc98fdi", Try: openPC98FDI},
	{Name: "mbd", Try: openMBD},
	{Name: "st", Try: openST},
	{Name: "xdf", Try: openXDF},
	{Name: "pc-dos", Try: openPCDOS},
}

// Open walks Handlers in order and returns the first one that recognizes
// the file. If none does, it reports ErrNotThisFormat.
func Open(fileSize int64, sector0 []byte) (*Result, error) {
	for _, h := range Handlers {
		res, err := h.Try(fileSize, sector0)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrNotThisFormat) {
			return nil, fmt.Errorf("imgopen: %s: %w", h.Name, err)
		}
	}
	return nil, ErrNotThisFormat
}

// OpenTagged runs the tagged-config probe (§4.3 step 1): every section of
// sidecar is scored against tag and imageSize, and the highest-scoring
// section (ties broken by file order, first wins) is applied to a
// synthesized single-zone layout. It returns ErrNotThisFormat if no
// section scores positively, so the caller can fall back to header/BPB
// probing and the plain Open dispatcher.
func OpenTagged(sidecar io.Reader, tag string, imageSize int64) (*Result, error) {
	tokens, err := config.Parse(sidecar)
	if err != nil {
		return nil, err
	}

	bestScore := 0
	bestSec := -1
	sections := []config.Section{config.NewSection()}
	secStarts := []config.Token{{Name: "", Size: -1}}

	for _, tok := range tokens {
		if tok.Kind == config.SectionStart {
			sections = append(sections, config.NewSection())
			secStarts = append(secStarts, tok)
			continue
		}
		if err := sections[len(sections)-1].Apply(tok); err != nil {
			return nil, err
		}
	}

	// Only a section that fully specifies a geometry (cyls/heads/secs) is a
	// usable candidate; a section that scores well but carries no geometry
	// is not one the tagged probe can act on.
	for i, start := range secStarts {
		sec := sections[i]
		if sec.Cyls == 0 || sec.Heads == 0 || sec.Secs == 0 {
			continue
		}
		score := config.Score(start, tag, imageSize)
		if bestSec < 0 || score > bestScore {
			bestScore = score
			bestSec = i
		}
	}
	if bestSec < 0 || bestScore <= 0 {
		return nil, ErrNotThisFormat
	}

	sec := sections[bestSec]

	n := 2
	if sec.Bps > 0 {
		n = sizeCodeFor(sec.Bps)
	}

	tbl := geometry.Table{
		Host:       "tagged-config",
		NrSectors:  sec.Secs,
		NrSides:    sec.Heads,
		HasIAM:     sec.IAM,
		IsFM:       sec.FM,
		Interleave: pickOr(sec.Interleave, 1),
		N:          n,
		BaseID:     sec.IDBase,
		CSkew:      sec.CSkew,
		HSkew:      sec.HSkew,
	}

	a := layout.NewArena(0)
	if err := track.SimpleLayout(a, tbl, sec.Cyls, [2]uint8{uint8(sec.IDBase), uint8(sec.IDBase)}, false); err != nil {
		return nil, err
	}
	applyGapOverrides(a, sec)

	// A "tracks=" directive starts a new per-track layout (§4.3 step 1,
	// §6): every cylinder/head selection it names gets its own zone,
	// overriding whatever SimpleLayout assigned those cells above. Cells
	// no selector touches keep the section's default single-zone layout.
	for _, sel := range sec.Tracks {
		cyls := cylRange(sel.FirstCyl, sel.LastCyl)
		heads := zoneHeads(sel, tbl.NrSides)
		err := track.AddZoneLayout(a, tbl.NrSectors, cyls, heads, func(trk *layout.Trk, secs []layout.Sec) {
			fillSectors(trk, secs, tbl)
		})
		if err != nil {
			return nil, fmt.Errorf("imgopen: applying tracks= zone %d-%d: %w", sel.FirstCyl, sel.LastCyl, err)
		}
	}

	if err := a.Finalise(); err != nil {
		return nil, err
	}
	return &Result{Format: "tagged-config", Arena: a, LayoutFlags: layoutFlagsFromTokens(sec.FileLayoutTokens)}, nil
}

// cylRange expands a TrackSelector's inclusive cylinder bounds into the
// slice AddZoneLayout wants.
func cylRange(first, last int) []int {
	if last < first {
		first, last = last, first
	}
	cyls := make([]int, 0, last-first+1)
	for c := first; c <= last; c++ {
		cyls = append(cyls, c)
	}
	return cyls
}

// zoneHeads resolves a TrackSelector's Head field (-1 meaning both heads)
// against the section's side count.
func zoneHeads(sel config.TrackSelector, nrSides int) []int {
	if sel.Head < 0 {
		heads := make([]int, nrSides)
		for h := range heads {
			heads[h] = h
		}
		return heads
	}
	return []int{sel.Head}
}

// layoutFlagsFromTokens translates a "file-layout=" directive's
// comma-separated tokens into the persisted image layout bitset (§6):
// "sequential", "sides-swapped", and "reverse-sideN" for N in {0,1}.
func layoutFlagsFromTokens(tokens []string) sectorimg.LayoutFlag {
	var flags sectorimg.LayoutFlag
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "sequential":
			flags |= sectorimg.LayoutSequential
		case tok == "sides-swapped":
			flags |= sectorimg.LayoutSidesSwapped
		case strings.HasPrefix(tok, "reverse-side"):
			if side, err := strconv.Atoi(strings.TrimPrefix(tok, "reverse-side")); err == nil {
				flags |= sectorimg.ReverseSideBit(side)
			}
		}
	}
	return flags
}

func applyGapOverrides(a *layout.Arena, sec config.Section) {
	_, nrSides := a.Geometry()
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
		if sec.Gap2 != config.Auto {
			trk.Gap2 = sec.Gap2
		}
		if sec.Gap3 != config.Auto {
			trk.Gap3 = sec.Gap3
		}
		if sec.Gap4A != config.Auto {
			trk.Gap4A = sec.Gap4A
		}
		if sec.RPM > 0 {
			trk.RPM = uint(sec.RPM)
		}
		if sec.RateKbps > 0 {
			trk.DataRate = uint(sec.RateKbps)
		}
	}
}

// trackIndexOf recovers a Trk's index within the arena by comparing
// pointers against every layout the arena holds; used only for the
// tagged-config path's small, one-layout-per-side arenas.
func trackIndexOf(a *layout.Arena, trk *layout.Trk) uint8 {
	for i := 0; i < a.NumTrackLayouts(); i++ {
		if a.TrackLayout(uint8(i)) == trk {
			return uint8(i)
		}
	}
	return 0
}

func sizeCodeFor(bps int) int {
	n := 0
	for size := 128; size < bps && n < 7; size <<= 1 {
		n++
	}
	return n
}

func pickOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
