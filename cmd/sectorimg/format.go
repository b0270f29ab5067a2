package main

import (
	"fmt"

	"github.com/dargueta/sectorimg/geometry"
	"github.com/dargueta/sectorimg/layout"
	"github.com/dargueta/sectorimg/track"
	"github.com/dargueta/sectorimg/xdf"
	"github.com/urfave/cli/v2"
)

func sizeCodeFor(bps int) (int, error) {
	n := 0
	for sz := 128; sz < bps; sz <<= 1 {
		n++
		if n > 7 {
			return 0, fmt.Errorf("bps %d is not a power of two multiple of 128", bps)
		}
	}
	if 128<<n != bps {
		return 0, fmt.Errorf("bps %d is not a power of two multiple of 128", bps)
	}
	return n, nil
}

// formatXDF writes a blank 80x2 XDF image, whose per-cylinder layout isn't
// expressible through the plain cyls/heads/secs/bps flags formatImage
// otherwise builds a geometry.Table from.
func formatXDF(outPath string) error {
	a := layout.NewArena(0)
	if err := xdf.BuildArena(a); err != nil {
		return fmt.Errorf("format: building XDF layout: %w", err)
	}
	if err := a.Finalise(); err != nil {
		return fmt.Errorf("format: finalizing arena: %w", err)
	}

	total := xdf.TotalImageSize()
	fc, err := createBlank(outPath, total)
	if err != nil {
		return err
	}
	defer fc.Close()

	fmt.Printf("Wrote %d cylinders x %d heads (XDF) = %d bytes to %s\n", xdf.NrCyls, xdf.NrSides, total, outPath)
	return nil
}

func formatImage(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("format: expected exactly one OUTPUT_FILE argument")
	}
	outPath := c.Args().First()

	if c.Bool("xdf") {
		return formatXDF(outPath)
	}

	n, err := sizeCodeFor(c.Int("bps"))
	if err != nil {
		return err
	}

	tbl := geometry.Table{
		Host:       "cli-format",
		NrSectors:  c.Int("secs"),
		NrSides:    c.Int("heads"),
		HasIAM:     !c.Bool("no-iam"),
		IsFM:       c.Bool("fm"),
		Interleave: c.Int("interleave"),
		N:          n,
		BaseID:     1,
		RPMClass:   c.Int("rpm")/60 - 5,
	}

	a := layout.NewArena(0)
	if err := track.SimpleLayout(a, tbl, c.Int("cyls"), [2]uint8{1, 1}, false); err != nil {
		return fmt.Errorf("format: laying out geometry: %w", err)
	}
	if err := a.Finalise(); err != nil {
		return fmt.Errorf("format: finalizing arena: %w", err)
	}

	var total int64
	nrCyls, nrSides := a.Geometry()
	for cyl := 0; cyl < nrCyls; cyl++ {
		for head := 0; head < nrSides; head++ {
			_, secs, err := a.TrackAt(cyl, head)
			if err != nil {
				return fmt.Errorf("format: computing image size: %w", err)
			}
			for _, sec := range secs {
				total += int64(sec.Size())
			}
		}
	}

	fc, err := createBlank(outPath, total)
	if err != nil {
		return err
	}
	defer fc.Close()

	fmt.Printf("Wrote %d cylinders x %d heads x %d sectors x %d bytes = %d bytes to %s\n",
		nrCyls, nrSides, tbl.NrSectors, tbl.SectorSize(), total, outPath)
	return nil
}
