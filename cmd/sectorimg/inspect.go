package main

import (
	"fmt"
	"os"

	"github.com/dargueta/sectorimg/image"
	"github.com/urfave/cli/v2"
)

func openImage(c *cli.Context, path string) (*image.Image, error) {
	fc, err := openInput(path)
	if err != nil {
		return nil, err
	}

	configPath := c.String("config")
	if configPath == "" {
		return image.Open(fc, 0)
	}

	sidecar, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("opening sidecar config %s: %w", configPath, err)
	}
	defer sidecar.Close()

	return image.OpenTagged(fc, 0, sidecar, c.String("tag"))
}

func inspectImage(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("inspect: expected exactly one IMAGE_FILE argument")
	}

	img, err := openImage(c, c.Args().First())
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	nrCyls, nrSides := img.Geometry()
	fmt.Printf("format:   %s\n", img.Name())
	fmt.Printf("cylinders: %d\n", nrCyls)
	fmt.Printf("sides:     %d\n", nrSides)

	trk, secs, err := img.TrackInfo(0, 0)
	if err != nil {
		return fmt.Errorf("inspect: reading track (0, 0): %w", err)
	}
	fmt.Printf("track 0/0: %d sectors, fm=%v, has_iam=%v, rpm=%d\n",
		len(secs), trk.IsFM, trk.HasIAM, trk.RPM)
	return nil
}
