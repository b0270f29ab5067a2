package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage: "Inspect and format raw sector-image disk files",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Create a blank image with an explicit geometry",
				Action:    formatImage,
				ArgsUsage: "OUTPUT_FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "cyls", Required: true, Usage: "number of cylinders"},
					&cli.IntFlag{Name: "heads", Value: 2, Usage: "number of sides"},
					&cli.IntFlag{Name: "secs", Required: true, Usage: "sectors per track"},
					&cli.IntFlag{Name: "bps", Value: 512, Usage: "bytes per sector"},
					&cli.IntFlag{Name: "interleave", Value: 1},
					&cli.IntFlag{Name: "rpm", Value: 300},
					&cli.BoolFlag{Name: "fm", Usage: "use FM instead of MFM encoding"},
					&cli.BoolFlag{Name: "no-iam", Usage: "omit the index address mark"},
					&cli.BoolFlag{Name: "xdf", Usage: "ignore every other geometry flag and format a fixed 80x2 XDF image"},
				},
			},
			{
				Name:      "inspect",
				Usage:     "Print the geometry an image was recognized as",
				Action:    inspectImage,
				ArgsUsage: "IMAGE_FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "sidecar config file for the tagged-config probe"},
					&cli.StringFlag{Name: "tag", Usage: "section name to score against, with -config"},
				},
			},
			{
				Name:      "dumplayout",
				Usage:     "Write one CSV row per physical track's resolved layout",
				Action:    dumpLayout,
				ArgsUsage: "IMAGE_FILE CSV_OUTPUT",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "sidecar config file for the tagged-config probe"},
					&cli.StringFlag{Name: "tag", Usage: "section name to score against, with -config"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err)
	}
}

// fileCollaborator adapts *os.File to sectorimg.FileCollaborator; os.File
// already satisfies io.ReaderAt/io.WriterAt.
type fileCollaborator struct {
	*os.File
}

func (f fileCollaborator) Size() (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func openInput(path string) (fileCollaborator, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fileCollaborator{}, fmt.Errorf("opening %s: %w", path, err)
	}
	return fileCollaborator{f}, nil
}

func createBlank(path string, size int64) (fileCollaborator, error) {
	f, err := os.Create(path)
	if err != nil {
		return fileCollaborator{}, fmt.Errorf("creating %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return fileCollaborator{}, fmt.Errorf("sizing %s: %w", path, err)
	}
	return fileCollaborator{f}, nil
}
