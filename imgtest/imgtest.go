// Package imgtest provides the fixture loader other packages' tests use to
// exercise real captured disk images without checking raw sector bytes
// into the repository.
package imgtest

import (
	"bytes"
	"io"
	"testing"

	"github.com/dargueta/sectorimg/utilities/compression"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// LoadImage decompresses a gzipped, RLE8-encoded disk image fixture and
// returns a stream backing an in-memory copy of it.
//
//   - Writes to the returned stream do not affect compressedImageBytes.
//   - The stream's size is fixed to sectorSize*totalSectors; writes past
//     that boundary fail the way writes past the end of a real image do.
func LoadImage(
	t *testing.T, compressedImageBytes []byte, sectorSize, totalSectors uint,
) io.ReadWriteSeeker {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	var out bytes.Buffer
	_, err := compression.DecompressImage(bytes.NewBuffer(compressedImageBytes), &out)
	require.NoError(t, err)

	imageBytes := out.Bytes()
	require.Equal(
		t,
		totalSectors*sectorSize,
		uint(len(imageBytes)),
		"uncompressed image is wrong size",
	)
	return bytesextra.NewReadWriteSeeker(imageBytes)
}

// streamCollaborator adapts an io.ReadWriteSeeker (what LoadImage returns)
// into the sectorimg.FileCollaborator the image package's Handler expects,
// since fixture loading and the image driver's I/O contract diverge from
// the teacher's single BlockDevice interface.
type streamCollaborator struct {
	rws io.ReadWriteSeeker
}

// NewCollaborator wraps a stream returned by LoadImage as a
// sectorimg.FileCollaborator.
func NewCollaborator(rws io.ReadWriteSeeker) *streamCollaborator {
	return &streamCollaborator{rws: rws}
}

func (c *streamCollaborator) ReadAt(p []byte, off int64) (int, error) {
	if _, err := c.rws.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(c.rws, p)
}

func (c *streamCollaborator) WriteAt(p []byte, off int64) (int, error) {
	if _, err := c.rws.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return c.rws.Write(p)
}

func (c *streamCollaborator) Size() (int64, error) {
	cur, err := c.rws.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := c.rws.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := c.rws.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

func (c *streamCollaborator) Truncate(newSize int64) error {
	// bytesextra's fixed-size buffer cannot grow; fixture images are
	// loaded at their final size, so truncation is never exercised here.
	size, err := c.Size()
	if err != nil {
		return err
	}
	if newSize != size {
		return io.ErrShortWrite
	}
	return nil
}
