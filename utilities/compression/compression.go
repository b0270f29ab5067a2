package compression

import (
	"bytes"
	"compress/gzip"
	"io"
)

// CompressImage compresses a disk image using RLE8 and gzip.
//
// The returned int64 gives the number of bytes written to the output stream. If
// an error occurred, the value is undefined and should not be used.
func CompressImage(input io.Reader, output io.Writer) (int64, error) {
	// Compress into a buffer with gzip at the highest compression available,
	// then copy the finished stream to the output so the returned count is its
	// full length. The disk images aren't that huge so we won't notice much of
	// a speed difference between the default and highest levels.
	var compressed bytes.Buffer
	gzWriter, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return 0, err
	}
	if _, err = CompressRLE8(input, gzWriter); err != nil {
		gzWriter.Close()
		return 0, err
	}
	if err = gzWriter.Close(); err != nil {
		return 0, err
	}
	return io.Copy(output, &compressed)
}

// DecompressImage takes a gzipped, RLE8-encoded disk image and decompresses it
// to the original raw bytes.
//
// The returned int64 gives the number of bytes written to the output (i.e. the
// decompressed size of the image). If an error occurred, the value is undefined
// and should not be used.
func DecompressImage(input io.Reader, output io.Writer) (int64, error) {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return 0, err
	}
	defer gzReader.Close()
	return DecompressRLE8(gzReader, output)
}

// DecompressImageToBytes is a convenience function wrapping [DecompressImage].
// It functions identically, except it returns the decompressed data in a new
// byte slice instead of writing to an [io.Writer].
func DecompressImageToBytes(input io.Reader) ([]byte, error) {
	buffer := bytes.Buffer{}
	_, err := DecompressImage(input, &buffer)
	if err != nil {
		return nil, err
	}
	decompressed := buffer.Bytes()
	if decompressed == nil {
		decompressed = []byte{}
	}
	return decompressed, nil
}
