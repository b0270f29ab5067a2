package image_test

import (
	"io"
	"strings"
	"testing"

	"github.com/dargueta/sectorimg/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCollaborator is a minimal in-memory sectorimg.FileCollaborator, used
// here instead of imgtest's compressed-fixture loader so this package's
// tests don't need a real captured disk image on disk.
type memCollaborator struct {
	buf []byte
}

func (m *memCollaborator) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memCollaborator) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	return copy(m.buf[off:], p), nil
}

func (m *memCollaborator) Size() (int64, error) { return int64(len(m.buf)), nil }

func (m *memCollaborator) Truncate(newSize int64) error {
	if int64(len(m.buf)) >= newSize {
		m.buf = m.buf[:newSize]
		return nil
	}
	grown := make([]byte, newSize)
	copy(grown, m.buf)
	m.buf = grown
	return nil
}

func tinyTaggedConfig() string {
	return strings.Join([]string{
		"[tiny::512]",
		"cyls=2",
		"heads=1",
		"secs=2",
		"bps=128",
		"iam=no",
	}, "\n")
}

func TestImage_ReadTrack__RendersEncoderWithExpectedSectorCount(t *testing.T) {
	buf := make([]byte, 512)
	for i := range buf {
		buf[i] = byte(i)
	}
	fc := &memCollaborator{buf: buf}

	img, err := image.OpenTagged(fc, 0, strings.NewReader(tinyTaggedConfig()), "tiny")
	require.NoError(t, err)
	assert.Equal(t, "tagged-config", img.Name())

	require.NoError(t, img.SetupTrack(0, 0))
	require.NoError(t, img.ReadTrack(0, 0))

	enc := img.Encoder()
	require.NotNil(t, enc)
	assert.Greater(t, enc.Len(), 0)
}

func TestImage_ReadTrack__RoundTripsSectorPayloadThroughDecoder(t *testing.T) {
	buf := make([]byte, 512)
	for i := range buf {
		buf[i] = byte(200 + i)
	}
	fc := &memCollaborator{buf: append([]byte(nil), buf...)}

	img, err := image.OpenTagged(fc, 0, strings.NewReader(tinyTaggedConfig()), "tiny")
	require.NoError(t, err)
	require.NoError(t, img.SetupTrack(0, 0))
	require.NoError(t, img.ReadTrack(0, 0))

	enc := img.Encoder()
	words := make([]uint16, enc.Len())
	n, err := enc.Read(words)
	require.True(t, err == nil || err == io.EOF)
	words = words[:n]

	target := &memCollaborator{buf: make([]byte, 512)}
	img2, err := image.OpenTagged(target, 0, strings.NewReader(tinyTaggedConfig()), "tiny")
	require.NoError(t, err)
	require.NoError(t, img2.SetupTrack(0, 0))

	for _, w := range words {
		_, err := img2.ConsumeWriteWord(w)
		require.NoError(t, err)
	}

	assert.Equal(t, buf[:128], target.buf[:128])
	assert.Equal(t, buf[128:256], target.buf[128:256])
}
