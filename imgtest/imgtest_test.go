package imgtest_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/sectorimg/imgtest"
	"github.com/dargueta/sectorimg/utilities/compression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressFixture(t *testing.T, raw []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	_, err := compression.CompressImage(bytes.NewReader(raw), &out)
	require.NoError(t, err)
	return out.Bytes()
}

func TestLoadImage__RoundTripsCompressedFixture(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAA, 0x55}, 256) // 512 bytes, one sector
	compressed := compressFixture(t, raw)

	stream := imgtest.LoadImage(t, compressed, 512, 1)

	got := make([]byte, len(raw))
	n, err := stream.Read(got)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.Equal(t, raw, got)
}

func TestNewCollaborator__ReadAtAndWriteAtRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0x00}, 1024)
	compressed := compressFixture(t, raw)
	stream := imgtest.LoadImage(t, compressed, 512, 2)

	fc := imgtest.NewCollaborator(stream)

	payload := []byte("sector-payload-bytes")
	n, err := fc.WriteAt(payload, 512)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	readBack := make([]byte, len(payload))
	n, err = fc.ReadAt(readBack, 512)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, readBack)

	size, err := fc.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 1024, size)
}
