package mfm_test

import (
	"io"
	"testing"

	"github.com/dargueta/sectorimg/layout"
	"github.com/dargueta/sectorimg/mfm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSectorSource [][]byte

func (f fixedSectorSource) ReadSector(i int) ([]byte, error) {
	return f[i], nil
}

func TestCRC16CCITT__KnownIDAMExample(t *testing.T) {
	// Three 0xa1 sync bytes, 0xfe mark, then C=0 H=0 R=1 N=2.
	crc := mfm.CRC16CCITT(mfm.InitialCRC, []byte{0xa1, 0xa1, 0xa1, 0xfe, 0, 0, 1, 2})
	// CRC-16/CCITT (poly 0x1021, seed 0xffff) of that byte sequence is
	// 0xca6f, the CRC an IDAM for C=0 H=0 R=1 N=2 carries; this pins the
	// polynomial and seed.
	assert.Equal(t, uint16(0xca6f), crc)

	crc2 := mfm.CRC16CCITT(mfm.InitialCRC, []byte{0xa1, 0xa1, 0xa1, 0xfe, 0, 0, 1, 2})
	assert.Equal(t, crc, crc2, "CRC must be deterministic")
}

func TestEncodeMFMByte__ClockSuppression(t *testing.T) {
	// 0x00 after a byte ending in 1 must have its leading clock bit cleared.
	withSuppression := mfm.EncodeMFMByte(0x00, true)
	withoutSuppression := mfm.EncodeMFMByte(0x00, false)
	assert.NotEqual(t, withSuppression, withoutSuppression)
	assert.EqualValues(t, 0, withSuppression&(1<<15))
	assert.NotEqual(t, uint16(0), withoutSuppression&(1<<15))
}

func TestEncoderDecoder__RoundTripsSingleSector(t *testing.T) {
	sectors := []layout.Sec{{R: 1, N: 2}}
	payload := make([]byte, 512)
	for i := range payload {
		payload[i] = byte(i)
	}

	spec := mfm.TrackSpec{
		IsFM:     false,
		HasIAM:   true,
		DataRate: mfm.RateMFM250,
		RPM:      300,
		C:        0,
		H:        0,
		Sectors:  sectors,
		Data:     fixedSectorSource{payload},
	}
	enc, err := mfm.NewEncoder(spec)
	require.NoError(t, err)

	var words []uint16
	buf := make([]uint16, 64)
	for {
		n, err := enc.Read(buf)
		words = append(words, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	require.NotEmpty(t, words)

	dec := mfm.NewDecoder(false, false, sectors)
	var idamSeen, dataSeen bool
	var recovered []byte
	for _, w := range words {
		ev, err := dec.Consume(w)
		require.NoError(t, err)
		switch ev.Kind {
		case mfm.EventIDAM:
			idamSeen = true
			assert.True(t, ev.CrcOK)
			assert.Equal(t, byte(1), ev.R)
		case mfm.EventSectorData:
			dataSeen = true
			assert.True(t, ev.CrcOK)
			recovered = ev.Data
		}
	}

	require.True(t, idamSeen)
	require.True(t, dataSeen)
	assert.Equal(t, payload, recovered)
}

func TestEncoder__AutoGap3FitsRemainingSpace(t *testing.T) {
	// 10 sectors of 512 bytes at 250kbps/300rpm leaves less room per sector
	// than the size code's gap_3 ceiling (84 bytes), so the auto-fit rule
	// must shrink gap_3 to what's actually left rather than padding the
	// track out past its standard length with the full ceiling on every
	// sector.
	const nrSectors = 10
	sectors := make([]layout.Sec, nrSectors)
	payloads := make([][]byte, nrSectors)
	for i := range sectors {
		sectors[i] = layout.Sec{R: uint8(i + 1), N: 2}
		payloads[i] = make([]byte, 512)
	}

	spec := mfm.TrackSpec{
		HasIAM:   true,
		DataRate: mfm.RateMFM250,
		RPM:      300,
		Sectors:  sectors,
		Data:     fixedSectorSource(payloads),
	}
	enc, err := mfm.NewEncoder(spec)
	require.NoError(t, err)

	standard := mfm.StandardTrackLength(mfm.RateMFM250, 300)
	assert.Equal(t, standard, enc.Len()*16, "auto gap_3 must fit the track to its standard length, not overshoot it with the full ceiling")
}

func TestEncoderDecoder__InvertDataRoundTrips(t *testing.T) {
	sectors := []layout.Sec{{R: 1, N: 0}}
	payload := []byte{0xaa, 0x55, 0x00, 0xff}
	payload = append(payload, make([]byte, 124)...)

	spec := mfm.TrackSpec{
		IsFM:       true,
		HasIAM:     true,
		InvertData: true,
		DataRate:   mfm.RateFM125,
		RPM:        300,
		Sectors:    sectors,
		Data:       fixedSectorSource{payload},
	}
	enc, err := mfm.NewEncoder(spec)
	require.NoError(t, err)

	words := make([]uint16, enc.Len())
	n, err := enc.Read(words)
	require.Equal(t, io.EOF, err)
	require.Equal(t, len(words), n)

	dec := mfm.NewDecoder(true, true, sectors)
	var recovered []byte
	for _, w := range words {
		ev, err := dec.Consume(w)
		require.NoError(t, err)
		if ev.Kind == mfm.EventSectorData {
			recovered = ev.Data
		}
	}
	assert.Equal(t, payload, recovered)
}
