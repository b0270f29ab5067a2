package mfm

// CRC16CCITT computes the CRC-16/CCITT (polynomial 0x1021) used to protect
// every IDAM and DAM/data field, continuing from an existing running value.
// Callers seed with 0xffff for a fresh field, or with the mark-prefix's own
// CRC value when continuing across a sub-chunk boundary.
func CRC16CCITT(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// InitialCRC is the seed value CRC-16/CCITT starts from at the sync bytes
// preceding a mark byte.
const InitialCRC uint16 = 0xffff

// markCRCMFM returns the running CRC value after the three 0xa1 sync bytes
// and the mark byte, i.e. the CRC state the encoder resumes from after
// emitting an MFM address mark, and the decoder should already have
// reached when it starts summing header or data bytes.
func markCRCMFM(markByte byte) uint16 {
	return CRC16CCITT(CRC16CCITT(InitialCRC, []byte{0xa1, 0xa1, 0xa1}), []byte{markByte})
}

// markCRCFM returns the running CRC value after an FM address mark. FM has
// no clock-violating sync prefix, so the CRC starts directly at the mark
// byte.
func markCRCFM(markByte byte) uint16 {
	return CRC16CCITT(InitialCRC, []byte{markByte})
}
