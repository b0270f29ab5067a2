package mfm

// DataRateKbps enumerates the discrete rates the encoder ever selects.
type DataRateKbps int

const (
	RateFM125  DataRateKbps = 125
	RateFM250  DataRateKbps = 250
	RateMFM250 DataRateKbps = 250
	RateMFM500 DataRateKbps = 500
	RateMFM1000 DataRateKbps = 1000
)

// InferMFMDataRate picks the smallest of DD (250), HD (500), or ED (1000)
// kbps such that a standard-length track at that rate and rpm can hold at
// least minBitCells bit-cells of actual field data.
func InferMFMDataRate(minBitCells int, rpm uint) DataRateKbps {
	if rpm == 0 {
		rpm = 300
	}
	for i, rate := range []DataRateKbps{RateMFM250, RateMFM500, RateMFM1000} {
		shift := i + 1
		capacity := ((50000 * 300 / int(rpm)) << uint(shift)) + 5000
		if minBitCells <= capacity {
			return rate
		}
	}
	return RateMFM1000
}

// InferFMDataRate picks 125 or 250 kbps by the same fitting rule, scaled
// for FM's half-density encoding.
func InferFMDataRate(minBitCells int, rpm uint) DataRateKbps {
	if rpm == 0 {
		rpm = 300
	}
	capacity125 := (50000 * 300 / int(rpm)) + 5000
	if minBitCells <= capacity125 {
		return RateFM125
	}
	return RateFM250
}

// StandardTrackLength returns the nominal bit-cell length of a track at the
// given rate and rotation speed.
func StandardTrackLength(rate DataRateKbps, rpm uint) int {
	if rpm == 0 {
		rpm = 300
	}
	return int(rate) * 400 * 300 / int(rpm)
}

// ActualTrackLength is the max of the standard length and the length
// actually needed to hold every field, rounded up to a multiple of 32; the
// difference between it and the sum of fixed fields becomes the terminal
// (pre-index) gap.
func ActualTrackLength(standard, minimumNeeded int) int {
	length := standard
	if minimumNeeded > length {
		length = minimumNeeded
	}
	if rem := length % 32; rem != 0 {
		length += 32 - rem
	}
	return length
}
