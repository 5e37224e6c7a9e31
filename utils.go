// utils.go — small formatting helpers shared by the harness.
package main

///////////////////////////////////////////////////////////////////////////////
// Integer / float to string without fmt
///////////////////////////////////////////////////////////////////////////////

// utoa renders an unsigned integer in decimal.
func utoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// ftoa2 renders a non-negative float with two decimal places, which is all
// the throughput report needs.
func ftoa2(v float64) string {
	whole := uint64(v)
	frac := uint64((v-float64(whole))*100 + 0.5)
	if frac >= 100 { // rounding carried over
		whole++
		frac -= 100
	}
	if frac < 10 {
		return utoa(whole) + ".0" + utoa(frac)
	}
	return utoa(whole) + "." + utoa(frac)
}

///////////////////////////////////////////////////////////////////////////////
// Hex rendering for digests
///////////////////////////////////////////////////////////////////////////////

const hexDigits = "0123456789abcdef"

// hexBytes renders a digest as lowercase hex.
func hexBytes(p []byte) string {
	out := make([]byte, 0, len(p)*2)
	for _, c := range p {
		out = append(out, hexDigits[c>>4], hexDigits[c&0xF])
	}
	return string(out)
}
