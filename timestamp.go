package pcapsight

import "fmt"

// FormatTimestamp renders a packet timestamp as decimal seconds. Negative
// seconds clamp to "0.000000", discarding the sign. When resolution is a positive power
// of ten, the fractional part is zero-padded to log10(resolution) digits
// (e.g. resolution 1e9 → 9 digits); otherwise the value is rendered as a
// floating-point combination of seconds and fractional/resolution with six
// fractional digits.
func FormatTimestamp(seconds int64, fractional uint64, resolution uint64) string {
	if seconds < 0 {
		return "0.000000"
	}

	if digits, ok := decimalDigits(resolution); ok {
		return fmt.Sprintf("%d.%0*d", seconds, digits, fractional)
	}

	total := float64(seconds) + float64(fractional)/float64(resolution)
	return fmt.Sprintf("%.6f", total)
}

// decimalDigits reports whether resolution is a positive power of ten, and
// if so how many digits (log10(resolution)) a fractional field scaled to it
// needs.
func decimalDigits(resolution uint64) (int, bool) {
	if resolution == 0 {
		return 0, false
	}
	digits := 0
	r := resolution
	for r > 1 {
		if r%10 != 0 {
			return 0, false
		}
		r /= 10
		digits++
	}
	return digits, true
}
