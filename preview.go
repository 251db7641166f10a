package pcapsight

import "strings"

const defaultPreviewLen = 32

// HexPreview renders the first min(len(data), maxLen) bytes of data as
// uppercase two-digit hex groups separated by single spaces. If data is
// longer than maxLen, " …" is appended. Empty input yields "".
func HexPreview(data []byte, maxLen int) string {
	if len(data) == 0 {
		return ""
	}

	n := len(data)
	truncated := false
	if n > maxLen {
		n = maxLen
		truncated = true
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(hexByte(data[i]))
	}
	if truncated {
		b.WriteByte(' ')
		b.WriteString(ellipsis)
	}
	return b.String()
}

// ASCIIPreview renders the first min(len(data), maxLen) bytes of data as one
// character each: bytes in the printable range 0x20..=0x7E pass through as
// their glyph, anything else becomes '.'. If data is longer than maxLen, an
// unspaced "…" is appended.
func ASCIIPreview(data []byte, maxLen int) string {
	if len(data) == 0 {
		return ""
	}

	n := len(data)
	truncated := false
	if n > maxLen {
		n = maxLen
		truncated = true
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		c := data[i]
		if c >= 0x20 && c <= 0x7E {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	if truncated {
		b.WriteString(ellipsis)
	}
	return b.String()
}

var hexDigits = "0123456789ABCDEF"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0x0F]})
}
