package pcapsight

import "fmt"

// getUint16 reads a big-endian uint16 from the first two bytes of buf.
func getUint16(buf []byte) uint16 {
	return uint16(buf[0])<<8 | uint16(buf[1])
}

// formatMAC renders a 6-byte MAC address as six uppercase hex pairs joined
// by colons, e.g. "AA:BB:CC:DD:EE:FF".
func formatMAC(mac []byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}

// formatIPv4 renders a 4-byte address as dotted-quad.
func formatIPv4(addr []byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", addr[0], addr[1], addr[2], addr[3])
}

// formatIPv6 renders a 16-byte address as eight colon-separated lowercase
// hex groups. This deliberately does not apply RFC 5952 zero-compression:
// the UI contract (spec §6) only requires a stable, unambiguous string, and
// an uncompressed form is simpler to reproduce bit-exactly across decoders.
func formatIPv6(addr []byte) string {
	groups := make([]uint16, 8)
	for i := range groups {
		groups[i] = getUint16(addr[i*2 : i*2+2])
	}
	return fmt.Sprintf("%x:%x:%x:%x:%x:%x:%x:%x",
		groups[0], groups[1], groups[2], groups[3], groups[4], groups[5], groups[6], groups[7])
}

// withPort appends a ":{port}" suffix to an address string.
func withPort(addr string, port uint16) string {
	return fmt.Sprintf("%s:%d", addr, port)
}

const (
	emDash   = "—" // —
	arrow    = "→" // →
	ellipsis = "…" // …
)
