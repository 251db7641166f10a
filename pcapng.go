package pcapsight

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// InterfaceInfo is the decoded state of a PCAP-NG Interface Description
// Block, valid only for the lifetime of the section that declared it (a new
// Section Header Block clears the whole interface table, spec §4.4).
type InterfaceInfo struct {
	Linktype     uint32
	TSOffset     int64
	TSResolution uint64
}

const (
	pcapngBlockTypeSHB = 0x0A0D0D0A
	pcapngBlockTypeIDB = 0x00000001
	pcapngBlockTypeSPB = 0x00000003
	pcapngBlockTypeEPB = 0x00000006

	pcapngMinBlockLen = 12 // type(4) + total_len(4) + total_len-repeat(4)
)

var (
	byteOrderMagicBig    = []byte{0x1A, 0x2B, 0x3C, 0x4D}
	byteOrderMagicLittle = []byte{0x4D, 0x3C, 0x2B, 0x1A}

	// ErrPcapNgInvalidByteOrder is returned when a Section Header Block's
	// byte-order magic doesn't match either recognized pattern.
	ErrPcapNgInvalidByteOrder = errors.New("invalid pcap-ng byte-order magic")
	// ErrPcapNgBlockTooShort is returned when a block's declared total
	// length over- or under-runs the buffer.
	ErrPcapNgBlockTooShort = errors.New("pcap-ng block length invalid")
)

func isPcapNgMagic(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x0A && data[1] == 0x0D && data[2] == 0x0D && data[3] == 0x0A
}

// decodePcapNg decodes a PCAP-NG block stream. A non-nil error means the
// very first block failed to parse (byte-zero failure, spec §7); the
// caller is expected to fall back to raw handling in that case. Any later
// parse failure instead surfaces as a warning and stops consumption of
// further blocks, keeping whatever packets were already decoded.
func decodePcapNg(data []byte) ([]Packet, []string, error) {
	var (
		packets    []Packet
		warnings   []string
		interfaces []InterfaceInfo
		endian     binary.ByteOrder = binary.LittleEndian
		offset                      = 0
		index                       = 0
	)

	for offset+pcapngMinBlockLen <= len(data) {
		rawType := data[offset : offset+4]
		isSHB := rawType[0] == 0x0A && rawType[1] == 0x0D && rawType[2] == 0x0D && rawType[3] == 0x0A

		if isSHB {
			if offset+12 > len(data) {
				return handleStreamError(offset, packets, warnings, errors.WithStack(ErrPcapNgBlockTooShort))
			}
			magic := data[offset+8 : offset+12]
			switch {
			case bytes.Equal(magic, byteOrderMagicBig):
				endian = binary.BigEndian
			case bytes.Equal(magic, byteOrderMagicLittle):
				endian = binary.LittleEndian
			default:
				return handleStreamError(offset, packets, warnings, errors.WithStack(ErrPcapNgInvalidByteOrder))
			}
			interfaces = nil // Section Header resets the interface table.
		}

		totalLen := endian.Uint32(data[offset+4 : offset+8])
		if totalLen < pcapngMinBlockLen || offset+int(totalLen) > len(data) {
			return handleStreamError(offset, packets, warnings, errors.WithStack(ErrPcapNgBlockTooShort))
		}

		blockType := endian.Uint32(rawType)
		body := data[offset+8 : offset+int(totalLen)-4]

		switch blockType {
		case pcapngBlockTypeSHB:
			// Handled above; body carries version/section-length/options
			// that this dissector doesn't need to act on.
		case pcapngBlockTypeIDB:
			interfaces = append(interfaces, parseInterfaceDescription(body, endian))
		case pcapngBlockTypeEPB:
			index++
			pkt, warning := decodeEnhancedPacketBlock(body, endian, interfaces, index)
			if warning != "" {
				warnings = append(warnings, warning)
				currentLogger().Warnw(warning, "index", index)
			}
			if pkt != nil {
				packets = append(packets, *pkt)
			}
		case pcapngBlockTypeSPB:
			index++
			pkt, warning := decodeSimplePacketBlock(body, endian, interfaces, index)
			if warning != "" {
				warnings = append(warnings, warning)
			}
			packets = append(packets, pkt)
		default:
			// Unrecognized block kinds are ignored, per spec §4.4.
		}

		offset += int(totalLen)
	}

	return packets, warnings, nil
}

// handleStreamError implements the mid-stream-vs-byte-zero split from spec
// §4.4/§7: a failure at the very start of the stream propagates as an
// error (triggering the dispatcher's raw fallback); a failure partway
// through becomes a warning, and packets already decoded are kept.
func handleStreamError(offset int, packets []Packet, warnings []string, err error) ([]Packet, []string, error) {
	if offset == 0 {
		return nil, nil, err
	}
	return packets, append(warnings, err.Error()), nil
}

// parseInterfaceDescription decodes an Interface Description Block body
// (everything after the type/length fields). ts_resolution defaults to
// microseconds when the block specifies no if_tsresol option.
func parseInterfaceDescription(body []byte, endian binary.ByteOrder) InterfaceInfo {
	info := InterfaceInfo{TSResolution: resolutionMicros}
	if len(body) < 2 {
		return info
	}
	info.Linktype = uint32(endian.Uint16(body[0:2]))

	const optionsStart = 8
	offset := optionsStart
	for offset+4 <= len(body) {
		code := endian.Uint16(body[offset : offset+2])
		length := int(endian.Uint16(body[offset+2 : offset+4]))
		valueStart := offset + 4
		valueEnd := valueStart + length
		if valueEnd > len(body) {
			break
		}

		switch code {
		case 0: // opt_endofopt
			return info
		case 9: // if_tsresol
			if length >= 1 {
				raw := body[valueStart]
				if raw&0x80 != 0 {
					info.TSResolution = uint64(1) << (raw & 0x7F)
				} else {
					info.TSResolution = pow10(int(raw))
				}
			}
		case 14: // if_tsoffset
			if length >= 8 {
				info.TSOffset = int64(endian.Uint64(body[valueStart : valueStart+8]))
			}
		}

		advance := 4 + length
		if rem := advance % 4; rem != 0 {
			advance += 4 - rem
		}
		offset += advance
	}

	return info
}

func pow10(n int) uint64 {
	r := uint64(1)
	for i := 0; i < n; i++ {
		r *= 10
	}
	return r
}

// decodeEnhancedPacketBlock decodes an Enhanced Packet Block body. A
// reference to a non-existent interface yields a warning and no packet
// (spec §4.4); the returned Packet is nil in that case.
func decodeEnhancedPacketBlock(body []byte, endian binary.ByteOrder, interfaces []InterfaceInfo, index int) (*Packet, string) {
	const fixedHeaderLen = 20
	if len(body) < fixedHeaderLen {
		return nil, fmt.Sprintf("Enhanced packet %d truncated", index)
	}

	ifID := endian.Uint32(body[0:4])
	tsHigh := endian.Uint32(body[4:8])
	tsLow := endian.Uint32(body[8:12])
	capLen := endian.Uint32(body[12:16])
	origLen := endian.Uint32(body[16:20])
	rest := body[fixedHeaderLen:]

	if int(ifID) >= len(interfaces) {
		return nil, fmt.Sprintf("Enhanced packet %d references unknown interface %d", index, ifID)
	}
	iface := interfaces[ifID]

	if int(capLen) > len(rest) {
		capLen = uint32(len(rest))
	}
	payload := rest[:capLen]

	resolution := iface.TSResolution
	if resolution == 0 {
		resolution = resolutionMicros
	}
	ticks := uint64(tsHigh)<<32 | uint64(tsLow)
	seconds := int64(ticks/resolution) + iface.TSOffset
	fractional := ticks % resolution
	timestamp := FormatTimestamp(seconds, fractional, resolution)

	analysis := Dissect(iface.Linktype, payload)
	summary := analysis.Summary
	var warning string
	if origLen > capLen {
		summary += " [truncated]"
		warning = fmt.Sprintf("Packet %d truncated (captured %d of %d bytes)", index, capLen, origLen)
	}

	pkt := NewPacket(PacketMetadata{
		Time:        timestamp,
		Source:      analysis.Source,
		Destination: analysis.Destination,
		Protocol:    analysis.Protocol,
		Summary:     summary,
		Length:      len(payload),
	}, payload)
	return &pkt, warning
}

// defaultSimplePacketInterface is substituted when a Simple Packet Block
// appears with no prior Interface Description Block. This is, strictly,
// out of spec for PCAP-NG (an IDB must precede any packet block) but
// matches the lenient behavior of the system this was distilled from —
// see DESIGN.md open question decision #3.
var defaultSimplePacketInterface = InterfaceInfo{
	Linktype:     uint32(LinkEthernet),
	TSResolution: resolutionMicros,
}

// decodeSimplePacketBlock decodes a Simple Packet Block body. There is no
// embedded timestamp, so the emitted Packet's time is always "0.000000".
func decodeSimplePacketBlock(body []byte, endian binary.ByteOrder, interfaces []InterfaceInfo, index int) (Packet, string) {
	var origLen uint32
	var payload []byte
	if len(body) >= 4 {
		origLen = endian.Uint32(body[0:4])
		payload = body[4:]
	}

	iface := defaultSimplePacketInterface
	if len(interfaces) > 0 {
		iface = interfaces[0]
	}

	analysis := Dissect(iface.Linktype, payload)
	summary := analysis.Summary
	var warning string
	if origLen > uint32(len(payload)) {
		summary += " [truncated]"
		warning = fmt.Sprintf("Packet %d truncated (captured %d of %d bytes)", index, len(payload), origLen)
	}

	return NewPacket(PacketMetadata{
		Time:        "0.000000",
		Source:      analysis.Source,
		Destination: analysis.Destination,
		Protocol:    analysis.Protocol,
		Summary:     summary,
		Length:      len(payload),
	}, payload), warning
}
