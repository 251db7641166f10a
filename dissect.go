package pcapsight

import (
	"encoding/binary"
	"fmt"
)

// Dissect analyzes a single captured frame given the link-type it was
// captured under. It never fails: malformed or truncated input yields a
// fallback PacketAnalysis rather than an error (spec §4.2).
func Dissect(linktype uint32, frame []byte) PacketAnalysis {
	switch Link(linktype) {
	case LinkEthernet:
		return dissectEthernet(frame)
	case LinkNull:
		return dissectNull(frame)
	case LinkRawIPv4A, LinkRawIPv4B:
		return dissectIPv4(frame)
	case LinkRawIPv6:
		return dissectIPv6(frame)
	default:
		if len(frame) == 0 {
			return linkFallback(linktype, len(frame))
		}
		switch frame[0] >> 4 {
		case 4:
			return dissectIPv4(frame)
		case 6:
			return dissectIPv6(frame)
		default:
			return linkFallback(linktype, len(frame))
		}
	}
}

// linkFallback is the analysis returned when a frame can't be interpreted
// at all: addresses are the em dash, protocol names the raw link type.
func linkFallback(linktype uint32, length int) PacketAnalysis {
	return PacketAnalysis{
		Source:      emDash,
		Destination: emDash,
		Protocol:    fmt.Sprintf("LINKTYPE %d", linktype),
		Summary:     fmt.Sprintf("Captured %d bytes (linktype %d)", length, linktype),
	}
}

const minEthernetFrame = 14

func dissectEthernet(frame []byte) PacketAnalysis {
	if len(frame) < minEthernetFrame {
		return linkFallback(uint32(LinkEthernet), len(frame))
	}

	dstMAC := formatMAC(frame[0:6])
	srcMAC := formatMAC(frame[6:12])
	etherType := EtherType(getUint16(frame[12:14]))
	payload := frame[14:]

	switch etherType {
	case EtherTypeIPv4:
		return substituteMACs(dissectIPv4(payload), srcMAC, dstMAC)
	case EtherTypeIPv6:
		return substituteMACs(dissectIPv6(payload), srcMAC, dstMAC)
	case EtherTypeARP:
		return dissectARP(payload, dstMAC)
	default:
		return PacketAnalysis{
			Source:      srcMAC,
			Destination: dstMAC,
			Protocol:    fmt.Sprintf("EtherType 0x%04X", uint16(etherType)),
			Summary:     fmt.Sprintf("Ethernet 0x%04X → captured %d bytes", uint16(etherType), len(frame)),
		}
	}
}

// substituteMACs replaces em-dash source/destination addresses left by an
// inner network-layer dissector with the enclosing Ethernet frame's MACs.
func substituteMACs(analysis PacketAnalysis, srcMAC, dstMAC string) PacketAnalysis {
	if analysis.Source == emDash {
		analysis.Source = srcMAC
	}
	if analysis.Destination == emDash {
		analysis.Destination = dstMAC
	}
	return analysis
}

func dissectNull(frame []byte) PacketAnalysis {
	if len(frame) < 4 {
		return linkFallback(uint32(LinkNull), len(frame))
	}
	switch binary.NativeEndian.Uint32(frame[0:4]) {
	case 2:
		return dissectIPv4(frame[4:])
	case 24:
		return dissectIPv6(frame[4:])
	default:
		return linkFallback(uint32(LinkNull), len(frame))
	}
}

const minIPv4Header = 20

// dissectIPv4 parses an IPv4 datagram, including protocol-number dispatch
// to the transport dissector. On truncated/malformed input it returns
// em-dash addresses so an enclosing Ethernet dissector can substitute MACs.
func dissectIPv4(data []byte) PacketAnalysis {
	if len(data) < minIPv4Header || data[0]>>4 != 4 {
		return truncatedNetworkAnalysis("IPv4", len(data))
	}

	headerLen := int(data[0]&0x0F) * 4
	if headerLen < minIPv4Header {
		headerLen = minIPv4Header
	}
	if headerLen > len(data) {
		headerLen = len(data)
	}

	totalLength := int(getUint16(data[2:4]))
	upper := totalLength
	if upper > len(data) {
		upper = len(data)
	}
	if upper < headerLen {
		upper = headerLen
	}

	srcAddr := formatIPv4(data[12:16])
	dstAddr := formatIPv4(data[16:20])
	protocol := IPProtocol(data[9])
	payload := data[headerLen:upper]

	return applyTransport(protocol, payload, srcAddr, dstAddr)
}

const minIPv6Header = 40
const maxIPv6ExtensionHeaders = 4

// dissectIPv6 parses an IPv6 datagram, traversing up to four recognized
// extension headers before dispatching to the transport dissector (spec
// §4.2). If an extension header's declared length would overrun the
// buffer, traversal stops and the current next-header value is used as-is.
func dissectIPv6(data []byte) PacketAnalysis {
	if len(data) < minIPv6Header || data[0]>>4 != 6 {
		return truncatedNetworkAnalysis("IPv6", len(data))
	}

	nextHeader := IPProtocol(data[6])
	srcAddr := formatIPv6(data[8:24])
	dstAddr := formatIPv6(data[24:40])
	offset := 40

traversal:
	for i := 0; i < maxIPv6ExtensionHeaders; i++ {
		var hdrLen int
		switch nextHeader {
		case ipv6HopByHop, ipv6Routing, ipv6DestOptions:
			if offset+2 > len(data) {
				break traversal
			}
			hdrLen = (int(data[offset+1]) + 1) * 8
		case ipv6Fragment:
			hdrLen = 8
		case IPProtoAH:
			if offset+2 > len(data) {
				break traversal
			}
			hdrLen = (int(data[offset+1]) + 2) * 4
		default:
			break traversal
		}
		if offset+hdrLen > len(data) {
			currentLogger().Debugw("ipv6 extension header overruns buffer, stopping traversal",
				"next_header", nextHeader, "offset", offset, "header_len", hdrLen, "data_len", len(data))
			break traversal
		}
		nextHeader = IPProtocol(data[offset])
		offset += hdrLen
	}

	payload := data[offset:]
	return applyTransport(nextHeader, payload, srcAddr, dstAddr)
}

func truncatedNetworkAnalysis(protocol string, length int) PacketAnalysis {
	return PacketAnalysis{
		Source:      emDash,
		Destination: emDash,
		Protocol:    protocol,
		Summary:     fmt.Sprintf("Truncated %s header (%d bytes)", protocol, length),
	}
}

const minARPPacket = 28

// dissectARP parses an ARP packet. dstMAC is the enclosing Ethernet frame's
// destination MAC, used verbatim for non-reply operations (spec §4.2,
// open question #2: this mixes frame- and protocol-level data, preserved
// for parity with the source behavior).
func dissectARP(data []byte, dstMAC string) PacketAnalysis {
	if len(data) < minARPPacket ||
		getUint16(data[0:2]) != 1 || // hardware type: Ethernet
		getUint16(data[2:4]) != 0x0800 || // protocol type: IPv4
		data[4] != 6 || // hardware address length
		data[5] != 4 { // protocol address length
		return truncatedNetworkAnalysis("ARP", len(data))
	}

	op := getUint16(data[6:8])
	senderMAC := formatMAC(data[8:14])
	senderIP := formatIPv4(data[14:18])
	targetMAC := formatMAC(data[18:24])
	targetIP := formatIPv4(data[24:28])

	var opSummary string
	macForNonReply := dstMAC
	switch op {
	case 1:
		opSummary = fmt.Sprintf("ARP who-has %s tell %s", targetIP, senderIP)
	case 2:
		opSummary = fmt.Sprintf("ARP reply %s is-at %s", senderIP, senderMAC)
		macForNonReply = targetMAC
	default:
		opSummary = fmt.Sprintf("ARP op %d %s %s %s", op, senderIP, arrow, targetIP)
	}

	return PacketAnalysis{
		Source:      senderIP,
		Destination: targetIP,
		Protocol:    "ARP",
		Summary:     fmt.Sprintf("%s (%s %s %s)", opSummary, senderMAC, arrow, macForNonReply),
	}
}
