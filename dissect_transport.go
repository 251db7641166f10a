package pcapsight

import "fmt"

// applyTransport builds the final PacketAnalysis for a network-layer
// datagram once its protocol number, transport-layer payload, and address
// strings are known. TCP/UDP/SCTP promote their ports into the address
// strings; ICMP/ICMPv6 decode a human-readable type/code description.
// Everything else falls back to a plain "{proto} {src} → {dst}" summary.
func applyTransport(protocol IPProtocol, payload []byte, srcAddr, dstAddr string) PacketAnalysis {
	protoName := protocolName(protocol)
	analysis := PacketAnalysis{
		Source:      srcAddr,
		Destination: dstAddr,
		Protocol:    protoName,
		Summary:     fmt.Sprintf("%s %s %s %s", protoName, srcAddr, arrow, dstAddr),
	}

	switch protocol {
	case IPProtoTCP, IPProtoUDP, IPProtoSCTP:
		if len(payload) >= 4 {
			src := withPort(srcAddr, getUint16(payload[0:2]))
			dst := withPort(dstAddr, getUint16(payload[2:4]))
			analysis.Source = src
			analysis.Destination = dst
			analysis.Summary = fmt.Sprintf("%s %s %s %s", protoName, src, arrow, dst)
		}
	case IPProtoICMP, IPProtoICMPv6:
		if len(payload) >= 2 {
			icmpType, code := payload[0], payload[1]
			var desc string
			if protocol == IPProtoICMP {
				desc = icmpv4Description(icmpType, code)
			} else {
				desc = icmpv6Description(icmpType, code)
			}
			analysis.Summary = fmt.Sprintf("%s %s %s %s (%s)", protoName, srcAddr, arrow, dstAddr, desc)
		}
	}

	return analysis
}

// icmpv4Description maps an ICMPv4 (type, code) pair to a short
// human-readable description, per spec §4.2.
func icmpv4Description(icmpType, code byte) string {
	switch {
	case icmpType == 0:
		return "echo reply"
	case icmpType == 3 && code == 0:
		return "destination network unreachable"
	case icmpType == 3 && code == 1:
		return "destination host unreachable"
	case icmpType == 3 && code == 3:
		return "port unreachable"
	case icmpType == 5 && code == 1:
		return "redirect host"
	case icmpType == 8:
		return "echo request"
	case icmpType == 11 && code == 0:
		return "time exceeded in transit"
	case icmpType == 11 && code == 1:
		return "fragment reassembly time exceeded"
	default:
		return fmt.Sprintf("type %d, code %d", icmpType, code)
	}
}

// icmpv6Description maps an ICMPv6 (type, code) pair to a short
// human-readable description, per spec §4.2.
func icmpv6Description(icmpType, code byte) string {
	switch {
	case icmpType == 1 && code == 0:
		return "destination unreachable"
	case icmpType == 2 && code == 0:
		return "packet too big"
	case icmpType == 3 && code == 0:
		return "time exceeded"
	case icmpType == 128:
		return "echo request"
	case icmpType == 129:
		return "echo reply"
	case icmpType == 133:
		return "router solicitation"
	case icmpType == 134:
		return "router advertisement"
	case icmpType == 135:
		return "neighbor solicitation"
	case icmpType == 136:
		return "neighbor advertisement"
	default:
		return fmt.Sprintf("type %d, code %d", icmpType, code)
	}
}
