/*
Package pcapsight decodes an opaque byte buffer believed to hold a network
packet capture — legacy PCAP, PCAP-NG, or unstructured raw bytes — and
renders a JSON summary of every packet it contains. It is built to run
behind a single call, ProcessPacket, with no I/O, no background state, and
no dependency on anything outside the buffer it is handed.
*/
package pcapsight

// Link identifies a pcap link-layer header type. See
// http://www.tcpdump.org/linktypes.html for the full registry; only the
// handful the dissector understands are named here.
type Link uint32

const (
	LinkNull     Link = 0
	LinkEthernet Link = 1
	LinkRawIPv4A Link = 101
	LinkRawIPv4B Link = 228
	LinkRawIPv6  Link = 229
)

// EtherType is the Ethernet payload-type field.
type EtherType uint16

const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeARP  EtherType = 0x0806
	EtherTypeIPv6 EtherType = 0x86DD
)

// IPProtocol is the IPv4 protocol / IPv6 next-header field.
type IPProtocol uint8

const (
	IPProtoICMP     IPProtocol = 1
	IPProtoIGMP     IPProtocol = 2
	IPProtoTCP      IPProtocol = 6
	IPProtoUDP      IPProtocol = 17
	IPProtoENCAP    IPProtocol = 41
	IPProtoGRE      IPProtocol = 47
	IPProtoESP      IPProtocol = 50
	IPProtoAH       IPProtocol = 51
	IPProtoICMPv6   IPProtocol = 58
	IPProtoOSPF     IPProtocol = 89
	IPProtoSCTP     IPProtocol = 132
	ipv6HopByHop    IPProtocol = 0
	ipv6Routing     IPProtocol = 43
	ipv6Fragment    IPProtocol = 44
	ipv6DestOptions IPProtocol = 60
)

// protocolNames maps an IP protocol number to the display name used in
// PacketAnalysis.Protocol and packet summaries.
var protocolNames = map[IPProtocol]string{
	IPProtoICMP:   "ICMP",
	IPProtoIGMP:   "IGMP",
	IPProtoTCP:    "TCP",
	IPProtoUDP:    "UDP",
	IPProtoENCAP:  "ENCAP",
	IPProtoGRE:    "GRE",
	IPProtoESP:    "ESP",
	IPProtoAH:     "AH",
	IPProtoICMPv6: "ICMPv6",
	IPProtoOSPF:   "OSPF",
	IPProtoSCTP:   "SCTP",
}

func protocolName(p IPProtocol) string {
	if name, ok := protocolNames[p]; ok {
		return name
	}
	return "IP"
}
