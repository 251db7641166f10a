package pcapsight

import "fmt"

// CaptureFormat identifies which decoder ProcessPacket routed a buffer to.
type CaptureFormat int

const (
	FormatRaw CaptureFormat = iota
	FormatPcap
	FormatPcapNg
)

func (f CaptureFormat) String() string {
	switch f {
	case FormatPcap:
		return "pcap"
	case FormatPcapNg:
		return "pcapng"
	default:
		return "raw"
	}
}

// detectFormat inspects a buffer's leading bytes to decide which decoder
// should handle it, per spec §3: PCAP-NG is recognized by its Section
// Header Block type, legacy PCAP by one of four magic numbers, and
// anything else is treated as a single raw payload.
func detectFormat(data []byte) CaptureFormat {
	switch {
	case isPcapNgMagic(data):
		return FormatPcapNg
	case isPcapMagic(data):
		return FormatPcap
	default:
		return FormatRaw
	}
}

// ProcessPacket is the library's single entry point: given a capture
// buffer of unknown provenance, it detects the format, decodes whatever
// packets it can, and returns the JSON-encoded PacketProcessingResult.
// It never panics and never returns malformed JSON — a failure to decode
// the chosen format falls back to treating the whole buffer as one raw
// payload, with the failure recorded in the errors channel (spec §7).
func ProcessPacket(data []byte) string {
	result := &PacketProcessingResult{
		Packets:  []Packet{},
		Warnings: []string{},
		Errors:   []string{},
	}

	if len(data) == 0 {
		result.Warnings = append(result.Warnings, "Empty payload provided")
		return result.toJSON()
	}

	switch detectFormat(data) {
	case FormatPcapNg:
		packets, warnings, err := decodePcapNg(data)
		if err != nil {
			currentLogger().Warnw("pcap-ng decode failed, falling back to raw", "error", err)
			result.Errors = append(result.Errors, err.Error())
			result.Packets = append(result.Packets, rawPacket(data))
			return result.toJSON()
		}
		result.Packets = append(result.Packets, packets...)
		result.Warnings = append(result.Warnings, warnings...)
	case FormatPcap:
		packets, warnings, err := decodePcap(data)
		if err != nil {
			currentLogger().Warnw("pcap decode failed, falling back to raw", "error", err)
			result.Errors = append(result.Errors, err.Error())
			result.Packets = append(result.Packets, rawPacket(data))
			return result.toJSON()
		}
		result.Packets = append(result.Packets, packets...)
		result.Warnings = append(result.Warnings, warnings...)
	default:
		result.Packets = append(result.Packets, rawPacket(data))
	}

	return result.toJSON()
}

// rawPacket wraps an entire buffer as a single unframed payload, used both
// for genuinely-unrecognized input and as the fallback when a recognized
// format fails to decode.
func rawPacket(data []byte) Packet {
	unit := "bytes"
	if len(data) == 1 {
		unit = "byte"
	}
	return NewPacket(PacketMetadata{
		Time:        "0.000000",
		Source:      "upload",
		Destination: emDash,
		Protocol:    "RAW",
		Summary:     fmt.Sprintf("Raw payload (%d %s)", len(data), unit),
		Length:      len(data),
	}, data)
}
