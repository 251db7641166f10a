package pcapsight

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Endianness is the byte order of a legacy PCAP file, fixed for the whole
// file once the global header's magic number is recognized.
type Endianness int

const (
	Little Endianness = iota
	Big
)

// ByteOrder returns the binary.ByteOrder corresponding to e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// PcapHeaderInfo is the decoded 24-byte legacy PCAP global header.
type PcapHeaderInfo struct {
	Endianness Endianness
	Resolution uint64 // 1_000_000 (µs) or 1_000_000_000 (ns)
	TZOffset   int32  // seconds east of UTC
	LinkType   uint32
}

const (
	pcapGlobalHeaderLen = 24
	pcapRecordHeaderLen = 16

	resolutionMicros = 1_000_000
	resolutionNanos  = 1_000_000_000
)

var pcapMagics = []struct {
	bytes      [4]byte
	endianness Endianness
	resolution uint64
}{
	{[4]byte{0xA1, 0xB2, 0xC3, 0xD4}, Little, resolutionMicros},
	{[4]byte{0xA1, 0xB2, 0x3C, 0x4D}, Little, resolutionNanos},
	{[4]byte{0xD4, 0xC3, 0xB2, 0xA1}, Big, resolutionMicros},
	{[4]byte{0x4D, 0x3C, 0xB2, 0xA1}, Big, resolutionNanos},
}

// ErrNotAPcapFile is returned when the first four bytes don't match any
// recognized PCAP magic number.
var ErrNotAPcapFile = errors.New("not a pcap file")

// ErrPcapHeaderTooShort is returned when fewer than 24 bytes are available
// for the global header.
var ErrPcapHeaderTooShort = errors.New("pcap global header truncated")

// isPcapMagic reports whether the first four bytes of data match a
// recognized legacy PCAP magic number (used by format detection).
func isPcapMagic(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, m := range pcapMagics {
		if data[0] == m.bytes[0] && data[1] == m.bytes[1] && data[2] == m.bytes[2] && data[3] == m.bytes[3] {
			return true
		}
	}
	return false
}

// parsePcapHeader reads the 24-byte legacy PCAP global header from data.
func parsePcapHeader(data []byte) (PcapHeaderInfo, error) {
	if len(data) < pcapGlobalHeaderLen {
		return PcapHeaderInfo{}, errors.WithStack(ErrPcapHeaderTooShort)
	}

	var header PcapHeaderInfo
	matched := false
	for _, m := range pcapMagics {
		if data[0] == m.bytes[0] && data[1] == m.bytes[1] && data[2] == m.bytes[2] && data[3] == m.bytes[3] {
			header.Endianness = m.endianness
			header.Resolution = m.resolution
			matched = true
			break
		}
	}
	if !matched {
		return PcapHeaderInfo{}, errors.WithStack(ErrNotAPcapFile)
	}

	order := header.Endianness.ByteOrder()
	header.TZOffset = int32(order.Uint32(data[8:12]))
	header.LinkType = order.Uint32(data[20:24])

	return header, nil
}

// decodePcap decodes a legacy PCAP buffer into packets and warnings. A
// non-nil error means the global header itself could not be parsed; the
// caller (ProcessPacket) is expected to fall back to raw handling in that case.
func decodePcap(data []byte) ([]Packet, []string, error) {
	header, err := parsePcapHeader(data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing pcap global header")
	}

	var packets []Packet
	var warnings []string

	order := header.Endianness.ByteOrder()
	offset := pcapGlobalHeaderLen
	index := 0

	for offset+pcapRecordHeaderLen <= len(data) {
		index++

		tsSeconds := int64(order.Uint32(data[offset : offset+4]))
		tsFractional := uint64(order.Uint32(data[offset+4 : offset+8]))
		capLen := order.Uint32(data[offset+8 : offset+12])
		origLen := order.Uint32(data[offset+12 : offset+16])
		offset += pcapRecordHeaderLen

		if offset+int(capLen) > len(data) {
			msg := fmt.Sprintf("Packet %d header exceeds capture length", index)
			warnings = append(warnings, msg)
			currentLogger().Warnw(msg, "index", index, "cap_len", capLen, "remaining", len(data)-offset)
			break
		}

		payload := data[offset : offset+int(capLen)]
		offset += int(capLen)

		analysis := Dissect(header.LinkType, payload)
		timestamp := FormatTimestamp(tsSeconds+int64(header.TZOffset), tsFractional, header.Resolution)
		summary := analysis.Summary

		if origLen > capLen {
			summary += " [truncated]"
			warnings = append(warnings, fmt.Sprintf("Packet %d truncated (captured %d of %d bytes)", index, capLen, origLen))
		}

		packets = append(packets, NewPacket(PacketMetadata{
			Time:        timestamp,
			Source:      analysis.Source,
			Destination: analysis.Destination,
			Protocol:    analysis.Protocol,
			Summary:     summary,
			Length:      len(payload),
		}, payload))
	}

	return packets, warnings, nil
}
