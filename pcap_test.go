package pcapsight

import (
	"encoding/binary"
	"testing"
)

// buildLegacyPcap assembles a minimal little-endian legacy PCAP buffer with
// a single record, mirroring the end-to-end scenario used for ProcessPacket.
func buildLegacyPcap(capLen, origLen uint32, payload []byte) []byte {
	buf := make([]byte, pcapGlobalHeaderLen)
	copy(buf[0:4], []byte{0xA1, 0xB2, 0xC3, 0xD4})
	binary.LittleEndian.PutUint16(buf[4:6], 2)  // version major
	binary.LittleEndian.PutUint16(buf[6:8], 4)  // version minor
	binary.LittleEndian.PutUint32(buf[16:20], 65535)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(LinkEthernet))

	record := make([]byte, pcapRecordHeaderLen)
	binary.LittleEndian.PutUint32(record[0:4], 1)      // ts_sec
	binary.LittleEndian.PutUint32(record[4:8], 500000) // ts_frac
	binary.LittleEndian.PutUint32(record[8:12], capLen)
	binary.LittleEndian.PutUint32(record[12:16], origLen)

	out := append(buf, record...)
	return append(out, payload...)
}

func TestParsePcapHeaderRecognizesAllFourMagics(t *testing.T) {
	testCases := []struct {
		magic      [4]byte
		endianness Endianness
		resolution uint64
	}{
		{[4]byte{0xA1, 0xB2, 0xC3, 0xD4}, Little, resolutionMicros},
		{[4]byte{0xA1, 0xB2, 0x3C, 0x4D}, Little, resolutionNanos},
		{[4]byte{0xD4, 0xC3, 0xB2, 0xA1}, Big, resolutionMicros},
		{[4]byte{0x4D, 0x3C, 0xB2, 0xA1}, Big, resolutionNanos},
	}

	for i, tc := range testCases {
		buf := make([]byte, pcapGlobalHeaderLen)
		copy(buf[0:4], tc.magic[:])
		header, err := parsePcapHeader(buf)
		if err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
		if header.Endianness != tc.endianness || header.Resolution != tc.resolution {
			t.Errorf("case %d: got {%v, %d}, want {%v, %d}", i, header.Endianness, header.Resolution, tc.endianness, tc.resolution)
		}
	}
}

func TestParsePcapHeaderRejectsUnknownMagic(t *testing.T) {
	buf := make([]byte, pcapGlobalHeaderLen)
	copy(buf[0:4], []byte{0xDE, 0xAD, 0xBE, 0xEF})
	if _, err := parsePcapHeader(buf); err == nil {
		t.Error("expected error for unrecognized magic")
	}
}

func TestParsePcapHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := parsePcapHeader(make([]byte, 10)); err == nil {
		t.Error("expected error for short header")
	}
}

func TestDecodePcapEthernetUDP(t *testing.T) {
	payload := buildUDPFrame(1000, 2000, 20)
	data := buildLegacyPcap(uint32(len(payload)), uint32(len(payload)), payload)

	packets, warnings, err := decodePcap(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(packets) != 1 {
		t.Fatalf("got %d packets, want 1", len(packets))
	}

	pkt := packets[0]
	if pkt.Time != "1.500000" {
		t.Errorf("Time = %q, want 1.500000", pkt.Time)
	}
	if pkt.Source != "10.0.0.1:1000" || pkt.Destination != "10.0.0.2:2000" {
		t.Errorf("Source/Destination = %q/%q", pkt.Source, pkt.Destination)
	}
	if pkt.Protocol != "UDP" {
		t.Errorf("Protocol = %q, want UDP", pkt.Protocol)
	}
	if pkt.Length != len(payload) {
		t.Errorf("Length = %d, want %d", pkt.Length, len(payload))
	}
}

func TestDecodePcapTruncatedRecordEmitsWarning(t *testing.T) {
	payload := buildUDPFrame(1000, 2000, 4) // 14 + 20 + 4 + 4 = 42 bytes
	data := buildLegacyPcap(uint32(len(payload)), 100, payload)

	packets, warnings, err := decodePcap(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packets) != 1 {
		t.Fatalf("got %d packets, want 1", len(packets))
	}
	wantWarning := "Packet 1 truncated (captured 42 of 100 bytes)"
	if len(warnings) != 1 || warnings[0] != wantWarning {
		t.Errorf("warnings = %v, want [%q]", warnings, wantWarning)
	}
}

func TestDecodePcapOverlengthRecordStops(t *testing.T) {
	data := buildLegacyPcap(9000, 9000, nil)
	packets, warnings, err := decodePcap(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packets) != 0 {
		t.Errorf("got %d packets, want 0", len(packets))
	}
	wantWarning := "Packet 1 header exceeds capture length"
	if len(warnings) != 1 || warnings[0] != wantWarning {
		t.Errorf("warnings = %v, want [%q]", warnings, wantWarning)
	}
}
