package pcapsight

import (
	"encoding/binary"
	"testing"
)

func appendBlock(buf []byte, blockType uint32, body []byte) []byte {
	totalLen := uint32(8 + len(body) + 4)
	block := make([]byte, totalLen)
	binary.LittleEndian.PutUint32(block[0:4], blockType)
	binary.LittleEndian.PutUint32(block[4:8], totalLen)
	copy(block[8:], body)
	binary.LittleEndian.PutUint32(block[totalLen-4:totalLen], totalLen)
	return append(buf, block...)
}

func shbBody() []byte {
	body := make([]byte, 16)
	copy(body[0:4], []byte{0x4D, 0x3C, 0x2B, 0x1A}) // little-endian byte-order magic
	binary.LittleEndian.PutUint16(body[4:6], 1)      // major
	binary.LittleEndian.PutUint16(body[6:8], 0)      // minor
	binary.LittleEndian.PutUint64(body[8:16], 0xFFFFFFFFFFFFFFFF)
	return body
}

func idbBody(linktype uint16) []byte {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint16(body[0:2], linktype)
	return body
}

func epbBody(ifID uint32, payload []byte, origLen uint32) []byte {
	body := make([]byte, 20+len(payload))
	binary.LittleEndian.PutUint32(body[0:4], ifID)
	binary.LittleEndian.PutUint32(body[4:8], 0)
	binary.LittleEndian.PutUint32(body[8:12], 0)
	binary.LittleEndian.PutUint32(body[12:16], uint32(len(payload)))
	binary.LittleEndian.PutUint32(body[16:20], origLen)
	copy(body[20:], payload)
	return body
}

func TestDecodePcapNgSingleSection(t *testing.T) {
	var data []byte
	data = appendBlock(data, pcapngBlockTypeSHB, shbBody())
	data = appendBlock(data, pcapngBlockTypeIDB, idbBody(uint16(LinkEthernet)))

	payload := buildUDPFrame(1000, 2000, 20)
	data = appendBlock(data, pcapngBlockTypeEPB, epbBody(0, payload, uint32(len(payload))))

	packets, warnings, err := decodePcapNg(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(packets) != 1 {
		t.Fatalf("got %d packets, want 1", len(packets))
	}
	if packets[0].Protocol != "UDP" {
		t.Errorf("Protocol = %q, want UDP", packets[0].Protocol)
	}
}

func TestDecodePcapNgUnknownInterfaceWarns(t *testing.T) {
	var data []byte
	data = appendBlock(data, pcapngBlockTypeSHB, shbBody())
	data = appendBlock(data, pcapngBlockTypeEPB, epbBody(3, []byte{1, 2, 3, 4}, 4))

	packets, warnings, err := decodePcapNg(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packets) != 0 {
		t.Errorf("got %d packets, want 0", len(packets))
	}
	want := "Enhanced packet 1 references unknown interface 3"
	if len(warnings) != 1 || warnings[0] != want {
		t.Errorf("warnings = %v, want [%q]", warnings, want)
	}
}

func TestDecodePcapNgSectionResetIsolatesInterfaces(t *testing.T) {
	var data []byte
	data = appendBlock(data, pcapngBlockTypeSHB, shbBody())
	data = appendBlock(data, pcapngBlockTypeIDB, idbBody(uint16(LinkEthernet)))
	data = appendBlock(data, pcapngBlockTypeIDB, idbBody(uint16(LinkEthernet)))

	// Second section declares only one interface; index 1 must no longer
	// resolve even though the first section had two.
	data = appendBlock(data, pcapngBlockTypeSHB, shbBody())
	data = appendBlock(data, pcapngBlockTypeIDB, idbBody(uint16(LinkEthernet)))
	data = appendBlock(data, pcapngBlockTypeEPB, epbBody(1, []byte{1, 2, 3, 4}, 4))

	packets, warnings, err := decodePcapNg(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packets) != 0 {
		t.Errorf("got %d packets, want 0", len(packets))
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
}

func TestDecodePcapNgSimplePacketDefaultsToEthernet(t *testing.T) {
	var data []byte
	data = appendBlock(data, pcapngBlockTypeSHB, shbBody())

	payload := buildUDPFrame(1000, 2000, 20)
	spb := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(spb[0:4], uint32(len(payload)))
	copy(spb[4:], payload)
	data = appendBlock(data, pcapngBlockTypeSPB, spb)

	packets, _, err := decodePcapNg(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packets) != 1 {
		t.Fatalf("got %d packets, want 1", len(packets))
	}
	if packets[0].Time != "0.000000" {
		t.Errorf("Time = %q, want 0.000000", packets[0].Time)
	}
	if packets[0].Protocol != "UDP" {
		t.Errorf("Protocol = %q, want UDP", packets[0].Protocol)
	}
}

func TestDecodePcapNgByteZeroFailureReturnsError(t *testing.T) {
	data := make([]byte, 16)
	copy(data[0:4], []byte{0x0A, 0x0D, 0x0D, 0x0A})
	binary.LittleEndian.PutUint32(data[4:8], 16)
	copy(data[8:12], []byte{0xDE, 0xAD, 0xBE, 0xEF}) // invalid byte-order magic

	_, _, err := decodePcapNg(data)
	if err == nil {
		t.Fatal("expected byte-zero parse failure")
	}
}
