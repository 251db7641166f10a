package pcapsight

import "encoding/json"

// PacketAnalysis is the result of dissecting a single link-layer frame: its
// best-known source/destination addresses, protocol name, and a one-line
// human-readable summary. Dissect never fails — on short or malformed input
// it returns a fallback analysis instead of an error.
type PacketAnalysis struct {
	Source      string
	Destination string
	Protocol    string
	Summary     string
}

// PacketMetadata carries everything a decoder (legacy PCAP or PCAP-NG) knows
// about a frame before it is assembled into a Packet.
type PacketMetadata struct {
	Time        string
	Source      string
	Destination string
	Protocol    string
	Summary     string
	Length      int
}

// PacketSummary is the nested, UI-convenience record embedded (as a JSON
// string) inside Packet.Info. It intentionally duplicates Info/Summary and
// the outer packet's scalar fields; see DESIGN.md and spec.md §9.
type PacketSummary struct {
	Info         string `json:"info"`
	Summary      string `json:"summary"`
	Time         string `json:"time"`
	Src          string `json:"src"`
	Dst          string `json:"dst"`
	Protocol     string `json:"protocol"`
	Length       int    `json:"length"`
	HexPreview   string `json:"hex_preview"`
	ASCIIPreview string `json:"ascii_preview"`
}

// payloadBytes marshals as a JSON array of integers (0..=255), not the
// base64 string encoding/json would otherwise give a []byte field — spec §6
// requires "payload": [integer].
type payloadBytes []byte

func (p payloadBytes) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(p))
	for i, b := range p {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON is the mirror of MarshalJSON, kept symmetric so a
// PacketProcessingResult round-trips through JSON intact (tests rely on
// this; production code only ever marshals).
func (p *payloadBytes) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make(payloadBytes, len(ints))
	for i, v := range ints {
		out[i] = byte(v)
	}
	*p = out
	return nil
}

// Packet is one decoded frame, ready for JSON serialization. Length always
// equals len(Payload); when the capture advertised a larger original
// length, Length is the captured length and the caller is expected to have
// recorded a truncation warning separately (see NewPacket).
type Packet struct {
	Time        string       `json:"time"`
	Source      string       `json:"source"`
	Destination string       `json:"destination"`
	Protocol    string       `json:"protocol"`
	Length      int          `json:"length"`
	Info        string       `json:"info"`
	Payload     payloadBytes `json:"payload"`
}

// NewPacket builds a Packet from decoder metadata and the captured payload,
// computing the previews and double-encoding the nested PacketSummary into
// Info. If JSON-encoding the summary somehow fails, Info falls back to an
// empty JSON object rather than propagating an error — ProcessPacket never
// fails outright (spec §7).
func NewPacket(meta PacketMetadata, payload []byte) Packet {
	summary := PacketSummary{
		Summary:      meta.Summary,
		Time:         meta.Time,
		Src:          meta.Source,
		Dst:          meta.Destination,
		Protocol:     meta.Protocol,
		Length:       meta.Length,
		HexPreview:   HexPreview(payload, defaultPreviewLen),
		ASCIIPreview: ASCIIPreview(payload, defaultPreviewLen),
	}
	// The nested info field is not self-referential: it is just a copy of
	// Summary, so a single marshal produces the whole encoded record (the
	// duplication spec.md §9 calls out as an intentional contract).
	summary.Info = summary.Summary

	encoded, err := json.Marshal(summary)
	info := string(encoded)
	if err != nil {
		info = "{}"
	}

	return Packet{
		Time:        meta.Time,
		Source:      meta.Source,
		Destination: meta.Destination,
		Protocol:    meta.Protocol,
		Length:      meta.Length,
		Info:        info,
		Payload:     payloadBytes(payload),
	}
}

// PacketProcessingResult is the top-level decoded-capture aggregate,
// serialized once per ProcessPacket call.
type PacketProcessingResult struct {
	Packets  []Packet `json:"packets"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// fallbackJSON is returned, verbatim, on the (should-never-happen) case
// that serializing PacketProcessingResult itself fails.
const fallbackJSON = `{"packets":[],"warnings":[],"errors":[]}`

func (r *PacketProcessingResult) toJSON() string {
	encoded, err := json.Marshal(r)
	if err != nil {
		currentLogger().Errorw("failed to marshal packet processing result", "error", err)
		return fallbackJSON
	}
	return string(encoded)
}
