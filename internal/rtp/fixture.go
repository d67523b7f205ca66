package rtp

import (
	prtp "github.com/pion/rtp"
)

// BuildWireBytes marshals a single RTP packet for use as a test fixture. It
// is adapted from the teacher's own rtp_packetizer.go, which builds
// pion/rtp.Packet values the same way to serialize live-encoded frames;
// here it exists purely to synthesize wire bytes for this module's own
// tests rather than to packetize a live encoder's output.
func BuildWireBytes(seq uint16, timestamp uint32, ssrc uint32, marker bool, payloadType uint8, payload []byte) []byte {
	pkt := &prtp.Packet{
		Header: prtp.Header{
			Version:        2,
			Padding:        false,
			Extension:      false,
			Marker:         marker,
			PayloadType:    payloadType,
			SequenceNumber: seq,
			Timestamp:      timestamp,
			SSRC:           ssrc,
		},
		Payload: payload,
	}
	buf, err := pkt.Marshal()
	if err != nil {
		// Marshal only fails on malformed extension profiles, which this
		// fixture builder never sets.
		panic(err)
	}
	return buf
}
