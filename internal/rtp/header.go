// Package rtp implements the RTP packet model (spec §3 "RTP packet", §4.B
// "Packet model"): the fixed 12-byte header, the CSRC list, padding
// strip/restore, and dispatch into the typed payload kinds of
// internal/media, internal/vp8 and internal/opus.
package rtp

import (
	"encoding/binary"

	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

const headerSize = 12

// Header is the fixed 12-byte RTP header (spec §3).
type Header struct {
	Version        uint8
	Padding        bool
	Extension      bool
	CSRCCount      uint8
	Marker         bool
	PayloadType    uint8
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
}

// decodeHeader reads the fixed 12-byte header from buf. It deliberately does
// not interpret the Extension bit beyond recording it: this module's decode
// contract treats whatever follows the CSRC list as payload, matching the
// archival sources it targets (see SPEC_FULL.md §3).
func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, rtperr.Truncatedf("rtp header needs %d bytes, got %d", headerSize, len(buf))
	}
	b0, b1 := buf[0], buf[1]
	h := Header{
		Version:        b0 >> 6,
		Padding:        b0&0x20 != 0,
		Extension:      b0&0x10 != 0,
		CSRCCount:      b0 & 0x0F,
		Marker:         b1&0x80 != 0,
		PayloadType:    b1 & 0x7F,
		SequenceNumber: binary.BigEndian.Uint16(buf[2:4]),
		Timestamp:      binary.BigEndian.Uint32(buf[4:8]),
		SSRC:           binary.BigEndian.Uint32(buf[8:12]),
	}
	if h.Version != 2 {
		return Header{}, rtperr.Malformedf("rtp version %d != 2", h.Version)
	}
	return h, nil
}

// encodeTo writes the fixed 12-byte header into dst, which must be at least
// headerSize long.
func (h Header) encodeTo(dst []byte) {
	var b0 byte = h.Version << 6
	if h.Padding {
		b0 |= 0x20
	}
	if h.Extension {
		b0 |= 0x10
	}
	b0 |= h.CSRCCount & 0x0F
	dst[0] = b0

	var b1 byte
	if h.Marker {
		b1 = 0x80
	}
	b1 |= h.PayloadType & 0x7F
	dst[1] = b1

	binary.BigEndian.PutUint16(dst[2:4], h.SequenceNumber)
	binary.BigEndian.PutUint32(dst[4:8], h.Timestamp)
	binary.BigEndian.PutUint32(dst[8:12], h.SSRC)
}
