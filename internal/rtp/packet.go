package rtp

import (
	"encoding/binary"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/opus"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
	"github.com/Azunyan1111/rtparchive/internal/vp8"
)

// Packet is a decoded RTP packet (spec §3 "RTP packet").
type Packet struct {
	Header  Header
	CSRC    []uint32
	PadLen  uint8
	Payload media.Payload
}

// DecodeOptions configures Decode (spec §4.B "Decode contract").
type DecodeOptions struct {
	// Kind selects which typed payload variant to parse. KindUnknown keeps
	// the payload as raw bytes.
	Kind media.Kind
	// Depad controls whether trailing RTP padding is stripped (true) or
	// left in place because the framing already stripped it (false). See
	// SPEC_FULL.md §4.D for the per-reader rationale.
	Depad bool
}

// Decode parses one RTP packet from buf, whose length is exactly the
// packet's wire length (framing has already been resolved by the caller).
func Decode(buf []byte, opts DecodeOptions) (*Packet, error) {
	h, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}
	off := headerSize

	var csrc []uint32
	if h.CSRCCount > 0 {
		need := int(h.CSRCCount) * 4
		if len(buf)-off < need {
			return nil, rtperr.Truncatedf("rtp csrc list needs %d bytes, got %d", need, len(buf)-off)
		}
		csrc = make([]uint32, h.CSRCCount)
		for i := range csrc {
			csrc[i] = binary.BigEndian.Uint32(buf[off : off+4])
			off += 4
		}
	}

	payloadBuf := buf[off:]
	var padLen uint8
	if opts.Depad && h.Padding {
		if len(payloadBuf) < 1 {
			return nil, rtperr.Truncatedf("rtp padded payload has no pad-length byte")
		}
		padLen = payloadBuf[len(payloadBuf)-1]
		if padLen < 1 || int(padLen) > len(payloadBuf) {
			return nil, rtperr.Malformedf("rtp pad_len %d out of range for payload of %d bytes", padLen, len(payloadBuf))
		}
		payloadBuf = payloadBuf[:len(payloadBuf)-int(padLen)]
	}

	payload, err := decodePayload(opts.Kind, payloadBuf)
	if err != nil {
		return nil, err
	}

	return &Packet{Header: h, CSRC: csrc, PadLen: padLen, Payload: payload}, nil
}

func decodePayload(kind media.Kind, buf []byte) (media.Payload, error) {
	switch kind {
	case media.KindVP8:
		return vp8.Decode(buf)
	case media.KindOpus:
		return opus.Decode(buf)
	default:
		return &RawPayload{Data: buf}, nil
	}
}

// Encode serializes the packet back to wire bytes, restoring padding per
// PadLen (spec §4.B "Encode contract").
func (p *Packet) Encode() []byte {
	payload := p.Payload.Encode()
	size := headerSize + 4*len(p.CSRC) + len(payload) + int(p.PadLen)
	out := make([]byte, size)

	h := p.Header
	h.CSRCCount = uint8(len(p.CSRC))
	if p.PadLen > 0 {
		h.Padding = true
	}
	h.encodeTo(out[:headerSize])

	off := headerSize
	for _, c := range p.CSRC {
		binary.BigEndian.PutUint32(out[off:off+4], c)
		off += 4
	}

	copy(out[off:], payload)
	off += len(payload)

	if p.PadLen > 0 {
		for i := uint8(0); i < p.PadLen-1; i++ {
			out[off] = 0
			off++
		}
		out[off] = p.PadLen
		off++
	}

	return out
}

// Secs is the packet's presentation time in seconds, derived from the
// header timestamp and the payload kind's clock rate (spec §3).
func (p *Packet) Secs() float64 {
	rate := p.Payload.Kind().ClockRate()
	if rate == 0 {
		return 0
	}
	return float64(p.Header.Timestamp) / float64(rate)
}

// Msecs is Secs expressed in milliseconds.
func (p *Packet) Msecs() float64 { return p.Secs() * 1000 }

// IsStartOfFrame delegates to the payload.
func (p *Packet) IsStartOfFrame() bool { return p.Payload.IsStartOfFrame() }

// IsKeyFrame delegates to the payload.
func (p *Packet) IsKeyFrame() bool { return p.Payload.IsKeyFrame() }
