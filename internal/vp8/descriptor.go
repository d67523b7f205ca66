// Package vp8 decodes and encodes the VP8 RTP payload descriptor
// (draft-ietf-payload-vp8-16) and the VP8 bitstream frame/key-frame headers
// (RFC 6386 §9.1), per spec §3 "VP8 payload".
package vp8

import (
	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

// Descriptor is the mandatory 1-byte VP8 payload descriptor.
type Descriptor struct {
	X, R, N, S uint8
	PID        uint8 // 4 bits
}

func decodeDescriptor(b byte) Descriptor {
	return Descriptor{
		X:   (b >> 7) & 0x1,
		R:   (b >> 6) & 0x1,
		N:   (b >> 5) & 0x1,
		S:   (b >> 4) & 0x1,
		PID: b & 0x0F,
	}
}

func (d Descriptor) encode() byte {
	return (d.X << 7) | (d.R << 6) | (d.N << 5) | (d.S << 4) | (d.PID & 0x0F)
}

// extension is the optional 1-byte {I,L,T,K} extension.
type extension struct {
	I, L, T, K uint8
}

func decodeExtension(b byte) extension {
	return extension{
		I: (b >> 7) & 0x1,
		L: (b >> 6) & 0x1,
		T: (b >> 5) & 0x1,
		K: (b >> 4) & 0x1,
	}
}

func (e extension) encode() byte {
	return (e.I << 7) | (e.L << 6) | (e.T << 5) | (e.K << 4)
}

// FrameHeader is the first 3 bytes of payload on a start-of-frame packet
// (RFC 6386 §9.1). Byte order is little-endian per the bitstream spec.
type FrameHeader struct {
	P, Ver, Show uint8
	Size0        uint8
	Size1, Size2 uint8
}

// IsKeyFrame reports whether P == 0 ("key frame" per RFC 6386 §9.1).
func (h FrameHeader) IsKeyFrame() bool { return h.P == 0 }

// Size is the three-part first-partition size.
func (h FrameHeader) Size() uint32 {
	return uint32(h.Size0) | uint32(h.Size1)<<3 | uint32(h.Size2)<<11
}

func decodeFrameHeader(buf []byte) (FrameHeader, error) {
	if len(buf) < 3 {
		return FrameHeader{}, rtperr.Truncatedf("vp8 frame header needs 3 bytes, got %d", len(buf))
	}
	b0 := buf[0]
	return FrameHeader{
		P:     b0 & 0x1,
		Ver:   (b0 >> 1) & 0x7,
		Show:  (b0 >> 4) & 0x1,
		Size0: (b0 >> 5) & 0x7,
		Size1: buf[1],
		Size2: buf[2],
	}, nil
}

var syncCode = [3]byte{0x9D, 0x01, 0x2A}

// KeyFrameHeader is the 7-byte key-frame header following FrameHeader on a
// start-of-frame, key-frame packet.
type KeyFrameHeader struct {
	Horz, Vert uint16
}

// Width is the encoded width in pixels, ignoring any scaling bits.
func (h KeyFrameHeader) Width() int { return int(h.Horz & 0x3FFF) }

// Height is the encoded height in pixels, ignoring any scaling bits.
func (h KeyFrameHeader) Height() int { return int(h.Vert & 0x3FFF) }

// WidthScaling is the 2-bit horizontal scaling factor in the top bits of Horz.
func (h KeyFrameHeader) WidthScaling() int { return int(h.Horz >> 14) }

// HeightScaling is the 2-bit vertical scaling factor in the top bits of Vert.
func (h KeyFrameHeader) HeightScaling() int { return int(h.Vert >> 14) }

func decodeKeyFrameHeader(buf []byte) (KeyFrameHeader, error) {
	if len(buf) < 7 {
		return KeyFrameHeader{}, rtperr.Truncatedf("vp8 key frame header needs 7 bytes, got %d", len(buf))
	}
	if buf[0] != syncCode[0] || buf[1] != syncCode[1] || buf[2] != syncCode[2] {
		return KeyFrameHeader{}, rtperr.Malformedf("vp8 key frame start code mismatch: % x", buf[:3])
	}
	horz := uint16(buf[3]) | uint16(buf[4])<<8
	vert := uint16(buf[5]) | uint16(buf[6])<<8
	return KeyFrameHeader{Horz: horz, Vert: vert}, nil
}

var _ media.VideoPayload = (*Payload)(nil)
