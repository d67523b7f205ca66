package vp8

import (
	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

// Payload is a decoded VP8 RTP payload: the mandatory descriptor, its
// optional extensions (kept as raw bytes so Encode reproduces them exactly,
// since picture-id/tl0picidx/tid-y-keyidx carry no information this module
// needs beyond round-tripping them), and the frame-fragment data.
type Payload struct {
	Desc    Descriptor
	ext     *extension
	extData []byte // raw bytes of I/L/T|K extension fields, verbatim
	Data    []byte
}

// Decode parses a VP8 RTP payload per spec §3 "VP8 payload".
func Decode(buf []byte) (*Payload, error) {
	if len(buf) < 1 {
		return nil, rtperr.Truncatedf("vp8 payload needs at least 1 byte")
	}
	desc := decodeDescriptor(buf[0])
	rest := buf[1:]

	p := &Payload{Desc: desc}

	if desc.X == 1 {
		if len(rest) < 1 {
			return nil, rtperr.Truncatedf("vp8 extension byte missing")
		}
		ext := decodeExtension(rest[0])
		rest = rest[1:]
		p.ext = &ext

		fields := rest
		if ext.I == 1 {
			if len(rest) < 1 {
				return nil, rtperr.Truncatedf("vp8 picture id missing")
			}
			size := 1
			if rest[0]&0x80 != 0 {
				size = 2
			}
			if len(rest) < size {
				return nil, rtperr.Truncatedf("vp8 picture id needs %d bytes", size)
			}
			rest = rest[size:]
		}
		if ext.L == 1 {
			if len(rest) < 1 {
				return nil, rtperr.Truncatedf("vp8 tl0picidx missing")
			}
			rest = rest[1:]
		}
		if ext.T == 1 || ext.K == 1 {
			if len(rest) < 1 {
				return nil, rtperr.Truncatedf("vp8 tid/y/keyidx byte missing")
			}
			rest = rest[1:]
		}
		p.extData = append([]byte(nil), fields[:len(fields)-len(rest)]...)
	}

	p.Data = rest
	return p, nil
}

// Encode serializes the payload back to its original wire bytes.
func (p *Payload) Encode() []byte {
	out := make([]byte, 0, 1+1+len(p.extData)+len(p.Data))
	out = append(out, p.Desc.encode())
	if p.Desc.X == 1 && p.ext != nil {
		out = append(out, p.ext.encode())
		out = append(out, p.extData...)
	}
	out = append(out, p.Data...)
	return out
}

// Kind implements media.Payload.
func (p *Payload) Kind() media.Kind { return media.KindVP8 }

// Bytes implements media.Payload: the frame-fragment bytes (descriptor
// stripped).
func (p *Payload) Bytes() []byte { return p.Data }

// IsStartOfFrame implements media.Payload: S=1 and PID=0 (spec §3).
func (p *Payload) IsStartOfFrame() bool {
	return p.Desc.S == 1 && p.Desc.PID == 0
}

func (p *Payload) frameHeader() (FrameHeader, error) {
	if !p.IsStartOfFrame() {
		return FrameHeader{}, rtperr.Malformedf("vp8 payload is not start of frame")
	}
	return decodeFrameHeader(p.Data)
}

func (p *Payload) keyFrameHeader() (KeyFrameHeader, error) {
	fh, err := p.frameHeader()
	if err != nil {
		return KeyFrameHeader{}, err
	}
	if !fh.IsKeyFrame() {
		return KeyFrameHeader{}, rtperr.Malformedf("vp8 frame is not a key frame")
	}
	if len(p.Data) < 3 {
		return KeyFrameHeader{}, rtperr.Truncatedf("vp8 key frame header needs 3+7 bytes")
	}
	return decodeKeyFrameHeader(p.Data[3:])
}

// IsKeyFrame implements media.Payload. Only meaningful on a start-of-frame
// packet; non-start packets report false, matching the source's behavior of
// only exposing is_key_frame when is_start_of_frame holds.
func (p *Payload) IsKeyFrame() bool {
	if !p.IsStartOfFrame() {
		return false
	}
	fh, err := p.frameHeader()
	if err != nil {
		return false
	}
	return fh.IsKeyFrame()
}

// Width implements media.VideoPayload.
func (p *Payload) Width() (int, error) {
	kh, err := p.keyFrameHeader()
	if err != nil {
		return 0, err
	}
	return kh.Width(), nil
}

// Height implements media.VideoPayload.
func (p *Payload) Height() (int, error) {
	kh, err := p.keyFrameHeader()
	if err != nil {
		return 0, err
	}
	return kh.Height(), nil
}
