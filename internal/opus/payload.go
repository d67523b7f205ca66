package opus

import (
	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

// Payload is a decoded Opus RTP payload. Opus carries one encoded frame per
// packet (spec §4.F "Audio"), so it is unconditionally start-of-frame and
// key-frame.
type Payload struct {
	Data []byte
}

// Decode validates buf as an Opus payload (the TOC must describe a sample
// count within the 2880-sample bound) and wraps it.
func Decode(buf []byte) (*Payload, error) {
	if len(buf) < 1 {
		return nil, rtperr.Truncatedf("opus payload needs at least 1 byte")
	}
	if _, err := NbSamples(buf); err != nil {
		return nil, err
	}
	return &Payload{Data: buf}, nil
}

// Kind implements media.Payload.
func (p *Payload) Kind() media.Kind { return media.KindOpus }

// Bytes implements media.Payload.
func (p *Payload) Bytes() []byte { return p.Data }

// Encode implements media.Payload: Opus payloads carry no extra framing.
func (p *Payload) Encode() []byte { return p.Data }

// IsStartOfFrame implements media.Payload: always true, one packet = one
// frame.
func (p *Payload) IsStartOfFrame() bool { return true }

// IsKeyFrame implements media.Payload: audio frames are always key frames
// (spec §4.F).
func (p *Payload) IsKeyFrame() bool { return true }

// NbFrames returns the packet's Opus frame count (spec §3).
func (p *Payload) NbFrames() (int, error) { return NbFrames(p.Data) }

// NbSamples implements media.AudioPayload.
func (p *Payload) NbSamples() (int, error) { return NbSamples(p.Data) }

// NbChannels implements media.AudioPayload.
func (p *Payload) NbChannels() (int, error) { return NbChannels(p.Data) }

var _ media.AudioPayload = (*Payload)(nil)
