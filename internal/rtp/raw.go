package rtp

import "github.com/Azunyan1111/rtparchive/internal/media"

// RawPayload is the Unknown payload kind (spec §4.C): opaque bytes with no
// frame-boundary predicates.
type RawPayload struct {
	Data []byte
}

func (p *RawPayload) Kind() media.Kind        { return media.KindUnknown }
func (p *RawPayload) Bytes() []byte           { return p.Data }
func (p *RawPayload) Encode() []byte          { return p.Data }
func (p *RawPayload) IsStartOfFrame() bool    { return false }
func (p *RawPayload) IsKeyFrame() bool        { return false }

var _ media.Payload = (*RawPayload)(nil)
