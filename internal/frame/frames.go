package frame

import "github.com/Azunyan1111/rtparchive/internal/rtp"

// Frames depacketizes an audio packet stream where one packet is always one
// frame (spec §4.F "Audio (Frames)").
type Frames struct {
	src           rtp.Iterator
	ptsOffset     int
	ptsFromPacket func(*rtp.Packet) float64
}

// NewFrames builds an audio depacketizer over src. ptsFromPacket defaults to
// (*rtp.Packet).Msecs when nil.
func NewFrames(src rtp.Iterator, ptsOffset int, ptsFromPacket func(*rtp.Packet) float64) *Frames {
	if ptsFromPacket == nil {
		ptsFromPacket = (*rtp.Packet).Msecs
	}
	return &Frames{src: src, ptsOffset: ptsOffset, ptsFromPacket: ptsFromPacket}
}

// Next returns the next audio frame, or io.EOF when the source is exhausted.
func (f *Frames) Next() (Frame, error) {
	pkt, err := f.src.Next()
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		PTS:   int(f.ptsFromPacket(pkt)) + f.ptsOffset,
		Flags: Key,
		Data:  pkt.Payload.Bytes(),
	}, nil
}
