package frame

import (
	"io"

	"github.com/Azunyan1111/rtparchive/internal/rtp"
)

// videoState names the synchronization phase of a VideoFrames depacketizer
// (spec §9 "Lazy iterators with stateful resynchronization").
type videoState int

const (
	statePreStart videoState = iota
	statePreKey
	stateAssembling
	stateDone
)

// VideoFrames depacketizes a video packet stream by concatenating payloads
// between successive start-of-frame packets (spec §4.F "Video (VideoFrames)").
type VideoFrames struct {
	src       rtp.Iterator
	ptsOffset int

	state            videoState
	held             *rtp.Packet
	StartFrameOffset int
	KeyFrameOffset   int

	debugf func(format string, args ...interface{})
}

// NewVideoFrames builds a video depacketizer over src. debugf receives a
// message each time a non-start packet is dropped at a frame boundary; it
// defaults to a no-op when nil.
func NewVideoFrames(src rtp.Iterator, ptsOffset int, debugf func(string, ...interface{})) (*VideoFrames, error) {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}
	v := &VideoFrames{src: src, ptsOffset: ptsOffset, state: statePreStart, debugf: debugf}
	if err := v.sync(); err != nil {
		if err == io.EOF {
			v.state = stateDone
			return v, nil
		}
		return nil, err
	}
	return v, nil
}

// sync pulls packets until a start-of-frame packet is found (recording
// StartFrameOffset), then continues until that start-of-frame packet is
// also a key frame (recording KeyFrameOffset as the count of intervening
// start-of-frame packets). Each non-start packet it drops is reported
// through debugf.
func (v *VideoFrames) sync() error {
	v.state = statePreStart
	var pkt *rtp.Packet
	for {
		p, err := v.src.Next()
		if err != nil {
			return err
		}
		if p.IsStartOfFrame() {
			pkt = p
			break
		}
		v.debugf("dropping non-start packet seq=%d before first start-of-frame", p.Header.SequenceNumber)
		v.StartFrameOffset++
	}
	v.state = statePreKey
	for !pkt.IsKeyFrame() {
		p, err := v.src.Next()
		if err != nil {
			return err
		}
		if !p.IsStartOfFrame() {
			v.debugf("dropping non-start packet seq=%d before first key frame", p.Header.SequenceNumber)
			continue
		}
		v.KeyFrameOffset++
		pkt = p
	}
	v.held = pkt
	v.state = stateAssembling
	return nil
}

// Next returns the next complete video frame, or io.EOF when exhausted.
func (v *VideoFrames) Next() (Frame, error) {
	if v.state == stateDone || v.held == nil {
		return Frame{}, io.EOF
	}

	held := v.held
	pts := int(held.Msecs()) + v.ptsOffset
	var flags Flags
	if held.IsKeyFrame() {
		flags = Key
	}
	data := append([]byte(nil), held.Payload.Bytes()...)

	for {
		pkt, err := v.src.Next()
		if err != nil {
			if err == io.EOF {
				v.held = nil
				v.state = stateDone
				return Frame{PTS: pts, Flags: flags, Data: data}, nil
			}
			return Frame{}, err
		}
		if pkt.IsStartOfFrame() {
			v.held = pkt
			return Frame{PTS: pts, Flags: flags, Data: data}, nil
		}
		if v.state != stateAssembling {
			v.debugf("dropping non-start packet seq=%d at frame boundary", pkt.Header.SequenceNumber)
			continue
		}
		data = append(data, pkt.Payload.Bytes()...)
	}
}
