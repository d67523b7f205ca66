// Package probe implements the stream-level probing helpers of spec §4.C:
// deriving video dimensions, an estimated frame rate, and an audio channel
// layout by scanning a small window of packets from any packet source.
package probe

import (
	"io"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

// Source is the minimal packet-producing contract the probes need: a
// cursor, a reader's packets() iterator, or a splitter's head all satisfy
// it. Next returns io.EOF when exhausted.
type Source = rtp.Iterator

// VideoDimensions returns (width, height) from the first start-of-frame
// key-frame packet found on src.
func VideoDimensions(src Source) (width, height int, err error) {
	for {
		pkt, err := src.Next()
		if err == io.EOF {
			return 0, 0, rtperr.Unavailablef("no start-of-frame key-frame packet found")
		}
		if err != nil {
			return 0, 0, err
		}
		if !pkt.IsStartOfFrame() || !pkt.IsKeyFrame() {
			continue
		}
		vp, ok := pkt.Payload.(media.VideoPayload)
		if !ok {
			return 0, 0, rtperr.Unavailablef("payload kind %s has no dimensions", pkt.Payload.Kind())
		}
		w, err := vp.Width()
		if err != nil {
			return 0, 0, err
		}
		h, err := vp.Height()
		if err != nil {
			return 0, 0, err
		}
		return w, h, nil
	}
}

// defaultFrameRateWindow is the number of start-of-frame packets
// EstimateFrameRate scans before giving up, matching the source's window=10
// default (spec §4.C).
const defaultFrameRateWindow = 10

// EstimateFrameRate scans until window (at least 2, defaulting to 10)
// start-of-frame packets have been seen and returns (window-1)/(t_last -
// t_first) using packet-derived seconds.
func EstimateFrameRate(src Source, window int) (float64, error) {
	if window <= 0 {
		window = defaultFrameRateWindow
	}
	if window < 2 {
		window = 2
	}
	var ts []float64
	for len(ts) < window {
		pkt, err := src.Next()
		if err == io.EOF {
			return 0, rtperr.Unavailablef("only found %d/%d start-of-frame packets", len(ts), window)
		}
		if err != nil {
			return 0, err
		}
		if !pkt.IsStartOfFrame() {
			continue
		}
		ts = append(ts, pkt.Secs())
	}
	span := ts[len(ts)-1] - ts[0]
	if span <= 0 {
		return 0, rtperr.Unavailablef("non-positive time span across %d packets", len(ts))
	}
	return float64(len(ts)-1) / span, nil
}

// AudioChannelLayout inspects the first packet and maps its channel count
// to a ChannelLayout.
func AudioChannelLayout(src Source) (media.ChannelLayout, error) {
	pkt, err := src.Next()
	if err == io.EOF {
		return media.ChannelLayoutUnknown, rtperr.Unavailablef("no packets to probe")
	}
	if err != nil {
		return media.ChannelLayoutUnknown, err
	}
	ap, ok := pkt.Payload.(media.AudioPayload)
	if !ok {
		return media.ChannelLayoutUnknown, rtperr.Unavailablef("payload kind %s has no channel count", pkt.Payload.Kind())
	}
	n, err := ap.NbChannels()
	if err != nil {
		return media.ChannelLayoutUnknown, err
	}
	switch n {
	case 1:
		return media.ChannelLayoutMono, nil
	case 2:
		return media.ChannelLayoutStereo, nil
	default:
		return media.ChannelLayoutUnknown, rtperr.Malformedf("unsupported channel count %d", n)
	}
}
