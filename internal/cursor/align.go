package cursor

import (
	"io"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

func packetSamples(pkt *rtp.Packet) interface{} {
	ap, ok := pkt.Payload.(media.AudioPayload)
	if !ok {
		return 0
	}
	n, err := ap.NbSamples()
	if err != nil {
		return 0
	}
	ch, err := ap.NbChannels()
	if err != nil {
		return 0
	}
	return n * ch
}

func sumSamples(acc, v interface{}) interface{} {
	return acc.(int) + v.(int)
}

// AlignFrame walks backward from the current position accumulating
// nb_samples*nb_channels until the total reaches at least samplesPerFrame*
// scale, returning the landing position, the accumulated sample count, the
// number of interleaved samples that must be trimmed from the first
// decoded frame to land exactly on the boundary, and how many packets were
// consumed (spec §4.E "AlignFrame(samples_per_frame, scale)", audio only).
// scale is the channel count: accumulated samples are already
// nb_samples*nb_channels (interleaved), so the alignment boundary itself
// must be widened by the same factor or a non-mono stream misreports a
// mid-frame position as aligned.
func (c *Cursor) AlignFrame(samplesPerFrame int, scale int) (aligned Position, cumulative int, trimOffset int, framesConsumed int, err error) {
	start, err := c.Current()
	if err != nil {
		return Position{}, 0, 0, 0, err
	}
	if _, ok := start.Payload.(media.AudioPayload); !ok {
		return Position{}, 0, 0, 0, rtperr.UnsupportedTypef("AlignFrame requires an audio cursor")
	}

	boundary := samplesPerFrame * scale
	origin := c.Tell()
	total := 0
	pos := origin
	for total < boundary {
		v, err := ap(c)
		if err != nil {
			return Position{}, 0, 0, 0, err
		}
		total += v
		framesConsumed++
		pos = c.Tell()
		if _, err := c.Prev(); err != nil {
			if err == io.EOF {
				break
			}
			return Position{}, 0, 0, 0, err
		}
	}
	if err := c.Seek(origin); err != nil {
		return Position{}, 0, 0, 0, err
	}
	trim := total % boundary
	if trim != 0 {
		trim = boundary - trim
	}
	return pos, total, trim, framesConsumed, nil
}

func ap(c *Cursor) (int, error) {
	pkt, err := c.Current()
	if err != nil {
		return 0, err
	}
	return packetSamples(pkt).(int), nil
}

// TrimFrames yields the begin/end positions and the leading trim sample
// count an external sample-accurate range filter needs to cut exactly
// samplesPerFrame-aligned audio spanning the current position to stop, along
// with the packet indices of the first and last packets involved (spec §4.E
// "TrimFrames(stop, samples_per_frame, scale)").
func (c *Cursor) TrimFrames(stop Position, samplesPerFrame int, scale int) (begin, end Position, beginTrim int, firstIdx, lastIdx int, err error) {
	origin := c.Tell()
	begin, _, beginTrim, _, err = c.AlignFrame(samplesPerFrame, scale)
	if err != nil {
		return Position{}, Position{}, 0, 0, 0, err
	}
	firstIdx = begin.Pkt

	if err := c.Seek(origin); err != nil {
		return Position{}, Position{}, 0, 0, 0, err
	}
	if err := c.Seek(stop); err != nil {
		return Position{}, Position{}, 0, 0, 0, err
	}
	end, _, _, _, err = c.AlignFrame(samplesPerFrame, scale)
	if err != nil {
		return Position{}, Position{}, 0, 0, 0, err
	}
	lastIdx = stop.Pkt

	if err := c.Seek(origin); err != nil {
		return Position{}, Position{}, 0, 0, 0, err
	}
	return begin, end, beginTrim, firstIdx, lastIdx, nil
}
