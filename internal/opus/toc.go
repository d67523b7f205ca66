// Package opus decodes the Opus TOC byte (RFC 6716 §3.1) carried as the
// first byte of every Opus RTP payload, deriving frame count, per-frame
// sample count and channel count per spec §3 "Opus payload".
package opus

import "github.com/Azunyan1111/rtparchive/internal/rtperr"

// ClockRate is the fixed Opus sample clock this layer treats as
// authoritative (spec §9 open question: "Opus sample-rate-derived math").
const ClockRate = 48000

// maxSamplesPerPacket is the hard per-packet sample bound (spec §3: "Total
// samples per packet <= 2880").
const maxSamplesPerPacket = 2880

// TOC is the decoded first byte of an Opus packet.
type TOC struct {
	raw byte
}

func newTOC(b byte) TOC { return TOC{raw: b} }

// FrameCountCode is the low 2 bits selecting how many frames are packed.
func (t TOC) FrameCountCode() uint8 { return t.raw & 0x03 }

// Stereo reports whether the 0x04 bit is set.
func (t TOC) Stereo() bool { return t.raw&0x04 != 0 }

// Config is the 5-bit configuration number in the high bits of the TOC.
func (t TOC) Config() uint8 { return (t.raw >> 3) & 0x1F }

// NbFrames derives the packet's frame count (spec §3): c=0 -> 1, c=1,2 -> 2,
// c=3 -> byte[1]&0x3F (requires a second byte).
func NbFrames(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, rtperr.Truncatedf("opus packet needs at least 1 byte")
	}
	t := newTOC(buf[0])
	switch t.FrameCountCode() {
	case 0:
		return 1, nil
	case 1, 2:
		return 2, nil
	default:
		if len(buf) < 2 {
			return 0, rtperr.Truncatedf("opus frame-count byte missing")
		}
		return int(buf[1] & 0x3F), nil
	}
}

// NbChannels maps the TOC's stereo bit to a channel count.
func NbChannels(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, rtperr.Truncatedf("opus packet needs at least 1 byte")
	}
	if newTOC(buf[0]).Stereo() {
		return 2, nil
	}
	return 1, nil
}

// nbSamplesPerFrame derives the per-frame sample count from the TOC's
// configuration number, per RFC 6716 §3.1 Table 2 (SILK/Hybrid/CELT modes,
// each with its own cycle of frame durations).
func nbSamplesPerFrame(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, rtperr.Truncatedf("opus packet needs at least 1 byte")
	}
	config := newTOC(buf[0]).Config()
	switch {
	case config <= 11:
		// SILK NB/MB/WB: 10, 20, 40, 60ms cycling every 4 configs.
		durationsMs := [4]int{10, 20, 40, 60}
		ms := durationsMs[config%4]
		return ClockRate * ms / 1000, nil
	case config <= 15:
		// Hybrid SWB/FB: 10, 20ms cycling every 2 configs.
		durationsMs := [2]int{10, 20}
		ms := durationsMs[config%2]
		return ClockRate * ms / 1000, nil
	default:
		// CELT-only NB/WB/SWB/FB: 2.5, 5, 10, 20ms cycling every 4 configs.
		tenthsMs := [4]int{25, 50, 100, 200}
		tenths := tenthsMs[config%4]
		return ClockRate * tenths / 10000, nil
	}
}

// NbSamples returns the total sample count for the packet (nb_frames *
// nb_samples_per_frame), erroring if it exceeds maxSamplesPerPacket (2880
// samples, 60ms at 48kHz).
func NbSamples(buf []byte) (int, error) {
	frames, err := NbFrames(buf)
	if err != nil {
		return 0, err
	}
	perFrame, err := nbSamplesPerFrame(buf)
	if err != nil {
		return 0, err
	}
	samples := frames * perFrame
	if samples > maxSamplesPerPacket {
		return 0, rtperr.Malformedf("opus packet exceeds %d samples: %d samples", maxSamplesPerPacket, samples)
	}
	return samples, nil
}
