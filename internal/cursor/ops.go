package cursor

import (
	"io"

	"github.com/Azunyan1111/rtparchive/internal/rtp"
)

// Direction selects which way Search walks from the current position.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Slice collects packets from the current position up to stop (exclusive,
// unless inclusive is true), advancing the cursor as it goes (spec §4.E
// "slice(stop)").
func (c *Cursor) Slice(stop Position, inclusive bool) ([]*rtp.Packet, error) {
	var out []*rtp.Packet
	for {
		if c.Tell() == stop {
			if !inclusive {
				break
			}
			pkt, err := c.Current()
			if err != nil {
				return out, err
			}
			out = append(out, pkt)
			break
		}
		pkt, err := c.Current()
		if err != nil {
			if err == io.EOF {
				break
			}
			return out, err
		}
		out = append(out, pkt)
		if _, err := c.Next(); err != nil {
			if err == io.EOF {
				break
			}
			return out, err
		}
	}
	return out, nil
}

// Each calls f for every packet from the current position up to stop
// (inclusive), stopping early if f returns a non-nil error.
func (c *Cursor) Each(stop Position, f func(*rtp.Packet) error) error {
	for {
		pkt, err := c.Current()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := f(pkt); err != nil {
			return err
		}
		if c.Tell() == stop {
			return nil
		}
		if _, err := c.Next(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// Count returns the number of packets from the current position up to stop
// (inclusive) that satisfy pred (pred may be nil to count all of them),
// without moving the cursor's final resting position beyond stop.
func (c *Cursor) Count(stop Position, pred func(*rtp.Packet) bool) (int, error) {
	n := 0
	err := c.Each(stop, func(pkt *rtp.Packet) error {
		if pred == nil || pred(pkt) {
			n++
		}
		return nil
	})
	return n, err
}

// Search walks in direction from the current position (exclusive) until
// match returns true, leaving the cursor positioned on the match. It returns
// io.EOF if no packet matches before the relevant end.
func (c *Cursor) Search(match func(*rtp.Packet) bool, dir Direction) (*rtp.Packet, error) {
	step := c.Next
	if dir == Backward {
		step = c.Prev
	}
	for {
		pkt, err := step()
		if err != nil {
			return nil, err
		}
		if match(pkt) {
			return pkt, nil
		}
	}
}

func isKeyFrameStart(pkt *rtp.Packet) bool {
	return pkt.IsStartOfFrame() && pkt.IsKeyFrame()
}

func isStartOfFrame(pkt *rtp.Packet) bool {
	return pkt.IsStartOfFrame()
}

// NextKeyFrame searches forward for the next start-of-frame key-frame
// packet (spec §4.E "next_key_frame()").
func (c *Cursor) NextKeyFrame() (*rtp.Packet, error) {
	return c.Search(isKeyFrameStart, Forward)
}

// PrevKeyFrame searches backward for the previous start-of-frame key-frame
// packet (spec §4.E "prev_key_frame()").
func (c *Cursor) PrevKeyFrame() (*rtp.Packet, error) {
	return c.Search(isKeyFrameStart, Backward)
}

// PrevStartOfFrame returns the current packet if it is already a
// start-of-frame packet; otherwise it searches backward for the nearest one
// (spec §4.E "frame" alignment mode, which snaps to any frame boundary, not
// just key frames).
func (c *Cursor) PrevStartOfFrame() (*rtp.Packet, error) {
	cur, err := c.Current()
	if err != nil {
		return nil, err
	}
	if cur.IsStartOfFrame() {
		return cur, nil
	}
	return c.Search(isStartOfFrame, Backward)
}

// Interval returns the elapsed seconds between the current position and
// pos, computed from each packet's RTP timestamp (spec §4.E "interval()").
// A negative result means pos precedes the current position.
func (c *Cursor) Interval(pos Position) (float64, error) {
	cur, err := c.Current()
	if err != nil {
		return 0, err
	}
	saved := c.Tell()
	if err := c.Seek(pos); err != nil {
		return 0, err
	}
	other, err := c.Current()
	seekErr := c.Seek(saved)
	if err != nil {
		return 0, err
	}
	if seekErr != nil {
		return 0, seekErr
	}
	return other.Secs() - cur.Secs(), nil
}

// Fastforward advances the cursor by approximately seconds of media time,
// returning the residual (seconds actually available minus seconds
// requested is negative when the cursor runs out first). Negative input
// delegates to Rewind (spec §4.E "fastforward(seconds)").
func (c *Cursor) Fastforward(seconds float64) (float64, error) {
	if seconds < 0 {
		return c.Rewind(-seconds)
	}
	start, err := c.Current()
	if err != nil {
		return 0, err
	}
	for {
		pkt, err := c.Current()
		if err != nil {
			return 0, err
		}
		if elapsed := elapsedSecs(start, pkt); elapsed >= seconds {
			return elapsed - seconds, nil
		}
		if _, err := c.Next(); err != nil {
			if err == io.EOF {
				elapsed := elapsedSecs(start, pkt)
				return elapsed - seconds, io.EOF
			}
			return 0, err
		}
	}
}

// Rewind moves the cursor backward by approximately seconds of media time,
// symmetric to Fastforward.
func (c *Cursor) Rewind(seconds float64) (float64, error) {
	if seconds < 0 {
		return c.Fastforward(-seconds)
	}
	start, err := c.Current()
	if err != nil {
		return 0, err
	}
	for {
		pkt, err := c.Current()
		if err != nil {
			return 0, err
		}
		if elapsed := elapsedSecs(pkt, start); elapsed >= seconds {
			return elapsed - seconds, nil
		}
		if _, err := c.Prev(); err != nil {
			if err == io.EOF {
				elapsed := elapsedSecs(pkt, start)
				return elapsed - seconds, io.EOF
			}
			return 0, err
		}
	}
}

// elapsedSecs returns the media time from a to b, computed from the RTP
// timestamp difference so that a span of whole packets compares exactly
// against the same span expressed in seconds.
func elapsedSecs(a, b *rtp.Packet) float64 {
	rate := a.Payload.Kind().ClockRate()
	if rate == 0 {
		return 0
	}
	return float64(int64(b.Header.Timestamp)-int64(a.Header.Timestamp)) / float64(rate)
}

// computeCacheEntry memoizes one Compute span lying within a single part.
type computeCacheEntry struct {
	cacheKey         string
	part, begin, end int
	value            interface{}
}

// Compute folds over packets from the current position up to stop
// (inclusive) with mapFn then reduceFn, memoizing spans that begin and end in
// the same part under cacheKey so repeated calls over the same span reuse
// prior work (spec §4.E "compute(map, reduce)"). The cache lives on the cursor
// instance: two cursors sharing a cacheKey over the same file never alias
// each other's entries.
func (c *Cursor) Compute(mapFn func(*rtp.Packet) interface{}, reduceFn func(acc, v interface{}) interface{}, stop Position, zero interface{}, cacheKey string) (interface{}, error) {
	acc := zero
	begin := c.Tell()
	if begin.Part == stop.Part && cacheKey != "" {
		if v, ok := c.lookupCompute(cacheKey, begin.Part, begin.Pkt, stop.Pkt); ok {
			return reduceFn(acc, v), nil
		}
	}
	err := c.Each(stop, func(pkt *rtp.Packet) error {
		acc = reduceFn(acc, mapFn(pkt))
		return nil
	})
	if err != nil {
		return acc, err
	}
	if begin.Part == stop.Part && cacheKey != "" {
		c.storeCompute(cacheKey, begin.Part, begin.Pkt, stop.Pkt, acc)
	}
	return acc, nil
}

func (c *Cursor) lookupCompute(cacheKey string, part, begin, end int) (interface{}, bool) {
	for _, e := range c.computeCache {
		if e.cacheKey == cacheKey && e.part == part && e.begin == begin && e.end == end {
			return e.value, true
		}
	}
	return nil, false
}

func (c *Cursor) storeCompute(cacheKey string, part, begin, end int, value interface{}) {
	c.computeCache = append(c.computeCache, computeCacheEntry{cacheKey, part, begin, end, value})
}
