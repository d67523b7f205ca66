package cursor

import "io"

// Align selects how TimeCut snaps its two computed positions (spec §4.E
// "TimeCut(beginSecs, endSecs, align)").
type Align int

const (
	// AlignExact returns the raw fast-forward landing positions.
	AlignExact Align = iota
	// AlignFrameBoundary snaps both positions backward to the previous
	// start-of-frame packet on video streams; audio streams are unaffected.
	AlignFrameBoundary
	// AlignPrev behaves like AlignFrameBoundary but additionally snaps back
	// one packet when the target is neither the cursor's first nor last
	// packet, for stable cuts against a growing multi-part cursor.
	AlignPrev
)

// TimeCut selects a two-point temporal range starting from the cursor's
// current position, returning the start/stop positions and their actual
// elapsed-seconds offsets (including fast-forward overshoot and any
// alignment delta).
func (c *Cursor) TimeCut(beginSecs, endSecs float64, align Align) (start Position, startSecs float64, stop Position, stopSecs float64, err error) {
	origin := c.Tell()
	defer func() {
		if seekErr := c.Seek(origin); seekErr != nil && err == nil {
			err = seekErr
		}
	}()

	residual, err := c.Fastforward(beginSecs)
	if err != nil && err != io.EOF {
		return Position{}, 0, Position{}, 0, err
	}
	start = c.Tell()
	startSecs = beginSecs + residual
	startDelta, aerr := c.applyAlign(align)
	if aerr != nil {
		return Position{}, 0, Position{}, 0, aerr
	}
	start = c.Tell()
	startSecs += startDelta

	residual, err = c.Fastforward(endSecs - beginSecs)
	if err != nil && err != io.EOF {
		return Position{}, 0, Position{}, 0, err
	}
	stop = c.Tell()
	stopSecs = startSecs + (endSecs - beginSecs) + residual
	stopDelta, aerr := c.applyAlign(align)
	if aerr != nil {
		return Position{}, 0, Position{}, 0, aerr
	}
	stop = c.Tell()
	stopSecs += stopDelta

	return start, startSecs, stop, stopSecs, nil
}

// applyAlign moves the cursor per align and returns the elapsed-seconds
// delta the move introduced.
func (c *Cursor) applyAlign(align Align) (float64, error) {
	if align == AlignExact {
		return 0, nil
	}
	before, err := c.Current()
	if err != nil {
		return 0, err
	}
	if _, ok := before.Payload.(interface{ Width() (int, error) }); !ok {
		return 0, nil // not a video stream: frame/prev alignment is a no-op
	}
	if _, err := c.PrevStartOfFrame(); err != nil {
		if err != io.EOF {
			return 0, err
		}
		if err := c.Seek(Position{Part: 0, Pkt: 0}); err != nil {
			return 0, err
		}
	}
	if align == AlignPrev {
		first := Position{Part: 0, Pkt: 0}
		last, err := c.lastPosition()
		if err != nil {
			return 0, err
		}
		if c.Tell() != first && c.Tell() != last {
			if _, err := c.Prev(); err != nil && err != io.EOF {
				return 0, err
			}
		}
	}
	after, err := c.Current()
	if err != nil {
		return 0, err
	}
	return after.Secs() - before.Secs(), nil
}

func (c *Cursor) lastPosition() (Position, error) {
	saved := c.Tell()
	if err := c.Seek(End); err != nil {
		return Position{}, err
	}
	last := c.Tell()
	if err := c.Seek(saved); err != nil {
		return Position{}, err
	}
	return last, nil
}
