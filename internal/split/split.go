// Package split chunks a packet sequence into bounded sub-sequences by
// packet count and/or elapsed-seconds window (spec §4.G).
package split

import (
	"io"

	"github.com/Azunyan1111/rtparchive/internal/rtp"
)

// peeker is implemented by sources that can inspect the next packet without
// consuming it. Head uses this to evaluate its duration bound before
// deciding whether to take the candidate packet, so a packet that fails the
// bound is left in place rather than discarded.
type peeker interface {
	Peek() (*rtp.Packet, error)
}

// peekIterator buffers at most one packet ahead of an rtp.Iterator, exposing
// both the Iterator contract and Peek.
type peekIterator struct {
	src     rtp.Iterator
	pending *rtp.Packet
}

func newPeekIterator(src rtp.Iterator) *peekIterator {
	return &peekIterator{src: src}
}

func (p *peekIterator) Peek() (*rtp.Packet, error) {
	if p.pending != nil {
		return p.pending, nil
	}
	pkt, err := p.src.Next()
	if err != nil {
		return nil, err
	}
	p.pending = pkt
	return pkt, nil
}

func (p *peekIterator) Next() (*rtp.Packet, error) {
	pkt, err := p.Peek()
	if err != nil {
		return nil, err
	}
	p.pending = nil
	return pkt, nil
}

// Head returns a lazy take-while iterator over src: it yields at most count
// packets (if count != nil), and stops once a packet's elapsed time since
// the first packet reaches duration seconds (if duration != nil). When both
// bounds are given, both must hold (conjunction).
//
// When src also implements peeker (as Split's internal source does), the
// packet that trips the duration bound is inspected via Peek rather than
// consumed, so it remains available to whatever reads src next instead of
// being silently dropped at the boundary.
func Head(src rtp.Iterator, count *int, duration *float64) rtp.Iterator {
	n := 0
	var epoch float64
	haveEpoch := false
	pk, peekable := src.(peeker)
	return rtp.IteratorFunc(func() (*rtp.Packet, error) {
		if count != nil && n >= *count {
			return nil, io.EOF
		}
		var pkt *rtp.Packet
		var err error
		if peekable {
			pkt, err = pk.Peek()
		} else {
			pkt, err = src.Next()
		}
		if err != nil {
			return nil, err
		}
		if !haveEpoch {
			epoch = pkt.Secs()
			haveEpoch = true
		}
		if duration != nil && pkt.Secs()-epoch >= *duration {
			return nil, io.EOF
		}
		if peekable {
			if _, err := src.Next(); err != nil {
				return nil, err
			}
		}
		n++
		return pkt, nil
	})
}

// Split returns a lazy sequence-of-sequences over src: each call to Next
// yields a Head-bounded sub-iterator, and advancing the parent iterator past
// a sub-sequence happens lazily as the caller drains it, so no packet is
// dropped or duplicated at a chunk boundary. The returned function yields
// io.EOF once src is exhausted.
func Split(src rtp.Iterator, count *int, duration *float64) func() (rtp.Iterator, error) {
	exhausted := false
	pk := newPeekIterator(src)

	return func() (rtp.Iterator, error) {
		if exhausted {
			return nil, io.EOF
		}
		if _, err := pk.Peek(); err != nil {
			exhausted = true
			return nil, err
		}
		sub := Head(pk, count, duration)
		return sub, nil
	}
}
