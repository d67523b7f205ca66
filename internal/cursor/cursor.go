package cursor

import (
	"io"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

// Position is an absolute (part_index, packet_index) pair (spec §3 "Cursor
// position"). End is the sentinel "last packet of last non-empty part".
type Position struct {
	Part int
	Pkt  int
}

// End is the (-1, -1) sentinel meaning "last packet of last non-empty part".
var End = Position{Part: -1, Pkt: -1}

// Cursor is a seekable, bidirectional position over a logical concatenation
// of per-file packet sequences (spec §4.E).
type Cursor struct {
	parts        []*partState
	kind         media.Kind
	open         int // index into parts currently holding an open handle, or -1
	curPart      int // -1 when the cursor is empty
	curPkt       int
	computeCache []computeCacheEntry
}

// New builds a cursor over paths, in order. When dropEmpty is true, every
// part is opened once up front to elide parts whose index is empty (spec
// §4.E "Empty handling"); otherwise parts stay unopened until first use.
func New(paths []string, kind media.Kind, dropEmpty bool) (*Cursor, error) {
	return NewWithFormat(paths, kind, dropEmpty, "")
}

// NewWithFormat is New with an explicit reader format override (spec §4.D
// "Format registry"), bypassing each part's extension-based auto-detection
// when format is non-empty.
func NewWithFormat(paths []string, kind media.Kind, dropEmpty bool, format string) (*Cursor, error) {
	c := &Cursor{kind: kind, open: -1, curPart: -1, curPkt: -1}
	for _, p := range paths {
		ps := &partState{path: p, format: format}
		if dropEmpty {
			if err := ps.open(kind); err != nil {
				return nil, err
			}
			if ps.count() == 0 {
				ps.close()
				continue
			}
			// Keep it open as a candidate; ensureOpen below will treat it
			// as already opened and skip re-indexing. The previous candidate
			// is closed so at most one part stays open.
			if c.open >= 0 {
				if err := c.parts[c.open].close(); err != nil {
					return nil, err
				}
			}
			c.parts = append(c.parts, ps)
			c.open = len(c.parts) - 1
			continue
		}
		c.parts = append(c.parts, ps)
	}
	if len(c.parts) > 0 {
		if err := c.Seek(Position{Part: 0, Pkt: 0}); err != nil {
			if !rtperr.Is(err, rtperr.OutOfRange) {
				return nil, err
			}
			// Part 0 is empty: start at the first non-empty part, or leave
			// the cursor in its empty state if all parts are empty.
			c.curPart = -1
			for i := 1; i < len(c.parts); i++ {
				n, err := c.partCount(i)
				if err != nil {
					return nil, err
				}
				if n > 0 {
					c.curPart, c.curPkt = i, 0
					break
				}
			}
		}
	}
	return c, nil
}

// Close releases any open part's file handle.
func (c *Cursor) Close() error {
	if c.open < 0 {
		return nil
	}
	err := c.parts[c.open].close()
	c.open = -1
	return err
}

func (c *Cursor) ensureOpen(i int) error {
	if c.open == i && c.parts[i].opened {
		return nil
	}
	if c.open >= 0 && c.open != i {
		if err := c.parts[c.open].close(); err != nil {
			return err
		}
		c.open = -1
	}
	if err := c.parts[i].open(c.kind); err != nil {
		return err
	}
	c.open = i
	return nil
}

func (c *Cursor) normalizePart(i int) (int, error) {
	n := len(c.parts)
	if i < 0 {
		i = n + i
	}
	if i < 0 || i >= n {
		return 0, rtperr.OutOfRangef("part index out of range: %d (have %d parts)", i, n)
	}
	return i, nil
}

// partCount ensures part i is open and returns its packet count.
func (c *Cursor) partCount(i int) (int, error) {
	if err := c.ensureOpen(i); err != nil {
		return 0, err
	}
	return c.parts[i].count(), nil
}

// Seek moves to an absolute position (spec §4.E "seek(position)").
func (c *Cursor) Seek(pos Position) error {
	if pos == End {
		return c.seekLastNonEmpty()
	}
	pi, err := c.normalizePart(pos.Part)
	if err != nil {
		return err
	}
	n, err := c.partCount(pi)
	if err != nil {
		return err
	}
	pk := pos.Pkt
	if pk == -1 {
		pk = n - 1
	} else if pk < 0 {
		pk = n + pk
	}
	if pk < 0 || pk >= n {
		return rtperr.OutOfRangef("packet index out of range: %d (part %d has %d packets)", pos.Pkt, pi, n)
	}
	c.curPart, c.curPkt = pi, pk
	return nil
}

func (c *Cursor) seekLastNonEmpty() error {
	for i := len(c.parts) - 1; i >= 0; i-- {
		n, err := c.partCount(i)
		if err != nil {
			return err
		}
		if n > 0 {
			c.curPart, c.curPkt = i, n-1
			return nil
		}
	}
	return rtperr.OutOfRangef("cursor has no packets")
}

// Tell returns the current position.
func (c *Cursor) Tell() Position {
	if c.curPart < 0 {
		return Position{Part: -1, Pkt: -1}
	}
	return Position{Part: c.curPart, Pkt: c.curPkt}
}

// Current returns the packet at the current position without advancing.
func (c *Cursor) Current() (*rtp.Packet, error) {
	if c.curPart < 0 {
		return nil, io.EOF
	}
	if err := c.ensureOpen(c.curPart); err != nil {
		return nil, err
	}
	return c.parts[c.curPart].packetAt(c.curPkt)
}

// Next advances one packet, crossing part boundaries and skipping empty
// parts, returning io.EOF past the last packet (spec §4.E "next()/prev()").
func (c *Cursor) Next() (*rtp.Packet, error) {
	if c.curPart < 0 {
		return nil, io.EOF
	}
	n, err := c.partCount(c.curPart)
	if err != nil {
		return nil, err
	}
	if c.curPkt+1 < n {
		c.curPkt++
		return c.Current()
	}
	for pi := c.curPart + 1; pi < len(c.parts); pi++ {
		cnt, err := c.partCount(pi)
		if err != nil {
			return nil, err
		}
		if cnt > 0 {
			c.curPart, c.curPkt = pi, 0
			return c.Current()
		}
	}
	return nil, io.EOF
}

// Prev moves back one packet, symmetric to Next.
func (c *Cursor) Prev() (*rtp.Packet, error) {
	if c.curPart < 0 {
		return nil, io.EOF
	}
	if c.curPkt-1 >= 0 {
		c.curPkt--
		return c.Current()
	}
	for pi := c.curPart - 1; pi >= 0; pi-- {
		cnt, err := c.partCount(pi)
		if err != nil {
			return nil, err
		}
		if cnt > 0 {
			c.curPart, c.curPkt = pi, cnt-1
			return c.Current()
		}
	}
	return nil, io.EOF
}

// IsEmpty reports whether the cursor has no packets at all.
func (c *Cursor) IsEmpty() bool { return c.curPart < 0 }
