// Package cursor implements the multi-part random-access cursor of spec
// §3 "Part"/"Cursor position" and §4.E "Cursor".
package cursor

import (
	"io"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/reader"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
)

// partState tracks one backing file's lazily-opened reader and forward-
// scan-built offset index (spec §3 "Part").
type partState struct {
	path   string
	format string
	opened bool
	r      reader.Reader
	closer io.Closer
	index  []int64
}

// open binds the reader and drains Index() into a materialized offset
// slice in a single forward scan, as required by the Part lifecycle.
func (p *partState) open(kind media.Kind) error {
	if p.opened {
		return nil
	}
	r, closer, err := reader.OpenAs(p.path, p.format, kind)
	if err != nil {
		return err
	}
	var offsets []int64
	it := r.Index()
	for {
		off, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			closer.Close()
			return err
		}
		offsets = append(offsets, off)
	}
	p.r = r
	p.closer = closer
	p.index = offsets
	p.opened = true
	return nil
}

// close releases the file handle and drops the index, per the "owned
// handle with scoped acquisition" pattern of spec §9.
func (p *partState) close() error {
	if !p.opened {
		return nil
	}
	p.opened = false
	p.r = nil
	p.index = nil
	closer := p.closer
	p.closer = nil
	if closer != nil {
		return closer.Close()
	}
	return nil
}

func (p *partState) packetAt(i int) (*rtp.Packet, error) {
	return p.r.PacketAt(p.index[i])
}

func (p *partState) count() int { return len(p.index) }
