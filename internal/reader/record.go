package reader

import (
	"encoding/binary"
	"io"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

const recordMarker = "MEETECHO"

// StreamType is the record file's declared content type (spec §4.D).
type StreamType string

const (
	StreamAudio StreamType = "audio"
	StreamVideo StreamType = "video"
)

// Record is the "MEETECHO"-framed reader (spec §4.D "Record reader").
type Record struct {
	rs         io.ReadSeeker
	kind       media.Kind
	streamType StreamType
	origin     int64
}

// OpenRecord reads the one-time record header and binds kind as the payload
// kind every subsequent packet is decoded with. Because the gateway that
// produces these recordings already strips RTP padding, packets decode with
// Depad=false (spec §4.D, §6).
func OpenRecord(rs io.ReadSeeker, kind media.Kind) (*Record, error) {
	if err := readMarker(rs); err != nil {
		return nil, err
	}
	typeStr, err := readString(rs)
	if err != nil {
		return nil, err
	}
	st := StreamType(typeStr)
	if st != StreamAudio && st != StreamVideo {
		return nil, rtperr.UnsupportedTypef("record type %q is neither %q nor %q", typeStr, StreamAudio, StreamVideo)
	}
	origin, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &Record{rs: rs, kind: kind, streamType: st, origin: origin}, nil
}

// StreamType reports the record's declared content type.
func (r *Record) StreamType() StreamType { return r.streamType }

// Packets returns a lazy forward iterator over the record's RTP packets,
// starting from the first packet regardless of how far a prior iterator or
// Index call advanced the shared handle.
func (r *Record) Packets() rtp.Iterator {
	if _, err := r.rs.Seek(r.origin, io.SeekStart); err != nil {
		return rtp.IteratorFunc(func() (*rtp.Packet, error) { return nil, err })
	}
	return rtp.IteratorFunc(func() (*rtp.Packet, error) {
		buf, err := readRecordPacketBytes(r.rs)
		if err != nil {
			return nil, err
		}
		return rtp.Decode(buf, rtp.DecodeOptions{Kind: r.kind, Depad: false})
	})
}

// Index returns a lazy forward iterator over the byte offsets (of each
// packet's leading marker) without parsing packet contents.
func (r *Record) Index() rtp.OffsetIterator {
	if _, err := r.rs.Seek(r.origin, io.SeekStart); err != nil {
		return offsetIteratorFunc(func() (int64, error) { return 0, err })
	}
	return offsetIteratorFunc(func() (int64, error) {
		pos, err := r.rs.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		if err := skipRecordPacket(r.rs); err != nil {
			return 0, err
		}
		return pos, nil
	})
}

// PacketAt seeks to offset (as reported by Index) and decodes the packet
// there, restoring the handle to its prior position afterward is the
// caller's responsibility (the cursor always re-seeks before reading).
func (r *Record) PacketAt(offset int64) (*rtp.Packet, error) {
	if _, err := r.rs.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	buf, err := readRecordPacketBytes(r.rs)
	if err != nil {
		return nil, err
	}
	return rtp.Decode(buf, rtp.DecodeOptions{Kind: r.kind, Depad: false})
}

type offsetIteratorFunc func() (int64, error)

func (f offsetIteratorFunc) Next() (int64, error) { return f() }

// readMarker reads and validates the 8-byte "MEETECHO" marker. A clean EOF
// (zero bytes read) is reported as io.EOF; any partial read is a fatal
// Truncated error (spec §7 propagation policy).
func readMarker(r io.Reader) error {
	buf := make([]byte, len(recordMarker))
	n, err := io.ReadFull(r, buf)
	if err == io.EOF && n == 0 {
		return io.EOF
	}
	if err != nil {
		return rtperr.Truncatedf("reading record marker: %v", err)
	}
	if string(buf) != recordMarker {
		return rtperr.Malformedf("record marker mismatch: %q", buf)
	}
	return nil
}

func readString(r io.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", rtperr.Truncatedf("reading record string length: %v", err)
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", rtperr.Truncatedf("reading record string of %d bytes: %v", n, err)
	}
	return string(buf), nil
}

// readRecordPacketBytes reads one "marker, u16 length, <length> bytes"
// packet record and returns the RTP wire bytes.
func readRecordPacketBytes(r io.Reader) ([]byte, error) {
	if err := readMarker(r); err != nil {
		return nil, err
	}
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, rtperr.Truncatedf("reading record packet length: %v", err)
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, rtperr.Truncatedf("reading record packet body of %d bytes: %v", n, err)
	}
	return buf, nil
}

func skipRecordPacket(r io.ReadSeeker) error {
	if err := readMarker(r); err != nil {
		return err
	}
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return rtperr.Truncatedf("reading record packet length: %v", err)
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	if _, err := r.Seek(int64(n), io.SeekCurrent); err != nil {
		return err
	}
	return nil
}
