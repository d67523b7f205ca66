package reader

import (
	"encoding/binary"
	"io"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

const (
	pcapGlobalHeaderSize = 24
	pcapRecordHeaderSize = 16
	ethernetHeaderSize   = 14
	ethertypeIPv4        = 0x0800
	ipProtocolUDP        = 17
	udpHeaderSize        = 8
)

var (
	pcapMagicLE  = [4]byte{0xd4, 0xc3, 0xb2, 0xa1} // little-endian file, native order read as BE magic 0xa1b2c3d4
	pcapMagicBE  = [4]byte{0xa1, 0xb2, 0xc3, 0xd4}
	pcapMagicLEn = [4]byte{0x4d, 0x3c, 0xb2, 0xa1} // nanosecond variant, little-endian
	pcapMagicBEn = [4]byte{0xa1, 0xb2, 0x3c, 0x4d}
)

// PCap is the standard packet-capture reader (spec §4.D "Packet-capture
// reader"). It hand-decodes Ethernet -> IPv4 -> UDP -> RTP since none of
// this module's dependencies ships a pcap/dpkt-equivalent decoder.
type PCap struct {
	rs     io.ReadSeeker
	kind   media.Kind
	origin int64
	bo     binary.ByteOrder
}

// OpenPCap reads the 24-byte global file header and binds kind as the
// payload kind for every accepted RTP candidate. Unlike the record reader,
// captured packets still carry their original RTP padding, so packets
// decode with Depad=true (spec §4.D).
func OpenPCap(rs io.ReadSeeker, kind media.Kind) (*PCap, error) {
	var hdr [pcapGlobalHeaderSize]byte
	if _, err := io.ReadFull(rs, hdr[:]); err != nil {
		return nil, rtperr.Truncatedf("reading pcap global header: %v", err)
	}
	bo, err := pcapByteOrder(hdr[:4])
	if err != nil {
		return nil, err
	}
	origin, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &PCap{rs: rs, kind: kind, origin: origin, bo: bo}, nil
}

func pcapByteOrder(magic []byte) (binary.ByteOrder, error) {
	switch [4]byte{magic[0], magic[1], magic[2], magic[3]} {
	case pcapMagicLE, pcapMagicLEn:
		return binary.LittleEndian, nil
	case pcapMagicBE, pcapMagicBEn:
		return binary.BigEndian, nil
	default:
		return nil, rtperr.Malformedf("unrecognized pcap magic number % x", magic)
	}
}

// Packets returns a lazy forward iterator over the capture's accepted RTP
// packets, skipping any record that does not demux to a candidate RTP
// datagram.
func (p *PCap) Packets() rtp.Iterator {
	if _, err := p.rs.Seek(p.origin, io.SeekStart); err != nil {
		return rtp.IteratorFunc(func() (*rtp.Packet, error) { return nil, err })
	}
	return rtp.IteratorFunc(func() (*rtp.Packet, error) {
		for {
			buf, err := p.nextCandidate()
			if err != nil {
				return nil, err
			}
			if buf == nil {
				continue
			}
			return rtp.Decode(buf, rtp.DecodeOptions{Kind: p.kind, Depad: true})
		}
	})
}

// Index returns a lazy forward iterator over the byte offsets of each pcap
// record that demuxes to a candidate RTP datagram.
func (p *PCap) Index() rtp.OffsetIterator {
	if _, err := p.rs.Seek(p.origin, io.SeekStart); err != nil {
		return offsetIteratorFunc(func() (int64, error) { return 0, err })
	}
	return offsetIteratorFunc(func() (int64, error) {
		for {
			pos, err := p.rs.Seek(0, io.SeekCurrent)
			if err != nil {
				return 0, err
			}
			buf, err := p.nextCandidate()
			if err != nil {
				return 0, err
			}
			if buf == nil {
				continue
			}
			return pos, nil
		}
	})
}

// PacketAt seeks to a pcap-record offset (as reported by Index) and decodes
// the RTP packet it demuxes to.
func (p *PCap) PacketAt(offset int64) (*rtp.Packet, error) {
	if _, err := p.rs.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	buf, err := p.nextCandidate()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, rtperr.Malformedf("offset %d is not a candidate RTP record", offset)
	}
	return rtp.Decode(buf, rtp.DecodeOptions{Kind: p.kind, Depad: true})
}

// nextCandidate reads one pcap record and returns the demuxed RTP wire
// bytes, or (nil, nil) if the record was not a candidate RTP datagram.
func (p *PCap) nextCandidate() ([]byte, error) {
	var rh [pcapRecordHeaderSize]byte
	n, err := io.ReadFull(p.rs, rh[:])
	if err == io.EOF && n == 0 {
		return nil, io.EOF
	}
	if err != nil {
		return nil, rtperr.Truncatedf("reading pcap record header: %v", err)
	}
	inclLen := p.bo.Uint32(rh[8:12])

	frame := make([]byte, inclLen)
	if _, err := io.ReadFull(p.rs, frame); err != nil {
		return nil, rtperr.Truncatedf("reading pcap frame of %d bytes: %v", inclLen, err)
	}

	return demuxRTP(frame), nil
}

// demuxRTP walks an Ethernet frame down to a candidate RTP datagram,
// returning nil if any layer doesn't match (spec §4.D: "Non-RTP records are
// silently skipped").
func demuxRTP(frame []byte) []byte {
	if len(frame) < ethernetHeaderSize {
		return nil
	}
	ethertype := binary.BigEndian.Uint16(frame[12:14])
	if ethertype != ethertypeIPv4 {
		return nil
	}
	ip := frame[ethernetHeaderSize:]
	if len(ip) < 20 {
		return nil
	}
	ihl := int(ip[0]&0x0F) * 4
	if ihl < 20 || len(ip) < ihl {
		return nil
	}
	if ip[9] != ipProtocolUDP {
		return nil
	}
	totalLen := int(binary.BigEndian.Uint16(ip[2:4]))
	if totalLen > len(ip) {
		totalLen = len(ip)
	}
	udp := ip[ihl:totalLen]
	if len(udp) < udpHeaderSize {
		return nil
	}
	candidate := udp[udpHeaderSize:]
	if !isRTPCandidate(candidate) {
		return nil
	}
	return candidate
}

// isRTPCandidate implements the acceptance predicate of spec §4.D:
// version=2 and (payload_type<64 or payload_type>=96).
func isRTPCandidate(buf []byte) bool {
	if len(buf) < 12 {
		return false
	}
	version := buf[0] >> 6
	if version != 2 {
		return false
	}
	pt := buf[1] & 0x7F
	return pt < 64 || pt >= 96
}
