package split

import (
	"io"
	"testing"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sliceIterator(pkts []*rtp.Packet) rtp.Iterator {
	i := 0
	return rtp.IteratorFunc(func() (*rtp.Packet, error) {
		if i >= len(pkts) {
			return nil, io.EOF
		}
		p := pkts[i]
		i++
		return p, nil
	})
}

func opusPkt(t *testing.T, seq uint16, ts uint32) *rtp.Packet {
	wire := rtp.BuildWireBytes(seq, ts, 1, false, 111, []byte{0x00, 0x00})
	pkt, err := rtp.Decode(wire, rtp.DecodeOptions{Kind: media.KindOpus})
	require.NoError(t, err)
	return pkt
}

func seqsOf(t *testing.T, it rtp.Iterator) []uint16 {
	var out []uint16
	for {
		pkt, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, pkt.Header.SequenceNumber)
	}
	return out
}

func fivePackets(t *testing.T) []*rtp.Packet {
	var pkts []*rtp.Packet
	for i := 0; i < 5; i++ {
		pkts = append(pkts, opusPkt(t, uint16(i), uint32(i)*480))
	}
	return pkts
}

func TestHeadCountBound(t *testing.T) {
	count := 3
	h := Head(sliceIterator(fivePackets(t)), &count, nil)
	assert.Equal(t, []uint16{0, 1, 2}, seqsOf(t, h))
}

func TestHeadDurationBoundExcludesOvershootPacket(t *testing.T) {
	duration := 0.02 // 20ms; packets are 10ms apart
	h := Head(sliceIterator(fivePackets(t)), nil, &duration)
	assert.Equal(t, []uint16{0, 1}, seqsOf(t, h))
}

func TestHeadConjunctiveBoundStopsAtTighterLimit(t *testing.T) {
	count := 10
	duration := 0.02
	h := Head(sliceIterator(fivePackets(t)), &count, &duration)
	assert.Equal(t, []uint16{0, 1}, seqsOf(t, h))
}

func TestHeadEmptySource(t *testing.T) {
	count := 3
	h := Head(sliceIterator(nil), &count, nil)
	_, err := h.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSplitCountBoundChunksWithoutDropOrDuplicate(t *testing.T) {
	count := 2
	next := Split(sliceIterator(fivePackets(t)), &count, nil)

	var chunks [][]uint16
	for {
		sub, err := next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		chunks = append(chunks, seqsOf(t, sub))
	}

	require.Len(t, chunks, 3)
	assert.Equal(t, []uint16{0, 1}, chunks[0])
	assert.Equal(t, []uint16{2, 3}, chunks[1])
	assert.Equal(t, []uint16{4}, chunks[2])
}

func TestSplitDurationBoundChunksWithoutDropOrDuplicate(t *testing.T) {
	duration := 0.02 // 20ms; packets are 10ms apart
	next := Split(sliceIterator(fivePackets(t)), nil, &duration)

	var chunks [][]uint16
	for {
		sub, err := next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		chunks = append(chunks, seqsOf(t, sub))
	}

	require.Len(t, chunks, 3)
	assert.Equal(t, []uint16{0, 1}, chunks[0])
	assert.Equal(t, []uint16{2, 3}, chunks[1])
	assert.Equal(t, []uint16{4}, chunks[2])
}

func TestSplitExhaustedReturnsEOFOnEmptySource(t *testing.T) {
	count := 2
	next := Split(sliceIterator(nil), &count, nil)
	_, err := next()
	assert.Equal(t, io.EOF, err)
}

func TestSplitNextChunkStartsAtUndrainedRemainder(t *testing.T) {
	// Advancing to the next chunk before fully draining the current one is
	// well-defined: the parent sequence only advances as the sub-iterator is
	// pulled, so the next chunk starts with the undrained remainder.
	count := 2
	next := Split(sliceIterator(fivePackets(t)), &count, nil)

	sub1, err := next()
	require.NoError(t, err)
	pkt, err := sub1.Next()
	require.NoError(t, err)
	assert.Equal(t, uint16(0), pkt.Header.SequenceNumber)

	sub2, err := next()
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2}, seqsOf(t, sub2))
}
