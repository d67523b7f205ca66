package cursor

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRecordFile assembles a "MEETECHO"-framed part file from RTP wire
// bytes, mirroring the record reader's on-disk layout exactly.
func buildRecordFile(streamType string, wires [][]byte) []byte {
	buf := []byte("MEETECHO")
	lenBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBuf, uint16(len(streamType)))
	buf = append(buf, lenBuf...)
	buf = append(buf, streamType...)
	for _, w := range wires {
		buf = append(buf, "MEETECHO"...)
		binary.BigEndian.PutUint16(lenBuf, uint16(len(w)))
		buf = append(buf, lenBuf...)
		buf = append(buf, w...)
	}
	return buf
}

// writePart writes a record-format part file of count VP8 packets, with
// sequence numbers and timestamps offset by seqBase, to a fresh temp dir
// and returns its path. count == 0 produces an empty (valid) part.
func writePart(t *testing.T, seqBase uint16, count int) string {
	var wires [][]byte
	for i := 0; i < count; i++ {
		seq := seqBase + uint16(i)
		ts := uint32(seq) * 3000
		payload := []byte{0x10, 0x00, 0x00, 0x9D, 0x01, 0x2A, 0x40, 0x01, 0xF0, 0x00}
		wires = append(wires, rtp.BuildWireBytes(seq, ts, 1, false, 96, payload))
	}
	buf := buildRecordFile("video", wires)
	dir := t.TempDir()
	path := filepath.Join(dir, "part.mjr")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func newTestCursor(t *testing.T, counts ...int) *Cursor {
	var paths []string
	for _, n := range counts {
		paths = append(paths, writePart(t, uint16(len(paths)*100), n))
	}
	c, err := New(paths, media.KindVP8, false)
	require.NoError(t, err)
	return c
}

func TestNewEmptyPartsYieldsEmptyCursor(t *testing.T) {
	c := newTestCursor(t, 0, 0)
	assert.True(t, c.IsEmpty())
	_, err := c.Current()
	assert.Equal(t, io.EOF, err)
}

func TestSeekTellCurrent(t *testing.T) {
	c := newTestCursor(t, 3)
	require.NoError(t, c.Seek(Position{0, 1}))
	assert.Equal(t, Position{0, 1}, c.Tell())
	pkt, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), pkt.Header.SequenceNumber)
}

func TestSeekNegativeIndices(t *testing.T) {
	c := newTestCursor(t, 3)
	require.NoError(t, c.Seek(Position{0, -1}))
	pkt, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), pkt.Header.SequenceNumber)
}

func TestSeekEndSentinelSkipsEmptyTrailingParts(t *testing.T) {
	c := newTestCursor(t, 2, 0)
	require.NoError(t, c.Seek(End))
	assert.Equal(t, Position{0, 1}, c.Tell())
}

func TestNextCrossesPartBoundarySkippingEmpty(t *testing.T) {
	c := newTestCursor(t, 1, 0, 2)
	require.NoError(t, c.Seek(Position{0, 0}))
	pkt, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, Position{2, 0}, c.Tell())
	assert.Equal(t, uint16(200), pkt.Header.SequenceNumber)
}

func TestNextReturnsEOFAtTrueEnd(t *testing.T) {
	c := newTestCursor(t, 1)
	require.NoError(t, c.Seek(Position{0, 0}))
	_, err := c.Next()
	assert.Equal(t, io.EOF, err)
}

func TestPrevCrossesPartBoundarySkippingEmpty(t *testing.T) {
	c := newTestCursor(t, 1, 0, 2)
	require.NoError(t, c.Seek(Position{2, 0}))
	pkt, err := c.Prev()
	require.NoError(t, err)
	assert.Equal(t, Position{0, 0}, c.Tell())
	assert.Equal(t, uint16(0), pkt.Header.SequenceNumber)
}

func TestPrevReturnsEOFAtTrueStart(t *testing.T) {
	c := newTestCursor(t, 1)
	require.NoError(t, c.Seek(Position{0, 0}))
	_, err := c.Prev()
	assert.Equal(t, io.EOF, err)
}

func TestOnlyOnePartOpenAtATime(t *testing.T) {
	c := newTestCursor(t, 1, 1, 1)
	require.NoError(t, c.Seek(Position{0, 0}))
	for i := 0; i < 2; i++ {
		_, err := c.Next()
		require.NoError(t, err)
	}
	openCount := 0
	for _, p := range c.parts {
		if p.opened {
			openCount++
		}
	}
	assert.Equal(t, 1, openCount)
}
