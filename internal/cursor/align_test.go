package cursor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAudioCursor builds a cursor over count mono Opus packets, each 10ms
// (480 samples @ 48kHz, per the config=0/code=0 TOC byte 0x00).
func newAudioCursor(t *testing.T, count int) *Cursor {
	var wires [][]byte
	for i := 0; i < count; i++ {
		seq := uint16(i)
		ts := uint32(i) * 480
		wires = append(wires, rtp.BuildWireBytes(seq, ts, 1, false, 111, []byte{0x00, 0x00}))
	}
	buf := buildRecordFile("audio", wires)
	dir := t.TempDir()
	path := filepath.Join(dir, "audio.mjr")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	c, err := New([]string{path}, media.KindOpus, false)
	require.NoError(t, err)
	return c
}

// newStereoAudioCursor builds a cursor over count stereo Opus packets, each
// carrying 480 interleaved samples per channel (TOC byte 0x04: config=0,
// frame-count-code=0, stereo bit set).
func newStereoAudioCursor(t *testing.T, count int) *Cursor {
	var wires [][]byte
	for i := 0; i < count; i++ {
		seq := uint16(i)
		ts := uint32(i) * 480
		wires = append(wires, rtp.BuildWireBytes(seq, ts, 1, false, 111, []byte{0x04, 0x00}))
	}
	buf := buildRecordFile("audio", wires)
	dir := t.TempDir()
	path := filepath.Join(dir, "audio.mjr")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	c, err := New([]string{path}, media.KindOpus, false)
	require.NoError(t, err)
	return c
}

func TestAlignFrameSinglePacketFrame(t *testing.T) {
	c := newAudioCursor(t, 5)
	require.NoError(t, c.Seek(Position{0, 4}))
	pos, cumulative, trim, consumed, err := c.AlignFrame(480, 1)
	require.NoError(t, err)
	assert.Equal(t, Position{0, 4}, pos)
	assert.Equal(t, 480, cumulative)
	assert.Equal(t, 0, trim)
	assert.Equal(t, 1, consumed)
	assert.Equal(t, Position{0, 4}, c.Tell()) // restored to origin
}

func TestAlignFrameMultiPacketFrame(t *testing.T) {
	c := newAudioCursor(t, 5)
	require.NoError(t, c.Seek(Position{0, 4}))
	pos, cumulative, trim, consumed, err := c.AlignFrame(960, 1)
	require.NoError(t, err)
	assert.Equal(t, Position{0, 3}, pos)
	assert.Equal(t, 960, cumulative)
	assert.Equal(t, 0, trim)
	assert.Equal(t, 2, consumed)
}

func TestAlignFrameComputesTrimWhenNotExact(t *testing.T) {
	c := newAudioCursor(t, 5)
	require.NoError(t, c.Seek(Position{0, 4}))
	_, cumulative, trim, _, err := c.AlignFrame(700, 1)
	require.NoError(t, err)
	assert.Equal(t, 960, cumulative)
	assert.Equal(t, 440, trim)
}

func TestAlignFrameRejectsVideoCursor(t *testing.T) {
	c := newTestCursor(t, 3)
	require.NoError(t, c.Seek(Position{0, 0}))
	_, _, _, _, err := c.AlignFrame(480, 1)
	require.Error(t, err)
	assert.True(t, rtperr.Is(err, rtperr.UnsupportedType))
}

// TestAlignFrameWidensBoundaryByChannelCount verifies a stereo stream aligns
// to samplesPerFrame*scale, not samplesPerFrame: each packet here carries
// 960 interleaved samples (480 samples/channel * 2 channels), so landing on
// a 1024-sample (2048-interleaved-sample) stereo frame boundary must consume
// enough packets to clear 2048, not 1024.
func TestAlignFrameWidensBoundaryByChannelCount(t *testing.T) {
	c := newStereoAudioCursor(t, 5)
	require.NoError(t, c.Seek(Position{0, 4}))
	pos, cumulative, trim, consumed, err := c.AlignFrame(1024, 2)
	require.NoError(t, err)
	assert.Equal(t, Position{0, 2}, pos)
	assert.Equal(t, 2880, cumulative)
	assert.Equal(t, 3, consumed)
	assert.True(t, trim >= 0 && trim < 2048)
	assert.Equal(t, 0, (cumulative+trim)%2048)
	assert.Equal(t, Position{0, 4}, c.Tell()) // restored to origin
}

func TestTrimFramesYieldsBeginEndAndIndices(t *testing.T) {
	c := newAudioCursor(t, 5)
	require.NoError(t, c.Seek(Position{0, 0}))
	begin, end, beginTrim, firstIdx, lastIdx, err := c.TrimFrames(Position{0, 4}, 480, 1)
	require.NoError(t, err)
	assert.Equal(t, Position{0, 0}, begin)
	assert.Equal(t, Position{0, 4}, end)
	assert.Equal(t, 0, beginTrim)
	assert.Equal(t, 0, firstIdx)
	assert.Equal(t, 4, lastIdx)
	assert.Equal(t, Position{0, 0}, c.Tell()) // restored to origin
}
