package vp8

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildKeyFrameBitstream builds a minimal VP8 key-frame bitstream: the
// 3-byte frame tag (P=0, show=1) followed by the 7-byte key-frame header
// (sync code + width/height, no scaling) for the given width and height.
func buildKeyFrameBitstream(width, height int) []byte {
	tag0 := byte(0) // P=0 (key frame), Ver=0
	tag0 |= 1 << 4  // Show=1
	buf := []byte{tag0, 0x00, 0x00}
	buf = append(buf, syncCode[0], syncCode[1], syncCode[2])
	buf = append(buf, byte(width), byte(width>>8), byte(height), byte(height>>8))
	return buf
}

func TestDecodeEncodeRoundTrip_NoExtension(t *testing.T) {
	wire := append([]byte{0x10}, buildKeyFrameBitstream(320, 240)...) // S=1, PID=0, X=0
	p, err := Decode(wire)
	require.NoError(t, err)
	require.Equal(t, wire, p.Encode())
}

func TestDecodeEncodeRoundTrip_WithExtension(t *testing.T) {
	// X=1,S=1,PID=0 descriptor; extension byte with I=1 and an 8-bit picture
	// id; then bitstream bytes.
	wire := []byte{0x90, 0x80, 0x07}
	wire = append(wire, buildKeyFrameBitstream(640, 480)...)
	p, err := Decode(wire)
	require.NoError(t, err)
	require.Equal(t, wire, p.Encode())
	require.Equal(t, []byte{0x07}, p.extData)
}

func TestDecodeEncodeRoundTrip_ExtendedPictureID(t *testing.T) {
	// I bit set with a 2-byte (M=1) picture id.
	wire := []byte{0x90, 0x80, 0x80, 0x2A}
	wire = append(wire, buildKeyFrameBitstream(16, 16)...)
	p, err := Decode(wire)
	require.NoError(t, err)
	require.Equal(t, wire, p.Encode())
	require.Equal(t, []byte{0x80, 0x2A}, p.extData)
}

func TestIsStartOfFrameAndKeyFrame(t *testing.T) {
	wire := append([]byte{0x10}, buildKeyFrameBitstream(320, 240)...)
	p, err := Decode(wire)
	require.NoError(t, err)
	require.True(t, p.IsStartOfFrame())
	require.True(t, p.IsKeyFrame())

	w, err := p.Width()
	require.NoError(t, err)
	require.Equal(t, 320, w)

	h, err := p.Height()
	require.NoError(t, err)
	require.Equal(t, 240, h)
}

func TestNonStartPacketIsNeverKeyFrame(t *testing.T) {
	// S=0: continuation fragment.
	wire := []byte{0x00, 0xAB, 0xCD, 0xEF}
	p, err := Decode(wire)
	require.NoError(t, err)
	require.False(t, p.IsStartOfFrame())
	require.False(t, p.IsKeyFrame())
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)
}

func TestDecodeKeyFrameHeaderBadSyncCode(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}
	_, err := decodeKeyFrameHeader(buf)
	require.Error(t, err)
}
