package rtp

import (
	"testing"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip_RawPayload(t *testing.T) {
	wire := BuildWireBytes(1001, 90000, 0xDEADBEEF, true, 96, []byte{0x01, 0x02, 0x03, 0x04})
	pkt, err := Decode(wire, DecodeOptions{Kind: media.KindUnknown, Depad: false})
	require.NoError(t, err)
	assert.Equal(t, wire, pkt.Encode())
	assert.Equal(t, uint16(1001), pkt.Header.SequenceNumber)
	assert.Equal(t, uint32(90000), pkt.Header.Timestamp)
	assert.Equal(t, uint32(0xDEADBEEF), pkt.Header.SSRC)
	assert.True(t, pkt.Header.Marker)
}

func TestDecodeRejectsShortHeader(t *testing.T) {
	_, err := Decode([]byte{0x80, 0x60}, DecodeOptions{Kind: media.KindUnknown})
	require.Error(t, err)
	assert.True(t, rtperr.Is(err, rtperr.Truncated))
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	buf := make([]byte, 12)
	buf[0] = 0x00 // version 0
	_, err := Decode(buf, DecodeOptions{Kind: media.KindUnknown})
	require.Error(t, err)
	assert.True(t, rtperr.Is(err, rtperr.Malformed))
}

func TestDecodeWithPaddingDepadTrue(t *testing.T) {
	// Hand-build a 12-byte header + 4 bytes payload + 3 bytes padding + pad_len.
	buf := make([]byte, 12)
	buf[0] = 0x80 | 0x20 // version 2, padding set
	buf[1] = 96
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	buf = append(buf, payload...)
	buf = append(buf, 0x00, 0x00, 0x00, 0x04) // 3 pad bytes, pad_len=4 (incl. itself)

	pkt, err := Decode(buf, DecodeOptions{Kind: media.KindUnknown, Depad: true})
	require.NoError(t, err)
	assert.Equal(t, payload, pkt.Payload.Bytes())
	assert.Equal(t, uint8(4), pkt.PadLen)
	assert.Equal(t, buf, pkt.Encode())
}

func TestDecodeWithPaddingDepadFalse(t *testing.T) {
	buf := make([]byte, 12)
	buf[0] = 0x80 | 0x20
	buf[1] = 96
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0x00, 0x00, 0x04}
	buf = append(buf, payload...)

	pkt, err := Decode(buf, DecodeOptions{Kind: media.KindUnknown, Depad: false})
	require.NoError(t, err)
	assert.Equal(t, payload, pkt.Payload.Bytes())
	assert.Equal(t, uint8(0), pkt.PadLen)
}

func TestDecodeCSRCList(t *testing.T) {
	buf := make([]byte, 12)
	buf[0] = 0x80 | 0x02 // version 2, CC=2
	buf[1] = 96
	buf = append(buf, 0, 0, 0, 1, 0, 0, 0, 2) // two CSRC entries
	buf = append(buf, 0xFF)

	pkt, err := Decode(buf, DecodeOptions{Kind: media.KindUnknown})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, pkt.CSRC)
	assert.Equal(t, buf, pkt.Encode())
}

func TestSecsUsesPayloadClockRate(t *testing.T) {
	pkt := &Packet{
		Header:  Header{Timestamp: 90000},
		Payload: &RawPayload{},
	}
	// RawPayload reports media.KindUnknown, whose clock rate is 0.
	assert.Equal(t, float64(0), pkt.Secs())
}

func TestIteratorFuncAdapter(t *testing.T) {
	called := false
	var it Iterator = IteratorFunc(func() (*Packet, error) {
		called = true
		return nil, nil
	})
	_, _ = it.Next()
	assert.True(t, called)
}
