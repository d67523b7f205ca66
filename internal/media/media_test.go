package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClockRate(t *testing.T) {
	assert.Equal(t, uint32(90000), KindVP8.ClockRate())
	assert.Equal(t, uint32(48000), KindOpus.ClockRate())
	assert.Equal(t, uint32(0), KindUnknown.ClockRate())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "video.vp8", KindVP8.String())
	assert.Equal(t, "audio.opus", KindOpus.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestChannelLayoutString(t *testing.T) {
	assert.Equal(t, "mono", ChannelLayoutMono.String())
	assert.Equal(t, "stereo", ChannelLayoutStereo.String())
	assert.Equal(t, "unknown", ChannelLayoutUnknown.String())
}
