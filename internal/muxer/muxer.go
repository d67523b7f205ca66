// Package muxer defines the external consumer contract that depacketized
// frames are handed off to (spec §6 "External interfaces").
package muxer

import (
	"context"

	"github.com/Azunyan1111/rtparchive/internal/frame"
)

// VideoProfile describes the decoded dimensions and frame rate a consumer
// needs before it can configure a downstream encoder or container track.
type VideoProfile struct {
	Width     int
	Height    int
	FrameRate float64
}

// AudioProfile describes the channel layout a consumer needs before it can
// configure a downstream encoder or container track.
type AudioProfile struct {
	SampleRate int
	Channels   int
}

// FrameConsumer receives depacketized frames for muxing or encoding. It is
// the boundary past which codec decoding and container generation are out
// of scope for this module.
type FrameConsumer interface {
	// WriteVideoFrame writes one assembled video frame.
	WriteVideoFrame(profile VideoProfile, f frame.Frame) error

	// WriteAudioFrame writes one assembled audio frame.
	WriteAudioFrame(profile AudioProfile, f frame.Frame) error

	// Run drives the consumer's own event loop, if it has one. ctx
	// cancellation must cause Run to return promptly.
	Run(ctx context.Context) error

	// Close releases any resources the consumer owns.
	Close() error
}
