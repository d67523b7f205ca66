package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Azunyan1111/rtparchive/internal"
	"github.com/Azunyan1111/rtparchive/internal/cursor"
	"github.com/Azunyan1111/rtparchive/internal/frame"
	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/muxer"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/Azunyan1111/rtparchive/internal/split"
	"github.com/spf13/pflag"
)

func main() {
	internal.SetupUsage()
	pflag.Parse()

	if err := internal.ValidateInputs(); err != nil {
		pflag.Usage()
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}
	if err := internal.ValidateKind(); err != nil {
		pflag.Usage()
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rtparchive: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	kind := media.KindVP8
	if internal.Kind == internal.KindAudio {
		kind = media.KindOpus
	}

	c, err := cursor.NewWithFormat(internal.Inputs, kind, false, internal.Format)
	if err != nil {
		return fmt.Errorf("opening cursor: %w", err)
	}
	defer c.Close()

	if c.IsEmpty() {
		internal.DebugLog("cursor has no packets, nothing to do\n")
		return nil
	}

	if internal.SeekSeconds > 0 {
		if _, err := c.Fastforward(internal.SeekSeconds); err != nil && err != io.EOF {
			return fmt.Errorf("seeking: %w", err)
		}
	}

	out, err := openOutput(internal.OutPath)
	if err != nil {
		return err
	}
	defer out.Close()

	src := cursorIterator(c)

	var count *int
	if internal.Count > 0 {
		count = &internal.Count
	}
	var dur *float64
	if internal.Duration > 0 {
		dur = &internal.Duration
	}
	bounded := split.Head(src, count, dur)

	consumer := &rawConsumer{out: out}
	if err := consumer.Run(context.Background()); err != nil {
		return err
	}
	defer consumer.Close()

	if internal.Kind == internal.KindAudio {
		frames := frame.NewFrames(bounded, 0, nil)
		return writeAudioFrames(frames, consumer, muxer.AudioProfile{})
	}

	frames, err := frame.NewVideoFrames(bounded, 0, internal.DebugLog)
	if err != nil {
		return fmt.Errorf("synchronizing video stream: %w", err)
	}
	return writeVideoFrames(frames, consumer, muxer.VideoProfile{})
}

// rawConsumer is the minimal muxer.FrameConsumer that writes depacketized
// frame payloads straight to the output stream (spec §6 "External
// interfaces"). A real container/encoder consumer would use the supplied
// profile to configure itself before the first frame; this one ignores it.
type rawConsumer struct {
	out io.Writer
}

func (r *rawConsumer) WriteVideoFrame(profile muxer.VideoProfile, f frame.Frame) error {
	_, err := r.out.Write(f.Data)
	return err
}

func (r *rawConsumer) WriteAudioFrame(profile muxer.AudioProfile, f frame.Frame) error {
	_, err := r.out.Write(f.Data)
	return err
}

func (r *rawConsumer) Run(ctx context.Context) error { return nil }

func (r *rawConsumer) Close() error { return nil }

var _ muxer.FrameConsumer = (*rawConsumer)(nil)

// cursorIterator adapts a Cursor's current-position-then-advance protocol to
// the rtp.Iterator contract (yield current, then advance).
func cursorIterator(c *cursor.Cursor) rtp.Iterator {
	first := true
	return rtp.IteratorFunc(func() (*rtp.Packet, error) {
		if first {
			first = false
			return c.Current()
		}
		return c.Next()
	})
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type frameIterator interface {
	Next() (frame.Frame, error)
}

func writeVideoFrames(frames frameIterator, consumer muxer.FrameConsumer, profile muxer.VideoProfile) error {
	for {
		f, err := frames.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := consumer.WriteVideoFrame(profile, f); err != nil {
			return err
		}
		internal.DebugLogPeriodic("frame", 0, "pts=%d key=%v bytes=%d\n", f.PTS, f.IsKey(), len(f.Data))
	}
}

func writeAudioFrames(frames frameIterator, consumer muxer.FrameConsumer, profile muxer.AudioProfile) error {
	for {
		f, err := frames.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := consumer.WriteAudioFrame(profile, f); err != nil {
			return err
		}
		internal.DebugLogPeriodic("frame", 0, "pts=%d key=%v bytes=%d\n", f.PTS, f.IsKey(), len(f.Data))
	}
}
