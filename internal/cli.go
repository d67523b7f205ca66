package internal

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

var (
	Inputs      []string
	Format      string
	Kind        string
	SeekSeconds float64
	Duration    float64
	Count       int
	OutPath     string
	DebugMode   bool
)

const (
	KindVideo = "video"
	KindAudio = "audio"
)

func init() {
	pflag.StringArrayVarP(&Inputs, "input", "i", nil, "archive part to read (repeatable, in order)")
	pflag.StringVarP(&Format, "format", "f", "", "reader format (record, pcap); empty auto-detects by extension")
	pflag.StringVarP(&Kind, "kind", "k", KindVideo, "payload kind (video, audio)")
	pflag.Float64Var(&SeekSeconds, "seek", 0, "fast-forward this many seconds before reading")
	pflag.Float64Var(&Duration, "duration", 0, "stop after this many seconds of media time (0 = unbounded)")
	pflag.IntVarP(&Count, "count", "n", 0, "stop after this many packets (0 = unbounded)")
	pflag.StringVarP(&OutPath, "out", "o", "-", "output path for the raw elementary stream dump, - for stdout")
	pflag.BoolVarP(&DebugMode, "debug", "d", false, "enable debug logging")
}

// ValidateKind normalizes and checks Kind.
func ValidateKind() error {
	Kind = strings.ToLower(Kind)
	switch Kind {
	case KindVideo, KindAudio:
		return nil
	default:
		return fmt.Errorf("unsupported kind: %s (supported: %s, %s)", Kind, KindVideo, KindAudio)
	}
}

// ValidateInputs checks that at least one --input was given.
func ValidateInputs() error {
	if len(Inputs) == 0 {
		return fmt.Errorf("at least one --input is required")
	}
	return nil
}

func SetupUsage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "rtparchive - inspect and export recorded RTP archives\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s --input FILE [--input FILE ...] [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input rec-000001.mjr --kind video --out frames.vp8\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input cap.pcap --kind audio --seek 30 --duration 10 --out -\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		pflag.PrintDefaults()
	}
}
