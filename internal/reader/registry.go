package reader

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/Azunyan1111/rtparchive/internal/media"
	"github.com/Azunyan1111/rtparchive/internal/rtp"
	"github.com/Azunyan1111/rtparchive/internal/rtperr"
)

// Reader is the common contract every format implements (spec §4.D).
type Reader interface {
	Packets() rtp.Iterator
	Index() rtp.OffsetIterator
	PacketAt(offset int64) (*rtp.Packet, error)
}

// Constructor builds a Reader from an already-open seekable handle.
type Constructor func(rs io.ReadSeeker, kind media.Kind) (Reader, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Constructor{}
)

func init() {
	// Registered unconditionally at package init, matching the source's
	// module-level RTPPacketReader.register calls (spec §9 "Registry of
	// reader constructors").
	mustRegister(".mjr", func(rs io.ReadSeeker, kind media.Kind) (Reader, error) {
		return OpenRecord(rs, kind)
	})
	mustRegister(".pcap", func(rs io.ReadSeeker, kind media.Kind) (Reader, error) {
		return OpenPCap(rs, kind)
	})
}

func mustRegister(ext string, ctor Constructor) {
	if err := Register(ext, ctor); err != nil {
		panic(err)
	}
}

// Register binds a file extension (including the leading dot) to a reader
// constructor. Re-registering the same extension with the same constructor
// is a no-op; registering a different constructor for an already-bound
// extension is an error (spec §4.D "Format registry").
func Register(ext string, ctor Constructor) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if existing, ok := registry[ext]; ok {
		if reflect.ValueOf(existing).Pointer() == reflect.ValueOf(ctor).Pointer() {
			return nil
		}
		return rtperr.Malformedf("format %q already registered with a different constructor", ext)
	}
	registry[ext] = ctor
	return nil
}

// Open consults the registry by the path's extension and opens the file.
func Open(path string, kind media.Kind) (Reader, io.Closer, error) {
	return OpenAs(path, "", kind)
}

// OpenAs opens path with the reader registered for format (a bare format
// name such as "record" or "pcap", or an extension such as ".mjr"). An
// empty format falls back to auto-detecting by the path's extension (spec
// §4.D "Format registry" override).
func OpenAs(path string, format string, kind media.Kind) (Reader, io.Closer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if format != "" {
		ext = formatToExt(format)
	}
	registryMu.Lock()
	ctor, ok := registry[ext]
	registryMu.Unlock()
	if !ok {
		return nil, nil, rtperr.UnknownFormatf("no reader registered for extension %q", ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := ctor(f, kind)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return r, f, nil
}

// formatToExt maps a bare format name to its registered extension, and
// passes anything already starting with "." through unchanged.
func formatToExt(format string) string {
	format = strings.ToLower(format)
	if strings.HasPrefix(format, ".") {
		return format
	}
	switch format {
	case "record":
		return ".mjr"
	case "pcap":
		return ".pcap"
	default:
		return "." + format
	}
}
