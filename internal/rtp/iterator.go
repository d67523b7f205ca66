package rtp

// Iterator is the minimal packet-producing contract shared by readers, the
// cursor and the probing helpers. Next returns io.EOF when exhausted.
type Iterator interface {
	Next() (*Packet, error)
}

// OffsetIterator yields byte offsets of packet frames within a source,
// without materializing the packets themselves (spec §4.D "index()").
type OffsetIterator interface {
	Next() (int64, error)
}

// IteratorFunc adapts a plain function to an Iterator.
type IteratorFunc func() (*Packet, error)

func (f IteratorFunc) Next() (*Packet, error) { return f() }
