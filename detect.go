package compressedio

import (
	"bytes"
	"io"

	"github.com/AdRoll/compressedio/pkg/lz4legacy"
)

const (
	gzipHeader = "\x1f\x8b"

	// magicLen is the number of bytes read by Detect.
	magicLen = 4
)

// Sniff identifies the format from the first bytes of a stream. It returns
// false if magic doesn't match any known format.
func Sniff(magic []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(magic, []byte(gzipHeader)):
		return Gzip, true
	case bytes.HasPrefix(magic, lz4legacy.Magic[:]):
		return LegacyLz4, true
	}
	return None, false
}

// Detect reads the first 4 bytes of r to identify its format, then rewinds r
// to offset 0, whatever the outcome of the detection. r must be positioned at
// the start of the stream.
//
// When no known magic is found, Detect returns None if allowRaw is true, or
// ErrUnknownFormat otherwise. A stream shorter than 4 bytes is an error
// (*IOError wrapping io.ErrUnexpectedEOF or io.EOF), and r isn't rewound.
func Detect(r io.ReadSeeker, allowRaw bool) (Format, error) {
	var magic [magicLen]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return None, ioError("read magic", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return None, ioError("rewind", err)
	}

	if f, ok := Sniff(magic[:]); ok {
		return f, nil
	}
	if allowRaw {
		return None, nil
	}
	return None, ErrUnknownFormat
}
