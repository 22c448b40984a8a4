package compressedio

import (
	"io"

	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"

	"github.com/AdRoll/compressedio/pkg/lz4legacy"
)

// Reader decompresses a stream whose format has been detected from its magic
// bytes. Depending on the detected format, reads are forwarded to the source
// itself (None), to a gzip decoder (Gzip) or to a legacy lz4 decoder (LegacyLz4).
// The format is fixed once the Reader is created.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	format Format
	src    io.ReadSeeker
	gz     *gzip.Reader
	lz     *lz4legacy.Reader
	done   bool
}

// NewReader detects the format of src (see Detect) and returns a Reader
// decompressing it. src must be positioned at the start of the stream. If the
// format can't be detected, NewReader returns an error and no Reader.
func NewReader(src io.ReadSeeker, allowRaw bool) (*Reader, error) {
	f, err := Detect(src, allowRaw)
	if err != nil {
		return nil, err
	}

	r := &Reader{format: f, src: src}
	switch f {
	case None:
	case Gzip:
		gz, err := gzip.NewReader(src)
		if err != nil {
			return nil, ioError("gzip header", err)
		}
		// Only decode the first member, any trailing data (e.g padding)
		// is ignored.
		gz.Multistream(false)
		r.gz = gz
	case LegacyLz4:
		r.lz = lz4legacy.NewReader(src)
	}

	log.WithFields(log.Fields{"fn": "compressedio.NewReader", "format": f}).Debug("format detected")
	return r, nil
}

// Open is like NewReader but also returns the detected format.
func Open(src io.ReadSeeker, allowRaw bool) (*Reader, Format, error) {
	r, err := NewReader(src, allowRaw)
	if err != nil {
		return nil, None, err
	}
	return r, r.format, nil
}

// Format returns the format detected when the Reader was created.
func (r *Reader) Format() Format {
	return r.format
}

// Read reads up to len(p) decompressed bytes into p. It returns io.EOF at the
// end of the decompressed stream.
func (r *Reader) Read(p []byte) (int, error) {
	if r.done {
		return 0, ErrClosed
	}

	var (
		n   int
		err error
	)
	switch r.format {
	case None:
		n, err = r.src.Read(p)
	case Gzip:
		n, err = r.gz.Read(p)
	case LegacyLz4:
		n, err = r.lz.Read(p)
	}

	if err != nil && err != io.EOF {
		err = ioError("read", err)
	}
	return n, err
}

// Unwrap returns the source the Reader has been created with, the Reader
// can't be used afterwards.
//
// The position of the returned source is unspecified after reading from a
// Gzip or LegacyLz4 Reader, since decoders read ahead of what they return:
// callers must seek before reusing it.
func (r *Reader) Unwrap() io.ReadSeeker {
	src := r.src
	r.release()
	return src
}

// Close releases the resources held by the decoder. The source is not closed.
func (r *Reader) Close() error {
	if r.done {
		return nil
	}

	var err error
	if r.gz != nil {
		err = r.gz.Close()
	}
	r.release()
	return ioError("close", err)
}

func (r *Reader) release() {
	r.done = true
	r.gz = nil
	r.lz = nil
	r.src = nil
}
