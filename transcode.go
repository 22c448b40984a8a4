package compressedio

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// DefaultBufferSize is the size of the buffer used to copy data between
// streams, when none is configured.
const DefaultBufferSize = 128 * 1024

// A Transcoder converts streams between formats.
type Transcoder struct {
	// AllowRaw makes sources with no recognized magic be handled as
	// uncompressed data, rather than failing with ErrUnknownFormat.
	AllowRaw bool

	// BufferSize is the size of the copy buffer, DefaultBufferSize if 0.
	BufferSize int
}

// Transcode decompresses src, whatever its format, and writes it to dst
// compressed with format to. dst is fully written, including the container
// trailer, when Transcode returns without error.
func (t *Transcoder) Transcode(dst io.Writer, src io.ReadSeeker, to Format) (Stats, error) {
	return t.transcode(dst, src, func(Format) Format { return to })
}

// Recompress decompresses src and compresses it again into dst, with the same
// format src has been detected to be in. This is typically used after the
// decompressed data has been modified.
func (t *Transcoder) Recompress(dst io.Writer, src io.ReadSeeker) (Stats, error) {
	return t.transcode(dst, src, func(f Format) Format { return f })
}

func (t *Transcoder) transcode(dst io.Writer, src io.ReadSeeker, outFormat func(Format) Format) (Stats, error) {
	srs := &statsReadSeeker{rs: src}
	r, err := NewReader(srs, t.AllowRaw)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()

	st := Stats{In: r.Format(), Out: outFormat(r.Format())}

	sw := &statsWriter{w: dst}
	w, err := NewWriter(sw, st.Out)
	if err != nil {
		return st, err
	}
	defer w.Close()

	bufsize := t.BufferSize
	if bufsize <= 0 {
		bufsize = DefaultBufferSize
	}
	st.Size, err = io.CopyBuffer(w, r, make([]byte, bufsize))
	if err != nil {
		return st, fmt.Errorf("transcoding %s to %s: %w", st.In, st.Out, err)
	}
	if _, err := w.Finish(); err != nil {
		return st, err
	}

	st.BytesIn, st.BytesOut = srs.pos, sw.n

	log.WithFields(log.Fields{
		"fn":   "compressedio.Transcode",
		"in":   st.In,
		"out":  st.Out,
		"size": humanize.Bytes(uint64(st.Size)),
	}).Debug("transcoded")
	return st, nil
}
