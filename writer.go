package compressedio

import (
	"io"

	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"

	"github.com/AdRoll/compressedio/pkg/lz4legacy"
)

// Writer compresses data written to it in the format chosen at creation and
// writes it to an underlying io.Writer, the sink.
//
// Finish must be called once all data has been written: it writes any
// buffered data and the trailing container metadata, and gives the sink back.
// Close can be deferred as a safety net, it's a no-op after Finish.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	format Format
	w      io.Writer
	gz     *gzip.Writer
	lz     *lz4legacy.Writer
	done   bool
}

// NewWriter returns a Writer compressing into w with format f. Gzip streams
// use the default compression level. For LegacyLz4, the container magic is
// written to w right away, and an error is returned if that fails.
func NewWriter(w io.Writer, f Format) (*Writer, error) {
	cw := &Writer{format: f, w: w}
	switch f {
	case None:
	case Gzip:
		gz, err := gzip.NewWriterLevel(w, gzip.DefaultCompression)
		if err != nil {
			return nil, err
		}
		cw.gz = gz
	case LegacyLz4:
		lz, err := lz4legacy.NewWriter(w)
		if err != nil {
			return nil, ioError("write magic", err)
		}
		cw.lz = lz
	default:
		return nil, ErrUnknownFormat
	}
	return cw, nil
}

// Format returns the format the Writer produces.
func (w *Writer) Format() Format {
	return w.format
}

// Write compresses p. Depending on the format, compressed data may be
// buffered until a later Write, Flush or Finish.
func (w *Writer) Write(p []byte) (int, error) {
	if w.done {
		return 0, ErrClosed
	}

	var (
		n   int
		err error
	)
	switch w.format {
	case None:
		n, err = w.w.Write(p)
	case Gzip:
		n, err = w.gz.Write(p)
	case LegacyLz4:
		n, err = w.lz.Write(p)
	}
	return n, ioError("write", err)
}

// Flush writes pending compressed data to the sink, to the extent the format
// allows it: a gzip stream is sync-flushed, while a LegacyLz4 stream only
// writes its pending block if it's full, never an undersized one.
// If the sink has a Flush method, it's called too.
func (w *Writer) Flush() error {
	if w.done {
		return ErrClosed
	}

	var err error
	switch w.format {
	case None:
		err = flushSink(w.w)
	case Gzip:
		if err = w.gz.Flush(); err == nil {
			err = flushSink(w.w)
		}
	case LegacyLz4:
		// lz4legacy.Writer flushes the sink itself.
		err = w.lz.Flush()
	}
	return ioError("flush", err)
}

func flushSink(w io.Writer) error {
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Finish writes all buffered data and the container trailer, if any (the
// gzip footer, the last LegacyLz4 block), then returns the sink. The Writer
// can't be used afterwards.
func (w *Writer) Finish() (io.Writer, error) {
	if w.done {
		return nil, ErrClosed
	}

	var err error
	switch w.format {
	case None:
	case Gzip:
		err = w.gz.Close()
	case LegacyLz4:
		_, err = w.lz.Finish()
	}
	if err != nil {
		return nil, ioError("finish", err)
	}

	sink := w.w
	w.release()
	return sink, nil
}

// Close finishes the Writer if that hasn't been done yet, discarding the
// sink. Contrary to Finish, the Writer is released even on error.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}

	var err error
	switch w.format {
	case None:
	case Gzip:
		err = w.gz.Close()
	case LegacyLz4:
		if n := w.lz.Buffered(); n > 0 {
			log.WithFields(log.Fields{"fn": "compressedio.Writer.Close", "pending": n}).Debug("writing last block of unfinished writer")
		}
		err = w.lz.Close()
	}
	w.release()
	return ioError("close", err)
}

func (w *Writer) release() {
	w.done = true
	w.gz = nil
	w.lz = nil
	w.w = nil
}
