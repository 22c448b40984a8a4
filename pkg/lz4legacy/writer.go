// Package lz4legacy writes the legacy LZ4 container, the format produced by
// `lz4 -l` and still expected by bootloaders and kernels for ramdisks.
//
// A legacy container is the 4-byte magic 02 21 4C 18 followed by block
// records, until the end of the stream:
//
//	+----------------------+--------------------------+
//	| uint32 (LE) length L | L bytes of an LZ4 block  |
//	+----------------------+--------------------------+
//
// Every block is compressed independently and holds at most BlockSize bytes
// of uncompressed data. There is no checksum nor end marker.
//
// Blocks are compressed and decompressed with the block API of
// github.com/pierrec/lz4/v4.
package lz4legacy

import (
	"encoding/binary"
	"errors"
	"io"
)

// BlockSize is the maximum number of uncompressed bytes held by a block.
// It's the only block size the legacy container supports, a Writer always
// fills blocks up to this size before emitting them.
const BlockSize = 8 << 20

// Magic is the 4-byte prefix of every legacy container.
var Magic = [4]byte{0x02, 0x21, 0x4c, 0x18}

// ErrFinished is returned when using a Writer after Finish or Close.
var ErrFinished = errors.New("lz4legacy: writer is finished")

// Writer is an io.Writer that buffers incoming data into BlockSize blocks and
// writes each full block as a length-prefixed compressed record.
//
// Callers must call Finish (or Close) once done, otherwise the last,
// partially-filled, block is never written. A Writer is not safe for
// concurrent use.
//
// A failure to write a block record leaves the container in an unknown state
// (part of the record may have reached the underlying writer), so it breaks
// the Writer: every subsequent call returns that same error, and nothing is
// ever written again.
type Writer struct {
	w      io.Writer // nil once finished
	buf    []byte    // pending uncompressed data
	filled int       // buf[:filled] is valid
	wrote  bool      // at least one block record has been written
	err    error     // sticky block write error
	zc     compressor
	hdr    [4]byte
}

// NewWriter writes the legacy magic to w and returns a Writer ready to accept
// data. It returns an error, and no Writer, if the magic can't be written.
func NewWriter(w io.Writer) (*Writer, error) {
	if _, err := w.Write(Magic[:]); err != nil {
		return nil, err
	}

	lw := &Writer{
		w:   w,
		buf: make([]byte, BlockSize),
	}
	lw.zc.init(BlockSize)
	return lw, nil
}

// Write buffers p, emitting a block record each time BlockSize bytes have
// been accumulated. The only possible errors are those occurring while
// writing a block to the underlying writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.w == nil {
		return 0, ErrFinished
	}
	if w.err != nil {
		return 0, w.err
	}

	total := len(p)
	for len(p) > 0 {
		n := copy(w.buf[w.filled:], p)
		w.filled += n
		p = p[n:]

		if err := w.writeBlock(false); err != nil {
			return total - len(p), err
		}
	}
	return total, nil
}

// Flush writes the pending block only if it's full, a partially-filled block
// is kept buffered so that flushing never fragments the stream into
// undersized blocks. Use Finish to write the last block.
//
// If the underlying writer has a Flush method, it's called afterwards.
func (w *Writer) Flush() error {
	if w.w == nil {
		return ErrFinished
	}
	if err := w.writeBlock(false); err != nil {
		return err
	}
	if f, ok := w.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Buffered returns the number of bytes waiting to be written in a block.
func (w *Writer) Buffered() int {
	return w.filled
}

// Finish writes the pending data as the final block and returns the
// underlying writer. The Writer can't be used afterwards.
//
// The final block is only written if it holds data, or if the container
// doesn't have any block yet: finishing a Writer that received no data
// produces a single record holding an empty block.
//
// On error the Writer is broken but not released, Close then reports the
// error once more and releases it.
func (w *Writer) Finish() (io.Writer, error) {
	if w.w == nil {
		return nil, ErrFinished
	}
	if err := w.writeBlock(true); err != nil {
		return nil, err
	}

	uw := w.w
	w.release()
	return uw, nil
}

// Close is the safety net for callers that don't reach Finish, typically
// through a deferred call: if the Writer hasn't been finished, it makes a
// last attempt at writing the pending block and marks the Writer as
// finished. Close on a finished Writer is a no-op.
//
// If a block write failed earlier, Close doesn't write anything and returns
// that error. In any case the Writer is marked as finished, and on error the
// pending data is lost.
func (w *Writer) Close() error {
	if w.w == nil {
		return nil
	}
	err := w.writeBlock(true)
	w.release()
	return err
}

func (w *Writer) release() {
	w.w = nil
	w.buf = nil
	w.filled = 0
	w.err = nil
	w.zc = compressor{}
}

// writeBlock compresses and writes buf[:filled] as a block record, if the
// buffer is full or if force is true. A forced write of an empty buffer is a
// no-op once a record has been written.
func (w *Writer) writeBlock(force bool) error {
	if w.err != nil {
		return w.err
	}
	if !force && w.filled < len(w.buf) {
		// Block not full yet.
		return nil
	}
	if w.filled == 0 && w.wrote {
		return nil
	}

	zbuf, err := w.zc.compress(w.buf[:w.filled])
	if err != nil {
		w.err = err
		return err
	}

	binary.LittleEndian.PutUint32(w.hdr[:], uint32(len(zbuf)))
	if _, err := w.w.Write(w.hdr[:]); err != nil {
		w.err = err
		return err
	}
	if _, err := w.w.Write(zbuf); err != nil {
		w.err = err
		return err
	}

	w.filled = 0
	w.wrote = true
	return nil
}
