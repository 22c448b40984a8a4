package lz4legacy

import "io"

// Reader decompresses a legacy container, block after block.
//
// Every length prefix is taken as a block record, whatever its value. The one
// exception is a last length equal to the total uncompressed size with no
// data after it, the size trailer appended by the Linux kernel build, which
// ends the stream.
//
// Reader reads ahead from the underlying reader. It is not safe for
// concurrent use.
type Reader struct {
	br  *blockReader
	buf []byte // decompressed data not returned yet
	err error
}

// NewReader returns a Reader decompressing the legacy container read from r.
// The magic is checked on the first call to Read, which returns ErrBadMagic if
// it doesn't match.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: newBlockReader(r)}
}

// Read reads up to len(p) decompressed bytes into p. It returns io.EOF at the
// end of the container.
func (r *Reader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		_, r.buf, r.err = r.br.next()
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
