package lz4legacy

import (
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

var errIncompressible = errors.New("lz4legacy: block compressor produced no output")

// a compressor is an lz4 block compressor that reuses its hash table and its
// destination buffer across blocks, so that emitting a block doesn't allocate.
//
// Blocks are always produced by the fast compressor, never lz4.CompressorHC.
type compressor struct {
	lz  lz4.Compressor
	buf []byte // re-used as destination when compressing
}

func (c *compressor) init(blockSize int) {
	c.buf = make([]byte, lz4.CompressBlockBound(blockSize))
}

// compress compresses b and returns the compressed block. The returned buffer
// is only valid until the next call to compress.
//
// An empty b is valid and results in a single-byte block (a literal-only
// sequence of length 0).
func (c *compressor) compress(b []byte) ([]byte, error) {
	// With a destination at least as large as the bound, the compressor never
	// reports b as incompressible and falls back to literals instead.
	if bound := lz4.CompressBlockBound(len(b)); len(c.buf) < bound {
		c.buf = make([]byte, bound)
	}

	n, err := c.lz.CompressBlock(b, c.buf)
	if err != nil {
		return nil, fmt.Errorf("lz4legacy: compress on src block of length %d: %w", len(b), err)
	}
	if n == 0 {
		return nil, errIncompressible
	}
	return c.buf[:n], nil
}
