package lz4legacy

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// ErrBadMagic is returned when a container doesn't start with Magic.
var ErrBadMagic = errors.New("lz4legacy: not a legacy lz4 container")

// magic32 is Magic, read as a little endian block length. Decoders treat such
// a length as the start of a concatenated container.
var magic32 = binary.LittleEndian.Uint32(Magic[:])

// BlockInfo describes a block record of a legacy container.
type BlockInfo struct {
	Offset         int64 // offset of the record length prefix in the container
	CompressedSize int   // size of the compressed block, excluding the prefix
	Size           int   // size of the uncompressed block
}

// Blocks reads a whole legacy container from r and returns the list of its
// block records. Each block is decompressed to verify it and to measure its
// uncompressed size, but the decompressed data is discarded.
//
// Concatenated containers (a magic found where a block length is expected)
// are walked through transparently.
func Blocks(r io.Reader) ([]BlockInfo, error) {
	br := newBlockReader(r)

	var blocks []BlockInfo
	for {
		b, _, err := br.next()
		if err == io.EOF {
			return blocks, nil
		}
		if err != nil {
			return blocks, err
		}
		blocks = append(blocks, b)
	}
}

// blockReader reads and decompresses the block records of a legacy container,
// one at a time.
type blockReader struct {
	r       *bufio.Reader
	started bool  // magic has been read
	off     int64 // offset of the next record
	total   int64 // uncompressed bytes so far
	hdr     [4]byte
	zbuf    []byte
	dst     []byte
}

func newBlockReader(r io.Reader) *blockReader {
	return &blockReader{r: bufio.NewReader(r)}
}

func (br *blockReader) readMagic() error {
	if _, err := io.ReadFull(br.r, br.hdr[:]); err != nil {
		return fmt.Errorf("lz4legacy: reading magic: %w", err)
	}
	if br.hdr != Magic {
		return ErrBadMagic
	}
	br.off = int64(len(Magic))
	br.dst = make([]byte, BlockSize)
	return nil
}

// next reads the next block record and returns it along with its decompressed
// content, which is only valid until the following call. It returns io.EOF
// once the container has been entirely read.
//
// A last length equal to the total uncompressed size, with no data after it,
// is the size trailer appended by the Linux kernel build, and ends the
// container.
func (br *blockReader) next() (BlockInfo, []byte, error) {
	if !br.started {
		if err := br.readMagic(); err != nil {
			return BlockInfo{}, nil, err
		}
		br.started = true
	}

	for {
		off := br.off
		_, err := io.ReadFull(br.r, br.hdr[:])
		if err == io.EOF {
			return BlockInfo{}, nil, io.EOF
		}
		if err != nil {
			return BlockInfo{}, nil, fmt.Errorf("lz4legacy: block at offset %d: reading length: %w", off, err)
		}
		br.off += int64(len(br.hdr))

		zlen := binary.LittleEndian.Uint32(br.hdr[:])
		if zlen == magic32 {
			continue
		}
		if int64(zlen) > int64(lz4.CompressBlockBound(BlockSize)) {
			return BlockInfo{}, nil, fmt.Errorf("lz4legacy: block at offset %d: invalid length %d", off, zlen)
		}

		if cap(br.zbuf) < int(zlen) {
			br.zbuf = make([]byte, zlen)
		}
		br.zbuf = br.zbuf[:zlen]
		if _, err := io.ReadFull(br.r, br.zbuf); err != nil {
			if err == io.EOF {
				if br.total > 0 && int64(zlen) == br.total {
					return BlockInfo{}, nil, io.EOF
				}
				err = io.ErrUnexpectedEOF
			}
			return BlockInfo{}, nil, fmt.Errorf("lz4legacy: block at offset %d: reading data: %w", off, err)
		}

		n, err := lz4.UncompressBlock(br.zbuf, br.dst)
		if err != nil {
			return BlockInfo{}, nil, fmt.Errorf("lz4legacy: block at offset %d: %w", off, err)
		}
		br.off += int64(zlen)
		br.total += int64(n)

		b := BlockInfo{Offset: off, CompressedSize: int(zlen), Size: n}
		return b, br.dst[:n], nil
	}
}
