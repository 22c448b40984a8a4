package compressedio

import (
	"io"
)

// Stats reports the sizes involved in a conversion made by a Transcoder.
type Stats struct {
	In  Format // format of the source
	Out Format // format of the destination

	BytesIn  int64 // bytes consumed from the source, including read-ahead
	BytesOut int64 // bytes written to the destination
	Size     int64 // size of the uncompressed stream
}

// Ratio returns the ratio between compressed and uncompressed size of the
// destination stream, or 0 for an empty stream.
func (s Stats) Ratio() float64 {
	if s.Size == 0 {
		return 0
	}
	return float64(s.BytesOut) / float64(s.Size)
}

// statsReadSeeker tracks the position in the underlying io.ReadSeeker, which
// is also the number of bytes consumed from it since the last rewind.
type statsReadSeeker struct {
	rs  io.ReadSeeker
	pos int64
}

func (s *statsReadSeeker) Read(p []byte) (int, error) {
	n, err := s.rs.Read(p)
	s.pos += int64(n)
	return n, err
}

func (s *statsReadSeeker) Seek(offset int64, whence int) (int64, error) {
	pos, err := s.rs.Seek(offset, whence)
	if err == nil {
		s.pos = pos
	}
	return pos, err
}

// statsWriter counts the bytes written to the underlying io.Writer.
type statsWriter struct {
	w io.Writer
	n int64
}

func (s *statsWriter) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	s.n += int64(n)
	return n, err
}

// Flush forwards to the underlying writer, so that Writer.Flush reaches it.
func (s *statsWriter) Flush() error {
	return flushSink(s.w)
}
