package compressedio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/AdRoll/compressedio/pkg/lz4legacy"
	"github.com/AdRoll/compressedio/testutil"
)

var allFormats = []Format{None, Gzip, LegacyLz4}

func encode(t *testing.T, in []byte, f Format) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, f)
	if err != nil {
		t.Fatalf("NewWriter(%v): %v", f, err)
	}
	n, err := w.Write(in)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(in) {
		t.Fatalf("Write returned %d, want %d", n, len(in))
	}
	sink, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if sink != io.Writer(&buf) {
		t.Fatalf("Finish returned %v, want the sink", sink)
	}
	return buf.Bytes()
}

func decode(t *testing.T, enc []byte) ([]byte, Format) {
	t.Helper()

	r, f, err := Open(bytes.NewReader(enc), true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	dec, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return dec, f
}

func TestRoundTrip(t *testing.T) {
	sizes := []int{4, 1000, 1 << 20, lz4legacy.BlockSize + 1}

	for _, f := range allFormats {
		for _, size := range sizes {
			in := testutil.Payload(size)
			enc := encode(t, in, f)

			dec, detected := decode(t, enc)
			if detected != f {
				t.Errorf("%v/%d: detected format %v", f, size, detected)
			}
			if !bytes.Equal(dec, in) {
				t.Errorf("%v/%d: decoded %d bytes which differ from the original", f, size, len(dec))
			}
		}
	}
}

func TestRoundTripIncompressible(t *testing.T) {
	in := testutil.RandomPayload(lz4legacy.BlockSize + 100)

	for _, f := range allFormats {
		t.Run(f.String(), func(t *testing.T) {
			dec, detected := decode(t, encode(t, in, f))
			if detected != f {
				t.Errorf("detected format %v", detected)
			}
			if !bytes.Equal(dec, in) {
				t.Errorf("decoded %d bytes which differ from the original", len(dec))
			}
		})
	}
}

func TestRoundTripEmpty(t *testing.T) {
	// An empty raw stream can't be detected, skip None.
	for _, f := range []Format{Gzip, LegacyLz4} {
		dec, detected := decode(t, encode(t, nil, f))
		if detected != f {
			t.Errorf("%v: detected format %v", f, detected)
		}
		if len(dec) != 0 {
			t.Errorf("%v: decoded %d bytes, want 0", f, len(dec))
		}
	}
}

func TestWriterLegacyGolden(t *testing.T) {
	enc := encode(t, []byte("hello world"), LegacyLz4)
	testutil.DiffWithGolden(t, enc, "testdata/hello.txt.lz4")
}

func TestWriterLegacyEmpty(t *testing.T) {
	enc := encode(t, nil, LegacyLz4)

	want := []byte{0x02, 0x21, 0x4c, 0x18, 0x01, 0x00, 0x00, 0x00, 0x00}
	testutil.DiffBytes(t, "empty stream", "want", enc, want)
}

func TestWriterLegacyBlocks(t *testing.T) {
	tests := []struct {
		name string
		size int
		want []int
	}{
		{name: "one full block", size: lz4legacy.BlockSize, want: []int{lz4legacy.BlockSize}},
		{name: "full block plus one byte", size: lz4legacy.BlockSize + 1, want: []int{lz4legacy.BlockSize, 1}},
		{name: "two full blocks", size: 2 * lz4legacy.BlockSize, want: []int{lz4legacy.BlockSize, lz4legacy.BlockSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := encode(t, testutil.Payload(tt.size), LegacyLz4)

			blocks, err := lz4legacy.Blocks(bytes.NewReader(enc))
			if err != nil {
				t.Fatal(err)
			}
			if len(blocks) != len(tt.want) {
				t.Fatalf("got %d blocks, want %d", len(blocks), len(tt.want))
			}
			for i, b := range blocks {
				if b.Size != tt.want[i] {
					t.Errorf("block %d holds %d bytes, want %d", i, b.Size, tt.want[i])
				}
			}
		})
	}
}

func TestWriterCloseWithoutFinish(t *testing.T) {
	testutil.SetLogLevel(t, log.DebugLevel)

	for _, f := range allFormats {
		t.Run(f.String(), func(t *testing.T) {
			in := testutil.Payload(5000)

			var buf bytes.Buffer
			w, err := NewWriter(&buf, f)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := w.Write(in); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			dec, _ := decode(t, buf.Bytes())
			if !bytes.Equal(dec, in) {
				t.Errorf("decoded %d bytes which differ from the original", len(dec))
			}

			if _, err := w.Write(in); !errors.Is(err, ErrClosed) {
				t.Errorf("Write after Close: got err = %v, want %v", err, ErrClosed)
			}
			if _, err := w.Finish(); !errors.Is(err, ErrClosed) {
				t.Errorf("Finish after Close: got err = %v, want %v", err, ErrClosed)
			}
			if err := w.Close(); err != nil {
				t.Errorf("second Close: %v", err)
			}
		})
	}
}

func TestWriterFinishTwice(t *testing.T) {
	w, err := NewWriter(io.Discard, Gzip)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Finish(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Finish(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Finish: got err = %v, want %v", err, ErrClosed)
	}
	if err := w.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("Flush after Finish: got err = %v, want %v", err, ErrClosed)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close after Finish: %v", err)
	}
}

func TestWriterFinishError(t *testing.T) {
	// The sink fails in the middle of the last block record.
	fw := &testutil.FailingWriter{N: len(lz4legacy.Magic) + 2}
	w, err := NewWriter(fw, LegacyLz4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hello world")); err != nil {
		t.Fatal(err)
	}

	_, err = w.Finish()
	if !errors.Is(err, testutil.ErrInjected) {
		t.Errorf("Finish: got err = %v, want %v", err, testutil.ErrInjected)
	}
	var ioerr *IOError
	if !errors.As(err, &ioerr) {
		t.Errorf("Finish: got err = %v (%T), want *IOError", err, err)
	}

	// Close doesn't retry the record and reports the failure.
	if err := w.Close(); !errors.Is(err, testutil.ErrInjected) {
		t.Errorf("Close: got err = %v, want %v", err, testutil.ErrInjected)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestNewWriterErrors(t *testing.T) {
	if _, err := NewWriter(io.Discard, Format(42)); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("invalid format: got err = %v, want %v", err, ErrUnknownFormat)
	}

	w, err := NewWriter(&testutil.FailingWriter{N: 3}, LegacyLz4)
	if !errors.Is(err, testutil.ErrInjected) {
		t.Errorf("failing sink: got err = %v, want %v", err, testutil.ErrInjected)
	}
	var ioerr *IOError
	if !errors.As(err, &ioerr) {
		t.Errorf("failing sink: got err = %v (%T), want *IOError", err, err)
	}
	if w != nil {
		t.Errorf("failing sink: got a non-nil writer")
	}
}

func TestWriterFlush(t *testing.T) {
	tests := []struct {
		format Format
		// whether the data written so far reaches the sink on flush
		flushesData bool
	}{
		{None, true},
		{Gzip, true},
		{LegacyLz4, false},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			bw := bufio.NewWriter(&buf)

			w, err := NewWriter(bw, tt.format)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := w.Write([]byte("some data to flush")); err != nil {
				t.Fatal(err)
			}
			before := buf.Len()
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}

			// The bufio.Writer is always flushed, but a partial legacy
			// block is never written on Flush.
			if bw.Buffered() != 0 {
				t.Errorf("sink still has %d buffered bytes after Flush", bw.Buffered())
			}
			grew := buf.Len() > before+len(lz4legacy.Magic)
			if tt.format != LegacyLz4 {
				grew = buf.Len() > before
			}
			if grew != tt.flushesData {
				t.Errorf("data reached the sink on Flush = %t, want %t (%d bytes)", grew, tt.flushesData, buf.Len())
			}

			if _, err := w.Finish(); err != nil {
				t.Fatal(err)
			}
			if err := bw.Flush(); err != nil {
				t.Fatal(err)
			}
			dec, _ := decode(t, buf.Bytes())
			if string(dec) != "some data to flush" {
				t.Errorf("decoded %q", dec)
			}
		})
	}
}

func TestWriterFormat(t *testing.T) {
	for _, f := range allFormats {
		w, err := NewWriter(io.Discard, f)
		if err != nil {
			t.Fatal(err)
		}
		if w.Format() != f {
			t.Errorf("Format() = %v, want %v", w.Format(), f)
		}
		w.Close()
	}
}
