package testutil

import (
	"errors"
	"io"
	"math/rand"
	"testing"

	log "github.com/sirupsen/logrus"
)

// DisableLogging is a test helper that disable logging (in fact it sets its
// level to panic). It returns a function which when called, resets it to its
// previous level. Its useful to be called as follows in test/benchmarks:
//
//	func TestFoo(t *testing.T) {
//	    defer DisableLogging()()
//
//	    // logging is disabled for the whole test
//	}
func DisableLogging() (reset func()) {
	lvl := log.GetLevel()
	log.SetLevel(log.PanicLevel)
	return func() { log.SetLevel(lvl) }
}

// SetLogLevel sets the global log level for the execution of the current tb.
// Though setting the log level is safe for use from concurrent goroutines, it's
// not advised to use SetLogLevel in parallel tests/benchmark, i.e. using
// t.Parallel().
func SetLogLevel(tb testing.TB, level log.Level) {
	cur := log.GetLevel()
	log.SetLevel(level)
	tb.Cleanup(func() { log.SetLevel(cur) })
}

// Payload returns n bytes of deterministic, compressible, data.
func Payload(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i%251) ^ byte(i>>16)
	}
	return buf
}

// RandomPayload returns n bytes of deterministic, incompressible, data.
func RandomPayload(n int) []byte {
	rnd := rand.New(rand.NewSource(int64(n)))
	buf := make([]byte, n)
	rnd.Read(buf)
	return buf
}

// ErrInjected is the error returned by the failing readers and writers of this
// package.
var ErrInjected = errors.New("injected failure")

// FailingWriter is an io.Writer that accepts N bytes, then fails with
// ErrInjected.
type FailingWriter struct {
	N int
}

func (fw *FailingWriter) Write(p []byte) (int, error) {
	if len(p) > fw.N {
		n := fw.N
		fw.N = 0
		return n, ErrInjected
	}
	fw.N -= len(p)
	return len(p), nil
}

// FailingSeeker wraps an io.ReadSeeker, whose Seek method always fails with
// ErrInjected.
type FailingSeeker struct {
	io.ReadSeeker
}

func (FailingSeeker) Seek(int64, int) (int64, error) {
	return 0, ErrInjected
}
