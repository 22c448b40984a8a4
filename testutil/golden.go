package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"testing"
)

var UpdateGolden = flag.Bool("update", false, "update golden files")

// DiffWithGolden is a test helper that compares the src bytes with a file content whose path
// is provided in the 'golden' argument. If UpdateGolden flag is true, than the golden
// file is updated with the provided new content in 'src'.
func DiffWithGolden(t *testing.T, src []byte, golden string) {
	t.Helper()

	// update golden files if necessary
	if *UpdateGolden {
		if err := os.WriteFile(golden, src, 0644); err != nil {
			t.Errorf("can't update golden file %s: %v", golden, err)
		}
		return
	}

	// get golden
	goldbuf, err := os.ReadFile(golden)
	if err != nil {
		t.Errorf("can't read golden file %s: %v", golden, err)
		return
	}

	DiffBytes(t, golden, "actual", goldbuf, src)
}

// DiffBytes fails the test and shows the first difference between a and b, if
// any. Compressed streams are binary so the difference is shown as an offset
// and a hex dump of the surrounding bytes.
func DiffBytes(t *testing.T, aname, bname string, a, b []byte) {
	t.Helper()

	var buf bytes.Buffer // holding long error message

	// compare lengths
	if len(a) != len(b) {
		fmt.Fprintf(&buf, "\ndifferent lengths: len(%s) = %d, len(%s) = %d", aname, len(a), bname, len(b))
	}

	// compare contents
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			fmt.Fprintf(&buf, "\n%s at offset %d:\n% x", aname, i, window(a, i))
			fmt.Fprintf(&buf, "\n%s at offset %d:\n% x", bname, i, window(b, i))
			fmt.Fprintf(&buf, "\n\n")
			break
		}
	}

	if buf.Len() > 0 {
		t.Error(buf.String())
	}
}

// window returns up to 16 bytes of buf starting at offs.
func window(buf []byte, offs int) []byte {
	end := offs + 16
	if end > len(buf) {
		end = len(buf)
	}
	return buf[offs:end]
}
