package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/AdRoll/compressedio"
	"github.com/AdRoll/compressedio/pkg/lz4legacy"
)

// env is what commands run with.
type env struct {
	cfg    *compressedio.Config
	stdout io.Writer
}

type command struct {
	name string
	args string
	help string

	minArgs, maxArgs int // maxArgs < 0 means no limit
	run              func(e *env, args []string) error
}

func (c *command) validArgs(n int) bool {
	return n >= c.minArgs && (c.maxArgs < 0 || n <= c.maxArgs)
}

var commands = []command{
	{
		name: "detect", args: "FILE...", minArgs: 1, maxArgs: -1,
		help: "print the compression format of each file",
		run:  detectCmd,
	},
	{
		name: "compress", args: "IN OUT", minArgs: 2, maxArgs: 2,
		help: "compress IN into OUT with the configured output format",
		run:  compressCmd,
	},
	{
		name: "decompress", args: "IN OUT", minArgs: 2, maxArgs: 2,
		help: "decompress IN, whatever its format, into OUT",
		run:  decompressCmd,
	},
	{
		name: "recompress", args: "IN OUT", minArgs: 2, maxArgs: 2,
		help: "decompress IN and compress it again into OUT, with the same format",
		run:  recompressCmd,
	},
	{
		name: "inspect", args: "FILE", minArgs: 1, maxArgs: 1,
		help: "list the blocks of a legacy lz4 file",
		run:  inspectCmd,
	},
}

func findCommand(name string) (*command, bool) {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i], true
		}
	}
	return nil, false
}

func detectCmd(e *env, args []string) error {
	tw := tabwriter.NewWriter(e.stdout, 0, 8, 2, ' ', 0)
	for _, fname := range args {
		format, size, err := detectFile(fname, e.cfg.Input.AllowRaw)
		if err != nil {
			return fmt.Errorf("%s: %w", fname, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", fname, format, humanize.IBytes(uint64(size)))
	}
	return tw.Flush()
}

func detectFile(fname string, allowRaw bool) (compressedio.Format, int64, error) {
	f, err := os.Open(fname)
	if err != nil {
		return compressedio.None, 0, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return compressedio.None, 0, err
	}
	format, err := compressedio.Detect(f, allowRaw)
	return format, fi.Size(), err
}

func compressCmd(e *env, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(args[1], e.cfg.Output.BufferSize)
	if err != nil {
		return err
	}
	defer out.Close()

	w, err := compressedio.NewWriter(out, e.cfg.Output.Format)
	if err != nil {
		return err
	}
	defer w.Close()

	n, err := io.CopyBuffer(w, in, make([]byte, e.cfg.Input.BufferSize))
	if err != nil {
		return err
	}
	if _, err := w.Finish(); err != nil {
		return err
	}
	if err := out.commit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"in":     args[0],
		"out":    args[1],
		"format": e.cfg.Output.Format,
		"size":   humanize.IBytes(uint64(n)),
		"csize":  humanize.IBytes(uint64(out.n)),
	}).Info("compressed")
	return nil
}

func decompressCmd(e *env, args []string) error {
	return transcodeFile(e, args[0], args[1], func(tc *compressedio.Transcoder, dst io.Writer, src io.ReadSeeker) (compressedio.Stats, error) {
		return tc.Transcode(dst, src, compressedio.None)
	})
}

func recompressCmd(e *env, args []string) error {
	return transcodeFile(e, args[0], args[1], func(tc *compressedio.Transcoder, dst io.Writer, src io.ReadSeeker) (compressedio.Stats, error) {
		return tc.Recompress(dst, src)
	})
}

type transcodeFunc func(tc *compressedio.Transcoder, dst io.Writer, src io.ReadSeeker) (compressedio.Stats, error)

func transcodeFile(e *env, inName, outName string, transcode transcodeFunc) error {
	in, err := os.Open(inName)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(outName, e.cfg.Output.BufferSize)
	if err != nil {
		return err
	}
	defer out.Close()

	st, err := transcode(e.cfg.Transcoder(), out, in)
	if err != nil {
		return err
	}
	if err := out.commit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"in":    inName,
		"out":   outName,
		"from":  st.In,
		"to":    st.Out,
		"size":  humanize.IBytes(uint64(st.Size)),
		"ratio": fmt.Sprintf("%.3f", st.Ratio()),
	}).Info("transcoded")
	return nil
}

func inspectCmd(e *env, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	blocks, err := lz4legacy.Blocks(f)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "block\toffset\tcompressed\tsize\t")
	var total uint64
	for i, b := range blocks {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t\n", i, b.Offset, b.CompressedSize, b.Size)
		total += uint64(b.Size)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.stdout, "%d blocks, %s uncompressed\n", len(blocks), humanize.IBytes(total))
	return err
}

// output is a buffered output file, or standard output if the name is "-".
type output struct {
	*bufio.Writer
	f *os.File
	n int64 // bytes written
}

func createOutput(fname string, bufsize compressedio.SizeBytes) (*output, error) {
	f := os.Stdout
	if fname != "-" {
		var err error
		if f, err = os.Create(fname); err != nil {
			return nil, err
		}
	}
	o := &output{f: f}
	o.Writer = bufio.NewWriterSize(countWriter{o}, int(bufsize))
	return o, nil
}

type countWriter struct{ o *output }

func (cw countWriter) Write(p []byte) (int, error) {
	n, err := cw.o.f.Write(p)
	cw.o.n += int64(n)
	return n, err
}

// commit flushes buffered data and closes the file.
func (o *output) commit() error {
	if err := o.Flush(); err != nil {
		return err
	}
	return o.Close()
}

// Close closes the file, unless it's standard output. It's safe to call
// Close multiple times.
func (o *output) Close() error {
	if o.f == nil || o.f == os.Stdout {
		return nil
	}
	f := o.f
	o.f = nil
	return f.Close()
}
