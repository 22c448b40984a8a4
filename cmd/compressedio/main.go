// Command compressedio detects, compresses, decompresses and recompresses
// streams in the formats supported by package compressedio: raw, gzip and
// legacy lz4.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/AdRoll/compressedio"
)

// Use `-ldflags="-X 'main.BuildVersion=someversion'"` when building to set this value
var BuildVersion = "-- unknown --"

var errUsage = errors.New("invalid usage")

type options struct {
	config  string
	format  string
	raw     bool
	version bool
	verbose bool
	quiet   bool
	pretty  bool
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("compressedio", flag.ContinueOnError)
	fs.StringVarP(&opts.config, "config", "c", "", "TOML configuration `file`")
	fs.StringVarP(&opts.format, "format", "f", "", "output `format` of the compress command: none, gzip or lz4-legacy (overrides configuration)")
	fs.BoolVar(&opts.raw, "raw", false, "handle inputs with no recognized magic as uncompressed (overrides configuration)")
	fs.BoolVar(&opts.version, "version", false, "print build version number")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging (debug level)")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "quiet logging (warn level)")
	fs.BoolVar(&opts.pretty, "pretty", false, "human-readable logging (unstructured logging)")
	return fs
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stderr)

	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		log.WithError(err).Fatal("fatal error")
	}
}

// run parses the command line and runs the requested command, writing
// command results to stdout and usage messages to stderr.
func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := newFlagSet(&opts)
	fs.SetOutput(stderr)
	fs.Usage = func() { displayProgramUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.version {
		fmt.Fprintf(stdout, "compressedio version: %s\n", BuildVersion)
		return nil
	}

	if opts.verbose && opts.quiet {
		return fmt.Errorf("logging can't both be verbose and quiet!")
	}
	if opts.verbose {
		log.SetLevel(log.DebugLevel)
	}
	if opts.quiet {
		log.SetLevel(log.WarnLevel)
	}
	if opts.pretty {
		log.SetFormatter(&log.TextFormatter{})
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return errUsage
	}
	cmd, ok := findCommand(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}
	cmdArgs := fs.Args()[1:]
	if !cmd.validArgs(len(cmdArgs)) {
		fmt.Fprintf(stderr, "usage: %s %s\n", cmd.name, cmd.args)
		return errUsage
	}

	cfg, err := loadConfig(&opts)
	if err != nil {
		return err
	}
	log.WithField("c", cfg.String()).Debug("configuration")

	return cmd.run(&env{cfg: cfg, stdout: stdout}, cmdArgs)
}

// loadConfig reads the configuration file, if any, and applies the command
// line overrides.
func loadConfig(opts *options) (*compressedio.Config, error) {
	cfg := compressedio.DefaultConfig()
	if opts.config != "" {
		f, err := os.Open(opts.config)
		if err != nil {
			return nil, fmt.Errorf("errors opening config: %v", err)
		}
		defer f.Close()

		if cfg, err = compressedio.NewConfigFromToml(f); err != nil {
			return nil, err
		}
	}

	if opts.format != "" {
		format, err := compressedio.ParseFormat(opts.format)
		if err != nil {
			return nil, err
		}
		cfg.Output.Format = format
	}
	if opts.raw {
		cfg.Input.AllowRaw = true
	}
	return cfg, nil
}
