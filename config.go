package compressedio

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/rasky/toml"
)

// The configuration is parsed from TOML format, with one table for the
// reading side and one for the writing side:
//
//	[input]
//	AllowRaw = true
//	BufferSize = "1MiB"
//
//	[output]
//	Format = "lz4-legacy"
//	BufferSize = "4MiB"
//
// Strings in the form ${VALUE} or $VALUE are replaced by the corresponding
// environment variable before parsing.

// Config is the whole configuration.
type Config struct {
	Input  InputConfig
	Output OutputConfig
}

// InputConfig configures how compressed streams are opened.
type InputConfig struct {
	// AllowRaw handles streams with no recognized magic as uncompressed.
	AllowRaw bool
	// BufferSize is the size of the buffer used to copy decompressed data.
	BufferSize SizeBytes
}

// OutputConfig configures how compressed streams are written.
type OutputConfig struct {
	// Format is the format of the written streams (default: gzip).
	Format Format
	// BufferSize is the size of the buffer in front of the output file.
	BufferSize SizeBytes
}

const defaultOutputBufferSize = 1 << 20

func (c *InputConfig) fillDefaults() {
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
}

func (c *OutputConfig) fillDefaults() {
	if c.BufferSize == 0 {
		c.BufferSize = defaultOutputBufferSize
	}
}

// DefaultConfig returns the configuration used when no configuration file is
// given.
func DefaultConfig() *Config {
	cfg := &Config{Output: OutputConfig{Format: Gzip}}
	cfg.Input.fillDefaults()
	cfg.Output.fillDefaults()
	return cfg
}

// Transcoder returns a Transcoder configured after the input configuration.
func (c *Config) Transcoder() *Transcoder {
	return &Transcoder{
		AllowRaw:   c.Input.AllowRaw,
		BufferSize: int(c.Input.BufferSize),
	}
}

// replaceEnvVars replaces any string in the format ${VALUE} or $VALUE with the corresponding
// $VALUE environment variable
func replaceEnvVars(f io.Reader, mapper func(string) string) (io.Reader, error) {
	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %v", err)
	}

	return bytes.NewReader([]byte(os.Expand(buf.String(), mapper))), nil
}

// NewConfigFromToml creates a Config from a reader reading from a TOML
// configuration. Missing values are set to their default.
func NewConfigFromToml(f io.Reader) (*Config, error) {
	f, err := replaceEnvVars(f, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("can't replace config with env vars: %v", err)
	}

	cfg := DefaultConfig()
	md, err := toml.DecodeReader(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	// Abort if there's any unknown key in the configuration file
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("invalid keys in configuration file: %v", keys)
	}

	cfg.Input.fillDefaults()
	cfg.Output.fillDefaults()
	return cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf("input: allowraw=%t buffer=%s, output: format=%s buffer=%s",
		c.Input.AllowRaw, c.Input.BufferSize, c.Output.Format, c.Output.BufferSize)
}
