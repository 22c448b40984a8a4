package compressedio

import (
	"fmt"
	"strings"
)

// Format identifies the container format of a compressed stream.
type Format int

// List of container formats supported by this package.
const (
	// None is the absence of compression, data is passed through.
	None Format = iota
	// Gzip is a standard gzip stream.
	Gzip
	// LegacyLz4 is the legacy LZ4 container, made of independent 8MiB
	// blocks (see package lz4legacy).
	LegacyLz4
)

var formatNames = map[Format]string{
	None:      "none",
	Gzip:      "gzip",
	LegacyLz4: "lz4-legacy",
}

// formatAliases maps names accepted by ParseFormat to formats.
var formatAliases = map[string]Format{
	"none":       None,
	"raw":        None,
	"gzip":       Gzip,
	"gz":         Gzip,
	"lz4-legacy": LegacyLz4,
	"lz4legacy":  LegacyLz4,
	"lz4":        LegacyLz4,
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the file name extension conventionally used for f,
// including the leading dot. It's empty for None.
func (f Format) Extension() string {
	switch f {
	case Gzip:
		return ".gz"
	case LegacyLz4:
		return ".lz4"
	}
	return ""
}

func (f Format) valid() bool {
	_, ok := formatNames[f]
	return ok
}

// ParseFormat returns the Format named s (case insensitive). Recognized
// names are "none" (or "raw"), "gzip" (or "gz") and "lz4-legacy" (or "lz4").
func ParseFormat(s string) (Format, error) {
	f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return None, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalTOML allows a Format to be given by name in a TOML file.
func (f *Format) UnmarshalTOML(p interface{}) error {
	s, ok := p.(string)
	if !ok {
		return fmt.Errorf("unexpected type (%T) for format: value must be a string", p)
	}
	return f.UnmarshalText([]byte(s))
}
