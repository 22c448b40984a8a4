package compressedio

import (
	"fmt"
	"testing"

	"github.com/rasky/toml"
)

func TestSizeBytes(t *testing.T) {
	tests := []struct {
		name       string
		tomlString string
		want       SizeBytes // want value in bytes
		wantErr    bool
	}{
		{name: "int", tomlString: `131072`, want: 128 * 1024},
		{name: "float", tomlString: `4096.5`, want: 4096},
		{name: "string no unit", tomlString: `"65536"`, want: 65536},
		{name: "string IEC unit", tomlString: `"8MiB"`, want: 8 * 1024 * 1024},
		{name: "string SI unit", tomlString: `"8MB"`, want: 8 * 1000 * 1000},
		{name: "empty string", tomlString: `""`, want: 0},

		// errors
		{name: "negative int", tomlString: `-1`, wantErr: true},
		{name: "negative float", tomlString: `-0.5`, wantErr: true},
		{name: "unparsable string", tomlString: `"a lot"`, wantErr: true},
		{name: "boolean", tomlString: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val := struct{ Field SizeBytes }{}
			_, err := toml.Decode(fmt.Sprintf("\nfield = %s", tt.tomlString), &val)
			if (err != nil) != tt.wantErr {
				t.Fatalf("got: %v, wantErr: %t", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if got := val.Field; got != tt.want {
				t.Errorf("Field = SizeBytes(%v), want SizeBytes(%v)", uint64(got), uint64(tt.want))
			}
		})
	}
}

func TestSizeBytesString(t *testing.T) {
	if got, want := SizeBytes(8<<20).String(), "8.0 MiB"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
