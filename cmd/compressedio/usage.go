package main

import (
	"io"
	"os"
	"text/template"

	flag "github.com/spf13/pflag"
)

var programUsageTemplate = template.Must(template.New("Program usage").Parse(`
compressedio version: {{ .Build }}

Usage: {{ .ExecName }} [options] COMMAND ARGS...

Formats are detected from the magic bytes of the inputs, outputs are written
with the format given with --format or in the [output] configuration table.
OUT can be "-" for standard output.

Options:
{{ .Defaults }}
Commands:
{{ range .Commands }}
  {{ printf "%-28s" (print .Name " " .Args) }} {{ .Help }}{{ end }}
`))

func displayProgramUsage(w io.Writer, fs *flag.FlagSet) {
	// Structure program usage sections
	type commandUsage struct {
		Name, Args, Help string
	}
	type programUsage struct {
		Build    string
		ExecName string
		Defaults string
		Commands []commandUsage
	}

	usage := programUsage{
		Build:    BuildVersion,
		ExecName: os.Args[0],
		Defaults: fs.FlagUsages(),
	}
	for _, c := range commands {
		usage.Commands = append(usage.Commands, commandUsage{Name: c.name, Args: c.args, Help: c.help})
	}

	// Inject program usage data into message template
	if err := programUsageTemplate.Execute(w, &usage); err != nil {
		panic(err)
	}
}
