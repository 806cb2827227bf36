// Command th2export converts a drawing project into a Therion th2 file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/th2-export/backend/internal/export"
	"github.com/th2-export/backend/internal/models"
	"github.com/th2-export/backend/internal/parser"
)

const helpBanner = `th2export %s

Converts a paper.js, YAML or MessagePack drawing project to Therion th2.

Usage: th2export -in drawing.json [-out drawing.th2] [-format paperjson|yaml|msgpack]

`

// pipeName is the file name that selects stdin/stdout.
const pipeName = "-"

// Version indicates the current build version.
var Version = "dev"

type options struct {
	in     string
	out    string
	format string
	stats  bool
}

func main() {
	fs := flag.NewFlagSet("th2export", flag.ExitOnError)
	opts := options{}
	fs.StringVar(&opts.in, "in", "", "Source project (- for stdin)")
	fs.StringVar(&opts.out, "out", "", "Destination th2 file (- for stdout); defaults to the source name with .th2")
	fs.StringVar(&opts.format, "format", "", "Input format: "+strings.Join(parser.GetGlobalRegistry().Names(), ", "))
	fs.BoolVar(&opts.stats, "stats", false, "Print what was exported to stderr")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if err := run(opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "th2export: %v\n", err)
		os.Exit(1)
	}
}

// run converts opts.in into opts.out.
func run(opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	if opts.in == "" {
		return errors.New("missing -in")
	}

	project, err := decodeInput(opts, stdin)
	if err != nil {
		return err
	}

	lines, stats, err := export.NewExporter(nil).Export(project)
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		if opts.in == pipeName {
			out = pipeName
		} else {
			out = strings.TrimSuffix(opts.in, filepath.Ext(opts.in)) + ".th2"
		}
	}
	if err := writeDestination(out, export.Render(lines), stdout); err != nil {
		return err
	}

	if opts.stats {
		fmt.Fprintf(stderr, "%s: %d scraps, %d points, %d lines, %d areas, %d generated ids\n",
			out, stats.Layers, stats.Points, stats.Lines, stats.Areas, stats.GeneratedIDs)
	}
	return nil
}

// decodeInput reads the project from a file, or from stdin when opts.in is
// the pipe name.
func decodeInput(opts options, stdin io.Reader) (models.Project, error) {
	registry := parser.GetGlobalRegistry()
	if opts.in != pipeName {
		return registry.DecodeFile(opts.in, opts.format)
	}

	if opts.format == "" {
		return models.Project{}, errors.New("-format is required when reading from stdin")
	}
	d, err := registry.GetDecoderByName(opts.format)
	if err != nil {
		return models.Project{}, err
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return models.Project{}, errors.New("`-` should be used with a pipe for stdin")
	}

	project, err := d.Decode(stdin)
	if err != nil {
		return models.Project{}, fmt.Errorf("decoding stdin as %s: %w", d.Name(), err)
	}
	return project, nil
}

func writeDestination(out, content string, stdout io.Writer) error {
	if out != pipeName {
		return os.WriteFile(out, []byte(content), 0644)
	}
	_, err := io.WriteString(stdout, content)
	return err
}
