// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command bindplan packs the bind groups of a TOML plan and prints the
// native layout: descriptor tables, root parameter slots and registers for
// d3d12, block bindings and texture units for gl.
//
// Usage:
//
//	bindplan [options] <plan.toml>
//
// Examples:
//
//	bindplan pipeline.toml                  # Print the packed layout
//	bindplan -backend gl pipeline.toml      # Override the plan backend
//	bindplan -normalize pipeline.toml       # Print the plan as packed
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/bindmap"
	"github.com/gogpu/bindmap/plan"
)

var (
	backend   = flag.String("backend", "", "override the plan backend (gl, d3d12)")
	normalize = flag.Bool("normalize", false, "print the packed plan as TOML")
	verbose   = flag.Bool("v", false, "log debug output to stderr")
	version   = flag.Bool("version", false, "print version")
)

const bindplanVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("bindplan version %s\n", bindplanVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no plan file specified")
		usage()
		os.Exit(1)
	}

	if *verbose {
		bindmap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := run(os.Stdout, args[0], *backend, *normalize); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, path, backendOverride string, normalized bool) error {
	f, err := plan.Load(path)
	if err != nil {
		return err
	}
	if backendOverride != "" {
		f.Backend = backendOverride
	}

	p, err := f.Build()
	if err != nil {
		return err
	}

	if normalized {
		data, err := plan.FromLayouts(p.Device.Options(), p.Groups).Marshal()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return report(w, p)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: bindplan [options] <plan.toml>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  bindplan pipeline.toml              Print the packed layout\n")
	fmt.Fprintf(os.Stderr, "  bindplan -backend gl pipeline.toml  Override the plan backend\n")
	fmt.Fprintf(os.Stderr, "  bindplan -normalize pipeline.toml   Print the plan as packed\n")
}
