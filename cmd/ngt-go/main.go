package main

import (
	"fmt"
	"io"
	"os"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, `ngt-go - template binding runtime
Usage: ngt-go <command> [flags] <template.html>

Commands:
  render <path>    Compile, bind and render a template to stdout
  check <path>     Compile a template and report directive errors
  help             Show help

Flags:
  -context <file>    JSON execution context (render)
  -log-level <name>  trace, debug, info, warn or error (default info)`)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 1
	}
	switch args[0] {
	case "help":
		usage(stdout)
		return 0
	case "render", "check":
		opts, err := parseFlags(args[0], args[1:], stderr)
		if err != nil {
			return 2
		}
		if err := execute(args[0], opts, stdout); err != nil {
			fmt.Fprintf(stderr, "%s error: %v\n", args[0], err)
			return 1
		}
		return 0
	default:
		usage(stderr)
		return 1
	}
}
