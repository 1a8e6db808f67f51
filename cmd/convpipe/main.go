// Command convpipe runs converter pipelines from the command line or over
// HTTP.
//
//	convpipe run --pipe 'Split "," | Join "-"' --value '"a,b,c"'
//	convpipe run --pipe 'OneOf 2 0 1' --values '[null, "b", "c"]'
//	convpipe map --mapping mapping.yml < records.jsonl
//	convpipe serve --port 8080
//	convpipe converters
//	convpipe version
package main

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// command is one CLI subcommand.
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *cliEnv, args []string) error
}

// cliEnv carries the process streams so commands stay testable.
type cliEnv struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

var commands = []command{
	{"run", "run a pipe against a value or a collection", runCmd},
	{"map", "apply a mapping file to JSON records", mapCmd},
	{"serve", "serve the HTTP API", serveCmd},
	{"converters", "list the registered converters", convertersCmd},
	{"version", "print build information", versionCmd},
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	env := &cliEnv{stdin: stdin, stdout: stdout, stderr: stderr}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		err := c.run(ctx, env, args[1:])
		var usageErr *usageError
		switch {
		case err == nil, err == errHelp:
			return 0
		case goerrors.As(err, &usageErr):
			fmt.Fprintf(stderr, "convpipe %s: %v\nRun 'convpipe %s --help' for usage.\n", c.name, err, c.name)
			return 2
		default:
			fmt.Fprintf(stderr, "convpipe %s: %v\n", c.name, err)
			return 1
		}
	}

	fmt.Fprintf(stderr, "convpipe: unknown command %q\n\n", args[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: convpipe <command> [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-11s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun 'convpipe <command> --help' for command flags.\n")
}
