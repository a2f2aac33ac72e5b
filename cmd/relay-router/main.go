package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signalsfoundry/relay-router/core"
	"github.com/signalsfoundry/relay-router/internal/logging"
	"github.com/signalsfoundry/relay-router/timectrl"
)

// Exit codes: sysexits-style data error for unparseable input, plain 1 for a
// route that does not exist.
const (
	exitOK       = 0
	exitNoRoute  = 1
	exitUsageErr = 2
	exitDataErr  = 65
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, logging.NewFromEnv()))
}

// run is the whole CLI with its streams injected so tests can drive it.
// Only the computed path goes to stdout; diagnostics go to stderr.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, log logging.Logger) int {
	fs := flag.NewFlagSet("relay-router", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "-", "constellation file to read, or - for stdin")
	tleAt := fs.String("tle-at", "", "RFC 3339 instant at which TLE records are evaluated (default: now)")
	if err := fs.Parse(args); err != nil {
		return exitUsageErr
	}

	ctx := context.Background()

	clock, err := timectrl.ParseInstant(*tleAt)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -tle-at value %q: %v\n", *tleAt, err)
		return exitUsageErr
	}

	r, err := openInput(*input, stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitDataErr
	}
	defer r.Close()

	net := core.NewNetwork()
	plan, err := core.LoadConstellation(net, r, clock.Now())
	if err != nil {
		fmt.Fprintf(stderr, "error while processing data: %v\n", err)
		return exitDataErr
	}
	if plan.Request == nil {
		fmt.Fprintln(stderr, "error while processing data: no ROUTE record in input")
		return exitDataErr
	}

	log.Debug(ctx, "constellation loaded",
		logging.Int("satellites", net.Len()),
		logging.Any("start", plan.Request.Start),
		logging.Any("finish", plan.Request.Finish),
	)

	path, err := net.Route(plan.Request.Start, plan.Request.Finish)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitNoRoute
	}

	fmt.Fprintln(stdout, strings.Join(core.PathIDs(path), ","))
	return exitOK
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %q: %w", path, err)
	}
	return f, nil
}
