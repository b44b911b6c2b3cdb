package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goradd/gocatch/internal/cases"
	"github.com/goradd/gocatch/internal/config"
	"github.com/goradd/gocatch/internal/registry"
	"github.com/goradd/gocatch/internal/runner"
)

// exit is replaced in tests so that a REQUIRE assertion configured to end the process does not end the test binary.
var exit = os.Exit

func main() {
	reg := registry.Default()
	cases.Register(reg)
	os.Exit(run(os.Args[1:], nil, reg, os.Stdout, os.Stderr))
}

// run executes the test cases of reg and returns the process exit code. environ is passed to config.Load.
func run(args []string, environ map[string]string, reg *registry.Registry, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args, environ)
	if err != nil {
		if config.IsHelp(err) {
			_, _ = fmt.Fprintln(stdout, err)
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "error: %s\n", err)
		return 2
	}

	r := runner.New(runner.Config{
		Out:          stdout,
		Err:          stderr,
		Log:          config.NewLogger(cfg, stderr),
		Color:        cfg.UseColor(stdout),
		AbortAfter:   cfg.AbortAfter,
		Durations:    cfg.Durations,
		RequireExits: cfg.RequireExits,
		Exit:         exit,
	})

	if cfg.ListTests {
		r.List(reg)
		return 0
	}
	return r.Run(reg).ExitCode()
}
