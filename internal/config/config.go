// Package config reads the settings of the gocatch command from the environment and the command line.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	flags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Color settings.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the settings of a test run.
type Config struct {
	LogLevel     string `env:"CATCH_LOG_LEVEL" envDefault:"warn"`
	Color        string `env:"CATCH_COLOR" envDefault:"auto"`
	AbortAfter   int    `env:"CATCH_ABORT_AFTER"`
	Durations    bool   `env:"CATCH_DURATIONS"`
	RequireExits bool   `env:"CATCH_REQUIRE_EXITS"`

	// NoColor follows the NO_COLOR convention: any non-empty value turns off automatic coloring.
	NoColor string `env:"NO_COLOR"`

	// ListTests is only settable from the command line.
	ListTests bool
}

// Options are the command line flags. Flags that are given override the environment.
type Options struct {
	ListTests    bool   `short:"l" long:"list-tests" description:"List all test cases and exit"`
	Abort        bool   `short:"a" long:"abort" description:"Abort at the first failure"`
	AbortX       int    `short:"x" long:"abortx" value-name:"N" description:"Abort after N failures"`
	Durations    bool   `short:"d" long:"durations" description:"Show the time each test case took"`
	Verbose      bool   `short:"v" long:"verbose" description:"Log debug information to stderr"`
	Color        string `long:"color" choice:"auto" choice:"always" choice:"never" description:"Color the PASSED and FAILED markers"`
	RequireExits bool   `long:"require-exits" description:"End the whole run when a REQUIRE assertion fails"`
}

// Load reads the environment, then applies the command line args on top of it.
// If environ is nil, the process environment is used.
func Load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "gocatch"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	cfg.apply(opts, parser.FindOptionByLongName("abortx").IsSet())

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply copies the given flags over the environment settings. abortXSet tells an explicit "-x 0" from an absent -x.
func (c *Config) apply(opts Options, abortXSet bool) {
	c.ListTests = opts.ListTests
	if opts.Abort {
		c.AbortAfter = 1
	}
	if abortXSet {
		c.AbortAfter = opts.AbortX
	}
	if opts.Durations {
		c.Durations = true
	}
	if opts.Verbose {
		c.LogLevel = logrus.DebugLevel.String()
	}
	if opts.Color != "" {
		c.Color = opts.Color
	}
	if opts.RequireExits {
		c.RequireExits = true
	}
}

func (c *Config) validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color setting %q, must be one of auto, always or never", c.Color)
	}
	if c.AbortAfter < 0 {
		return fmt.Errorf("invalid abort count %d, must not be negative", c.AbortAfter)
	}
	return nil
}

// IsHelp reports whether err is the result of asking for help on the command line.
// The error message is then the help text.
func IsHelp(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp
}

// UseColor reports whether output written to out should be colored.
// With the auto setting, out must be a terminal and NO_COLOR must not be set.
func (c *Config) UseColor(out io.Writer) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if c.NoColor != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewLogger returns a logger writing to w at the configured level.
func NewLogger(c *Config, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	l.SetLevel(level)
	return l
}
