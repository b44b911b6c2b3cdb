package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/goradd/gocatch/internal/assertion"
	"github.com/goradd/gocatch/internal/registry"
)

// Config controls how a Runner executes and reports test cases.
type Config struct {
	// Out receives the banner, the per test case lines and the summary. Defaults to os.Stdout.
	Out io.Writer
	// Err receives assertion diagnostics. Defaults to os.Stderr.
	Err io.Writer
	// Log defaults to a logger that discards everything.
	Log logrus.FieldLogger
	// Color turns on colored PASSED and FAILED markers.
	Color bool
	// AbortAfter stops the run once this many test cases have failed. Zero runs everything.
	AbortAfter int
	// Durations prints the time each test case took.
	Durations bool
	// RequireExits makes a failed Require style assertion end the process, see assertion.Options.
	RequireExits bool
	// Exit is used with RequireExits. Defaults to os.Exit.
	Exit func(code int)
}

// CaseResult is the outcome of one test case.
type CaseResult struct {
	Name     string
	Passed   bool
	Err      error
	Duration time.Duration
}

// Result is the outcome of a run.
type Result struct {
	RunID   string
	Run     int
	Failed  int
	Aborted bool
	Cases   []CaseResult
}

// ExitCode returns the process exit status for the run: 1 if any test case failed, otherwise 0.
func (r Result) ExitCode() int {
	if r.Failed > 0 {
		return 1
	}
	return 0
}

// Runner executes the test cases of a registry.
type Runner struct {
	cfg    Config
	passed *color.Color
	failed *color.Color
}

// New returns a Runner using cfg.
func New(cfg Config) *Runner {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	if cfg.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Log = l
	}
	r := &Runner{
		cfg:    cfg,
		passed: color.New(color.FgGreen),
		failed: color.New(color.FgRed, color.Bold),
	}
	if cfg.Color {
		r.passed.EnableColor()
		r.failed.EnableColor()
	} else {
		r.passed.DisableColor()
		r.failed.DisableColor()
	}
	return r
}

// Run executes every test case in reg once, in registration order. The registry is read once when the run
// starts, so test cases registered during the run are not executed. A test case that panics or fails an
// assertion is reported as failed and the run continues with the next test case.
func (r *Runner) Run(reg *registry.Registry) Result {
	cases := reg.All()
	res := Result{RunID: uuid.NewString()}
	log := r.cfg.Log.WithField("run_id", res.RunID)

	r.printf("Running tests...\n")
	log.WithField("count", len(cases)).Debug("starting test run")

	for _, tc := range cases {
		if r.cfg.AbortAfter > 0 && res.Failed >= r.cfg.AbortAfter {
			res.Aborted = true
			break
		}

		r.printf("Test case: %s\n", tc.Name)
		cr := r.runCase(tc, log)
		res.Run++
		if cr.Passed {
			r.printf("  %s\n", r.passed.Sprint("PASSED"))
		} else {
			res.Failed++
			r.printf("  %s\n", r.failed.Sprint("FAILED"))
		}
		if r.cfg.Durations {
			r.printf("  %.3f s\n", cr.Duration.Seconds())
		}
		res.Cases = append(res.Cases, cr)
	}

	if res.Aborted {
		r.printf("\nAborting after %d failure(s)\n", res.Failed)
	}
	r.printf("\nTotal tests: %d, Failures: %d\n", res.Run, res.Failed)

	log.WithFields(logrus.Fields{
		"run":     res.Run,
		"failed":  res.Failed,
		"aborted": res.Aborted,
	}).Info("test run complete")
	return res
}

// runCase executes a single test case, recovering from any panic it raises.
func (r *Runner) runCase(tc registry.TestCase, log logrus.FieldLogger) (cr CaseResult) {
	log = log.WithField("case", tc.Name)
	log.WithFields(logrus.Fields{
		"tags":     strings.Join(tc.Tags, ","),
		"location": fmt.Sprintf("%s:%d", tc.File, tc.Line),
	}).Debug("running test case")

	t := assertion.New(tc.Name, assertion.Options{
		Out:          r.cfg.Err,
		RequireExits: r.cfg.RequireExits,
		Exit:         r.cfg.Exit,
	})
	cr.Name = t.Name()
	start := time.Now()

	defer func() {
		cr.Duration = time.Since(start)
		err := t.Err()
		if v := recover(); v != nil && !assertion.IsAbort(v) {
			_, _ = fmt.Fprintf(r.cfg.Err, "FAILED: unexpected panic: %v\n", v)
			log.WithField("panic", v).Warn("test case panicked")
			log.Debug(string(debug.Stack()))
			err = multierror.Append(err, fmt.Errorf("unexpected panic: %v", v))
		}
		cr.Err = err
		cr.Passed = err == nil
		log.WithFields(logrus.Fields{
			"passed":           cr.Passed,
			"assertion_failed": t.Failed(),
			"duration":         cr.Duration,
		}).Debug("test case finished")
	}()

	tc.Action(t)
	return
}

// List writes the registered test cases without running them.
func (r *Runner) List(reg *registry.Registry) {
	cases := reg.All()
	r.printf("All available test cases:\n")
	for _, tc := range cases {
		r.printf("  %s\n", tc.Name)
		if tc.File != "" {
			r.printf("      %s:%d\n", filepath.Base(tc.File), tc.Line)
		}
		if len(tc.Tags) > 0 {
			r.printf("      [%s]\n", strings.Join(tc.Tags, "]["))
		}
	}
	r.printf("\n%d test cases\n", reg.Len())
}

func (r *Runner) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(r.cfg.Out, format, a...)
}
