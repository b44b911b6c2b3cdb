// Package assertion implements the checks a test case makes while it runs.
//
// Require style assertions stop the current test case when they fail. Check style assertions record the
// failure and let the test case continue. Either way the test case is reported as failed.
package assertion

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Options configures a T.
type Options struct {
	// Out receives failure diagnostics. Defaults to os.Stderr.
	Out io.Writer
	// RequireExits makes a failed Require style assertion terminate the process with status 1,
	// instead of only stopping the current test case.
	RequireExits bool
	// Exit is called when RequireExits is set. Defaults to os.Exit.
	Exit func(code int)
}

// T is passed to a test case action and records the result of its assertions.
type T struct {
	name     string
	out      io.Writer
	exits    bool
	exit     func(int)
	errs     *multierror.Error
	sections []string
}

// New returns a T for the named test case.
func New(name string, opts Options) *T {
	t := &T{
		name:  name,
		out:   opts.Out,
		exits: opts.RequireExits,
		exit:  opts.Exit,
	}
	if t.out == nil {
		t.out = os.Stderr
	}
	if t.exit == nil {
		t.exit = os.Exit
	}
	return t
}

// Name returns the name of the test case.
func (t *T) Name() string {
	return t.name
}

// Failed reports whether any assertion has failed.
func (t *T) Failed() bool {
	return t.errs != nil
}

// Err returns the failed assertions, or nil if there were none.
func (t *T) Err() error {
	return t.errs.ErrorOrNil()
}

// Failure describes a single failed assertion.
type Failure struct {
	Info    Info
	Section string
	Message string
}

func (f *Failure) Error() string {
	s := f.Info.String()
	if f.Message != "" {
		s += ": " + f.Message
	}
	return s
}

// Require checks that cond is true and stops the test case if it is not.
func (t *T) Require(cond bool) {
	t.handle("REQUIRE", "Require", Normal, checkTrue(cond))
}

// RequireFalse checks that cond is false and stops the test case if it is not.
func (t *T) RequireFalse(cond bool) {
	t.handle("REQUIRE_FALSE", "RequireFalse", Normal|FalseTest, checkTrue(cond))
}

// Check checks that cond is true.
func (t *T) Check(cond bool) {
	t.handle("CHECK", "Check", ContinueOnFailure, checkTrue(cond))
}

// CheckFalse checks that cond is false.
func (t *T) CheckFalse(cond bool) {
	t.handle("CHECK_FALSE", "CheckFalse", ContinueOnFailure|FalseTest, checkTrue(cond))
}

// RequireEqual checks that actual equals expected and stops the test case if it does not.
func (t *T) RequireEqual(expected, actual interface{}) {
	t.handle("REQUIRE_EQUAL", "RequireEqual", Normal, checkEqual(expected, actual))
}

// CheckEqual checks that actual equals expected.
func (t *T) CheckEqual(expected, actual interface{}) {
	t.handle("CHECK_EQUAL", "CheckEqual", ContinueOnFailure, checkEqual(expected, actual))
}

// RequireThrows checks that fn panics and stops the test case if it does not.
func (t *T) RequireThrows(fn func()) {
	t.handle("REQUIRE_THROWS", "RequireThrows", Normal, checkThrows(fn))
}

// CheckThrows checks that fn panics.
func (t *T) CheckThrows(fn func()) {
	t.handle("CHECK_THROWS", "CheckThrows", ContinueOnFailure, checkThrows(fn))
}

// RequireThrowsAs checks that fn panics with a value matching target, and stops the test case if it does not.
// target must be a non-nil pointer. An error value matches when errors.As does, any other value matches when
// it is assignable to the type target points to. On a match the value is stored in target.
func (t *T) RequireThrowsAs(fn func(), target interface{}) {
	t.handle("REQUIRE_THROWS_AS", "RequireThrowsAs", Normal, checkThrowsAs(fn, target))
}

// CheckThrowsAs is the continuing form of RequireThrowsAs.
func (t *T) CheckThrowsAs(fn func(), target interface{}) {
	t.handle("CHECK_THROWS_AS", "CheckThrowsAs", ContinueOnFailure, checkThrowsAs(fn, target))
}

// RequireNoThrow checks that fn returns without panicking and stops the test case if it does not.
func (t *T) RequireNoThrow(fn func()) {
	t.handle("REQUIRE_NOTHROW", "RequireNoThrow", Normal, checkNoThrow(fn))
}

// CheckNoThrow checks that fn returns without panicking.
func (t *T) CheckNoThrow(fn func()) {
	t.handle("CHECK_NOTHROW", "CheckNoThrow", ContinueOnFailure, checkNoThrow(fn))
}

// Section runs body once as a named part of the test case. Failures inside body report the section path.
func (t *T) Section(name string, body func()) {
	t.sections = append(t.sections, name)
	defer func() {
		t.sections = t.sections[:len(t.sections)-1]
	}()
	body()
}

// handle must be called directly from the exported assertion methods, since it locates the user's call site
// by a fixed stack depth.
func (t *T) handle(macro, method string, d Disposition, r result) {
	if d.IsFalseTest() {
		r = r.negate()
	}
	if r.ok {
		return
	}

	f := &Failure{
		Info:    callerInfo(macro, method),
		Section: strings.Join(t.sections, " / "),
		Message: r.message,
	}
	t.errs = multierror.Append(t.errs, f)
	t.report(f)

	if d.ShouldContinue() {
		return
	}
	if t.exits {
		t.exit(1)
	}
	panic(&abort{failure: f})
}

func (t *T) report(f *Failure) {
	_, _ = fmt.Fprintf(t.out, "FAILED: %s at %s:%d\n", f.Info.Expression(), filepath.Base(f.Info.File), f.Info.Line)
	if f.Section != "" {
		_, _ = fmt.Fprintf(t.out, "  in section: %s\n", f.Section)
	}
	if f.Message != "" {
		for _, line := range strings.Split(strings.TrimRight(f.Message, "\n"), "\n") {
			_, _ = fmt.Fprintf(t.out, "  %s\n", line)
		}
	}
}

// abort is the panic value used to stop a test case after a failed Require style assertion.
type abort struct {
	failure *Failure
}

func (a *abort) Error() string {
	return "test case aborted: " + a.failure.Error()
}

// IsAbort reports whether a recovered panic value was raised by a failed Require style assertion.
// The failure it carries has already been recorded by the T that raised it.
func IsAbort(v interface{}) bool {
	if err, ok := v.(error); ok {
		var a *abort
		return errors.As(err, &a)
	}
	return false
}
