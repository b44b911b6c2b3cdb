// gocatch runs the registered test cases and reports which of them passed.
//
// Test cases are declared with registry.Register, and make their checks through the assertion.T they are given.
// Require style assertions stop the test case when they fail, Check style assertions let it continue. A test case
// that fails an assertion or panics is reported as FAILED and the remaining test cases still run.
//
// Output looks like this:
//
//	Running tests...
//	Test case: Addition of two numbers
//	  PASSED
//
//	Total tests: 1, Failures: 0
//
// The exit code is 0 when every test case passed, 1 when any failed and 2 when the command line or the
// environment could not be understood.
//
// Usage: gocatch [-l] [-a | -x N] [-d] [-v] [--color auto|always|never] [--require-exits]
//
//	-l: list the test cases instead of running them.
//	-a: abort at the first failing test case.
//	-x N: abort after N failing test cases.
//	-d: print how long each test case took.
//	-v: log debug information to stderr.
//	--color: color the PASSED and FAILED markers. auto colors only when stdout is a terminal.
//	--require-exits: a failing REQUIRE ends the whole run immediately with exit code 1.
//
// Each setting can also come from the environment: CATCH_ABORT_AFTER, CATCH_DURATIONS, CATCH_LOG_LEVEL,
// CATCH_COLOR and CATCH_REQUIRE_EXITS. Flags override the environment.
package main
