package registry

import (
	"runtime"
	"strings"
	"sync"

	"github.com/goradd/gocatch/internal/assertion"
)

// Action is the body of a test case. Assertions made through t are reported against the test case being run.
type Action func(t *assertion.T)

// TestCase represents a registered test
type TestCase struct {
	Name   string
	Tags   []string
	Action Action
	// File and Line are where the test case was registered.
	File string
	Line int
}

// Option configures a test case at registration time.
type Option func(tc *TestCase)

// WithTags attaches Catch-style bracketed tags, like "[add][math]", to a test case.
// Tags are informational only and are shown when listing tests.
func WithTags(tags string) Option {
	return func(tc *TestCase) {
		tc.Tags = append(tc.Tags, parseTags(tags)...)
	}
}

// Registry is an ordered collection of test cases. Test cases run in the order they were registered.
type Registry struct {
	cases []TestCase
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register appends a test case to the registry. Empty and duplicate names are allowed, and duplicates all run.
func (r *Registry) Register(name string, action Action, opts ...Option) {
	r.add(name, action, 2, opts)
}

func (r *Registry) add(name string, action Action, skip int, opts []Option) {
	tc := TestCase{Name: name, Action: action}
	if _, file, line, ok := runtime.Caller(skip); ok {
		tc.File = file
		tc.Line = line
	}
	for _, o := range opts {
		o(&tc)
	}
	r.cases = append(r.cases, tc)
}

// All returns a snapshot of the registered test cases in registration order.
// Test cases registered after the call are not part of the returned slice.
func (r *Registry) All() []TestCase {
	out := make([]TestCase, len(r.cases))
	copy(out, r.cases)
	return out
}

// Len returns the number of registered test cases.
func (r *Registry) Len() int {
	return len(r.cases)
}

var defaultRegistry *Registry
var defaultOnce sync.Once

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// Register is used by test packages to register themselves with the default registry.
func Register(name string, action Action, opts ...Option) {
	Default().add(name, action, 2, opts)
}

// parseTags splits "[a][b]" into "a" and "b". A string without brackets is a single tag.
func parseTags(s string) (tags []string) {
	for s != "" {
		start := strings.IndexByte(s, '[')
		if start == -1 {
			if t := strings.TrimSpace(s); t != "" {
				tags = append(tags, t)
			}
			return
		}
		end := strings.IndexByte(s[start:], ']')
		if end == -1 {
			if t := strings.TrimSpace(s[start+1:]); t != "" {
				tags = append(tags, t)
			}
			return
		}
		if t := strings.TrimSpace(s[start+1 : start+end]); t != "" {
			tags = append(tags, t)
		}
		s = s[start+end+1:]
	}
	return
}
