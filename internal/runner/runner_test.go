package runner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goradd/gocatch/internal/assertion"
	"github.com/goradd/gocatch/internal/registry"
)

func newRunner(out *bytes.Buffer, cfg Config) *Runner {
	cfg.Out = out
	if cfg.Err == nil {
		cfg.Err = out
	}
	return New(cfg)
}

func pass(*assertion.T) {}

func TestRun_Mixed(t *testing.T) {
	reg := registry.New()
	var order []string
	reg.Register("A", func(*assertion.T) { order = append(order, "A") })
	reg.Register("B", func(*assertion.T) {
		order = append(order, "B")
		panic("fault")
	})
	reg.Register("C", func(*assertion.T) { order = append(order, "C") })

	out := &bytes.Buffer{}
	res := newRunner(out, Config{}).Run(reg)

	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.Equal(t, 3, res.Run)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.ExitCode())
	assert.False(t, res.Aborted)
	assert.NotEmpty(t, res.RunID)

	require.Len(t, res.Cases, 3)
	assert.True(t, res.Cases[0].Passed)
	assert.False(t, res.Cases[1].Passed)
	assert.ErrorContains(t, res.Cases[1].Err, "unexpected panic: fault")
	assert.True(t, res.Cases[2].Passed)

	expected := "Running tests...\n" +
		"Test case: A\n  PASSED\n" +
		"Test case: B\nFAILED: unexpected panic: fault\n  FAILED\n" +
		"Test case: C\n  PASSED\n" +
		"\nTotal tests: 3, Failures: 1\n"
	assert.Equal(t, expected, out.String())
}

func TestRun_Empty(t *testing.T) {
	out := &bytes.Buffer{}
	res := newRunner(out, Config{}).Run(registry.New())
	assert.Equal(t, 0, res.Run)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 0, res.ExitCode())
	assert.Equal(t, "Running tests...\n\nTotal tests: 0, Failures: 0\n", out.String())
}

func TestRun_FaultPositions(t *testing.T) {
	const n = 5
	for k := 0; k < n; k++ {
		reg := registry.New()
		visits := make([]int, n)
		for i := 0; i < n; i++ {
			i := i
			reg.Register("case", func(*assertion.T) {
				visits[i]++
				if i == k {
					panic(i)
				}
			})
		}
		res := newRunner(&bytes.Buffer{}, Config{}).Run(reg)
		assert.Equal(t, n, res.Run)
		assert.Equal(t, 1, res.Failed)
		for i, v := range visits {
			assert.Equal(t, 1, v, "case %d with fault at %d", i, k)
		}
	}
}

func TestRun_Assertions(t *testing.T) {
	reg := registry.New()
	reg.Register("require", func(c *assertion.T) {
		c.Require(false)
		panic("not reached")
	})
	reg.Register("check", func(c *assertion.T) {
		c.Check(false)
		c.Check(false)
	})
	reg.Register("ok", func(c *assertion.T) {
		c.Require(1+2 == 3)
	})

	out := &bytes.Buffer{}
	res := newRunner(out, Config{}).Run(reg)
	assert.Equal(t, 2, res.Failed)
	assert.NotContains(t, out.String(), "not reached")
	assert.Equal(t, 2, strings.Count(out.String(), "FAILED: CHECK( false )"))
	assert.Equal(t, 1, strings.Count(out.String(), "FAILED: REQUIRE( false )"))
	assert.True(t, res.Cases[2].Passed)
	assert.NoError(t, res.Cases[2].Err)
}

func TestRun_NilAction(t *testing.T) {
	reg := registry.New()
	reg.Register("nil", nil)
	reg.Register("after", pass)
	res := newRunner(&bytes.Buffer{}, Config{}).Run(reg)
	assert.Equal(t, 2, res.Run)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, res.Cases[1].Passed)
}

func TestRun_Snapshot(t *testing.T) {
	reg := registry.New()
	reg.Register("registers more", func(*assertion.T) {
		reg.Register("late", pass)
	})
	res := newRunner(&bytes.Buffer{}, Config{}).Run(reg)
	assert.Equal(t, 1, res.Run)
	assert.Equal(t, 2, reg.Len())
}

func TestRun_AbortAfter(t *testing.T) {
	reg := registry.New()
	reg.Register("one", func(*assertion.T) { panic(1) })
	reg.Register("two", pass)
	reg.Register("three", func(*assertion.T) { panic(3) })
	reg.Register("four", pass)

	t.Run("first failure", func(t *testing.T) {
		out := &bytes.Buffer{}
		res := newRunner(out, Config{AbortAfter: 1}).Run(reg)
		assert.True(t, res.Aborted)
		assert.Equal(t, 1, res.Run)
		assert.Equal(t, 1, res.Failed)
		assert.Contains(t, out.String(), "Aborting after 1 failure(s)")
		assert.NotContains(t, out.String(), "Test case: two")
	})

	t.Run("second failure", func(t *testing.T) {
		res := newRunner(&bytes.Buffer{}, Config{AbortAfter: 2}).Run(reg)
		assert.True(t, res.Aborted)
		assert.Equal(t, 3, res.Run)
		assert.Equal(t, 2, res.Failed)
	})

	t.Run("not reached", func(t *testing.T) {
		res := newRunner(&bytes.Buffer{}, Config{AbortAfter: 3}).Run(reg)
		assert.False(t, res.Aborted)
		assert.Equal(t, 4, res.Run)
	})
}

func TestRun_RequireExits(t *testing.T) {
	reg := registry.New()
	reg.Register("exits", func(c *assertion.T) { c.Require(false) })

	var codes []int
	res := newRunner(&bytes.Buffer{}, Config{
		RequireExits: true,
		Exit:         func(code int) { codes = append(codes, code) },
	}).Run(reg)
	assert.Equal(t, []int{1}, codes)
	assert.Equal(t, 1, res.Failed)
}

func TestRun_Durations(t *testing.T) {
	reg := registry.New()
	reg.Register("timed", pass)
	out := &bytes.Buffer{}
	newRunner(out, Config{Durations: true}).Run(reg)
	assert.Regexp(t, `  PASSED\n  \d+\.\d{3} s\n`, out.String())
}

func TestRun_Color(t *testing.T) {
	reg := registry.New()
	reg.Register("colored", pass)
	out := &bytes.Buffer{}
	newRunner(out, Config{Color: true}).Run(reg)
	assert.Contains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "PASSED")
}

func TestRun_Logging(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	reg := registry.New()
	reg.Register("panics", func(*assertion.T) { panic("boom") })
	reg.Register("checks", func(c *assertion.T) { c.Check(false) })
	reg.Register("passes", pass)
	res := newRunner(&bytes.Buffer{}, Config{Log: log}).Run(reg)

	var warned, completed bool
	assertionFailed := map[string]interface{}{}
	for _, e := range hook.AllEntries() {
		assert.Equal(t, res.RunID, e.Data["run_id"])
		switch e.Message {
		case "test case finished":
			assertionFailed[e.Data["case"].(string)] = e.Data["assertion_failed"]
		case "test case panicked":
			warned = true
			assert.Equal(t, logrus.WarnLevel, e.Level)
			assert.Equal(t, "panics", e.Data["case"])
		case "test run complete":
			completed = true
			assert.Equal(t, 2, e.Data["failed"])
		}
	}
	assert.True(t, warned)
	assert.True(t, completed)
	assert.Equal(t, map[string]interface{}{
		"panics": false,
		"checks": true,
		"passes": false,
	}, assertionFailed)
}

func TestList(t *testing.T) {
	reg := registry.New()
	reg.Register("Addition", pass, registry.WithTags("[add][math]"))
	reg.Register("Plain", pass)

	out := &bytes.Buffer{}
	newRunner(out, Config{}).List(reg)
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "All available test cases:\n  Addition\n      runner_test.go:"))
	assert.Contains(t, s, "      [add][math]\n  Plain\n")
	assert.True(t, strings.HasSuffix(s, "\n2 test cases\n"))
}

func TestNew_Defaults(t *testing.T) {
	r := New(Config{})
	assert.NotNil(t, r.cfg.Out)
	assert.NotNil(t, r.cfg.Err)
	assert.NotNil(t, r.cfg.Log)
}
