package assertion

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Info identifies an assertion in the source.
type Info struct {
	Macro    string // REQUIRE, CHECK_FALSE, etc.
	Captured string // the text of the asserted expression, or "?" if the source could not be read
	File     string
	Line     int
}

// Expression returns the assertion as it appears in diagnostics, like "REQUIRE( add(1, 2) == 3 )".
func (i Info) Expression() string {
	return fmt.Sprintf("%s( %s )", i.Macro, i.Captured)
}

func (i Info) String() string {
	return fmt.Sprintf("%s at %s:%d", i.Expression(), i.File, i.Line)
}

// callerDepth is the number of frames between callerInfo and the user's call to an assertion method.
const callerDepth = 3

func callerInfo(macro, method string) Info {
	info := Info{Macro: macro, Captured: "?"}
	_, file, line, ok := runtime.Caller(callerDepth)
	if !ok {
		return info
	}
	info.File = file
	info.Line = line
	if expr, ok := callText(file, line, method); ok {
		info.Captured = expr
	}
	return info
}

// maxCallLines limits how many source lines a single assertion call may span.
const maxCallLines = 20

// callText returns the arguments of the call to method that the given 1-based line belongs to.
// The call may start above that line and continue below it.
func callText(file string, line int, method string) (string, bool) {
	lines := sourceLines(file)
	if line < 1 || line > len(lines) {
		return "", false
	}
	open := "." + method + "("
	first := line - 1
	for first >= 0 && first > line-1-maxCallLines && !strings.Contains(lines[first], open) {
		first--
	}
	if first < 0 || first <= line-1-maxCallLines {
		return "", false
	}
	src := lines[first]
	for last := first; last < len(lines) && last < first+maxCallLines; last++ {
		if last > first {
			src += "\n" + lines[last]
		}
		if expr, ok := callArgs(src, method); ok {
			if last < line-1 {
				// the call found above ended before the reported line
				return "", false
			}
			return expr, true
		}
	}
	return "", false
}

var sources = struct {
	sync.Mutex
	files map[string][]string
}{files: make(map[string][]string)}

// sourceLines returns the lines of file, or nil if it cannot be read. Files are read once and cached.
func sourceLines(file string) []string {
	sources.Lock()
	defer sources.Unlock()

	lines, ok := sources.files[file]
	if !ok {
		f, err := os.Open(file)
		if err == nil {
			s := bufio.NewScanner(f)
			for s.Scan() {
				lines = append(lines, s.Text())
			}
			_ = f.Close()
		}
		sources.files[file] = lines // nil when unreadable, so we only try once
	}
	return lines
}

// callArgs finds ".method(" in src and returns the text between its parentheses.
// Line breaks and their indentation read as a single space, and line comments are dropped.
// It fails if the call does not close within src.
func callArgs(src, method string) (string, bool) {
	open := "." + method + "("
	i := strings.Index(src, open)
	if i == -1 {
		return "", false
	}
	var out []byte
	depth := 1
	var quote byte
	for j := i + len(open); j < len(src); j++ {
		c := src[j]
		if quote != 0 {
			out = append(out, c)
			switch {
			case c == '\\' && quote != '`' && j+1 < len(src):
				j++
				out = append(out, src[j])
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				expr := strings.TrimSpace(string(out))
				return strings.TrimSpace(strings.TrimSuffix(expr, ",")), true
			}
		case '/':
			if j+1 < len(src) && src[j+1] == '/' {
				for j < len(src) && src[j] != '\n' {
					j++
				}
				j--
				continue
			}
		case '\n':
			for j+1 < len(src) && (src[j+1] == ' ' || src[j+1] == '\t') {
				j++
			}
			if len(out) > 0 && out[len(out)-1] == ' ' {
				continue
			}
			c = ' '
		}
		out = append(out, c)
	}
	return "", false
}
