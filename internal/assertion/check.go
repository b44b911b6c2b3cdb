package assertion

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type result struct {
	ok      bool
	message string
}

func (r result) negate() result {
	if r.ok {
		return result{ok: false, message: "Expression is true"}
	}
	return result{ok: true}
}

func checkTrue(cond bool) result {
	if cond {
		return result{ok: true}
	}
	return result{message: "Expression is false"}
}

func checkEqual(expected, actual interface{}) result {
	if assert.ObjectsAreEqual(expected, actual) {
		return result{ok: true}
	}
	msg := fmt.Sprintf("%#v != %#v", actual, expected)
	if d := diff(expected, actual); d != "" {
		msg += "\ndiff (-expected +actual):\n" + d
	}
	return result{message: msg}
}

// diff returns a readable difference for composite values, and "" for scalars or when no diff can be made.
func diff(expected, actual interface{}) (d string) {
	if !composite(expected) || !composite(actual) {
		return ""
	}
	defer func() {
		if recover() != nil {
			d = ""
		}
	}()
	return strings.TrimRight(cmp.Diff(expected, actual, cmp.Exporter(func(reflect.Type) bool { return true })), "\n")
}

func composite(v interface{}) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	if k == reflect.Ptr {
		k = reflect.TypeOf(v).Elem().Kind()
	}
	switch k {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func checkThrows(fn func()) result {
	if _, panicked := catch(fn); panicked {
		return result{ok: true}
	}
	return result{message: "No exception was thrown"}
}

func checkNoThrow(fn func()) result {
	if v, panicked := catch(fn); panicked {
		return result{message: fmt.Sprintf("Unexpected exception: %v", v)}
	}
	return result{ok: true}
}

func checkThrowsAs(fn func(), target interface{}) result {
	tv := reflect.ValueOf(target)
	if target == nil || tv.Kind() != reflect.Ptr || tv.IsNil() {
		return result{message: "target must be a non-nil pointer"}
	}
	want := tv.Type().Elem()

	v, panicked := catch(fn)
	if !panicked {
		return result{message: "No exception was thrown"}
	}
	if err, ok := v.(error); ok && (want.Kind() == reflect.Interface || want.Implements(reflect.TypeOf((*error)(nil)).Elem())) {
		if errors.As(err, target) {
			return result{ok: true}
		}
	} else if v != nil && reflect.TypeOf(v).AssignableTo(want) {
		tv.Elem().Set(reflect.ValueOf(v))
		return result{ok: true}
	}
	return result{message: fmt.Sprintf("Exception of type %T does not match %v: %v", v, want, v)}
}

// catch calls fn and returns the value it panicked with, if any.
// Aborts raised by assertions inside fn are passed through so they still stop the test case.
func catch(fn func()) (v interface{}, panicked bool) {
	panicked = true
	defer func() {
		if !panicked {
			return
		}
		v = recover()
		if IsAbort(v) {
			panic(v)
		}
	}()
	fn()
	panicked = false
	return
}
