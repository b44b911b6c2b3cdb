// Package cases declares the test cases run by the gocatch command.
package cases

import (
	"github.com/goradd/gocatch/internal/assertion"
	"github.com/goradd/gocatch/internal/registry"
	"github.com/goradd/gocatch/internal/student"
)

// Register adds every test case in this package to r.
func Register(r *registry.Registry) {
	r.Register("Addition of two numbers", additionOfTwoNumbers, registry.WithTags("[add]"))
	// More test cases for other student functions go here.
}

func additionOfTwoNumbers(t *assertion.T) {
	t.Require(student.Add(1, 2) == 3)
	t.Require(student.Add(0, 0) == 0)
	t.Require(student.Add(-1, 1) == 0)
	t.Require(student.Add(100, 200) == 300)
}
