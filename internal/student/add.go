// Package student holds the code under test.
package student

// Add returns the sum of a and b.
func Add(a, b int) int {
	return a + b
}
