package assertion

// Disposition controls what happens when an assertion fails.
type Disposition uint8

const (
	// Normal stops the current test case when the assertion fails.
	Normal Disposition = 0
	// ContinueOnFailure records the failure and lets the test case keep running.
	ContinueOnFailure Disposition = 1 << 0
	// FalseTest negates the checked condition.
	FalseTest Disposition = 1 << 1
)

// ShouldContinue reports whether the test case continues after a failure.
func (d Disposition) ShouldContinue() bool {
	return d&ContinueOnFailure != 0
}

// IsFalseTest reports whether the condition is expected to be false.
func (d Disposition) IsFalseTest() bool {
	return d&FalseTest != 0
}
