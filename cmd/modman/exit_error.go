package main

import "fmt"

// ExitError carries a specific process exit code out of a RunE handler
// without forcing os.Exit from inside it.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// errSilentNonZero signals check found deviations: the findings were
// already rendered, so nothing more should be printed.
var errSilentNonZero = &ExitError{Code: 1}
