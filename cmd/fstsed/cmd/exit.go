package cmd

import "fmt"

// exitErr signals a specific process exit code through cobra's error return.
// 0 = success, 1 = runtime failure (unreadable input, bad index, build
// error), 2 = usage error. Match count never affects the exit code.
type exitErr struct{ code int }

func (e exitErr) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

// ExitCode extracts the exit code from an exitErr.
// Returns -1 if the error is not an exitErr.
func ExitCode(err error) int {
	if ee, ok := err.(exitErr); ok {
		return ee.code
	}
	return -1
}
