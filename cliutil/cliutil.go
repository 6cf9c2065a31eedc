// Package cliutil implements the CLI-facing error-reporting helpers (part
// of C7's error-handling surface): a panic-based "fail the command
// cleanly" path so a run can unwind normally (closing open containers)
// before the process exits, plus a recursive error-chain printer for the
// validate subcommand.
package cliutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var errCLIPanic = errors.New("cli panic")

// Fatalf logs err at FATAL and panics with a sentinel recovered by
// RecoverCLI, so deferred container teardown still runs before exit.
func Fatalf(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	logrus.StandardLogger().Log(logrus.FatalLevel, err)
	panic(errCLIPanic)
}

// RecoverCLI is deferred at the top of every cobra RunE: it turns the
// sentinel panic from Fatalf/CheckCLI into a clean os.Exit(exitCode),
// and re-panics anything else (a genuine bug, not a reported CLI error).
func RecoverCLI(exitCode int) {
	if r := recover(); r != nil {
		if r == errCLIPanic {
			os.Exit(exitCode)
		}
		panic(r)
	}
}

// CheckCLI prints err in red to stderr and triggers the RecoverCLI unwind
// if non-nil; a no-op otherwise.
func CheckCLI(err error) {
	if err == nil {
		return
	}
	red := color.New(color.FgRed).FprintlnFunc()
	red(os.Stderr, err)
	panic(errCLIPanic)
}

// PrintRecursive prints err and every error in its Unwrap chain, one per
// line, for `flowrun validate`'s diagnostic output.
func PrintRecursive(err error) {
	if err == nil {
		return
	}
	fmt.Println(err)
	PrintRecursive(errors.Unwrap(err))
}
