// Package cli provides error handling utilities for CLI output.
package cli

import (
	"fmt"
	"io"
	"os"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

// PrintError prints an error to stderr with appropriate formatting.
func PrintError(err error) {
	printError(os.Stderr, err)
}

// printError writes the user-facing form of a FinchError, or a plain
// message for anything else. Verbose mode adds the code and cause.
func printError(w io.Writer, err error) {
	if fe := fincherrors.AsFinchError(err); fe != nil {
		fmt.Fprintln(w, fe.UserMessage())
		if verbose {
			fmt.Fprintf(w, "\nCode: %s\n", fe.Code)
			if fe.Cause != nil {
				fmt.Fprintf(w, "Cause: %v\n", fe.Cause)
			}
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
