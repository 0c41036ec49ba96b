// Package main is the entry point for the mimeo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/thoreinstein/mimeo/cmd/mimeo/commands"
	"github.com/thoreinstein/mimeo/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	var exitErr *errors.ExitError
	// A failed run has already printed its summary.
	if !errors.Is(err, errors.ErrRunFailed) {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
	}
	os.Exit(errors.CodeOf(err))
}
