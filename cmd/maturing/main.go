// Command maturing reports the maturing progress of a spaced-repetition
// collection and repairs its review log.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/maturing/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own ExitErrors; flag and usage errors are not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
