// Command boutique manages the boutique point-of-sale database.
package main

import (
	"errors"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/roach88/boutique/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		os.Exit(cli.ExitSuccess)
	}

	// ExitErrors have already been reported by the command. Anything else
	// comes from cobra's own argument checks.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
