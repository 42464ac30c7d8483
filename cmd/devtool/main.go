// Command devtool is the developer helper of the backend module.
//
//	go run ./cmd/devtool <dev|test|format|lint|migrate|makemigrate <message>>
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/skeletonhq/backend/internal/devtool"
)

func main() {
	root, err := devtool.FindRoot(".")
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := devtool.NewCommand(
		devtool.ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
		os.Stdout,
		root,
	)

	if err = cmd.Execute(); err != nil {
		var exitErr *devtool.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
