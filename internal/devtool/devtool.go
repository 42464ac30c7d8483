// Package devtool implements the developer helper: shortcuts for running the
// service, the tests, the formatters, the linters and the migrations from the
// module root.
package devtool

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const (
	// MessageRequired is printed by makemigrate without a message.
	MessageRequired = "migration message required"

	usage = `Usage: devtool <command>

Commands:
  dev         - Start development server
  test        - Run tests
  format      - Format code with gofmt and goimports
  lint        - Lint code with go vet and golangci-lint
  migrate     - Run database migrations
  makemigrate - Create new migration (requires message)
`
)

// Commands run by each subcommand.
var (
	DevCommands = []Command{ //nolint:gochecknoglobals
		{Name: "go", Args: []string{"run", ".", "start", "--dev"}},
	}
	TestCommands = []Command{ //nolint:gochecknoglobals
		{Name: "go", Args: []string{"test", "./...", "-v", "-cover"}},
	}
	FormatCommands = []Command{ //nolint:gochecknoglobals
		{Name: "gofmt", Args: []string{"-s", "-w", "."}},
		{Name: "goimports", Args: []string{"-w", "."}},
	}
	LintCommands = []Command{ //nolint:gochecknoglobals
		{Name: "go", Args: []string{"vet", "./..."}},
		{Name: "golangci-lint", Args: []string{"run", "./..."}},
	}
	MigrateCommands = []Command{ //nolint:gochecknoglobals
		{Name: "go", Args: []string{"run", ".", "migrate", "up"}},
	}
)

// MakeMigrateCommand creates a migration named after message.
func MakeMigrateCommand(message string) Command {
	return Command{Name: "go", Args: []string{"run", ".", "migrate", "create", message}}
}

// NewCommand returns the devtool root command. Every tool runs inside root,
// progress is written to out.
func NewCommand(r Runner, out io.Writer, root string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "devtool",
		Short:         "Development helper",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				_, err := io.WriteString(c.OutOrStdout(), usage)

				return err
			}

			_, err := fmt.Fprintf(c.OutOrStdout(), "unknown command: %s\n", args[0])

			return err
		},
	}

	cmd.SetOut(out)
	cmd.SetErr(out)

	sub := func(use, short, announce string, commands []Command) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ArbitraryArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return run(c, r, root, announce, commands)
			},
		}
	}

	cmd.AddCommand(
		sub("dev", "Start development server", "Starting development server...", DevCommands),
		sub("test", "Run tests", "Running tests...", TestCommands),
		sub("format", "Format code with gofmt and goimports", "Formatting code...", FormatCommands),
		sub("lint", "Lint code with go vet and golangci-lint", "Linting code...", LintCommands),
		sub("migrate", "Run database migrations", "Running database migrations...", MigrateCommands),
		&cobra.Command{
			Use:   "makemigrate <message>",
			Short: "Create new migration (requires message)",
			Args:  cobra.ArbitraryArgs,
			RunE: func(c *cobra.Command, args []string) error {
				message := strings.TrimSpace(strings.Join(args, " "))
				if message == "" {
					_, err := fmt.Fprintln(c.OutOrStdout(), MessageRequired)

					return err
				}

				return run(c, r, root, "Creating migration: "+message, []Command{MakeMigrateCommand(message)})
			},
		},
	)

	return cmd
}

// run announces the step and executes commands in order, stopping at the first failure.
func run(c *cobra.Command, r Runner, root, announce string, commands []Command) error {
	out := c.OutOrStdout()

	if _, err := fmt.Fprintln(out, announce); err != nil {
		return err
	}

	for _, command := range commands {
		if err := r.Run(c.Context(), root, command); err != nil {
			var exitErr *ExitError
			if errors.As(err, &exitErr) {
				_, _ = fmt.Fprintf(out, "command failed: %s\n", exitErr.Command)
			}

			return err
		}
	}

	return nil
}
