// Package cli handles command line interface logic
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrPolymorph/Chiper/internal/options"
	"github.com/retroenv/retrogolib/cli"
)

// ParseFlags parses the command line arguments, without the program name,
// into the program options.
func ParseFlags(name string, args []string) (options.Program, error) {
	var opts options.Program

	flags := cli.NewFlagSet(name)
	flags.AddSection("Emulation", &opts.Emulation)
	flags.AddSection("Display", &opts.Display)
	flags.AddSection("Options", &opts.Flags)
	flags.AddPositional(&opts.Positional)

	remaining, err := flags.Parse(args)
	if err != nil {
		return opts, &UsageError{flags: flags, err: err}
	}

	if len(remaining) > 0 {
		return opts, &UsageError{
			flags: flags,
			err:   fmt.Errorf("unexpected arguments after ROM file: %s", strings.Join(remaining, " ")),
		}
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *cli.FlagSet
	err   error
}

func (e *UsageError) Error() string {
	return e.err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.err
}

// HelpRequested reports whether the user asked for the usage text.
func (e *UsageError) HelpRequested() bool {
	return errors.Is(e.err, cli.ErrHelpRequested)
}

// ShowUsage prints the usage text.
func (e *UsageError) ShowUsage() {
	e.flags.ShowUsage()
}
