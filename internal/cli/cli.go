// Package cli implements the interactive terminal sessions: the Mushaf page
// viewer with mistake tracking and submission, and the dashboard browser.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
)

// errEnd signals a normal end of the interactive session.
var errEnd = errors.New("session ended")

// InteractiveCLI contains shared state for interactive sessions.
type InteractiveCLI struct {
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	faint        *color.Color
	hoverStyle   *color.Color
	hidden       *color.Color
	mistakeStyle *color.Color
}

func newInteractiveCLI() *InteractiveCLI {
	return &InteractiveCLI{
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		faint:        color.New(color.Faint),
		hoverStyle:   color.New(color.Faint, color.Underline),
		hidden:       color.New(color.Concealed),
		mistakeStyle: color.New(color.FgRed, color.Underline),
	}
}

type Session interface {
	Session(context context.Context) error
}

func (cli *InteractiveCLI) Run(ctx context.Context, session Session) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := session.Session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Println("Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// prompt prints a label and reads one trimmed line from stdin.
func (cli *InteractiveCLI) prompt(label string) (string, error) {
	if _, err := fmt.Fprint(cli.stdoutWriter, label); err != nil {
		return "", fmt.Errorf("failed to write to stdout: %w", err)
	}
	input, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.TrimSpace(input), nil
}
