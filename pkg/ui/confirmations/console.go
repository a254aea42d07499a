// Package confirmations asks the user yes/no questions on the console.
package confirmations

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Console asks questions on a terminal or, failing that, reads a y/n line
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewConsole creates a Console reading stdin and prompting on stderr. The
// pterm interactive prompt is used when stdin and stdout are terminals.
func NewConsole() *Console {
	return &Console{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stderr,
		interactive: isTerminal(os.Stdin) && isTerminal(os.Stdout),
	}
}

// NewLineConsole creates a Console that always reads answers as lines from in
func NewLineConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// ConfirmFunc returns c.Confirm as a types.ConfirmFunc
func (c *Console) ConfirmFunc() types.ConfirmFunc {
	return c.Confirm
}

// Confirm asks prompt and reports whether the user agreed. Anything but an
// explicit yes, including end of input, declines.
func (c *Console) Confirm(prompt string) bool {
	if c.interactive {
		answer, err := pterm.DefaultInteractiveConfirm.
			WithDefaultValue(false).
			Show(prompt)
		if err == nil {
			return answer
		}
		logger := logging.GetLogger("confirmations")
		logger.Debug().Err(err).Msg("Interactive prompt failed, reading a line instead")
	}
	return c.readLine(prompt)
}

func (c *Console) readLine(prompt string) bool {
	if _, err := fmt.Fprintf(c.out, "%s [y/N]: ", prompt); err != nil {
		return false
	}
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		_, _ = fmt.Fprintln(c.out)
		return false
	}
	return IsYes(line)
}

// IsYes reports whether an answer means yes
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
