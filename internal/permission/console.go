package permission

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// ConsolePrompter asks for permission on a line-oriented terminal. It
// keeps asking until it gets a yes or no answer.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter creates a prompter reading answers from in and
// writing questions to out.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm asks the question and blocks until the human answers or ctx is
// canceled. The read happens in a goroutine so cancellation is honored
// even while waiting on the terminal.
func (p *ConsolePrompter) Confirm(ctx context.Context, action string) (bool, error) {
	type answer struct {
		granted bool
		err     error
	}
	ch := make(chan answer, 1)

	go func() {
		for {
			fmt.Fprintf(p.out, "The system wants to %s. Do you allow this? (yes/no): ", action)
			line, err := p.in.ReadString('\n')
			if err != nil {
				ch <- answer{err: err}
				return
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "yes", "y":
				ch <- answer{granted: true}
				return
			case "no", "n":
				ch <- answer{granted: false}
				return
			default:
				fmt.Fprintln(p.out, "Please answer yes or no.")
			}
		}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		return a.granted, a.err
	}
}
