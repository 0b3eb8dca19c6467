// Package console abstracts the interactive prompt/respond surface so the
// consultation flow can run over stdio or a network transport unchanged.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter is the synchronous interaction capability the consultation
// depends on: emit a line of text, or emit a prompt and wait for a reply.
type Prompter interface {
	Say(text string)
	Ask(prompt string) (string, error)
}

// Stdio implements Prompter over an input reader and output writer,
// defaulting to the process terminal.
type Stdio struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdio returns a Prompter bound to stdin/stdout.
func NewStdio() *Stdio {
	return NewStdioWith(os.Stdin, os.Stdout)
}

// NewStdioWith returns a Prompter bound to the supplied streams.
func NewStdioWith(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{in: bufio.NewReader(in), out: out}
}

// Say writes a line of text to the output stream.
func (s *Stdio) Say(text string) {
	fmt.Fprintln(s.out, text)
}

// Ask writes the prompt and reads a single trimmed line in response.
func (s *Stdio) Ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)

	line, err := s.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read input: %w", err)
	}

	line = strings.TrimSpace(line)
	if err == io.EOF && line == "" {
		return "", fmt.Errorf("read input: %w", io.ErrUnexpectedEOF)
	}
	return line, nil
}
