package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ltuala/student-management/internal/student"
)

// Prompter reads answers line by line from in and writes prompts to out.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter returns a Prompter over in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Out returns the writer prompts go to.
func (p *Prompter) Out() io.Writer {
	return p.out
}

// Line reads the next raw line. Returns io.EOF once input is exhausted.
func (p *Prompter) Line() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(p.in.Text(), "\r"), nil
}

// Ask prints label and returns the answer. An empty answer yields def.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.Line()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Choose lists options and asks until one is picked, by number or by name.
// An empty answer yields def.
func (p *Prompter) Choose(label string, options []string, def string) (string, error) {
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	for {
		answer, err := p.Ask(label, def)
		if err != nil {
			return "", err
		}
		if n, convErr := strconv.Atoi(strings.TrimSpace(answer)); convErr == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		normalized := student.NormalizeCourse(answer)
		for _, opt := range options {
			if opt == normalized {
				return opt, nil
			}
		}
		fmt.Fprintf(p.out, "Choose one of %s.\n", strings.Join(options, ", "))
	}
}

// Confirm asks a yes/no question. Only "y" or "yes" count as yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.Line()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
