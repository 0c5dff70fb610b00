package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompter wraps a line reader and output writer for the sequential
// question/answer flow. All program input goes through here.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints the question and returns one trimmed line. io.EOF propagates so
// callers can end the session cleanly on closed stdin.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, promptStyle.Render(question)+" ")
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askDefault asks with a default shown in brackets; empty input keeps it.
func (p *prompter) askDefault(question, def string) (string, error) {
	label := question
	if def != "" {
		label = fmt.Sprintf("%s [%s]", question, def)
	}
	answer, err := p.ask(label)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// askBool asks a y/n question. Empty input keeps the default.
func (p *prompter) askBool(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := p.ask(fmt.Sprintf("%s (%s)", question, hint))
		if err != nil {
			return def, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, warnStyle.Render("Please answer y or n."))
	}
}

// askChoice asks until the answer matches one of the given options
// (case-insensitive). Empty input keeps the default.
func (p *prompter) askChoice(question string, options []string, def string) (string, error) {
	label := fmt.Sprintf("%s (%s)", question, strings.Join(options, "/"))
	for {
		answer, err := p.askDefault(label, def)
		if err != nil {
			return def, err
		}
		for _, option := range options {
			if strings.EqualFold(answer, option) {
				return option, nil
			}
		}
		fmt.Fprintln(p.out, warnStyle.Render("Please pick one of: "+strings.Join(options, ", ")))
	}
}

// askInt asks for a non-negative integer. Empty input keeps the default.
func (p *prompter) askInt(question string, def int) (int, error) {
	for {
		answer, err := p.askDefault(question, strconv.Itoa(def))
		if err != nil {
			return def, err
		}
		value, convErr := strconv.Atoi(answer)
		if convErr == nil && value >= 0 {
			return value, nil
		}
		fmt.Fprintln(p.out, warnStyle.Render("Please enter a non-negative number."))
	}
}
