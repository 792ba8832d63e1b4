// Package script decodes the line-based scripts used to test nestcheck.
//
// A script is a sequence of commands. A command is a name, an optional
// argument line, and an optional block of tab-indented lines:
//
//	# An unclosed environment is closed.
//	nestcheck '\\begin\{(\w+)\}' '\\end\{(\w+)\}' '\end{$1}'
//	stdin
//		\begin{document}
//		text
//	stdout -n
//		\end{document}
//
// The grammar in EBNF:
//
//	script   = { comment | blankline | command } .
//	comment  = "#" text newline .
//	command  = name [ whitespace text ] newline { blockline } .
//	blockline = tab text newline .
//	blankline = newline .
//
// Comment lines attach to the command that follows them; a blank line
// discards them. Block lines lose their leading tab and keep their newline,
// so a block line holding only a tab is an empty line of the block.
// Lines starting with a space are syntax errors.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-shellwords"
)

// SyntaxError represents a syntax error in a script.
type SyntaxError struct {
	Line    int    // line number (1-indexed)
	Message string // error message without line prefix
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d: %s", e.Line, e.Message)
}

// Command is one command of a script.
type Command struct {
	// Line is the line number of the command name (1-indexed).
	Line int

	// Comment holds the comment lines preceding the command,
	// without their leading "#" and surrounding space, joined by newlines.
	Comment string

	// Name is the first word of the command line.
	Name string

	// Args is the rest of the command line, without surrounding space.
	Args string

	// Block holds the tab-indented lines following the command line,
	// each without its leading tab.
	Block string
}

// Words splits Args into words using shell quoting rules.
// Environment variables and backquotes are not expanded.
func (c Command) Words() ([]string, error) {
	return shellwords.Parse(c.Args)
}

// Decoder reads commands from a script.
type Decoder struct {
	r    *bufio.Reader
	line int // current line number (1-indexed)
}

// NewDecoder returns a Decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode returns the next command in the script.
// It returns io.EOF when there are no more commands.
func (d *Decoder) Decode() (Command, error) {
	var comments []string
	for {
		line, err := d.readLine()
		if line == "" {
			// We have read all input; err is usually io.EOF.
			return Command{}, err
		}

		switch line[0] {
		case '\n':
			comments = comments[:0]
			continue
		case '#':
			comments = append(comments, strings.TrimSpace(line[1:]))
			continue
		case ' ', '\t':
			return Command{}, &SyntaxError{
				Line:    d.line,
				Message: "unexpected whitespace at start of line",
			}
		}

		name, args := cutField(strings.TrimSuffix(line, "\n"))
		cmd := Command{
			Line:    d.line,
			Comment: strings.Join(comments, "\n"),
			Name:    name,
			Args:    strings.TrimRightFunc(args, unicode.IsSpace),
		}
		if errors.Is(err, io.EOF) {
			return cmd, nil
		}
		if err != nil {
			return Command{}, err
		}

		block, err := d.readBlock()
		if err != nil {
			return Command{}, err
		}
		cmd.Block = block
		return cmd, nil
	}
}

// readBlock reads the tab-indented lines that follow a command line.
func (d *Decoder) readBlock() (string, error) {
	var b strings.Builder
	for {
		next, err := d.r.Peek(1)
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		if next[0] != '\t' {
			return b.String(), nil
		}
		line, err := d.readLine()
		b.WriteString(line[1:]) // strip leading tab
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// readLine reads the next line from the input, updating the line counter.
func (d *Decoder) readLine() (string, error) {
	d.line++
	return d.r.ReadString('\n')
}

// cutField slices s around the first run of whitespace,
// returning the text before and after the run.
func cutField(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

// SplitArgs splits s into at most n whitespace-separated arguments.
// The final argument contains any remaining text after the first n-1 splits.
// A negative n splits all of s.
func SplitArgs(s string, n int) []string {
	if n == 0 {
		return nil
	}
	var args []string
	for s != "" {
		if n == 1 {
			args = append(args, s)
			break
		}
		var arg string
		arg, s = cutField(s)
		if arg == "" {
			break
		}
		args = append(args, arg)
		n--
	}
	return args
}

// SplitArgs3 splits s into three whitespace-separated arguments.
// The third argument contains any remaining text after the first two splits.
func SplitArgs3(s string) (a, b, c string) {
	args := SplitArgs(s, 3)
	for len(args) < 3 {
		args = append(args, "")
	}
	return args[0], args[1], args[2]
}
