// Package nestcheck checks and repairs nested blocks in line-oriented text.
//
// A block opens where an open pattern matches and closes where a close
// pattern matches with the same captured groups. Nothing else about the
// text is assumed, so the same checker handles markup, LaTeX environments,
// preprocessor conditionals or any other paired delimiters:
//
//	open:       \\begin\{(\w+)\}
//	close:      \\end\{(\w+)\}
//	close text: \end{$1}
//
// Given
//
//	\begin{document}
//	\begin{itemize}
//	\item one
//	\end{itemize}
//
// the checker reports the single block left open:
//
//	\end{document}
//
// # Scanning
//
// Input is read one line at a time. On each line, every non-overlapping
// match of either pattern is considered from left to right; where both
// match at the same position, the open pattern wins. Look-around and
// anchors see the whole line. An open match is pushed on a stack. A close
// match whose groups 1..N equal those of the top of the stack pops it; any
// other close match is spurious.
//
// Scanning ends at end of input, or just before [Config.StopLine] if set.
//
// # Closers
//
// When scanning ends, the innermost unclosed blocks are popped and
// [Config.CloseText] is written for each, with "$n" replaced by the
// block's n-th captured group (see [Substitute]). At most [Config.Levels]
// blocks are closed; a negative limit closes them all. Consecutive closers
// are separated by a newline, with no newline after the last one.
//
// # Pass-through
//
// With [Config.PassThrough] the input is copied to the output and the
// closers are inserted where scanning stopped, followed by the rest of the
// input. If [Config.ErrorText] is set, a line holding a spurious closer is
// replaced by the error text, which keeps the line's terminator.
package nestcheck

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultLevels is the number of unclosed blocks closed when no limit is given.
const DefaultLevels = 1

// Config holds the parameters of a [Checker]. It is not modified after
// the Checker is created.
type Config struct {
	// Open and Close are the pattern sources for block openers and
	// closers. They should capture the same groups, since closers are
	// matched to openers by comparing groups 1..N.
	Open, Close string

	// CloseText is written for every unclosed block flushed at the end.
	CloseText string

	// StopLine stops scanning before the given 1-based line.
	// Zero scans to end of input.
	StopLine int

	// Levels limits the number of blocks closed at the end.
	// A negative value closes all of them; zero closes none.
	Levels int

	// ErrorText, if not empty, is written in place of a line holding a
	// spurious closer.
	ErrorText string

	// PassThrough copies the input to the output.
	PassThrough bool

	// Debug writes the line number and stack after every match.
	Debug bool

	// Syntax selects the pattern engine.
	Syntax Syntax
}

// Checker matches nested blocks in a stream. Create one with [New].
//
// A Checker is not safe for concurrent use.
type Checker struct {
	cfg  Config
	tags tagPattern

	stack Stack
	line  int // current line number (1-indexed)
}

// New compiles the patterns in cfg and returns a Checker.
// A pattern that fails to compile is reported as a [*PatternError].
func New(cfg Config) (*Checker, error) {
	tags, err := compileTags(cfg.Syntax, cfg.Open, cfg.Close)
	if err != nil {
		return nil, err
	}
	return &Checker{cfg: cfg, tags: tags}, nil
}

// Config returns the configuration of c.
func (c *Checker) Config() Config {
	return c.cfg
}

// Depth returns the number of blocks left open by the last call to Run,
// after closers were written.
func (c *Checker) Depth() int {
	return c.stack.Len()
}

// Line returns the number of the first line the last call to Run did not
// scan: StopLine if scanning stopped there, otherwise one past the last
// line of input.
func (c *Checker) Line() int {
	return c.line
}

// Run reads r, checks its nesting and writes the result to w.
// Each call starts with an empty stack at line 1.
//
// Run only fails if reading or writing fails, or if a [Backtrack]
// pattern times out.
func (c *Checker) Run(r io.Reader, w io.Writer) error {
	c.stack.reset()
	c.line = 1

	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	if err := c.scan(br, bw); err != nil {
		return err
	}
	c.flush(bw)
	if c.cfg.PassThrough {
		if _, err := io.Copy(bw, br); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (c *Checker) scan(br *bufio.Reader, bw *bufio.Writer) error {
	for c.cfg.StopLine == 0 || c.line < c.cfg.StopLine {
		s, err := br.ReadString('\n')
		if s == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		handled, scanErr := c.scanLine(s, bw)
		if scanErr != nil {
			return fmt.Errorf("line %d: %w", c.line, scanErr)
		}
		c.line++
		if c.cfg.PassThrough {
			if handled {
				// The error text replaces the line but not its terminator.
				s = s[len(trimEOL(s)):]
			}
			bw.WriteString(s)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
	return nil
}

// scanLine processes the matches on one line. It reports whether the line
// was replaced by error text.
func (c *Checker) scanLine(s string, bw *bufio.Writer) (handled bool, err error) {
	text := trimEOL(s)
	err = c.tags.scan(text, func(open bool, m Match) error {
		if c.step(open, m, bw) {
			handled = true
		}
		if c.cfg.Debug {
			fmt.Fprintf(bw, "%d: %s\n", c.line, c.stack.names())
		}
		return nil
	})
	return handled, err
}

// step handles a single tag. It reports whether error text was written.
func (c *Checker) step(open bool, m Match, bw *bufio.Writer) bool {
	if open {
		c.stack.Push(m)
		return false
	}
	if top, ok := c.stack.Top(); ok && top.Equal(m) {
		c.stack.Pop()
		return false
	}
	if c.cfg.ErrorText == "" {
		return false
	}
	bw.WriteString(Substitute(c.cfg.ErrorText, m))
	return true
}

// flush writes closers for the innermost unclosed blocks.
func (c *Checker) flush(bw *bufio.Writer) {
	levels := c.cfg.Levels
	for levels != 0 {
		m, ok := c.stack.Pop()
		if !ok {
			break
		}
		bw.WriteString(Substitute(c.cfg.CloseText, m))
		if levels > 0 {
			levels--
		}
		if levels != 0 && c.stack.Len() > 0 {
			bw.WriteByte('\n')
		}
	}
}

// trimEOL removes a trailing "\n" or "\r\n" from s.
func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
