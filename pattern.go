package nestcheck

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// Syntax selects the regular expression engine used to compile patterns.
type Syntax int

const (
	// RE2 compiles patterns with package regexp. Matching runs in linear time.
	RE2 Syntax = iota

	// Backtrack compiles patterns with a Perl/.NET compatible backtracking
	// engine, which adds look-around and back-references. Every match is
	// bounded by [BacktrackTimeout].
	Backtrack
)

// BacktrackTimeout bounds a single match attempt of a [Backtrack] pattern.
const BacktrackTimeout = time.Second

func (s Syntax) String() string {
	switch s {
	case RE2:
		return "re2"
	case Backtrack:
		return "backtrack"
	}
	return fmt.Sprintf("Syntax(%d)", int(s))
}

// ParseSyntax returns the Syntax named by s ("re2" or "backtrack").
// The empty string selects RE2.
func ParseSyntax(s string) (Syntax, error) {
	switch s {
	case "", "re2":
		return RE2, nil
	case "backtrack":
		return Backtrack, nil
	}
	return 0, fmt.Errorf("unknown pattern syntax %q", s)
}

// Pattern is a compiled regular expression.
type Pattern interface {
	// Match returns the capture groups of the leftmost match in s.
	Match(s string) (Match, bool, error)

	// Scan calls fn with the capture groups of every non-overlapping match
	// in s, from left to right. Scan stops at the first error from fn and
	// returns it.
	Scan(s string, fn func(m Match) error) error
}

// PatternError reports a pattern that failed to compile.
type PatternError struct {
	Role string // "open", "close" or "combined"
	Expr string // pattern source
	Err  error  // compile error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("ill-formed %s pattern %#q: %v", e.Role, e.Expr, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Compile compiles expr with the engine selected by syntax.
func Compile(syntax Syntax, expr string) (Pattern, error) {
	switch syntax {
	case RE2:
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		return re2Pattern{re}, nil
	case Backtrack:
		re, err := regexp2.Compile(expr, regexp2.None)
		if err != nil {
			return nil, err
		}
		re.MatchTimeout = BacktrackTimeout
		return backtrackPattern{re}, nil
	}
	return nil, fmt.Errorf("unknown pattern syntax %v", syntax)
}

type re2Pattern struct {
	re *regexp.Regexp
}

func (p re2Pattern) Match(s string) (Match, bool, error) {
	loc := p.re.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil, false, nil
	}
	return submatches(s, loc), true, nil
}

func (p re2Pattern) Scan(s string, fn func(m Match) error) error {
	for _, loc := range p.re.FindAllStringSubmatchIndex(s, -1) {
		if err := fn(submatches(s, loc)); err != nil {
			return err
		}
	}
	return nil
}

func submatches(s string, loc []int) Match {
	m := make(Match, len(loc)/2)
	for i := range m {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		m[i] = Group{Text: s[start:end], Matched: true}
	}
	return m
}

type backtrackPattern struct {
	re *regexp2.Regexp
}

func (p backtrackPattern) Match(s string) (Match, bool, error) {
	rm, err := p.re.FindStringMatch(s)
	if err != nil || rm == nil {
		return nil, false, err
	}
	return backtrackMatch(rm), true, nil
}

func (p backtrackPattern) Scan(s string, fn func(m Match) error) error {
	rm, err := p.re.FindStringMatch(s)
	for rm != nil && err == nil {
		if err := fn(backtrackMatch(rm)); err != nil {
			return err
		}
		rm, err = p.re.FindNextMatch(rm)
	}
	return err
}

func backtrackMatch(rm *regexp2.Match) Match {
	groups := rm.Groups()
	m := make(Match, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			continue
		}
		m[i] = Group{Text: g.String(), Matched: true}
	}
	return m
}

// A tagPattern finds open and close tags on a line.
type tagPattern interface {
	// scan calls fn for every non-overlapping tag in s, from left to
	// right, with the groups captured by the tag's own pattern. Where an
	// open and a close tag start at the same position, the open tag wins.
	scan(s string, fn func(open bool, m Match) error) error
}

// compileTags compiles the open and close patterns for use together.
// Errors are of type [*PatternError].
func compileTags(syntax Syntax, openExpr, closeExpr string) (tagPattern, error) {
	o, err := Compile(syntax, openExpr)
	if err != nil {
		return nil, &PatternError{Role: "open", Expr: openExpr, Err: err}
	}
	c, err := Compile(syntax, closeExpr)
	if err != nil {
		return nil, &PatternError{Role: "close", Expr: closeExpr, Err: err}
	}
	if syntax == Backtrack {
		return backtrackTags{open: o.(backtrackPattern), close: c.(backtrackPattern)}, nil
	}

	combined := fmt.Sprintf("(%s)|(%s)", openExpr, closeExpr)
	either, err := Compile(RE2, combined)
	if err != nil {
		return nil, &PatternError{Role: "combined", Expr: combined, Err: err}
	}
	return re2Tags{either: either, n: o.(re2Pattern).re.NumSubexp()}, nil
}

// re2Tags matches the alternation of the wrapped open and close patterns.
// Group 1 holds an open tag, followed by the open pattern's n groups, and
// group n+2 holds a close tag, followed by the close pattern's groups.
type re2Tags struct {
	either Pattern
	n      int
}

func (t re2Tags) scan(s string, fn func(open bool, m Match) error) error {
	return t.either.Scan(s, func(m Match) error {
		if m[1].Matched {
			return fn(true, m[1:t.n+2])
		}
		return fn(false, m[t.n+2:])
	})
}

// backtrackTags searches the whole line for both patterns and takes the
// leftmost match. Look-around and anchors see the text around a tag, and
// back-references keep the numbering of the pattern they appear in.
type backtrackTags struct {
	open, close backtrackPattern
}

func (t backtrackTags) scan(s string, fn func(open bool, m Match) error) error {
	r := []rune(s)
	for pos := 0; pos <= len(r); {
		o, err := t.open.re.FindRunesMatchStartingAt(r, pos)
		if err != nil {
			return err
		}
		c, err := t.close.re.FindRunesMatchStartingAt(r, pos)
		if err != nil {
			return err
		}
		rm, open := o, true
		if o == nil || (c != nil && c.Index < o.Index) {
			rm, open = c, false
		}
		if rm == nil {
			return nil
		}
		if err := fn(open, backtrackMatch(rm)); err != nil {
			return err
		}
		pos = rm.Index + max(rm.Length, 1)
	}
	return nil
}
