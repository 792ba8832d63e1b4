package nestcheck

import (
	"slices"
	"strings"
)

// Group is one capture group of a [Match].
type Group struct {
	Text    string // captured text, empty if the group did not participate
	Matched bool   // whether the group took part in the match
}

// Match holds the capture groups of a single pattern match.
// Index 0 is the whole match; 1..N are the sub-captures.
//
// Matches are produced by a [Pattern] and are not modified afterwards.
type Match []Group

// Group returns the text of group i, or the empty string if the group
// does not exist or did not participate in the match.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i].Text
}

// Equal reports whether m and o captured the same sub-groups.
// The whole-match group is ignored. Matches with a different number of
// groups are never equal.
func (m Match) Equal(o Match) bool {
	if len(m) == 0 || len(o) == 0 {
		return len(m) == len(o)
	}
	return slices.Equal(m[1:], o[1:])
}

// String returns the whole-match text.
func (m Match) String() string {
	return m.Group(0)
}

// Stack is a LIFO of unmatched opens, most recent on top.
type Stack struct {
	entries []Match
}

// Push adds m to the top of the stack.
func (s *Stack) Push(m Match) {
	s.entries = append(s.entries, m)
}

// Pop removes and returns the top of the stack.
// It reports false if the stack is empty.
func (s *Stack) Pop() (Match, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	m := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return m, true
}

// Top returns the top of the stack without removing it.
func (s *Stack) Top() (Match, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	return s.entries[len(s.entries)-1], true
}

// Len returns the number of unmatched opens.
func (s *Stack) Len() int {
	return len(s.entries)
}

func (s *Stack) reset() {
	s.entries = s.entries[:0]
}

// names returns the group-1 values of the stack, innermost first,
// joined for debug output.
func (s *Stack) names() string {
	var b strings.Builder
	for i := len(s.entries) - 1; i >= 0; i-- {
		if i < len(s.entries)-1 {
			b.WriteString(", ")
		}
		b.WriteString(s.entries[i].Group(1))
	}
	return b.String()
}
