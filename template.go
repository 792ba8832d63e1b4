package nestcheck

import "strings"

// Substitute expands tmpl using the capture groups of m.
//
// Each "$n", where n is a single decimal digit, is replaced by group n of m.
// Group 0 is the whole match. A reference to a group that does not exist,
// or that did not participate in the match, expands to the empty string.
// A "$" not followed by a digit is copied unchanged.
//
// For example, with m capturing "document" in group 1:
//
//	Substitute(`\end{$1}`, m) == `\end{document}`
func Substitute(tmpl string, m Match) string {
	if !strings.Contains(tmpl, "$") {
		return tmpl
	}
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c == '$' && i+1 < len(tmpl) && isDigit(tmpl[i+1]) {
			b.WriteString(m.Group(int(tmpl[i+1] - '0')))
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
