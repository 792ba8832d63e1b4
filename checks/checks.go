// Package checks provides helpers for checking nestcheck output in test
// scripts.
//
// Every check returns the empty string on success and a failure message
// otherwise:
//
//	if msg := checks.Text("stdout", "contains", out, `\end{document}`); msg != "" {
//		t.Error(msg)
//	}
package checks

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ericchiang/css"
	"golang.org/x/net/html"
)

// HTML checks the inner HTML of elements matching a CSS selector.
//
// It uses [Text] for comparison, supporting operators
// like ==, !=, ~, !~, contains, and !contains.
//
// An additional "count" operator compares the number of matched elements
// against the expected value:
//
//	ul>li count 3
//	div.note contains fixed
//
// Selectors must not contain spaces; use the "parent>child" combinator
// instead of descendant selection.
//
// If no elements match the selector, HTML fails with
// "no elements match selector {selector}", except for the count operator.
func HTML(selector, op, want, body string) string {
	msg, ok := Text(selector, op, "_", want)
	if !ok && op != "count" {
		return msg
	}

	sel, err := css.Parse(selector)
	if err != nil {
		return fmt.Sprintf("error parsing selector %q: %v", selector, err)
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return fmt.Sprintf("error parsing HTML: %v", err)
	}

	matches := sel.Select(doc)

	if op == "count" {
		if want == "" {
			return "count operator requires non-empty want value"
		}
		msg, _ := Text(selector, "==", strconv.Itoa(len(matches)), want)
		return msg
	}

	if len(matches) == 0 {
		return fmt.Sprintf("no elements match selector %q", selector)
	}

	msg, _ = Text(selector, op, innerHTML(matches[0]), want)
	return msg
}

// innerHTML returns the inner HTML of a node as a string.
func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&buf, c)
	}
	return buf.String()
}

// voidElements never have an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Balanced checks that every start tag in body is closed by a matching end
// tag, in order. Unlike [HTML], it looks at the tags as written rather than
// at the tree a browser would repair them into.
func Balanced(body string) string {
	var open []string
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Sprintf("error tokenizing HTML: %v", err)
			}
			if len(open) > 0 {
				return fmt.Sprintf("unclosed %s", tagList(open))
			}
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			if !voidElements[string(name)] {
				open = append(open, string(name))
			}
		case html.EndTagToken:
			b, _ := z.TagName()
			name := string(b)
			if len(open) == 0 {
				return fmt.Sprintf("unexpected </%s> with no open elements", name)
			}
			if top := open[len(open)-1]; top != name {
				return fmt.Sprintf("unexpected </%s> inside <%s>", name, top)
			}
			open = open[:len(open)-1]
		}
	}
}

// tagList formats open element names innermost first.
func tagList(names []string) string {
	var b strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "<%s>", names[i])
	}
	return b.String()
}

// Text compares got against want using the specified operator op
// and returns a failure message when the comparison does not hold.
// An empty string means the check passed.
//
// Supported operators:
//   - "==": equality
//   - "!=": inequality
//   - "~": regex match
//   - "!~": regex non-match
//   - "contains": substring presence
//   - "!contains": substring absence
//
// If valid is false, the message indicates an error in the check itself.
// If valid is true, the message indicates a failed check.
func Text(what, op, got, want string) (msg string, valid bool) {
	switch op {
	case "~", "!~":
		if _, err := regexp.Compile(want); err != nil {
			return fmt.Sprintf("error compiling regex %#q: %v", want, err), false
		}
	default:
		if want == "" {
			return "non-regex comparison requires non-empty want value", false
		}
	}

	switch op {
	case "==":
		if got != want {
			return fmt.Sprintf("%s = %#q, want %#q", what, got, want), true
		}
	case "!=":
		if got == want {
			return fmt.Sprintf("%s == %#q (but should not)", what, want), true
		}
	case "~", "!~":
		// Compiled above.
		matched := regexp.MustCompile(want).MatchString(got)
		if op == "~" && !matched {
			return fmt.Sprintf("%s does not match %#q (but should)\t%s", what, want, indentText(got)), true
		}
		if op == "!~" && matched {
			return fmt.Sprintf("%s matches %#q (but should not)\t%s", what, want, indentText(got)), true
		}
	case "contains":
		if !strings.Contains(got, want) {
			return fmt.Sprintf("%s does not contain %#q (but should)\t%s", what, want, indentText(got)), true
		}
	case "!contains":
		if strings.Contains(got, want) {
			return fmt.Sprintf("%s contains %#q (but should not)\t%s", what, want, indentText(got)), true
		}
	default:
		return fmt.Sprintf("unknown operator %q", op), false
	}

	return "", true
}

// indentText formats text for inclusion in error messages.
func indentText(text string) string {
	if text == "" {
		return "(empty)"
	}
	if text == "\n" {
		return "(blank line)"
	}
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return "(blank lines)"
	}
	return strings.ReplaceAll(text, "\n", "\n\t")
}
