package checks_test

import (
	"testing"

	"blake.io/nestcheck/checks"
	"blake.io/nestcheck/internal/script"
)

func TestHTML(t *testing.T) {
	body := `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1 class="title">Welcome</h1>
	<div id="content">Hello World</div>
	<ul>
		<li>Item 1</li>
		<li>Item 2</li>
		<li>Item 3</li>
	</ul>
	<p class="empty"></p>
</body>
</html>`

	tests := []struct {
		expr    string
		wantMsg bool
	}{
		{`h1.title == Welcome`, false},
		{`h1.title == Wrong`, true},
		{`h1.title != Wrong`, false},
		{`h1.title ~ ^Wel`, false},
		{`h1.title !~ ^Wel`, true},
		{`#content contains World`, false},
		{`#content !contains World`, true},
		{`li count 3`, false},
		{`li count 5`, true},
		{`ul>li count 3`, false},
		{`.nonexistent count 0`, false},
		{`.nonexistent == anything`, true},
		{`p.empty == `, true}, // empty want requires non-regex op error
		{`[invalid == test`, true},
	}

	for _, tt := range tests {
		sel, op, want := script.SplitArgs3(tt.expr)
		msg := checks.HTML(sel, op, want, body)
		if tt.wantMsg && msg == "" {
			t.Errorf("HTML(%q): expected error message, got none", tt.expr)
		}
		if !tt.wantMsg && msg != "" {
			t.Errorf("HTML(%q): unexpected error: %s", tt.expr, msg)
		}
	}
}

func TestHTMLMessages(t *testing.T) {
	body := `<ul><li>1</li><li>2</li></ul>`
	tests := []struct {
		sel, op, want string
		msg           string
	}{
		{"li", "count", "5", "li = `2`, want `5`"},
		{".missing", "==", "x", `no elements match selector ".missing"`},
		{"li", "count", "", "count operator requires non-empty want value"},
	}
	for _, tt := range tests {
		if got := checks.HTML(tt.sel, tt.op, tt.want, body); got != tt.msg {
			t.Errorf("HTML(%s %s %s) = %q, want %q", tt.sel, tt.op, tt.want, got, tt.msg)
		}
	}
}

func TestBalanced(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"", ""},
		{"plain text", ""},
		{"<div><p>x</p></div>", ""},
		{"<p>a<br>b<img src=x></p>", ""},
		{"<p>a<br/>b</p><!-- </div> -->", ""},
		{"<div><p>x</div>", "unexpected </div> inside <p>"},
		{"</p>", "unexpected </p> with no open elements"},
		{"<ul>\n<li>", "unclosed <li>, <ul>"},
	}
	for _, tt := range tests {
		if got := checks.Balanced(tt.body); got != tt.want {
			t.Errorf("Balanced(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		op, got, want string
		wantMsg       bool
		wantValid     bool
	}{
		{"==", "a", "a", false, true},
		{"==", "a", "b", true, true},
		{"!=", "a", "a", true, true},
		{"~", "abc", "^a", false, true},
		{"~", "abc", "(", true, false},
		{"!~", "abc", "z", false, true},
		{"contains", "abc", "b", false, true},
		{"!contains", "abc", "b", true, true},
		{"==", "a", "", true, false},
		{"??", "a", "a", true, false},
	}
	for _, tt := range tests {
		msg, valid := checks.Text("x", tt.op, tt.got, tt.want)
		if (msg != "") != tt.wantMsg || valid != tt.wantValid {
			t.Errorf("Text(%q, %q, %q) = %q, %v", tt.op, tt.got, tt.want, msg, valid)
		}
	}
}
