package nestcheck

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func TestBuiltinPresets(t *testing.T) {
	ps := BuiltinPresets()
	want := []string{"cpp", "html", "latex", "markdown-fence", "xml"}
	if got := ps.Names(); !slices.Equal(got, want) {
		t.Fatalf("Names() = %q, want %q", got, want)
	}

	tests := []struct {
		preset string
		input  string
		want   string
	}{
		{"latex", "\\begin{document}\n\\begin{itemize}\n\\end{itemize}\n", "\\end{document}"},
		{"html", "<div>\n<p class=\"x\">\n<br/>\n</p>\n", "</div>"},
		{"xml", "<ns:root>\n<ns:item/>\n<a.b>\n</a.b>\n", "</ns:root>"},
		{"html", "<div>\n<a >\n<br />\n<img src=\"a/b.png\"/>\n", "</a>"},
		{"xml", "<root >\n<item a=\"1\" />\n<list\tkind=\"x\">\n</list >\n", "</root>"},
		{"cpp", "#ifdef X\n  #if Y\n  #endif\n", "#endif"},
		{"markdown-fence", "text\n```go\nfunc main() {}\n", "```"},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			p, err := ps.Lookup(tt.preset)
			if err != nil {
				t.Fatal(err)
			}
			if p.Name != tt.preset || p.Description == "" {
				t.Errorf("preset = %+v", p)
			}
			cfg, err := p.Config()
			if err != nil {
				t.Fatal(err)
			}
			got, _ := runChecker(t, cfg, tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadPresets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.toml")
	const user = `
[latex]
open = 'a(b)'
close = 'c(b)'
close-text = 'd'

[lua]
description = "Lua blocks"
open = '\b(function|do|then)\b'
close = '\b(end)\b'
close-text = 'end'
syntax = "backtrack"
`
	if err := os.WriteFile(path, []byte(user), 0o644); err != nil {
		t.Fatal(err)
	}

	ps, err := LoadPresets(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := ps["latex"].Open; got != "a(b)" {
		t.Errorf("latex not overridden: open = %q", got)
	}
	if _, ok := ps["html"]; !ok {
		t.Errorf("builtin html preset missing after merge")
	}
	cfg, err := ps["lua"].Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Syntax != Backtrack || cfg.Levels != DefaultLevels {
		t.Errorf("lua config = %+v", cfg)
	}
}

func TestLoadPresetsHome(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	err := os.WriteFile(filepath.Join(home, "nest.toml"), []byte("[x]\nopen='<'\nclose='>'\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	ps, err := LoadPresets("~/nest.toml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ps.Lookup("x"); err != nil {
		t.Error(err)
	}

	_, err = LoadPresets("~/missing.toml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadPresets(missing) = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadPresetsEmptyPath(t *testing.T) {
	ps, err := LoadPresets("")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ps.Names(), BuiltinPresets().Names()) {
		t.Errorf("LoadPresets(\"\") = %q", ps.Names())
	}
}

func TestParsePresetsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"missing close", "[a]\nopen = 'x'\n", `preset "a": open and close patterns are required`},
		{"bad syntax", "[a]\nopen = 'x'\nclose = 'y'\nsyntax = 'pcre'\n", `unknown pattern syntax "pcre"`},
		{"not toml", "[a\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePresets([]byte(tt.data))
			if err == nil {
				t.Fatal("ParsePresets succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := BuiltinPresets().Lookup("tex")
	if err == nil {
		t.Fatal("Lookup(tex) succeeded")
	}
	if msg := err.Error(); !strings.Contains(msg, `unknown preset "tex"`) || !strings.Contains(msg, "latex") {
		t.Errorf("error = %q", msg)
	}
}
