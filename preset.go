package nestcheck

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// PresetsEnv names the environment variable holding the path of a user
// presets file.
const PresetsEnv = "NESTCHECK_PRESETS"

//go:embed presets.toml
var builtinPresets []byte

// Preset is a named set of patterns for a common kind of nesting.
type Preset struct {
	Name        string `toml:"-"`
	Description string `toml:"description"`
	Open        string `toml:"open"`
	Close       string `toml:"close"`
	CloseText   string `toml:"close-text"`
	Syntax      string `toml:"syntax"` // "re2" (default) or "backtrack"
}

// Config returns a Config using the patterns of p and default options.
func (p Preset) Config() (Config, error) {
	syntax, err := ParseSyntax(p.Syntax)
	if err != nil {
		return Config{}, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return Config{
		Open:      p.Open,
		Close:     p.Close,
		CloseText: p.CloseText,
		Levels:    DefaultLevels,
		Syntax:    syntax,
	}, nil
}

// Presets maps preset names to presets.
//
// A presets file is TOML with one table per preset:
//
//	[latex]
//	description = "LaTeX environments"
//	open = '\\begin\{([^}]+)\}'
//	close = '\\end\{([^}]+)\}'
//	close-text = '\end{$1}'
type Presets map[string]Preset

// ParsePresets decodes a presets file.
func ParsePresets(data []byte) (Presets, error) {
	var ps Presets
	if err := toml.Unmarshal(data, &ps); err != nil {
		return nil, err
	}
	for name, p := range ps {
		if p.Open == "" || p.Close == "" {
			return nil, fmt.Errorf("preset %q: open and close patterns are required", name)
		}
		if _, err := ParseSyntax(p.Syntax); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		p.Name = name
		ps[name] = p
	}
	return ps, nil
}

// BuiltinPresets returns the presets shipped with the package.
func BuiltinPresets() Presets {
	ps, err := ParsePresets(builtinPresets)
	if err != nil {
		panic(fmt.Sprintf("internal error: builtin presets: %v", err))
	}
	return ps
}

// LoadPresets returns the builtin presets merged with those in the file
// at path. A leading "~" in path is expanded to the home directory.
// An empty path loads only the builtin presets.
func LoadPresets(path string) (Presets, error) {
	ps := BuiltinPresets()
	if path == "" {
		return ps, nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	user, err := ParsePresets(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	maps.Copy(ps, user)
	return ps, nil
}

// Lookup returns the preset with the given name.
func (ps Presets) Lookup(name string) (Preset, error) {
	p, ok := ps[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(ps.Names(), ", "))
	}
	return p, nil
}

// Names returns the preset names in sorted order.
func (ps Presets) Names() []string {
	return slices.Sorted(maps.Keys(ps))
}
