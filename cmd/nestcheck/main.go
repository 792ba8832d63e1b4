/*
Command nestcheck checks and fixes nested blocks in text read from standard
input.

Usage:

	nestcheck <open tag> <close tag> <close text> [options]
	nestcheck -P<preset> [options]

The open and close tags are regular expressions. A close tag ends the block
opened by the most recent open tag if both captured the same groups. When
the input ends, nestcheck prints the close text for the innermost block
still open; "$n" in the close text is replaced by the n-th group captured by
that block's open tag.

For example, to find the LaTeX environment to close at the end of a file:

	nestcheck '\\begin\{(\w+)\}' '\\end\{(\w+)\}' '\end{$1}' < paper.tex

# Options

	-n<num>   Stop before line num instead of at end of input.
	-l<num>   Close up to num blocks (default 1). Negative closes all.
	-e<text>  Replace a line holding a spurious close tag with text.
	          "$n" refers to the groups of the spurious close tag.
	-p        Pass the input through, inserting the close text where
	          checking stopped.
	-d        After every tag, print the line number and the names of
	          the open blocks, innermost first.
	-x        Use the backtracking regexp syntax, which supports
	          look-around and back-references.

# Presets

Instead of the three tag arguments, -P<name> selects a preset set of tags.
Built-in presets are latex, html, xml, cpp and markdown-fence. More can be
defined in a TOML file named by the NESTCHECK_PRESETS environment variable:

	[lua]
	description = "Lua blocks"
	open = '\b(?:function|do|then)\b'
	close = '\bend\b'
	close-text = 'end'

Tags without capture groups match any closer of the same preset.

# Exit Status

nestcheck exits 1 if the arguments are invalid, a tag fails to compile, or
input cannot be read, and 0 otherwise. Errors are printed on standard error.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"blake.io/nestcheck"
)

const usage = `usage: nestcheck <open tag> <close tag> <close text> [options]
       nestcheck -P<preset> [options]

options:
  -n<num>   stop before line num
  -l<num>   close up to num blocks (default 1, negative for all)
  -e<text>  replace lines with a spurious close tag by text
  -p        pass the input through
  -d        print the line number and stack after every tag
  -x        use backtracking regexp syntax
`

var errUsage = errors.New("invalid arguments")

func main() {
	os.Exit(mainNoExit(os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr))
}

func mainNoExit(args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "nestcheck: ", 0)

	cfg, err := parseArgs(args, getenv, logger)
	if err != nil {
		logger.Print(err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
		}
		return 1
	}

	c, err := nestcheck.New(cfg)
	if err != nil {
		logger.Print(err)
		return 1
	}
	if err := c.Run(stdin, stdout); err != nil {
		logger.Print(err)
		return 1
	}
	return 0
}

// parseArgs builds a Config from the command line. Unrecognized options are
// reported to logger and otherwise ignored.
func parseArgs(args []string, getenv func(string) string, logger *log.Logger) (nestcheck.Config, error) {
	var cfg nestcheck.Config
	var opts []string

	switch {
	case len(args) > 0 && strings.HasPrefix(args[0], "-P"):
		presets, err := nestcheck.LoadPresets(getenv(nestcheck.PresetsEnv))
		if err != nil {
			return cfg, fmt.Errorf("loading presets: %w", err)
		}
		p, err := presets.Lookup(args[0][len("-P"):])
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", errUsage, err)
		}
		cfg, err = p.Config()
		if err != nil {
			return cfg, err
		}
		opts = args[1:]
	case len(args) < 3:
		return cfg, fmt.Errorf("%w: need 3 arguments, got %d", errUsage, len(args))
	default:
		cfg = nestcheck.Config{
			Open:      args[0],
			Close:     args[1],
			CloseText: args[2],
			Levels:    nestcheck.DefaultLevels,
		}
		opts = args[3:]
	}

	for _, opt := range opts {
		switch {
		case opt == "-p":
			cfg.PassThrough = true
		case opt == "-d":
			cfg.Debug = true
		case opt == "-x":
			cfg.Syntax = nestcheck.Backtrack
		case strings.HasPrefix(opt, "-n"):
			n, ok := parseNum(opt[2:], false)
			if !ok {
				logger.Printf("ignoring %q: want -n<line>", opt)
				continue
			}
			// Stopping before line 0 scans nothing, like stopping before line 1.
			cfg.StopLine = max(n, 1)
		case strings.HasPrefix(opt, "-l"):
			n, ok := parseNum(opt[2:], true)
			if !ok {
				logger.Printf("ignoring %q: want -l<levels>", opt)
				continue
			}
			cfg.Levels = n
		case strings.HasPrefix(opt, "-e") && len(opt) > 2:
			cfg.ErrorText = opt[2:]
		default:
			logger.Printf("ignoring unknown option %q", opt)
		}
	}
	return cfg, nil
}

// parseNum parses a decimal number, with a leading minus sign only if
// signed is set.
func parseNum(s string, signed bool) (int, bool) {
	if s == "" || s[0] == '+' || (!signed && s[0] == '-') {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
