// Package main is the entry point for the textspan inspector.
//
// textspan loads a file, runs syntax analysis over it and reports the
// context classes and the bracket match at an offset. With -case it
// instead rewrites the letter case of the whole input and prints it with
// its original line endings.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/dshills/textspan/internal/config"
	"github.com/dshills/textspan/internal/engine"
	"github.com/dshills/textspan/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath  string
	language    string
	logLevel    string
	offset      int
	maxChars    int
	maxCharsSet bool
	regions     bool
	caseKind    string
	caseLang    string
	file        string
}

var caseKinds = map[string]engine.CaseType{
	"lower":  engine.CaseLower,
	"upper":  engine.CaseUpper,
	"toggle": engine.CaseToggle,
	"title":  engine.CaseTitle,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, code, ok := parseFlags(args, stdout, stderr)
	if !ok {
		return code
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.language != "" {
		cfg.Highlight.Language = opts.language
	}
	if opts.maxCharsSet {
		cfg.Bracket.MaxScanChars = opts.maxChars
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	lc := cfg.Logging()
	lc.Output = stderr
	logger := logging.New(lc)

	caseLang := language.Und
	if opts.caseLang != "" {
		caseLang, err = language.Parse(opts.caseLang)
		if err != nil {
			fmt.Fprintf(stderr, "Error: invalid case language %q: %v\n", opts.caseLang, err)
			return 1
		}
	}

	input, err := openInput(opts.file, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer input.Close()

	filename := opts.file
	if filename == "-" {
		filename = ""
	}
	e, err := engine.NewFromReader(input,
		engine.WithConfig(cfg),
		engine.WithFilename(filename),
		engine.WithCaseLanguage(caseLang),
		engine.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer e.Close()

	if opts.caseKind != "" {
		if err := e.ChangeCase(caseKinds[opts.caseKind], 0, e.Len()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprint(stdout, e.Serialize())
		return 0
	}

	if err := report(e, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

func report(e *engine.Engine, opts options, w io.Writer) error {
	fmt.Fprintf(w, "language: %s\n", e.Analyzer().Language())
	fmt.Fprintf(w, "length:   %d\n", e.Len())
	fmt.Fprintf(w, "lines:    %d (%s)\n", e.LineCount(), lineEndingName(e.LineEnding()))

	if opts.offset >= 0 {
		classes, err := e.ContextClassesAt(opts.offset)
		if err != nil {
			return err
		}
		if err := e.MoveCursor(opts.offset); err != nil {
			return err
		}
		fmt.Fprintf(w, "offset:   %d\n", opts.offset)
		fmt.Fprintf(w, "classes:  %s\n", formatClasses(classes))
		if word, ok := e.WordAt(opts.offset); ok {
			fmt.Fprintf(w, "word:     %s %q\n", word, e.Buffer().Slice(word.Start, word.End))
		}

		m := e.BracketMatch()
		switch m.Result {
		case engine.BracketFound:
			fmt.Fprintf(w, "bracket:  %s %d -> %d\n", m.Result, m.Bracket, m.Position)
		case engine.BracketNone:
			fmt.Fprintf(w, "bracket:  %s\n", m.Result)
		default:
			fmt.Fprintf(w, "bracket:  %s at %d\n", m.Result, m.Bracket)
		}
	}

	if opts.regions {
		if err := e.HighlightAll(); err != nil {
			return err
		}
		for _, class := range e.Classes().Classes() {
			var spans []string
			for _, r := range e.Classes().Regions(class) {
				spans = append(spans, r.String())
			}
			fmt.Fprintf(w, "%s: %s\n", class, strings.Join(spans, " "))
		}
	}
	return nil
}

func lineEndingName(le engine.LineEnding) string {
	switch le {
	case engine.LineEndingCRLF:
		return "crlf"
	case engine.LineEndingCR:
		return "cr"
	default:
		return "lf"
	}
}

func formatClasses(classes []string) string {
	if len(classes) == 0 {
		return "-"
	}
	return strings.Join(classes, ", ")
}

// parseFlags parses args. When ok is false the caller exits with code.
func parseFlags(args []string, stdout, stderr io.Writer) (opts options, code int, ok bool) {
	fs := flag.NewFlagSet("textspan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var showVersion bool

	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.language, "language", "", "Language name, overrides detection")
	fs.StringVar(&opts.language, "l", "", "Language name (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	fs.IntVar(&opts.offset, "offset", -1, "Character offset to inspect")
	fs.IntVar(&opts.offset, "o", -1, "Character offset to inspect (shorthand)")
	fs.IntVar(&opts.maxChars, "max-scan", 0, "Bracket scan budget, -1 for unbounded (default from config)")
	fs.BoolVar(&opts.regions, "regions", false, "Print every context class region")
	fs.StringVar(&opts.caseKind, "case", "", "Rewrite the input case (lower, upper, toggle, title) and print it")
	fs.StringVar(&opts.caseLang, "case-lang", "", "BCP 47 language for -case, e.g. tr")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "textspan - context classes and bracket matching\n\n")
		fmt.Fprintf(stderr, "Usage: textspan [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  textspan -o 120 main.go          Classes and bracket match at offset 120\n")
		fmt.Fprintf(stderr, "  textspan -regions main.go        Print all class regions\n")
		fmt.Fprintf(stderr, "  cat x.py | textspan -l python -o 3\n")
		fmt.Fprintf(stderr, "  textspan -case upper -case-lang tr notes.txt\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, 0, false
		}
		return opts, 2, false
	}

	if showVersion {
		fmt.Fprintf(stdout, "textspan %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, 0, false
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "max-scan" {
			opts.maxCharsSet = true
		}
	})
	if _, ok := caseKinds[opts.caseKind]; opts.caseKind != "" && !ok {
		fmt.Fprintf(stderr, "Error: unknown -case %q\n", opts.caseKind)
		return opts, 2, false
	}

	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "Error: at most one file may be given\n")
		return opts, 2, false
	}
	opts.file = fs.Arg(0)
	return opts, 0, true
}
