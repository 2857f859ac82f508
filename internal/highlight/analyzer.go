package highlight

import (
	"fmt"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/rs/zerolog"

	"github.com/dshills/textspan/internal/engine/region"
	"github.com/dshills/textspan/internal/engine/text"
)

// Document is the text the analyzer reads. *buffer.Buffer satisfies it.
type Document interface {
	text.Sequence
	Text() string
}

// Analyzer assigns context classes to a document with a chroma lexer. It
// keeps a set of ranges that need re-analysis and only rewrites classes
// inside those ranges.
type Analyzer struct {
	doc      Document
	classes  *ClassTable
	lexer    chroma.Lexer
	dirty    *region.Set
	language string
	filename string
	logger   zerolog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLanguage selects the lexer by name or alias, e.g. "go" or "python".
func WithLanguage(name string) AnalyzerOption {
	return func(a *Analyzer) {
		a.language = name
	}
}

// WithFilename selects the lexer by file name when no language is given.
func WithFilename(name string) AnalyzerOption {
	return func(a *Analyzer) {
		a.filename = name
	}
}

// WithAnalyzerLogger sets the analyzer logger.
func WithAnalyzerLogger(l zerolog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// NewAnalyzer creates an analyzer writing into classes. The whole document
// starts out pending.
func NewAnalyzer(doc Document, classes *ClassTable, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		doc:     doc,
		classes: classes,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.lexer = a.pickLexer()
	a.dirty = region.New(doc, region.WithLogger(a.logger))
	if err := a.Invalidate(0, doc.Len()); err != nil {
		return nil, err
	}

	a.logger.Debug().Str("lexer", a.Language()).Msg("analyzer ready")
	return a, nil
}

func (a *Analyzer) pickLexer() chroma.Lexer {
	var l chroma.Lexer
	if a.language != "" {
		l = lexers.Get(a.language)
	}
	if l == nil && a.filename != "" {
		l = lexers.Match(a.filename)
	}
	if l == nil && a.language == "" && a.filename == "" {
		l = lexers.Analyse(a.doc.Text())
	}
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

// Language returns the name of the lexer in use.
func (a *Analyzer) Language() string {
	return a.lexer.Config().Name
}

// Invalidate marks [start, end) as needing re-analysis. Offsets are
// clamped to the document.
func (a *Analyzer) Invalidate(start, end int) error {
	n := a.doc.Len()
	start, end = text.Order(max(0, min(start, n)), max(0, min(end, n)))
	return a.dirty.Add(start, end)
}

// Pending returns the ranges still waiting for analysis.
func (a *Analyzer) Pending() []text.Range {
	return a.dirty.Spans()
}

// EnsureAll analyses every pending range.
func (a *Analyzer) EnsureAll() error {
	return a.Ensure(0, a.doc.Len())
}

// Ensure analyses the pending part of [start, end).
func (a *Analyzer) Ensure(start, end int) error {
	n := a.doc.Len()
	start, end = text.Order(max(0, min(start, n)), max(0, min(end, n)))

	pending, err := a.dirty.Intersect(start, end)
	if err != nil {
		return fmt.Errorf("highlight: collect pending ranges: %w", err)
	}
	defer pending.Destroy()

	if pending.IsEmpty() {
		return nil
	}

	spans, err := a.tokenize()
	if err != nil {
		return err
	}

	it := pending.Iterator(0)
	for {
		done, err := it.Done()
		if err != nil {
			return err
		}
		if done {
			break
		}
		r, err := it.Current()
		if err != nil {
			return err
		}
		if err := a.apply(spans, r); err != nil {
			return err
		}
		if err := a.dirty.Subtract(r.Start, r.End); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return err
		}
	}

	a.logger.Debug().Int("start", start).Int("end", end).Int("pending", a.dirty.Count()).Msg("analysis refreshed")
	return nil
}

// classSpan is a lexed token range and the classes it carries.
type classSpan struct {
	r       text.Range
	classes []string
}

// tokenize lexes the whole document. Lexing always starts at the top
// because chroma lexers carry state across lines.
func (a *Analyzer) tokenize() ([]classSpan, error) {
	src := a.doc.Text()
	n := utf8.RuneCountInString(src)

	it, err := a.lexer.Tokenise(nil, src)
	if err != nil {
		return nil, fmt.Errorf("highlight: tokenise with %s: %w", a.Language(), err)
	}

	var spans []classSpan
	offset := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		length := utf8.RuneCountInString(tok.Value)
		start := min(offset, n)
		end := min(offset+length, n)
		offset += length

		classes := ClassesFor(tok.Type)
		if len(classes) == 0 || start == end {
			continue
		}
		spans = append(spans, classSpan{r: text.Range{Start: start, End: end}, classes: classes})
	}
	return spans, nil
}

// apply rewrites the classes inside r from spans.
func (a *Analyzer) apply(spans []classSpan, r text.Range) error {
	for _, class := range managedClasses {
		if err := a.classes.Untag(class, r.Start, r.End); err != nil {
			return err
		}
	}
	for _, s := range spans {
		if !s.r.Overlaps(r) {
			continue
		}
		clip := s.r.Intersect(r)
		for _, class := range s.classes {
			if err := a.classes.Tag(class, clip.Start, clip.End); err != nil {
				return err
			}
		}
	}
	return nil
}

// managedClasses are the classes the analyzer owns.
var managedClasses = []string{ClassComment, ClassString, ClassNoSpellCheck}

// ClassesFor maps a chroma token type to context classes. Code tokens are
// excluded from spell checking; prose in comments and strings is not.
// Preprocessor directives count as code.
func ClassesFor(t chroma.TokenType) []string {
	switch {
	case t.InSubCategory(chroma.Comment):
		return []string{ClassComment}
	case t.InSubCategory(chroma.LiteralString):
		return []string{ClassString}
	case t.InCategory(chroma.Keyword),
		t.InCategory(chroma.Name),
		t.InCategory(chroma.Literal),
		t.InCategory(chroma.Operator),
		t.InCategory(chroma.Punctuation),
		t.InCategory(chroma.Comment):
		return []string{ClassNoSpellCheck}
	default:
		return nil
	}
}

// Close releases the pending set.
func (a *Analyzer) Close() {
	a.dirty.Destroy()
}
