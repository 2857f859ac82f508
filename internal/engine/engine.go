package engine

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/dshills/textspan/internal/bracket"
	"github.com/dshills/textspan/internal/engine/buffer"
	"github.com/dshills/textspan/internal/engine/marks"
	"github.com/dshills/textspan/internal/engine/text"
	"github.com/dshills/textspan/internal/highlight"
	"github.com/dshills/textspan/internal/logging"
)

// Re-export commonly used types for convenience.
type (
	// Range is a half-open character range.
	Range = text.Range

	// BracketResult is the outcome of a bracket search.
	BracketResult = bracket.Result

	// BracketMatch is a bracket search result with its offsets.
	BracketMatch = bracket.Match

	// Change describes one applied edit.
	Change = buffer.Change

	// CaseType selects a ChangeCase transformation.
	CaseType = buffer.CaseType

	// LineEnding is the line ending style Serialize writes.
	LineEnding = buffer.LineEnding
)

// Re-export constants.
const (
	BracketNone       = bracket.None
	BracketFound      = bracket.Found
	BracketNotFound   = bracket.NotFound
	BracketOutOfRange = bracket.OutOfRange

	CaseLower  = buffer.CaseLower
	CaseUpper  = buffer.CaseUpper
	CaseToggle = buffer.CaseToggle
	CaseTitle  = buffer.CaseTitle

	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF
	LineEndingCR   = buffer.LineEndingCR
)

// BracketEvent is delivered to OnBracketMatched observers when the cursor
// lands on or next to a delimiter, or leaves one.
type BracketEvent struct {
	// Cursor is the cursor offset the search ran for.
	Cursor int
	Match  BracketMatch
}

// Engine ties a buffer to its context-class table, the syntax analyzer,
// source marks and the bracket matcher. It tracks a cursor and reports
// bracket matches as the cursor moves or the text changes.
//
// All Engine methods are safe for concurrent use. Edits made directly on
// the buffer returned by Buffer must be serialised with engine calls.
type Engine struct {
	mu sync.Mutex

	id       uuid.UUID
	buf      *buffer.Buffer
	classes  *highlight.ClassTable
	analyzer *highlight.Analyzer
	matcher  *bracket.Matcher
	marks    *marks.Registry
	cursor   text.Handle
	match    BracketMatch
	closed   bool

	observers []func(BracketEvent)

	// Configuration
	initContent       string
	language          string
	filename          string
	caseLang          language.Tag
	maxScanChars      int
	contextClasses    []string
	highlightBrackets bool
	highlightSyntax   bool
	logger            zerolog.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		id:                uuid.New(),
		maxScanChars:      bracket.DefaultMaxScanChars,
		contextClasses:    bracket.DefaultContextClasses,
		highlightBrackets: true,
		highlightSyntax:   true,
		caseLang:          language.Und,
		logger:            zerolog.Nop(),
		match:             BracketMatch{Position: -1},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.Component(e.logger, "engine").With().Str("engine_id", e.id.String()).Logger()

	e.buf = buffer.NewFromString(e.initContent,
		buffer.WithDetectedLineEnding(e.initContent),
		buffer.WithCaseLanguage(e.caseLang),
	)
	e.classes = highlight.NewClassTable(e.buf, highlight.WithTableLogger(logging.Component(e.logger, "classes")))

	var err error
	e.analyzer, err = highlight.NewAnalyzer(e.buf, e.classes,
		highlight.WithLanguage(e.language),
		highlight.WithFilename(e.filename),
		highlight.WithAnalyzerLogger(logging.Component(e.logger, "analyzer")),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: create analyzer: %w", err)
	}

	e.matcher, err = bracket.New(e.buf, e.classes,
		bracket.WithContextClasses(e.contextClasses...),
		bracket.WithLogger(logging.Component(e.logger, "bracket")),
	)
	if err != nil {
		e.analyzer.Close()
		e.classes.Destroy()
		return nil, fmt.Errorf("engine: create bracket matcher: %w", err)
	}

	e.marks = marks.NewRegistry(e.buf, marks.WithLogger(logging.Component(e.logger, "marks")))
	e.cursor = e.buf.CreateMark(0, text.GravityRight)
	e.buf.OnChange(e.invalidate)

	e.logger.Debug().
		Str("language", e.analyzer.Language()).
		Stringer("line_ending", e.buf.LineEnding()).
		Int("len", e.buf.Len()).
		Msg("engine created")
	return e, nil
}

// NewFromReader creates an Engine whose content is read from r.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("engine: read content: %w", err)
	}
	return New(append([]Option{WithContent(string(data))}, opts...)...)
}

// ID returns the engine's unique identifier.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Buffer returns the underlying buffer.
func (e *Engine) Buffer() *buffer.Buffer {
	return e.buf
}

// Classes returns the context-class table.
func (e *Engine) Classes() *highlight.ClassTable {
	return e.classes
}

// Analyzer returns the syntax analyzer.
func (e *Engine) Analyzer() *highlight.Analyzer {
	return e.analyzer
}

// Marks returns the source mark registry.
func (e *Engine) Marks() *marks.Registry {
	return e.marks
}

// Text returns the full buffer content.
func (e *Engine) Text() string {
	return e.buf.Text()
}

// Len returns the buffer length in characters.
func (e *Engine) Len() int {
	return e.buf.Len()
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() int {
	return e.buf.LineCount()
}

// LineEnding returns the line ending style Serialize writes. It is
// detected from the initial content.
func (e *Engine) LineEnding() LineEnding {
	return e.buf.LineEnding()
}

// Serialize returns the content with the detected line endings restored.
func (e *Engine) Serialize() string {
	return e.buf.Serialize()
}

// WordAt returns the bounds of the word containing offset.
func (e *Engine) WordAt(offset int) (Range, bool) {
	return e.buf.WordAt(offset)
}

// invalidate marks the text affected by c for re-analysis. The analyzer
// keeps lexer state across lines, so everything from the first edited line
// to the end of the buffer is pending again.
func (e *Engine) invalidate(c Change) {
	start := e.buf.LineStart(e.buf.LineOf(c.NewRange.Start))
	if err := e.analyzer.Invalidate(start, e.buf.Len()); err != nil {
		e.logger.Warn().Err(err).Stringer("change", c).Msg("invalidate failed")
		return
	}
	e.logger.Debug().
		Stringer("change", c).
		Int("delta", c.Delta()).
		Uint64("revision", e.buf.Revision()).
		Int("from", start).
		Msg("analysis invalidated")
}

// Edit Operations

// Insert inserts s at offset and returns the end of the inserted text.
func (e *Engine) Insert(offset int, s string) (int, error) {
	return e.Replace(offset, offset, s)
}

// Delete removes [start, end).
func (e *Engine) Delete(start, end int) error {
	_, err := e.Replace(start, end, "")
	return err
}

// Replace replaces [start, end) with s and returns the end of the new text.
// The bracket match is refreshed for the cursor afterwards.
func (e *Engine) Replace(start, end int, s string) (int, error) {
	var newEnd int
	err := e.edit(func() error {
		var err error
		newEnd, err = e.buf.Replace(start, end, s)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newEnd, nil
}

// ChangeCase rewrites the case of [start, end) using the engine's case
// language.
func (e *Engine) ChangeCase(kind CaseType, start, end int) error {
	return e.edit(func() error {
		return e.buf.ChangeCase(kind, start, end)
	})
}

// edit runs apply under the engine lock and refreshes the bracket match.
func (e *Engine) edit(apply func() error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}

	if err := apply(); err != nil {
		e.mu.Unlock()
		return err
	}

	ev, observers := e.updateBracketMatchLocked()
	e.mu.Unlock()

	notify(observers, ev)
	return nil
}

// Cursor Operations

// Cursor returns the cursor offset.
func (e *Engine) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.MarkOffset(e.cursor)
}

// MoveCursor moves the cursor to offset and refreshes the bracket match.
// Observers are notified unless neither the previous nor the new position
// is next to a delimiter.
func (e *Engine) MoveCursor(offset int) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if offset < 0 || offset > e.buf.Len() {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrOffsetOutOfRange, offset)
	}

	e.buf.MoveMark(e.cursor, offset)
	ev, observers := e.updateBracketMatchLocked()
	e.mu.Unlock()

	notify(observers, ev)
	return nil
}

// BracketMatch returns the most recent bracket match.
func (e *Engine) BracketMatch() BracketMatch {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.match
}

// OnBracketMatched registers fn to be called after bracket matching runs.
// fn runs after the engine lock is released.
func (e *Engine) OnBracketMatched(fn func(BracketEvent)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// updateBracketMatchLocked runs the matcher at the cursor. It returns the
// event to deliver, or nil when nothing should be reported.
func (e *Engine) updateBracketMatchLocked() (*BracketEvent, []func(BracketEvent)) {
	if !e.highlightBrackets {
		return nil, nil
	}

	pos := e.buf.MarkOffset(e.cursor)
	if e.highlightSyntax {
		if err := e.ensureAroundLocked(pos); err != nil {
			e.logger.Warn().Err(err).Int("cursor", pos).Msg("syntax analysis failed")
		}
	}

	prev := e.match.Result
	e.match = e.matcher.FindWithFallback(pos, e.maxScanChars)

	e.logger.Debug().
		Int("cursor", pos).
		Int("bracket", e.match.Bracket).
		Int("match", e.match.Position).
		Stringer("result", e.match.Result).
		Msg("bracket match")

	if prev == bracket.None && e.match.Result == bracket.None {
		return nil, nil
	}
	ev := &BracketEvent{Cursor: pos, Match: e.match}
	return ev, append([]func(BracketEvent){}, e.observers...)
}

// ensureAroundLocked analyses the window the matcher can reach from pos.
func (e *Engine) ensureAroundLocked(pos int) error {
	if e.maxScanChars < 0 {
		return e.analyzer.EnsureAll()
	}
	return e.analyzer.Ensure(pos-e.maxScanChars-1, pos+e.maxScanChars+1)
}

func notify(observers []func(BracketEvent), ev *BracketEvent) {
	if ev == nil {
		return
	}
	for _, fn := range observers {
		fn(*ev)
	}
}

// Highlighting

// ContextClassesAt returns the context classes active at offset, analysing
// the surrounding text first when syntax highlighting is on.
func (e *Engine) ContextClassesAt(offset int) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if e.highlightSyntax {
		line := e.buf.LineBounds(offset)
		if err := e.analyzer.Ensure(line.Start, line.End+1); err != nil {
			return nil, err
		}
	}
	return e.classes.ContextClassesAt(offset), nil
}

// HighlightAll analyses every pending part of the buffer.
func (e *Engine) HighlightAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if !e.highlightSyntax {
		return nil
	}
	return e.analyzer.EnsureAll()
}

// SetHighlightMatchingBrackets turns bracket matching on or off. Turning it
// off clears the current match.
func (e *Engine) SetHighlightMatchingBrackets(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.highlightBrackets = on
	if !on {
		e.match = BracketMatch{Position: -1}
	}
}

// HighlightMatchingBrackets reports whether bracket matching is on.
func (e *Engine) HighlightMatchingBrackets() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highlightBrackets
}

// SetHighlightSyntax turns syntax analysis on or off. Turning it off drops
// every context class, so bracket matching ignores context.
func (e *Engine) SetHighlightSyntax(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.highlightSyntax == on || e.closed {
		e.highlightSyntax = on
		return
	}
	e.highlightSyntax = on
	if !on {
		n := e.buf.Len()
		if err := e.classes.UntagAll(0, n); err != nil {
			e.logger.Warn().Err(err).Msg("clearing context classes failed")
		}
		if err := e.analyzer.Invalidate(0, n); err != nil {
			e.logger.Warn().Err(err).Msg("invalidate failed")
		}
	}
}

// HighlightSyntax reports whether syntax analysis is on.
func (e *Engine) HighlightSyntax() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highlightSyntax
}

// Close releases every region, mark and observer and closes the buffer.
// Further edits fail with ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.analyzer.Close()
	e.classes.Destroy()
	e.marks.Clear()
	if e.cursor.IsValid() {
		e.buf.DeleteMark(e.cursor)
	}
	e.buf.Close()
	e.observers = nil
	e.logger.Debug().Msg("engine closed")
}
