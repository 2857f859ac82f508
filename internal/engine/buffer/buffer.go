package buffer

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/dshills/textspan/internal/engine/text"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrClosed           = errors.New("buffer is closed")
)

// LineEnding specifies the line ending style used when the buffer is
// serialised. Content is always stored with LF line endings.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingLF:
		return "\\n"
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer is an editable character sequence that issues marks.
// It implements text.Sequence. All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	chars      []rune
	marks      map[text.Handle]*mark
	nextMark   uint64
	revision   uint64
	lineEnding LineEnding
	caseLang   language.Tag
	closed     bool
	observers  []observer
	nextObs    uint64
}

type observer struct {
	id uint64
	fn func(Change)
}

// mark is the bookkeeping behind a text.Handle.
type mark struct {
	offset  int
	gravity text.Gravity
}

var _ text.Sequence = (*Buffer)(nil)

// New creates a new empty buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		marks:      make(map[text.Handle]*mark),
		lineEnding: LineEndingLF,
		caseLang:   language.Und,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewFromString creates a buffer with initial content.
func NewFromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	b.chars = []rune(normalizeLineEndings(s))
	return b
}

// normalizeLineEndings converts CRLF and CR line endings to LF.
func normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Read Operations

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.chars)
}

// Slice returns the text in [start, end), clamped to the buffer.
func (b *Buffer) Slice(start, end int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start, end = text.Order(start, end)
	start = clamp(start, 0, len(b.chars))
	end = clamp(end, 0, len(b.chars))
	return string(b.chars[start:end])
}

// Len returns the number of characters in the buffer.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chars)
}

// CharAt returns the character at offset, or 0 outside the buffer.
func (b *Buffer) CharAt(offset int) rune {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset < 0 || offset >= len(b.chars) {
		return 0
	}
	return b.chars[offset]
}

// StartsLine reports whether offset is the first position of a line.
func (b *Buffer) StartsLine(offset int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset == 0 {
		return true
	}
	if offset < 0 || offset > len(b.chars) {
		return false
	}
	return b.chars[offset-1] == '\n'
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 1
	for _, r := range b.chars {
		if r == '\n' {
			n++
		}
	}
	return n
}

// LineOf returns the 0-indexed line containing offset.
func (b *Buffer) LineOf(offset int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	offset = clamp(offset, 0, len(b.chars))
	line := 0
	for _, r := range b.chars[:offset] {
		if r == '\n' {
			line++
		}
	}
	return line
}

// LineStart returns the offset of the first character of line.
// Lines past the end map to the buffer length.
func (b *Buffer) LineStart(line int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineStartLocked(line)
}

func (b *Buffer) lineStartLocked(line int) int {
	if line <= 0 {
		return 0
	}
	for i, r := range b.chars {
		if r == '\n' {
			line--
			if line == 0 {
				return i + 1
			}
		}
	}
	return len(b.chars)
}

// LineEnd returns the offset of the newline ending line, or the buffer
// length for the last line.
func (b *Buffer) LineEnd(line int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := b.lineStartLocked(line); i < len(b.chars); i++ {
		if b.chars[i] == '\n' {
			return i
		}
	}
	return len(b.chars)
}

// LineBounds returns the range [start, end) of the line containing offset,
// excluding the newline.
func (b *Buffer) LineBounds(offset int) text.Range {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineBoundsLocked(offset)
}

func (b *Buffer) lineBoundsLocked(offset int) text.Range {
	offset = clamp(offset, 0, len(b.chars))
	start := offset
	for start > 0 && b.chars[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(b.chars) && b.chars[end] != '\n' {
		end++
	}
	return text.Range{Start: start, End: end}
}

// Write Operations

// Insert inserts s at offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset int, s string) (int, error) {
	return b.Replace(offset, offset, s)
}

// Delete removes the characters in [start, end).
func (b *Buffer) Delete(start, end int) error {
	_, err := b.Replace(start, end, "")
	return err
}

// Replace replaces [start, end) with s.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end int, s string) (int, error) {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return 0, ErrClosed
	}
	if start < 0 || start > end || end > len(b.chars) {
		b.mu.Unlock()
		if start == end {
			return 0, ErrOffsetOutOfRange
		}
		return 0, ErrRangeInvalid
	}

	inserted := []rune(normalizeLineEndings(s))
	if start == end && len(inserted) == 0 {
		b.mu.Unlock()
		return start, nil
	}

	oldText := string(b.chars[start:end])
	tail := append([]rune(nil), b.chars[end:]...)
	b.chars = append(append(b.chars[:start], inserted...), tail...)

	if end > start {
		b.relocateDelete(start, end)
	}
	if len(inserted) > 0 {
		b.relocateInsert(start, len(inserted))
	}
	b.revision++

	change := Change{
		Range:    text.Range{Start: start, End: end},
		NewRange: text.Range{Start: start, End: start + len(inserted)},
		OldText:  oldText,
		NewText:  string(inserted),
	}
	change.Type = change.classify()
	observers := append([]observer(nil), b.observers...)
	b.mu.Unlock()

	for _, o := range observers {
		o.fn(change)
	}
	return change.NewRange.End, nil
}

// Buffer State

// Revision returns a counter incremented by every edit.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// Serialize returns the content using the buffer's line ending style.
func (b *Buffer) Serialize() string {
	s := b.Text()
	if b.LineEnding() == LineEndingLF {
		return s
	}
	return strings.ReplaceAll(s, "\n", b.LineEnding().Sequence())
}

// OnChange registers fn to be called after every edit. fn runs on the
// editing goroutine after the buffer lock is released. The returned
// function unregisters fn.
func (b *Buffer) OnChange(fn func(Change)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextObs++
	id := b.nextObs
	b.observers = append(b.observers, observer{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.observers = slices.DeleteFunc(b.observers, func(o observer) bool { return o.id == id })
	}
}

// OnEdit registers fn to be called after every edit.
func (b *Buffer) OnEdit(fn func()) (cancel func()) {
	return b.OnChange(func(Change) { fn() })
}

// Close destroys the buffer. All marks are dropped, further edits fail
// with ErrClosed and Closed reports true.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.marks = make(map[text.Handle]*mark)
	b.observers = nil
}

// Closed reports whether Close has been called.
func (b *Buffer) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
