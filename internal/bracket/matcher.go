package bracket

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/textspan/internal/engine/text"
)

// DefaultMaxScanChars is the step budget editors use for interactive
// matching.
const DefaultMaxScanChars = 10000

// MaxContextClasses is the number of context classes a mask can hold.
const MaxContextClasses = 64

// Default context classes considered by the matcher.
var DefaultContextClasses = []string{"comment", "string"}

// Errors returned by New.
var (
	ErrNilChars       = errors.New("bracket: nil character source")
	ErrTooManyClasses = errors.New("bracket: too many context classes")
	ErrEmptyClassName = errors.New("bracket: empty context class name")
)

// Classifier reports the context classes active at an offset. It is
// implemented by the highlighting layer.
type Classifier interface {
	HasContextClass(offset int, class string) bool
}

// Match is the result of FindWithFallback. Bracket is the offset of the
// delimiter the search started from and Position the offset of its
// partner, or -1.
type Match struct {
	Bracket  int
	Position int
	Result   Result
}

// Matcher searches for matching delimiters over a character source.
type Matcher struct {
	chars   text.Chars
	classes Classifier
	names   []string
	logger  zerolog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithContextClasses replaces the set of context classes that make up the
// mask.
func WithContextClasses(classes ...string) Option {
	return func(m *Matcher) {
		m.names = append([]string(nil), classes...)
	}
}

// WithLogger sets the matcher logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Matcher) {
		m.logger = l
	}
}

// New creates a matcher over chars. classes may be nil, in which case no
// context class is active anywhere.
func New(chars text.Chars, classes Classifier, opts ...Option) (*Matcher, error) {
	if chars == nil {
		return nil, ErrNilChars
	}
	m := &Matcher{
		chars:   chars,
		classes: classes,
		names:   DefaultContextClasses,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if len(m.names) > MaxContextClasses {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyClasses, len(m.names), MaxContextClasses)
	}
	for _, name := range m.names {
		if name == "" {
			return nil, ErrEmptyClassName
		}
	}
	return m, nil
}

// ContextClasses returns the classes that make up the mask, in bit order.
func (m *Matcher) ContextClasses() []string {
	return append([]string(nil), m.names...)
}

// mask returns a bit set of the context classes active at offset.
func (m *Matcher) mask(offset int) uint64 {
	if m.classes == nil {
		return 0
	}
	var out uint64
	for i, name := range m.names {
		if m.classes.HasContextClass(offset, name) {
			out |= 1 << i
		}
	}
	return out
}

// FindMatch looks for the delimiter matching the one at pos. A negative
// maxChars means the scan is unbounded.
//
// The returned offset is the matching delimiter when the result is Found,
// and -1 otherwise.
func (m *Matcher) FindMatch(pos, maxChars int) (int, Result) {
	n := m.chars.Len()
	if pos < 0 || pos >= n {
		return -1, None
	}

	base := m.chars.CharAt(pos)
	search, dir := Pair(base)
	if dir == 0 {
		return -1, None
	}
	if dir < 0 && pos == 0 {
		m.trace(pos, base, 0, NotFound)
		return -1, NotFound
	}

	baseMask := m.mask(pos)
	cur := pos
	depth := 0
	steps := 0

	for {
		if dir > 0 {
			cur = text.Forward(m.chars, cur, 1)
		} else {
			cur = text.Backward(cur, 1)
		}
		ch := m.chars.CharAt(cur)
		steps++

		curMask := m.mask(cur)
		if baseMask&^curMask != 0 {
			// Left a class the starting delimiter was inside.
			m.trace(pos, base, steps, NotFound)
			return -1, NotFound
		}

		if curMask == baseMask {
			switch ch {
			case search:
				if depth == 0 {
					m.trace(pos, base, steps, Found)
					return cur, Found
				}
				depth--
			case base:
				depth++
			}
		}

		if text.IsEnd(m.chars, cur) || text.IsStart(cur) {
			break
		}
		if maxChars >= 0 && steps >= maxChars {
			break
		}
	}

	result := NotFound
	if maxChars >= 0 && steps >= maxChars {
		result = OutOfRange
	}
	m.trace(pos, base, steps, result)
	return -1, result
}

// FindWithFallback checks the character at pos first and, when it is not
// a delimiter and pos does not start a line, the character before it. A
// delimiter after the cursor therefore takes precedence over one before.
func (m *Matcher) FindWithFallback(pos, maxChars int) Match {
	match, result := m.FindMatch(pos, maxChars)
	if result != None {
		return Match{Bracket: pos, Position: match, Result: result}
	}

	if pos > 0 && pos <= m.chars.Len() && !m.chars.StartsLine(pos) {
		match, result = m.FindMatch(pos-1, maxChars)
		if result != None {
			return Match{Bracket: pos - 1, Position: match, Result: result}
		}
	}
	return Match{Bracket: pos, Position: -1, Result: None}
}

func (m *Matcher) trace(pos int, base rune, steps int, result Result) {
	if e := m.logger.Trace(); e.Enabled() {
		e.Int("pos", pos).
			Str("bracket", string(base)).
			Int("steps", steps).
			Stringer("result", result).
			Msg("bracket scan")
	}
}
