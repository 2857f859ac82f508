package highlight

import (
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/textspan/internal/bracket"
	"github.com/dshills/textspan/internal/engine/region"
	"github.com/dshills/textspan/internal/engine/text"
)

// Context class names.
const (
	ClassComment      = "comment"
	ClassString       = "string"
	ClassNoSpellCheck = "no-spell-check"
)

// ErrEmptyClass is returned when a class name is empty.
var ErrEmptyClass = errors.New("highlight: empty context class")

// ClassTable records which context classes cover which parts of a text
// sequence. Each class is a region.Set, so tagged ranges follow edits.
type ClassTable struct {
	mu     sync.Mutex
	seq    text.Sequence
	sets   map[string]*region.Set
	logger zerolog.Logger
}

var _ bracket.Classifier = (*ClassTable)(nil)

// TableOption configures a ClassTable.
type TableOption func(*ClassTable)

// WithTableLogger sets the logger handed to the per-class region sets.
func WithTableLogger(l zerolog.Logger) TableOption {
	return func(t *ClassTable) {
		t.logger = l
	}
}

// NewClassTable creates an empty table over seq.
func NewClassTable(seq text.Sequence, opts ...TableOption) *ClassTable {
	t := &ClassTable{
		seq:    seq,
		sets:   make(map[string]*region.Set),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tag marks [start, end) with class.
func (t *ClassTable) Tag(class string, start, end int) error {
	if class == "" {
		return ErrEmptyClass
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.sets[class]
	if !ok {
		set = region.New(t.seq,
			region.WithLocker(&t.mu),
			region.WithLogger(t.logger.With().Str("class", class).Logger()),
		)
		t.sets[class] = set
	}
	return set.Add(start, end)
}

// Untag removes class from [start, end).
func (t *ClassTable) Untag(class string, start, end int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.sets[class]
	if !ok {
		return nil
	}
	return set.Subtract(start, end)
}

// UntagAll removes every class from [start, end).
func (t *ClassTable) UntagAll(start, end int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, set := range t.sets {
		if err := set.Subtract(start, end); err != nil {
			return err
		}
	}
	return nil
}

// HasContextClass reports whether class covers offset.
func (t *ClassTable) HasContextClass(offset int, class string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.sets[class]
	return ok && set.Contains(offset)
}

// ContextClassesAt returns the sorted names of the classes covering offset.
func (t *ClassTable) ContextClassesAt(offset int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []string
	for name, set := range t.sets {
		if set.Contains(offset) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Classes returns the sorted names of every class that has been tagged.
func (t *ClassTable) Classes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.sets))
	for name, set := range t.sets {
		if !set.IsEmpty() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Regions returns a snapshot of the ranges covered by class.
func (t *ClassTable) Regions(class string) []text.Range {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.sets[class]
	if !ok {
		return nil
	}
	return set.Spans()
}

// ForwardToToggle returns the first offset after offset where class starts
// or stops applying.
func (t *ClassTable) ForwardToToggle(offset int, class string) (int, bool) {
	for _, b := range t.boundaries(class) {
		if b > offset {
			return b, true
		}
	}
	return offset, false
}

// BackwardToToggle returns the last offset before offset where class starts
// or stops applying.
func (t *ClassTable) BackwardToToggle(offset int, class string) (int, bool) {
	bs := t.boundaries(class)
	for i := len(bs) - 1; i >= 0; i-- {
		if bs[i] < offset {
			return bs[i], true
		}
	}
	return offset, false
}

func (t *ClassTable) boundaries(class string) []int {
	spans := t.Regions(class)
	out := make([]int, 0, 2*len(spans))
	for _, r := range spans {
		out = append(out, r.Start, r.End)
	}
	return slices.Compact(out)
}

// Destroy releases every region set.
func (t *ClassTable) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for name, set := range t.sets {
		set.Destroy()
		delete(t.sets, name)
	}
}
