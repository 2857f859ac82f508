package marks

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/textspan/internal/engine/text"
)

// Errors returned by Registry operations.
var (
	ErrEmptyCategory = errors.New("marks: category must not be empty")
	ErrDuplicateName = errors.New("marks: a mark with this name already exists")
	ErrNotRegistered = errors.New("marks: mark does not belong to this registry")
)

// Lines resolves line numbers to offsets. *buffer.Buffer satisfies it.
type Lines interface {
	LineStart(line int) int
	LineEnd(line int) int
}

// Mark is a categorised position in the text, such as a bookmark or a
// breakpoint. Marks have left gravity: text inserted at a mark's offset
// ends up after it.
type Mark struct {
	Name     string
	Category string

	handle   text.Handle
	order    uint64
	registry atomic.Pointer[Registry]
}

// Offset returns the mark's current offset, or -1 once it is deleted.
// It is safe to call while another goroutine deletes the mark.
func (m *Mark) Offset() int {
	if m == nil {
		return -1
	}
	r := m.registry.Load()
	if r == nil {
		return -1
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if m.registry.Load() != r {
		return -1
	}
	return r.marks.MarkOffset(m.handle)
}

// Deleted reports whether the mark has been removed from its registry.
func (m *Mark) Deleted() bool {
	return m == nil || m.registry.Load() == nil
}

func (m *Mark) ownedBy(r *Registry) bool {
	return m != nil && m.registry.Load() == r
}

// Registry owns the marks placed on one text sequence.
type Registry struct {
	mu      sync.RWMutex
	marks   text.Marks
	all     []*Mark
	byName  map[string]*Mark
	counter uint64
	logger  zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry over marks.
func NewRegistry(marks text.Marks, opts ...Option) *Registry {
	r := &Registry{
		marks:  marks,
		byName: make(map[string]*Mark),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create places a new mark at offset. Name may be empty for an anonymous
// mark; named marks must be unique.
func (r *Registry) Create(name, category string, offset int) (*Mark, error) {
	if category == "" {
		return nil, ErrEmptyCategory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if name != "" {
		if _, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}

	r.counter++
	m := &Mark{
		Name:     name,
		Category: category,
		handle:   r.marks.CreateMark(offset, text.GravityLeft),
		order:    r.counter,
	}
	m.registry.Store(r)
	r.all = append(r.all, m)
	if name != "" {
		r.byName[name] = m
	}

	r.logger.Debug().Str("name", name).Str("category", category).Int("offset", r.marks.MarkOffset(m.handle)).Msg("mark created")
	return m, nil
}

// Lookup returns the named mark, or nil.
func (r *Registry) Lookup(name string) *Mark {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Delete removes m and releases its position.
func (r *Registry) Delete(m *Mark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(m)
}

func (r *Registry) deleteLocked(m *Mark) error {
	if !m.ownedBy(r) {
		return ErrNotRegistered
	}
	r.marks.DeleteMark(m.handle)
	r.all = slices.DeleteFunc(r.all, func(x *Mark) bool { return x == m })
	if m.Name != "" {
		delete(r.byName, m.Name)
	}
	m.registry.Store(nil)
	return nil
}

// Len returns the number of live marks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}

// sorted returns the marks of category in position order, ties broken by
// creation order. An empty category matches every mark.
func (r *Registry) sorted(category string) []*Mark {
	type entry struct {
		m   *Mark
		off int
	}
	entries := make([]entry, 0, len(r.all))
	for _, m := range r.all {
		if category == "" || m.Category == category {
			entries = append(entries, entry{m, r.marks.MarkOffset(m.handle)})
		}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := text.Compare(a.off, b.off); c != 0 {
			return c
		}
		return text.Compare(int(a.m.order), int(b.m.order))
	})

	out := make([]*Mark, len(entries))
	for i, e := range entries {
		out[i] = e.m
	}
	return out
}

// Next returns the mark following m in position order, restricted to
// category, or nil.
func (r *Registry) Next(m *Mark, category string) *Mark {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !m.ownedBy(r) {
		return nil
	}
	all := r.sorted("")
	i := slices.Index(all, m)
	for _, n := range all[i+1:] {
		if category == "" || n.Category == category {
			return n
		}
	}
	return nil
}

// Prev returns the mark preceding m in position order, restricted to
// category, or nil.
func (r *Registry) Prev(m *Mark, category string) *Mark {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !m.ownedBy(r) {
		return nil
	}
	all := r.sorted("")
	for i := slices.Index(all, m) - 1; i >= 0; i-- {
		if category == "" || all[i].Category == category {
			return all[i]
		}
	}
	return nil
}

// ForwardTo returns the offset of the first mark of category strictly
// after offset.
func (r *Registry) ForwardTo(offset int, category string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.sorted(category) {
		if off := r.marks.MarkOffset(m.handle); off > offset {
			return off, true
		}
	}
	return offset, false
}

// BackwardTo returns the offset of the last mark of category strictly
// before offset.
func (r *Registry) BackwardTo(offset int, category string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ms := r.sorted(category)
	for i := len(ms) - 1; i >= 0; i-- {
		if off := r.marks.MarkOffset(ms[i].handle); off < offset {
			return off, true
		}
	}
	return offset, false
}

// At returns the marks of category located exactly at offset.
func (r *Registry) At(offset int, category string) []*Mark {
	return r.InRange(offset, offset, category)
}

// InRange returns the marks of category whose offset lies in
// [start, end], both ends included.
func (r *Registry) InRange(start, end int, category string) []*Mark {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inRangeLocked(start, end, category)
}

func (r *Registry) inRangeLocked(start, end int, category string) []*Mark {
	start, end = text.Order(start, end)

	var out []*Mark
	for _, m := range r.sorted(category) {
		off := r.marks.MarkOffset(m.handle)
		if off > end {
			break
		}
		if off >= start {
			out = append(out, m)
		}
	}
	return out
}

// AtLine returns the marks of category on the given line.
func (r *Registry) AtLine(lines Lines, line int, category string) []*Mark {
	return r.InRange(lines.LineStart(line), lines.LineEnd(line), category)
}

// Remove deletes every mark of category in [start, end] and returns how
// many were removed.
func (r *Registry) Remove(start, end int, category string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	victims := r.inRangeLocked(start, end, category)
	for _, m := range victims {
		_ = r.deleteLocked(m)
	}
	if len(victims) > 0 {
		r.logger.Debug().Int("start", start).Int("end", end).Str("category", category).Int("removed", len(victims)).Msg("marks removed")
	}
	return len(victims)
}

// Categories returns the distinct categories in use, in position order of
// their first mark.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, m := range r.sorted("") {
		if !slices.Contains(out, m.Category) {
			out = append(out, m.Category)
		}
	}
	return out
}

// Clear deletes every mark.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.all {
		r.marks.DeleteMark(m.handle)
		m.registry.Store(nil)
	}
	r.all = nil
	clear(r.byName)
}
