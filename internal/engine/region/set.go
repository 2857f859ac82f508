package region

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/textspan/internal/engine/text"
)

// subregion is one tracked range. start has left gravity and end has
// right gravity.
type subregion struct {
	start text.Handle
	end   text.Handle
}

// Set is an ordered collection of disjoint ranges anchored by marks.
type Set struct {
	seq        text.Sequence
	subregions []subregion
	version    uint64
	cancel     func()
	locker     sync.Locker
	logger     zerolog.Logger
}

// Option configures a Set.
type Option func(*Set)

// WithLogger sets the logger used for debug traces and stale-iterator
// warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Set) {
		s.logger = l
	}
}

// WithLocker sets the lock held while the set compacts itself after an
// edit of the backing sequence. Embedders that guard the set with their
// own mutex pass it here.
func WithLocker(l sync.Locker) Option {
	return func(s *Set) {
		s.locker = l
	}
}

// New creates an empty set over seq. A nil seq yields a set that is
// permanently empty. The set subscribes to edits of seq until it is
// detached or destroyed.
func New(seq text.Sequence, opts ...Option) *Set {
	s := &Set{
		seq:    seq,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if seq != nil && !seq.Closed() {
		s.cancel = seq.OnEdit(s.edited)
	}
	return s
}

// edited runs after every edit of the backing sequence. Subregions the
// edit collapsed are released at once so that text inserted later at the
// same offset does not fall inside them.
func (s *Set) edited() {
	if s.locker != nil {
		s.locker.Lock()
		defer s.locker.Unlock()
	}
	if seq := s.live(); seq != nil && s.compact(seq) {
		s.trace("compact", 0, seq.Len())
	}
}

// Sequence returns the backing sequence, or nil once it has gone away.
func (s *Set) Sequence() text.Sequence {
	if s == nil {
		return nil
	}
	return s.live()
}

// Version returns the structural version counter.
func (s *Set) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

// live returns the backing sequence, dropping it and every subregion the
// first time the sequence reports Closed. The closed sequence already
// discarded its marks, so they are not released.
func (s *Set) live() text.Sequence {
	if s.seq == nil {
		return nil
	}
	if s.seq.Closed() {
		s.logger.Debug().Int("subregions", len(s.subregions)).Msg("backing sequence closed, dropping region")
		s.seq = nil
		s.cancel = nil
		s.subregions = nil
		s.version++
		return nil
	}
	return s.seq
}

func (s *Set) checkRange(seq text.Sequence, start, end int) error {
	n := seq.Len()
	if start < 0 || start > n || end < 0 || end > n {
		return fmt.Errorf("%w: [%d, %d) with length %d", ErrOffsetOutOfRange, start, end, n)
	}
	return nil
}

func (s *Set) bounds(seq text.Sequence, i int) (int, int) {
	sr := s.subregions[i]
	return seq.MarkOffset(sr.start), seq.MarkOffset(sr.end)
}

func (s *Set) release(seq text.Sequence, sr subregion) {
	seq.DeleteMark(sr.start)
	seq.DeleteMark(sr.end)
}

// findStart returns the index of the first subregion whose end is after
// offset, or equal to it when includeEdges is set. It returns -1 when no
// subregion qualifies.
func (s *Set) findStart(seq text.Sequence, offset int, includeEdges bool) int {
	i := sort.Search(len(s.subregions), func(i int) bool {
		end := seq.MarkOffset(s.subregions[i].end)
		return offset < end || (includeEdges && offset == end)
	})
	if i == len(s.subregions) {
		return -1
	}
	return i
}

// findEnd returns the index of the last subregion at or after from whose
// start is before offset, or equal to it when includeEdges is set. It
// returns from-1 when no such subregion exists.
func (s *Set) findEnd(seq text.Sequence, offset, from int, includeEdges bool) int {
	j := sort.Search(len(s.subregions), func(j int) bool {
		start := seq.MarkOffset(s.subregions[j].start)
		return !(offset > start || (includeEdges && offset == start))
	}) - 1
	if j < from {
		return from - 1
	}
	return j
}

// compact prunes collapsed subregions and coalesces neighbours that text
// edits brought into contact. It reports whether anything changed.
func (s *Set) compact(seq text.Sequence) bool {
	changed := s.pruneEmpty(seq)

	for i := 1; i < len(s.subregions); {
		_, prevEnd := s.bounds(seq, i-1)
		curStart, curEnd := s.bounds(seq, i)
		if prevEnd < curStart {
			i++
			continue
		}

		prev := &s.subregions[i-1]
		cur := s.subregions[i]
		seq.DeleteMark(cur.start)
		if curEnd > prevEnd {
			seq.DeleteMark(prev.end)
			prev.end = cur.end
		} else {
			seq.DeleteMark(cur.end)
		}
		s.subregions = slices.Delete(s.subregions, i, i+1)
		changed = true
	}

	if changed {
		s.version++
	}
	return changed
}

// pruneEmpty releases and removes every subregion whose start and end
// coincide.
func (s *Set) pruneEmpty(seq text.Sequence) bool {
	n := len(s.subregions)
	s.subregions = slices.DeleteFunc(s.subregions, func(sr subregion) bool {
		if seq.MarkOffset(sr.start) < seq.MarkOffset(sr.end) {
			return false
		}
		s.release(seq, sr)
		return true
	})
	return len(s.subregions) != n
}

// Add unions [start, end) into the set. The bounds are reordered if
// reversed; an empty range is ignored. Ranges that overlap or touch the
// new one are merged with it.
func (s *Set) Add(start, end int) error {
	if s == nil {
		return ErrNilSet
	}
	seq := s.live()
	if seq == nil {
		return nil
	}
	if err := s.checkRange(seq, start, end); err != nil {
		return err
	}

	start, end = text.Order(start, end)
	if start == end {
		return nil
	}

	s.compact(seq)

	lo := s.findStart(seq, start, true)
	hi := s.findEnd(seq, end, max(lo, 0), true)

	if lo < 0 || hi < lo {
		sr := subregion{
			start: seq.CreateMark(start, text.GravityLeft),
			end:   seq.CreateMark(end, text.GravityRight),
		}
		pos := lo
		if pos < 0 {
			pos = len(s.subregions)
		}
		s.subregions = slices.Insert(s.subregions, pos, sr)
	} else {
		if hi > lo {
			for _, q := range s.subregions[lo+1 : hi] {
				s.release(seq, q)
			}
			last := s.subregions[hi]
			seq.DeleteMark(s.subregions[lo].end)
			seq.DeleteMark(last.start)
			s.subregions[lo].end = last.end
			s.subregions = slices.Delete(s.subregions, lo+1, hi+1)
		}

		sr := s.subregions[lo]
		if seq.MarkOffset(sr.start) > start {
			seq.MoveMark(sr.start, start)
		}
		if seq.MarkOffset(sr.end) < end {
			seq.MoveMark(sr.end, end)
		}
	}

	s.version++
	s.trace("add", start, end)
	return nil
}

// Subtract removes [start, end) from the set. The bounds are reordered if
// reversed; an empty range is ignored. A range that only touches a
// subregion's edge leaves that subregion intact.
func (s *Set) Subtract(start, end int) error {
	if s == nil {
		return ErrNilSet
	}
	seq := s.live()
	if seq == nil {
		return nil
	}
	if err := s.checkRange(seq, start, end); err != nil {
		return err
	}

	start, end = text.Order(start, end)
	if start == end {
		return nil
	}

	s.compact(seq)

	lo := s.findStart(seq, start, false)
	hi := s.findEnd(seq, end, max(lo, 0), false)
	if lo < 0 || hi < lo {
		return nil
	}

	firstStart, firstEnd := s.bounds(seq, lo)
	startOutside, endOutside := false, false

	if start > firstStart && start < firstEnd {
		if end < firstEnd {
			// Both points fall strictly inside one subregion: split it.
			// The tail takes over the old end mark.
			tail := subregion{
				start: seq.CreateMark(end, text.GravityLeft),
				end:   s.subregions[lo].end,
			}
			s.subregions[lo].end = seq.CreateMark(start, text.GravityRight)
			s.subregions = slices.Insert(s.subregions, lo+1, tail)
			s.version++
			s.trace("subtract", start, end)
			return nil
		}
		seq.MoveMark(s.subregions[lo].end, start)
	} else {
		startOutside = true
	}

	lastStart, lastEnd := firstStart, firstEnd
	if hi != lo {
		lastStart, lastEnd = s.bounds(seq, hi)
	}
	if end >= lastStart && end < lastEnd {
		seq.MoveMark(s.subregions[hi].start, end)
	} else {
		endOutside = true
	}

	from, to := lo, hi
	if !startOutside {
		from++
	}
	if !endOutside {
		to--
	}
	if from <= to {
		for _, sr := range s.subregions[from : to+1] {
			s.release(seq, sr)
		}
		s.subregions = slices.Delete(s.subregions, from, to+1)
	}

	s.pruneEmpty(seq)
	s.version++
	s.trace("subtract", start, end)
	return nil
}

// Intersect returns a new, independent set holding the part of the
// receiver that lies inside [start, end). The receiver is not modified.
// No overlap yields an empty set.
func (s *Set) Intersect(start, end int) (*Set, error) {
	if s == nil {
		return nil, ErrNilSet
	}
	seq := s.live()
	result := New(seq, WithLogger(s.logger))
	if seq == nil {
		return result, nil
	}
	if err := s.checkRange(seq, start, end); err != nil {
		return nil, err
	}

	start, end = text.Order(start, end)
	if start == end {
		return result, nil
	}

	lo := s.findStart(seq, start, false)
	hi := s.findEnd(seq, end, max(lo, 0), false)
	if lo < 0 || hi < lo {
		return result, nil
	}

	for i := lo; i <= hi; i++ {
		srStart, srEnd := s.bounds(seq, i)
		r := text.NewRange(srStart, srEnd).Intersect(text.NewRange(start, end))
		if r.IsEmpty() {
			continue
		}
		if err := result.Add(r.Start, r.End); err != nil {
			result.Destroy()
			return nil, err
		}
	}
	return result, nil
}

// view returns the compacted ranges without modifying the set.
func (s *Set) view() []text.Range {
	seq := s.live()
	if seq == nil || len(s.subregions) == 0 {
		return nil
	}

	out := make([]text.Range, 0, len(s.subregions))
	for i := range s.subregions {
		start, end := s.bounds(seq, i)
		if start >= end {
			continue
		}
		r := text.NewRange(start, end)
		if n := len(out); n > 0 && out[n-1].Touches(r) {
			out[n-1] = out[n-1].Union(r)
			continue
		}
		out = append(out, r)
	}
	return out
}

// Count returns the number of disjoint ranges.
func (s *Set) Count() int {
	if s == nil {
		return 0
	}
	return len(s.view())
}

// IsEmpty reports whether the set covers no text.
func (s *Set) IsEmpty() bool {
	return s.Count() == 0
}

// Nth returns the k-th range in ascending order. ok is false when k is
// out of range.
func (s *Set) Nth(k int) (r text.Range, ok bool) {
	if s == nil || k < 0 {
		return text.Range{}, false
	}
	v := s.view()
	if k >= len(v) {
		return text.Range{}, false
	}
	return v[k], true
}

// Spans returns a snapshot of every range in ascending order.
func (s *Set) Spans() []text.Range {
	if s == nil {
		return nil
	}
	return s.view()
}

// All returns an iterator over a snapshot of the ranges. Unlike Iterator,
// it is unaffected by later modifications of the set.
func (s *Set) All() iter.Seq[text.Range] {
	spans := s.Spans()
	return func(yield func(text.Range) bool) {
		for _, r := range spans {
			if !yield(r) {
				return
			}
		}
	}
}

// Contains reports whether offset lies inside one of the ranges.
func (s *Set) Contains(offset int) bool {
	if s == nil {
		return false
	}
	seq := s.live()
	if seq == nil {
		return false
	}
	for i := s.findStart(seq, offset, false); i >= 0 && i < len(s.subregions); i++ {
		start, end := s.bounds(seq, i)
		if start > offset {
			return false
		}
		if start < end && offset < end {
			return true
		}
	}
	return false
}

// Clear removes every range, releasing their marks.
func (s *Set) Clear() {
	if s == nil {
		return
	}
	seq := s.live()
	if seq == nil || len(s.subregions) == 0 {
		return
	}
	for _, sr := range s.subregions {
		s.release(seq, sr)
	}
	s.subregions = nil
	s.version++
}

// Detach drops the reference to the backing sequence without releasing
// any marks. Embedders call it when the sequence is destroyed behind the
// set's back. Afterwards the set is permanently empty.
func (s *Set) Detach() {
	if s == nil || s.seq == nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq = nil
	s.subregions = nil
	s.version++
}

// Destroy releases every mark and detaches the set.
func (s *Set) Destroy() {
	s.Clear()
	s.Detach()
}

// String returns the ranges in the form "Subregions: 0-5 8-10".
func (s *Set) String() string {
	var sb strings.Builder
	sb.WriteString("Subregions:")
	for _, r := range s.Spans() {
		fmt.Fprintf(&sb, " %d-%d", r.Start, r.End)
	}
	return sb.String()
}

func (s *Set) trace(op string, start, end int) {
	if e := s.logger.Debug(); e.Enabled() {
		e.Str("op", op).
			Int("start", start).
			Int("end", end).
			Int("subregions", len(s.subregions)).
			Uint64("version", s.version).
			Msg("region changed")
	}
}
