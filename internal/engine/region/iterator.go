package region

import "github.com/dshills/textspan/internal/engine/text"

// Iterator walks the ranges of a Set in ascending order. It is bound to
// the version of the set at creation time; any structural change to the
// set invalidates it.
type Iterator struct {
	set     *Set
	version uint64
	index   int
}

// Iterator returns an iterator positioned at the range with index from.
// A negative from is treated as 0.
func (s *Set) Iterator(from int) *Iterator {
	if s == nil {
		return &Iterator{}
	}
	// Resolve a closed sequence now so the version is settled.
	s.live()
	return &Iterator{
		set:     s,
		version: s.version,
		index:   max(from, 0),
	}
}

func (it *Iterator) check() error {
	if it == nil || it.set == nil {
		return ErrNilSet
	}
	it.set.live()
	if it.version != it.set.version {
		it.set.logger.Warn().
			Uint64("iterator_version", it.version).
			Uint64("set_version", it.set.version).
			Msg("invalid region iterator: the region changed since the iterator was created")
		return ErrStaleIterator
	}
	return nil
}

// Done reports whether the iterator has passed the last range. A stale
// iterator reports done together with ErrStaleIterator.
func (it *Iterator) Done() (bool, error) {
	if err := it.check(); err != nil {
		return true, err
	}
	return it.index >= len(it.set.view()), nil
}

// Next advances to the following range. Advancing an exhausted iterator
// is a no-op.
func (it *Iterator) Next() error {
	if err := it.check(); err != nil {
		return err
	}
	if it.index < len(it.set.view()) {
		it.index++
	}
	return nil
}

// Current returns the range the iterator points at, resolved against the
// current text.
func (it *Iterator) Current() (text.Range, error) {
	if err := it.check(); err != nil {
		return text.Range{}, err
	}
	v := it.set.view()
	if it.index >= len(v) {
		return text.Range{}, ErrIteratorDone
	}
	return v[it.index], nil
}
