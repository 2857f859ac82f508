package region

import "errors"

// Errors returned by region operations.
var (
	// ErrNilSet indicates a method was called on a nil *Set or on an
	// iterator that was never bound to a set.
	ErrNilSet = errors.New("region: nil set")

	// ErrOffsetOutOfRange indicates an offset outside [0, Len] of the
	// backing sequence.
	ErrOffsetOutOfRange = errors.New("region: offset out of range")

	// ErrStaleIterator indicates an iterator was used after its set was
	// modified.
	ErrStaleIterator = errors.New("region: iterator used after the set was modified")

	// ErrIteratorDone indicates Current was called on an exhausted iterator.
	ErrIteratorDone = errors.New("region: iterator is exhausted")
)
