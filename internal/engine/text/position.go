package text

import "fmt"

// Gravity decides where a mark ends up when text is inserted exactly at
// its offset.
type Gravity uint8

const (
	// GravityLeft keeps the mark before the inserted text.
	GravityLeft Gravity = iota

	// GravityRight moves the mark after the inserted text.
	GravityRight
)

// String returns the string representation of the gravity.
func (g Gravity) String() string {
	switch g {
	case GravityLeft:
		return "left"
	case GravityRight:
		return "right"
	default:
		return "unknown"
	}
}

// Handle identifies a mark issued by a Marks implementation.
// The zero Handle is never issued and is always invalid.
type Handle uint64

// IsValid reports whether h could refer to a mark.
func (h Handle) IsValid() bool {
	return h != 0
}

// String returns a human-readable representation of the handle.
func (h Handle) String() string {
	return fmt.Sprintf("mark#%d", uint64(h))
}

// Marks is the position-handle provider.
type Marks interface {
	// CreateMark returns a new handle at offset with the given gravity.
	CreateMark(offset int, gravity Gravity) Handle

	// DeleteMark releases h. Releasing an unknown handle is a no-op.
	DeleteMark(h Handle)

	// MarkOffset resolves h to its current offset, reflecting every edit
	// made since the mark was created.
	MarkOffset(h Handle) int

	// MoveMark relocates h to offset, keeping its gravity.
	MoveMark(h Handle, offset int)
}

// Chars gives read access to the characters of the text.
type Chars interface {
	// Len returns the number of characters.
	Len() int

	// CharAt returns the character at offset, or 0 at or past the end.
	CharAt(offset int) rune

	// StartsLine reports whether offset is the first position of a line.
	StartsLine(offset int) bool
}

// Sequence is a live text that issues marks.
type Sequence interface {
	Marks
	Chars

	// Closed reports whether the sequence has been destroyed. Handles
	// issued by a closed sequence must not be used.
	Closed() bool

	// OnEdit registers fn to run after every edit, once marks have been
	// relocated. The returned function unregisters fn.
	OnEdit(fn func()) (cancel func())
}

// Compare returns -1 if a < b, 0 if a == b, 1 if a > b.
func Compare(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Order returns a and b in ascending order.
func Order(a, b int) (int, int) {
	if b < a {
		return b, a
	}
	return a, b
}

// IsStart reports whether offset is at or before the start of the text.
func IsStart(offset int) bool {
	return offset <= 0
}

// IsEnd reports whether offset is at or past the end of c.
func IsEnd(c Chars, offset int) bool {
	return offset >= c.Len()
}

// Forward moves offset n characters forward, stopping at the end of c.
func Forward(c Chars, offset, n int) int {
	offset += n
	if l := c.Len(); offset > l {
		return l
	}
	return offset
}

// Backward moves offset n characters backward, stopping at the start.
func Backward(offset, n int) int {
	offset -= n
	if offset < 0 {
		return 0
	}
	return offset
}
