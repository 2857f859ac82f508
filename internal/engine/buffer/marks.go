package buffer

import "github.com/dshills/textspan/internal/engine/text"

// CreateMark returns a new mark at offset. The offset is clamped to the
// buffer. A closed buffer returns the zero Handle.
func (b *Buffer) CreateMark(offset int, gravity text.Gravity) text.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0
	}

	b.nextMark++
	h := text.Handle(b.nextMark)
	b.marks[h] = &mark{
		offset:  clamp(offset, 0, len(b.chars)),
		gravity: gravity,
	}
	return h
}

// DeleteMark releases h. Unknown handles are ignored.
func (b *Buffer) DeleteMark(h text.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.marks, h)
}

// MarkOffset returns the current offset of h, or 0 if h is unknown.
func (b *Buffer) MarkOffset(h text.Handle) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if m, ok := b.marks[h]; ok {
		return m.offset
	}
	return 0
}

// MoveMark relocates h to offset, clamped to the buffer.
func (b *Buffer) MoveMark(h text.Handle, offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m, ok := b.marks[h]; ok {
		m.offset = clamp(offset, 0, len(b.chars))
	}
}

// MarkCount returns the number of live marks.
func (b *Buffer) MarkCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.marks)
}

// relocateInsert shifts marks after an insertion of n characters at offset.
// A mark exactly at offset moves only if it has right gravity.
func (b *Buffer) relocateInsert(offset, n int) {
	for _, m := range b.marks {
		if m.offset > offset || (m.offset == offset && m.gravity == text.GravityRight) {
			m.offset += n
		}
	}
}

// relocateDelete collapses marks inside [start, end) to start and shifts
// marks at or after end back by the deleted length.
func (b *Buffer) relocateDelete(start, end int) {
	n := end - start
	for _, m := range b.marks {
		switch {
		case m.offset >= end:
			m.offset -= n
		case m.offset > start:
			m.offset = start
		}
	}
}
