package buffer

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/textspan/internal/engine/text"
)

// WordAt returns the bounds of the word containing the character at offset.
func (b *Buffer) WordAt(offset int) (text.Range, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, w := range b.wordsAroundLocked(offset) {
		if w.Contains(offset) {
			return w, true
		}
	}
	return text.Range{}, false
}

// wordsAroundLocked returns the word segments of the line containing
// offset. Segmentation follows Unicode UAX #29 word boundaries; segments
// made only of spaces or punctuation are dropped.
func (b *Buffer) wordsAroundLocked(offset int) []text.Range {
	if offset < 0 || offset > len(b.chars) {
		return nil
	}

	line := b.lineBoundsLocked(offset)
	rest := string(b.chars[line.Start:line.End])
	pos := line.Start
	state := -1

	var words []text.Range
	for len(rest) > 0 {
		var segment string
		segment, rest, state = uniseg.FirstWordInString(rest, state)
		n := utf8.RuneCountInString(segment)
		if isWord(segment) {
			words = append(words, text.Range{Start: pos, End: pos + n})
		}
		pos += n
	}
	return words
}

func isWord(segment string) bool {
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return true
		}
	}
	return false
}
