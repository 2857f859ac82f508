package buffer

import (
	"strings"

	"golang.org/x/text/language"
)

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithLineEnding sets the line ending style used by Serialize.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
	}
}

// WithCaseLanguage sets the language whose casing rules ChangeCase follows.
func WithCaseLanguage(tag language.Tag) Option {
	return func(b *Buffer) {
		b.caseLang = tag
	}
}

// DetectLineEnding reports the line ending that occurs most often in s.
// Ties favour CRLF, then CR. Text without line breaks is LF.
func DetectLineEnding(s string) LineEnding {
	crlf := strings.Count(s, "\r\n")
	cr := strings.Count(s, "\r") - crlf
	lf := strings.Count(s, "\n") - crlf

	switch {
	case crlf > 0 && crlf >= lf && crlf >= cr:
		return LineEndingCRLF
	case cr > 0 && cr >= lf:
		return LineEndingCR
	default:
		return LineEndingLF
	}
}

// WithDetectedLineEnding makes Serialize write the line ending that
// dominates s.
func WithDetectedLineEnding(s string) Option {
	return WithLineEnding(DetectLineEnding(s))
}
