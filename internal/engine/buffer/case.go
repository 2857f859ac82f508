package buffer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/textspan/internal/engine/text"
)

// CaseType selects the transformation applied by ChangeCase.
type CaseType uint8

const (
	CaseLower  CaseType = iota // convert to lower case
	CaseUpper                  // convert to upper case
	CaseToggle                 // swap the case of every character
	CaseTitle                  // capitalise the first letter of each word
)

// String returns the string representation of the case type.
func (c CaseType) String() string {
	switch c {
	case CaseLower:
		return "lower"
	case CaseUpper:
		return "upper"
	case CaseToggle:
		return "toggle"
	case CaseTitle:
		return "title"
	default:
		return "unknown"
	}
}

// ChangeCase rewrites the case of the text in [start, end). The bounds are
// reordered if reversed. The change is applied as a single replacement, so
// marks inside the range collapse to its start like any other replace.
func (b *Buffer) ChangeCase(kind CaseType, start, end int) error {
	start, end = text.Order(start, end)
	if start < 0 || end > b.Len() {
		return ErrRangeInvalid
	}
	if start == end {
		return nil
	}

	src := b.Slice(start, end)
	out := applyCase(kind, src, b.caseLanguage())
	if out == src {
		return nil
	}

	_, err := b.Replace(start, end, out)
	return err
}

func (b *Buffer) caseLanguage() language.Tag {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.caseLang
}

func applyCase(kind CaseType, s string, tag language.Tag) string {
	switch kind {
	case CaseLower:
		return cases.Lower(tag).String(s)
	case CaseUpper:
		return cases.Upper(tag).String(s)
	case CaseTitle:
		return cases.Title(tag).String(s)
	case CaseToggle:
		var sb strings.Builder
		sb.Grow(len(s))
		for _, r := range s {
			switch {
			case unicode.IsLower(r):
				sb.WriteRune(unicode.ToUpper(r))
			case unicode.IsUpper(r), unicode.IsTitle(r):
				sb.WriteRune(unicode.ToLower(r))
			default:
				sb.WriteRune(r)
			}
		}
		return sb.String()
	default:
		return s
	}
}
