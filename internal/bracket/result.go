package bracket

// Result is the outcome of a bracket search.
type Result uint8

const (
	// None means the character at the position is not a delimiter.
	None Result = iota
	// Found means the matching delimiter was located.
	Found
	// NotFound means the scan hit the buffer boundary or left the
	// starting context without a match.
	NotFound
	// OutOfRange means the step budget ran out first.
	OutOfRange
)

// String returns a readable name for the result.
func (r Result) String() string {
	switch r {
	case None:
		return "none"
	case Found:
		return "found"
	case NotFound:
		return "not-found"
	case OutOfRange:
		return "out-of-range"
	default:
		return "unknown"
	}
}

// Pair returns the partner of delimiter r and the scan direction: +1 for
// opening delimiters, -1 for closing ones and 0 when r is not a delimiter.
func Pair(r rune) (pair rune, dir int) {
	switch r {
	case '{':
		return '}', 1
	case '(':
		return ')', 1
	case '[':
		return ']', 1
	case '<':
		return '>', 1
	case '}':
		return '{', -1
	case ')':
		return '(', -1
	case ']':
		return '[', -1
	case '>':
		return '<', -1
	default:
		return 0, 0
	}
}

// IsBracket reports whether r is one of the recognised delimiters.
func IsBracket(r rune) bool {
	_, dir := Pair(r)
	return dir != 0
}
