package buffer

import (
	"fmt"

	"github.com/dshills/textspan/internal/engine/text"
)

// ChangeType categorizes the type of change made to the buffer.
type ChangeType uint8

const (
	ChangeInsert  ChangeType = iota // Text was inserted
	ChangeDelete                    // Text was deleted
	ChangeReplace                   // Text was replaced
)

// String returns a string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change describes one applied edit. Observers registered with OnChange
// receive a Change after every edit.
type Change struct {
	Type     ChangeType // Type of change
	Range    text.Range // Original range that was affected
	NewRange text.Range // Resulting range after the change
	OldText  string     // Text that was removed (for delete/replace)
	NewText  string     // Text that was added (for insert/replace)
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert(%d, %q)", c.Range.Start, c.NewText)
	case ChangeDelete:
		return fmt.Sprintf("Delete%s", c.Range)
	default:
		return fmt.Sprintf("Replace%s with %q", c.Range, c.NewText)
	}
}

// Delta returns the change in buffer length caused by this change.
func (c Change) Delta() int {
	return c.NewRange.Len() - c.Range.Len()
}

func (c Change) classify() ChangeType {
	switch {
	case c.Range.IsEmpty():
		return ChangeInsert
	case c.NewRange.IsEmpty():
		return ChangeDelete
	default:
		return ChangeReplace
	}
}
