// Package bracket finds the delimiter matching the one at a position.
//
// The eight recognised delimiters are ( ) [ ] { } < >. Opening delimiters
// scan forward and closing ones scan backward. The scan respects context
// classes reported by a Classifier (typically comment and string): a
// character is only considered when the classes active on it equal those
// active on the starting delimiter, and leaving a class the start was
// inside ends the scan with NotFound.
//
// Every outcome is a Result value. OutOfRange means the step budget ran
// out before the scan was conclusive, which is different from NotFound.
package bracket
