// Package marks provides categorised source marks: named or anonymous
// positions such as bookmarks, breakpoints or the current execution line.
//
// Marks are ordered by offset and, at equal offsets, by creation order.
// Queries take a category filter; the empty string matches every category.
package marks
