// Package buffer provides the reference text storage for the engine: an
// editable character sequence that issues marks.
//
// The buffer package provides:
//
//   - Character (rune) addressing for every read and write
//   - Marks with left or right gravity that relocate on insert and delete
//   - Line and word-boundary queries
//   - Case conversion of a range
//   - LF storage with Serialize restoring the detected line ending
//   - Change observers, used by the engine to invalidate highlighting and
//     by region sets to compact after each edit
//   - A Close lifecycle so that mark consumers can detect destruction
//
// Basic usage:
//
//	buf := buffer.NewFromString("Hello, World!")
//
//	// A right-gravity mark stays after text inserted at its offset
//	m := buf.CreateMark(7, text.GravityRight)
//	buf.Insert(7, "Beautiful ")
//	buf.MarkOffset(m) // 17
//
//	buf.DeleteMark(m)
//
// Mark relocation:
//
// An insertion of n characters at offset p moves every mark after p by n.
// A mark exactly at p moves only if it has right gravity. A deletion of
// [s, e) collapses marks inside the range to s and moves marks at or after
// e back by e-s.
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Change observers run after the write
// lock has been released, so they may call back into the buffer.
package buffer
