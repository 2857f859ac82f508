// Package engine provides the text engine facade for textspan.
//
// The engine combines a buffer with the context-class table, the syntax
// analyzer, source marks and the bracket matcher behind one thread-safe
// API. It owns a cursor and reports bracket matches as the cursor moves or
// the text changes.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - text: offsets, ranges, mark gravity and the sequence interfaces
//   - buffer: rune storage with marks that follow edits
//   - region: sets of disjoint ranges anchored by buffer marks
//   - marks: named, categorised source marks
//
// Context classes come from internal/highlight and bracket matching from
// internal/bracket.
//
// # Basic Usage
//
//	e, err := engine.New(
//		engine.WithContent("f(a, \"(\")"),
//		engine.WithLanguage("go"),
//	)
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	e.OnBracketMatched(func(ev engine.BracketEvent) {
//		fmt.Println(ev.Match.Result, ev.Match.Bracket, ev.Match.Position)
//	})
//	e.MoveCursor(1) // found 1 8
//
// The parenthesis inside the string literal is skipped because it carries
// the string context class and the opening one does not.
//
// # Editing
//
// Insert, Delete and Replace edit the buffer. Every edit marks the text from
// the start of the edited line to the end of the buffer for re-analysis and
// refreshes the bracket match at the cursor.
//
// # Thread Safety
//
// All Engine operations are safe for concurrent use. Bracket observers run
// after the engine lock is released and may call back into the engine.
package engine
