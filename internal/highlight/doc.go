// Package highlight assigns context classes to text.
//
// A ClassTable keeps one region.Set per class name, so tagged ranges follow
// edits. The Analyzer fills the table from a chroma lexer: comments become
// "comment", string literals "string" and other code tokens
// "no-spell-check". It tracks the text still to be analysed in a dirty
// region.Set and only refreshes what Ensure asks for.
//
// ClassTable implements bracket.Classifier.
package highlight
