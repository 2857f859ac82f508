// Package text defines the contract between the text storage and the
// components that track positions in it.
//
// The storage itself lives elsewhere (see package buffer for the reference
// implementation). Consumers such as the region set and the bracket matcher
// depend only on the interfaces declared here:
//
//   - Marks: stable position handles that the storage relocates as text is
//     inserted and deleted, each with a Gravity deciding which side of an
//     insertion at its exact offset it sticks to
//   - Chars: character access and line/buffer boundary queries
//   - Sequence: both of the above plus a liveness check
//
// All offsets are character (rune) offsets from the start of the text.
//
// Handles must be released with DeleteMark once their owner no longer needs
// them. A storage may keep per-handle bookkeeping for as long as a handle is
// live, so an unreleased handle is a leak.
//
// Once a Sequence reports Closed, every handle it issued is gone. Consumers
// poll Closed at the top of each public operation and degrade to no-ops
// instead of dereferencing dead handles.
package text
