// Package region tracks a dynamic set of disjoint character ranges over a
// live text.Sequence.
//
// A Set stores each range as a pair of marks: a left-gravity mark at the
// start and a right-gravity mark at the end. The ranges therefore follow
// the text as it is edited, and text inserted at either edge of a range
// becomes part of it.
//
// The set keeps its ranges sorted, non-overlapping, non-touching and
// non-empty. Add merges every range it overlaps or touches; Subtract
// trims, splits or drops ranges as needed. Edits to the text can collapse
// a range or bring two ranges together. The set subscribes to edits of its
// sequence and compacts itself as soon as one lands, so a range removed
// by deleting its text stays removed when text is typed at the same spot.
//
// Every structural change bumps Version. An Iterator remembers the version
// it was created at and refuses to return data once the set has changed:
//
//	it := set.Iterator(0)
//	for {
//	    done, err := it.Done()
//	    if err != nil || done {
//	        break
//	    }
//	    r, _ := it.Current()
//	    // use r
//	    it.Next()
//	}
//
// The set does not own its sequence. Once the sequence reports Closed, or
// after Detach, the set is permanently empty and every method is a no-op.
//
// A Set is not safe for concurrent use. Callers sharing one between
// goroutines must serialise every call and pass their lock with
// WithLocker, which the set holds while compacting after an edit.
package region
