package region

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dshills/textspan/internal/engine/buffer"
	"github.com/dshills/textspan/internal/engine/text"
)

func TestIteratorWalk(t *testing.T) {
	s, _ := newSet(t, 30)
	mustAdd(t, s, 0, 5)
	mustAdd(t, s, 10, 15)
	mustAdd(t, s, 20, 25)

	var got []text.Range
	it := s.Iterator(0)
	for {
		done, err := it.Done()
		if err != nil {
			t.Fatalf("Done failed: %v", err)
		}
		if done {
			break
		}
		r, err := it.Current()
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		got = append(got, r)
		if err := it.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
	}

	if len(got) != 3 || got[2] != (text.Range{Start: 20, End: 25}) {
		t.Errorf("walked %v", got)
	}

	if _, err := it.Current(); !errors.Is(err, ErrIteratorDone) {
		t.Errorf("Current past end = %v, want ErrIteratorDone", err)
	}
	if err := it.Next(); err != nil {
		t.Errorf("Next past end = %v, want nil", err)
	}
}

func TestIteratorFromIndex(t *testing.T) {
	s, _ := newSet(t, 30)
	mustAdd(t, s, 0, 5)
	mustAdd(t, s, 10, 15)

	r, err := s.Iterator(1).Current()
	if err != nil || r != (text.Range{Start: 10, End: 15}) {
		t.Errorf("Iterator(1).Current() = %s, %v", r, err)
	}

	if done, _ := s.Iterator(5).Done(); !done {
		t.Error("iterator beyond the last range should be done")
	}
}

func TestIteratorStale(t *testing.T) {
	var logs bytes.Buffer
	b := buffer.NewFromString(strings.Repeat("x", 30))
	s := New(b, WithLogger(zerolog.New(&logs)))
	mustAdd(t, s, 0, 5)

	it := s.Iterator(0)
	mustAdd(t, s, 20, 25)

	done, err := it.Done()
	if !errors.Is(err, ErrStaleIterator) {
		t.Errorf("Done = %v, want ErrStaleIterator", err)
	}
	if !done {
		t.Error("stale iterator should report done")
	}
	if _, err := it.Current(); !errors.Is(err, ErrStaleIterator) {
		t.Errorf("Current = %v, want ErrStaleIterator", err)
	}
	if err := it.Next(); !errors.Is(err, ErrStaleIterator) {
		t.Errorf("Next = %v, want ErrStaleIterator", err)
	}

	if !strings.Contains(logs.String(), "invalid region iterator") {
		t.Errorf("expected a warning in the log, got %q", logs.String())
	}
}

func TestIteratorStaleAfterSubtract(t *testing.T) {
	s, _ := newSet(t, 30)
	mustAdd(t, s, 0, 20)

	it := s.Iterator(0)
	mustSubtract(t, s, 8, 12)

	if _, err := it.Current(); !errors.Is(err, ErrStaleIterator) {
		t.Errorf("Current = %v, want ErrStaleIterator", err)
	}
}

func TestIteratorSurvivesNoOps(t *testing.T) {
	s, _ := newSet(t, 30)
	mustAdd(t, s, 5, 10)

	it := s.Iterator(0)
	mustAdd(t, s, 7, 7)
	mustSubtract(t, s, 20, 25)

	if _, err := it.Current(); err != nil {
		t.Errorf("no-op calls should not invalidate the iterator: %v", err)
	}
}

func TestIteratorUnbound(t *testing.T) {
	var s *Set
	if _, err := s.Iterator(0).Done(); !errors.Is(err, ErrNilSet) {
		t.Errorf("Done on unbound iterator = %v, want ErrNilSet", err)
	}

	var it *Iterator
	if err := it.Next(); !errors.Is(err, ErrNilSet) {
		t.Errorf("Next on nil iterator = %v, want ErrNilSet", err)
	}
}
