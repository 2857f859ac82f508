package marks

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dshills/textspan/internal/engine/buffer"
)

func TestNextPrevOrdering(t *testing.T) {
	b := buffer.NewFromString("")
	r := NewRegistry(b)

	m1, _ := r.Create("Mark 1", "test", 0)
	m2, _ := r.Create("Mark 2", "test2", 0)
	m3, _ := r.Create("Mark 3", "test", 0)

	tests := []struct {
		name string
		got  *Mark
		want *Mark
	}{
		{"next any", r.Next(m1, ""), m2},
		{"next same category", r.Next(m1, "test"), m3},
		{"next none in category", r.Next(m2, "test2"), nil},
		{"next at end", r.Next(m3, ""), nil},
		{"prev any", r.Prev(m2, ""), m1},
		{"prev same category", r.Prev(m3, "test"), m1},
		{"prev none in category", r.Prev(m2, "test2"), nil},
		{"prev at start", r.Prev(m1, ""), nil},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCreateErrors(t *testing.T) {
	r := NewRegistry(buffer.NewFromString("abc"))

	if _, err := r.Create("x", "", 0); !errors.Is(err, ErrEmptyCategory) {
		t.Errorf("expected ErrEmptyCategory, got %v", err)
	}
	if _, err := r.Create("x", "bookmark", 0); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := r.Create("x", "bookmark", 1); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := r.Create("", "bookmark", 1); err != nil {
		t.Errorf("anonymous marks need no unique name: %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestForwardBackward(t *testing.T) {
	b := buffer.NewFromString("0123456789")
	r := NewRegistry(b)
	r.Create("", "bp", 2)
	r.Create("", "bookmark", 5)
	r.Create("", "bp", 8)

	tests := []struct {
		name     string
		forward  bool
		offset   int
		category string
		want     int
		ok       bool
	}{
		{"forward any", true, 2, "", 5, true},
		{"forward category", true, 2, "bp", 8, true},
		{"forward past last", true, 8, "", 8, false},
		{"backward any", false, 8, "", 5, true},
		{"backward category", false, 8, "bp", 2, true},
		{"backward before first", false, 2, "", 2, false},
		{"unknown category", true, 0, "nope", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int
			var ok bool
			if tt.forward {
				got, ok = r.ForwardTo(tt.offset, tt.category)
			} else {
				got, ok = r.BackwardTo(tt.offset, tt.category)
			}
			if got != tt.want || ok != tt.ok {
				t.Errorf("got (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestAtLineAndRemove(t *testing.T) {
	b := buffer.NewFromString("first\nsecond\nthird")
	r := NewRegistry(b)
	r.Create("a", "bp", 0)
	r.Create("b", "bp", 6)
	r.Create("c", "bookmark", 12)
	r.Create("d", "bp", 13)

	if got := r.AtLine(b, 1, ""); len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Errorf("AtLine(1) = %v", got)
	}
	if got := r.AtLine(b, 1, "bookmark"); len(got) != 1 || got[0].Name != "c" {
		t.Errorf("AtLine(1, bookmark) = %v", got)
	}
	if got := r.At(13, ""); len(got) != 1 || got[0].Name != "d" {
		t.Errorf("At(13) = %v", got)
	}

	if n := r.Remove(0, 12, "bp"); n != 2 {
		t.Errorf("Remove = %d, want 2", n)
	}
	if r.Lookup("a") != nil || r.Lookup("c") == nil {
		t.Error("Remove should only delete marks of the category")
	}
	if b.MarkCount() != 2 {
		t.Errorf("MarkCount = %d, want 2", b.MarkCount())
	}
}

func TestMarksFollowEdits(t *testing.T) {
	b := buffer.NewFromString("hello world")
	r := NewRegistry(b)
	m, _ := r.Create("w", "bookmark", 6)

	b.Insert(6, "big ")
	if got := m.Offset(); got != 6 {
		t.Errorf("left gravity mark moved to %d", got)
	}

	b.Insert(0, ">> ")
	if got := m.Offset(); got != 9 {
		t.Errorf("mark = %d, want 9", got)
	}
}

func TestDeleteAndClear(t *testing.T) {
	b := buffer.NewFromString("abc")
	r := NewRegistry(b)
	m, _ := r.Create("m", "bp", 1)
	r.Create("n", "bookmark", 2)

	if err := r.Delete(m); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !m.Deleted() || m.Offset() != -1 {
		t.Error("deleted mark should report it")
	}
	if err := r.Delete(m); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("second Delete = %v, want ErrNotRegistered", err)
	}
	if got := r.Categories(); len(got) != 1 || got[0] != "bookmark" {
		t.Errorf("Categories = %v", got)
	}

	r.Clear()
	if r.Len() != 0 || b.MarkCount() != 0 {
		t.Errorf("Clear left %d marks (%d in buffer)", r.Len(), b.MarkCount())
	}
	if r.Lookup("n") != nil {
		t.Error("Clear should forget names")
	}
}

func TestMarkReadsDuringClear(t *testing.T) {
	b := buffer.NewFromString("0123456789")
	r := NewRegistry(b)

	var all []*Mark
	for i := range 10 {
		m, err := r.Create(fmt.Sprintf("m%d", i), "bp", i)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		all = append(all, m)
	}

	var wg sync.WaitGroup
	for _, m := range all {
		wg.Add(1)
		go func(m *Mark) {
			defer wg.Done()
			for range 100 {
				off := m.Offset()
				if off != -1 && (off < 0 || off > b.Len()) {
					t.Errorf("Offset = %d outside the buffer", off)
					return
				}
				_ = m.Deleted()
			}
		}(m)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Delete(all[0])
		r.Clear()
	}()
	wg.Wait()

	for _, m := range all {
		if !m.Deleted() || m.Offset() != -1 {
			t.Errorf("mark %s still live after Clear", m.Name)
		}
	}
}
