package text

import "testing"

func TestNewRangeOrders(t *testing.T) {
	r := NewRange(9, 3)
	if r.Start != 3 || r.End != 9 {
		t.Errorf("NewRange(9, 3) = %s, want [3:9)", r)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: 2, End: 5}
	tests := []struct {
		offset int
		want   bool
	}{
		{1, false},
		{2, true},
		{4, true},
		{5, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.offset); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestRangeOverlapsAndTouches(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Range
		overlaps bool
		touches  bool
	}{
		{"disjoint", Range{0, 2}, Range{4, 6}, false, false},
		{"adjacent", Range{0, 4}, Range{4, 6}, false, true},
		{"overlapping", Range{0, 5}, Range{4, 6}, true, true},
		{"nested", Range{0, 10}, Range{4, 6}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.overlaps {
				t.Errorf("Overlaps = %v, want %v", got, tt.overlaps)
			}
			if got := tt.a.Touches(tt.b); got != tt.touches {
				t.Errorf("Touches = %v, want %v", got, tt.touches)
			}
		})
	}
}

func TestRangeIntersectUnion(t *testing.T) {
	a := Range{Start: 0, End: 6}
	b := Range{Start: 4, End: 10}

	if got := a.Intersect(b); got != (Range{4, 6}) {
		t.Errorf("Intersect = %s, want [4:6)", got)
	}
	if got := a.Union(b); got != (Range{0, 10}) {
		t.Errorf("Union = %s, want [0:10)", got)
	}
	if got := a.Intersect(Range{8, 9}); !got.IsEmpty() {
		t.Errorf("Intersect of disjoint ranges = %s, want empty", got)
	}
}

func TestForwardBackwardClamp(t *testing.T) {
	c := fixedChars("hello")

	if got := Forward(c, 3, 10); got != 5 {
		t.Errorf("Forward clamp = %d, want 5", got)
	}
	if got := Backward(2, 10); got != 0 {
		t.Errorf("Backward clamp = %d, want 0", got)
	}
	if !IsEnd(c, 5) || IsEnd(c, 4) {
		t.Error("IsEnd wrong at buffer end")
	}
	if !IsStart(0) || IsStart(1) {
		t.Error("IsStart wrong at buffer start")
	}
}

type fixedChars string

func (f fixedChars) Len() int { return len(f) }

func (f fixedChars) CharAt(offset int) rune {
	if offset < 0 || offset >= len(f) {
		return 0
	}
	return rune(f[offset])
}

func (f fixedChars) StartsLine(offset int) bool {
	return offset == 0 || (offset <= len(f) && f[offset-1] == '\n')
}
