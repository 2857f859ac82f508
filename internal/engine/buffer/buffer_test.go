package buffer

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/textspan/internal/engine/text"
)

func TestNewBuffer(t *testing.T) {
	b := New()

	if b.Len() != 0 {
		t.Errorf("expected length 0, got %d", b.Len())
	}

	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
}

func TestNewFromStringCountsRunes(t *testing.T) {
	b := NewFromString("héllo, wörld")

	if b.Len() != 12 {
		t.Errorf("expected length 12, got %d", b.Len())
	}
	if b.CharAt(1) != 'é' {
		t.Errorf("expected 'é' at 1, got %q", b.CharAt(1))
	}
	if b.CharAt(12) != 0 {
		t.Errorf("expected 0 past the end, got %q", b.CharAt(12))
	}
}

func TestNewFromStringNormalizesLineEndings(t *testing.T) {
	b := NewFromString("a\r\nb\rc")

	if b.Text() != "a\nb\nc" {
		t.Errorf("expected LF content, got %q", b.Text())
	}
}

func TestBufferInsert(t *testing.T) {
	b := NewFromString("Hello World")

	end, err := b.Insert(5, ",")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if end != 6 {
		t.Errorf("expected end position 6, got %d", end)
	}

	if b.Text() != "Hello, World" {
		t.Errorf("expected 'Hello, World', got %q", b.Text())
	}
}

func TestBufferInsertOutOfRange(t *testing.T) {
	b := NewFromString("Hello")

	_, err := b.Insert(100, "X")
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}

	_, err = b.Insert(-1, "X")
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestBufferDelete(t *testing.T) {
	b := NewFromString("Hello, World!")

	if err := b.Delete(5, 7); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if b.Text() != "HelloWorld!" {
		t.Errorf("expected 'HelloWorld!', got %q", b.Text())
	}
}

func TestBufferDeleteInvalidRange(t *testing.T) {
	b := NewFromString("Hello")

	if err := b.Delete(3, 2); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}

	if err := b.Delete(0, 100); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestBufferReplace(t *testing.T) {
	b := NewFromString("Hello World")

	end, err := b.Replace(6, 11, "Go")
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if end != 8 {
		t.Errorf("expected end position 8, got %d", end)
	}

	if b.Text() != "Hello Go" {
		t.Errorf("expected 'Hello Go', got %q", b.Text())
	}
}

func TestBufferRevision(t *testing.T) {
	b := NewFromString("abc")
	rev := b.Revision()

	b.Insert(0, "x")
	if b.Revision() == rev {
		t.Error("revision should change after insert")
	}

	rev = b.Revision()
	b.Insert(0, "")
	if b.Revision() != rev {
		t.Error("empty insert should not change revision")
	}
}

func TestBufferLineQueries(t *testing.T) {
	b := NewFromString("abc\ndefgh\nij")

	if b.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", b.LineCount())
	}

	tests := []struct {
		line  int
		start int
		end   int
	}{
		{0, 0, 3},
		{1, 4, 9},
		{2, 10, 12},
	}

	for _, tt := range tests {
		if got := b.LineStart(tt.line); got != tt.start {
			t.Errorf("LineStart(%d) = %d, want %d", tt.line, got, tt.start)
		}
		if got := b.LineEnd(tt.line); got != tt.end {
			t.Errorf("LineEnd(%d) = %d, want %d", tt.line, got, tt.end)
		}
	}

	if got := b.LineOf(7); got != 1 {
		t.Errorf("LineOf(7) = %d, want 1", got)
	}
	if !b.StartsLine(4) || b.StartsLine(5) {
		t.Error("StartsLine wrong around offset 4")
	}
	if got := b.LineBounds(6); got != (text.Range{Start: 4, End: 9}) {
		t.Errorf("LineBounds(6) = %s, want [4:9)", got)
	}
}

func TestMarkGravityOnInsert(t *testing.T) {
	b := NewFromString("abcdef")
	left := b.CreateMark(3, text.GravityLeft)
	right := b.CreateMark(3, text.GravityRight)
	after := b.CreateMark(5, text.GravityLeft)

	b.Insert(3, "XY")

	if got := b.MarkOffset(left); got != 3 {
		t.Errorf("left gravity mark = %d, want 3", got)
	}
	if got := b.MarkOffset(right); got != 5 {
		t.Errorf("right gravity mark = %d, want 5", got)
	}
	if got := b.MarkOffset(after); got != 7 {
		t.Errorf("mark after insertion = %d, want 7", got)
	}
}

func TestMarkRelocationOnDelete(t *testing.T) {
	b := NewFromString("0123456789")
	before := b.CreateMark(1, text.GravityLeft)
	inside := b.CreateMark(4, text.GravityRight)
	atEnd := b.CreateMark(6, text.GravityLeft)
	after := b.CreateMark(8, text.GravityLeft)

	b.Delete(2, 6)

	tests := []struct {
		name string
		h    text.Handle
		want int
	}{
		{"before", before, 1},
		{"inside", inside, 2},
		{"at end", atEnd, 2},
		{"after", after, 4},
	}
	for _, tt := range tests {
		if got := b.MarkOffset(tt.h); got != tt.want {
			t.Errorf("%s mark = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestMarkLifecycle(t *testing.T) {
	b := NewFromString("hello")
	h := b.CreateMark(10, text.GravityLeft)

	if !h.IsValid() {
		t.Fatal("CreateMark returned invalid handle")
	}
	if got := b.MarkOffset(h); got != 5 {
		t.Errorf("mark should clamp to 5, got %d", got)
	}

	b.MoveMark(h, 2)
	if got := b.MarkOffset(h); got != 2 {
		t.Errorf("moved mark = %d, want 2", got)
	}

	b.DeleteMark(h)
	if b.MarkCount() != 0 {
		t.Errorf("expected 0 marks, got %d", b.MarkCount())
	}
	if got := b.MarkOffset(h); got != 0 {
		t.Errorf("deleted mark resolves to %d, want 0", got)
	}
}

func TestBufferClose(t *testing.T) {
	b := NewFromString("hello")
	b.CreateMark(1, text.GravityLeft)

	b.Close()

	if !b.Closed() {
		t.Error("Closed should report true")
	}
	if b.MarkCount() != 0 {
		t.Errorf("close should drop marks, have %d", b.MarkCount())
	}
	if _, err := b.Insert(0, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if h := b.CreateMark(0, text.GravityLeft); h.IsValid() {
		t.Error("closed buffer should not issue marks")
	}
}

func TestBufferOnChange(t *testing.T) {
	b := NewFromString("Hello World")

	var changes []Change
	b.OnChange(func(c Change) {
		changes = append(changes, c)
		// Observers may read the buffer.
		_ = b.Len()
	})

	b.Insert(5, ",")
	b.Delete(0, 1)
	b.Replace(0, 4, "J")

	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(changes))
	}
	if changes[0].Type != ChangeInsert || changes[0].NewRange != (text.Range{Start: 5, End: 6}) {
		t.Errorf("unexpected insert change %+v", changes[0])
	}
	if changes[1].Type != ChangeDelete || changes[1].OldText != "H" {
		t.Errorf("unexpected delete change %+v", changes[1])
	}
	if changes[2].Type != ChangeReplace || changes[2].Delta() != -3 {
		t.Errorf("unexpected replace change %+v", changes[2])
	}
}

func TestBufferOnChangeCancel(t *testing.T) {
	b := NewFromString("abc")

	var changes, edits int
	cancel := b.OnChange(func(Change) { changes++ })
	cancelEdit := b.OnEdit(func() { edits++ })

	b.Insert(0, "x")
	cancel()
	b.Insert(0, "y")
	cancelEdit()
	b.Insert(0, "z")

	if changes != 1 {
		t.Errorf("OnChange observer ran %d times, want 1", changes)
	}
	if edits != 2 {
		t.Errorf("OnEdit observer ran %d times, want 2", edits)
	}
}

func TestSerializeLineEnding(t *testing.T) {
	b := NewFromString("a\r\nb", WithDetectedLineEnding("a\r\nb"))

	if b.Text() != "a\nb" {
		t.Errorf("content should be LF, got %q", b.Text())
	}
	if b.Serialize() != "a\r\nb" {
		t.Errorf("Serialize = %q, want CRLF", b.Serialize())
	}
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		text string
		want LineEnding
	}{
		{"no newline", LineEndingLF},
		{"a\nb\nc", LineEndingLF},
		{"a\r\nb\r\n", LineEndingCRLF},
		{"a\rb\r", LineEndingCR},
		{"a\r\nb\nc\n", LineEndingLF},
		{"a\r\nb\n", LineEndingCRLF},
		{"a\rb\r\nc\r", LineEndingCR},
	}
	for _, tt := range tests {
		if got := DetectLineEnding(tt.text); got != tt.want {
			t.Errorf("DetectLineEnding(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestBufferConcurrentReads(t *testing.T) {
	b := NewFromString(strings.Repeat("line\n", 100))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.CharAt(j)
				_ = b.LineOf(j)
			}
		}()
	}
	wg.Wait()
}
