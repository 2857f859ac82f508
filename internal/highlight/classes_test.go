package highlight

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/textspan/internal/engine/buffer"
	"github.com/dshills/textspan/internal/engine/text"
)

func TestClassTableTagUntag(t *testing.T) {
	b := buffer.NewFromString("0123456789abcdef")
	ct := NewClassTable(b)

	require.NoError(t, ct.Tag(ClassComment, 2, 6))
	require.NoError(t, ct.Tag(ClassString, 4, 8))

	require.True(t, ct.HasContextClass(2, ClassComment))
	require.False(t, ct.HasContextClass(6, ClassComment))
	require.Equal(t, []string{ClassComment, ClassString}, ct.ContextClassesAt(5))
	require.Empty(t, ct.ContextClassesAt(12))
	require.False(t, ct.HasContextClass(3, "unknown"))

	require.NoError(t, ct.Untag(ClassComment, 3, 5))
	require.Equal(t, []text.Range{{Start: 2, End: 3}, {Start: 5, End: 6}}, ct.Regions(ClassComment))
	require.NoError(t, ct.Untag("never-tagged", 0, 4))

	require.NoError(t, ct.UntagAll(0, 16))
	require.Empty(t, ct.Classes())

	require.ErrorIs(t, ct.Tag("", 0, 1), ErrEmptyClass)
}

func TestClassTableToggles(t *testing.T) {
	b := buffer.NewFromString("0123456789abcdef")
	ct := NewClassTable(b)
	require.NoError(t, ct.Tag(ClassComment, 2, 5))
	require.NoError(t, ct.Tag(ClassComment, 8, 10))

	tests := []struct {
		name    string
		forward bool
		offset  int
		want    int
		ok      bool
	}{
		{"forward to first start", true, 0, 2, true},
		{"forward from start", true, 2, 5, true},
		{"forward across gap", true, 5, 8, true},
		{"forward past last", true, 10, 10, false},
		{"backward to start", false, 9, 8, true},
		{"backward to end", false, 8, 5, true},
		{"backward before first", false, 2, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int
			var ok bool
			if tt.forward {
				got, ok = ct.ForwardToToggle(tt.offset, ClassComment)
			} else {
				got, ok = ct.BackwardToToggle(tt.offset, ClassComment)
			}
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.ok, ok)
		})
	}
}

func TestClassTableFollowsEdits(t *testing.T) {
	b := buffer.NewFromString("say \"hi\" now")
	ct := NewClassTable(b)
	require.NoError(t, ct.Tag(ClassString, 4, 8))

	_, err := b.Insert(0, ">> ")
	require.NoError(t, err)

	require.Equal(t, []text.Range{{Start: 7, End: 11}}, ct.Regions(ClassString))
	require.True(t, ct.HasContextClass(8, ClassString))
}

func TestClassTableDropsDeletedRegions(t *testing.T) {
	b := buffer.NewFromString(`ab"s"cd`)
	ct := NewClassTable(b)
	require.NoError(t, ct.Tag(ClassString, 2, 5))

	require.NoError(t, b.Delete(2, 5))
	require.Zero(t, b.MarkCount())

	_, err := b.Insert(2, "xyz")
	require.NoError(t, err)

	require.False(t, ct.HasContextClass(3, ClassString))
	require.Empty(t, ct.Regions(ClassString))
	require.Empty(t, ct.Classes())
	require.Zero(t, b.MarkCount())
}

func TestClassTableDestroy(t *testing.T) {
	b := buffer.NewFromString("0123456789")
	ct := NewClassTable(b)
	require.NoError(t, ct.Tag(ClassComment, 0, 3))
	require.NoError(t, ct.Tag(ClassString, 5, 7))

	ct.Destroy()

	require.Zero(t, b.MarkCount())
	require.Empty(t, ct.Classes())
	require.False(t, ct.HasContextClass(1, ClassComment))
}
