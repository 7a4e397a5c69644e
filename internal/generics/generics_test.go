package generics

import (
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceMap(t *testing.T) {
	got := SliceMap([]int{3, 1, 2}, strconv.Itoa)
	assert.Equal(t, []string{"3", "1", "2"}, got)
	assert.Empty(t, SliceMap([]int(nil), strconv.Itoa))
}

func TestSortedKeys(t *testing.T) {
	m := map[int]string{1: "1", 5: "5", 3: "3"}
	// Since the builtin map iterator in Go is deliberately non-deterministic, we
	// run it a bunch of times to show it is stably sorted.
	want := []int{1, 3, 5}
	for range 100 {
		got := slices.Collect(SortedKeys(m))
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestSet(t *testing.T) {
	// Sets are created empty.
	s := MakeSet[int](10)
	assert.Len(t, s, 0)

	// Check inserting and recovery.
	s.Insert(3, 7)
	assert.Len(t, s, 2)
	assert.True(t, s.Has(3))
	assert.True(t, s.Has(7))
	assert.False(t, s.Has(5))
}

func TestDedup(t *testing.T) {
	assert.Equal(t, []int{25, 50, 100}, Dedup([]int{25, 50, 25, 100, 50}))
	assert.Empty(t, Dedup([]string{}))
}
