package lookup

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_PutGet(t *testing.T) {
	tbl := New[string, int, string]()

	_, ok := tbl.Put("A", 1, "x")
	assert.False(t, ok, "first put has no previous value")

	v, ok := tbl.Get("A", 1)
	require.True(t, ok)
	assert.Equal(t, "x", v)

	prev, ok := tbl.Put("A", 1, "y")
	require.True(t, ok)
	assert.Equal(t, "x", prev)

	v, _ = tbl.Get("A", 1)
	assert.Equal(t, "y", v)
}

func TestTable_GetMissing(t *testing.T) {
	tbl := New[string, int, string]()
	tbl.Put("A", 1, "x")

	_, ok := tbl.Get("B", 1)
	assert.False(t, ok, "missing bucket")
	_, ok = tbl.Get("A", 2)
	assert.False(t, ok, "missing inner key")
}

func TestTable_RemoveKeepsBucket(t *testing.T) {
	tbl := New[string, int, string]()
	tbl.Put("A", 1, "x")

	prev, ok := tbl.Remove("A", 1)
	require.True(t, ok)
	assert.Equal(t, "x", prev)

	_, ok = tbl.Get("A", 1)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.BucketLen("A"))
	assert.True(t, tbl.Has("A"), "bucket survives removal of its last entry")
	assert.Equal(t, 1, tbl.Len())

	_, ok = tbl.Remove("A", 1)
	assert.False(t, ok)
	_, ok = tbl.Remove("Z", 1)
	assert.False(t, ok)
}

func TestTable_RemoveBucket(t *testing.T) {
	tbl := New[string, int, string]()
	tbl.Put("A", 1, "x")
	tbl.Put("A", 2, "y")
	tbl.Put("B", 1, "z")

	assert.True(t, tbl.RemoveBucket("A"))
	assert.False(t, tbl.Has("A"))
	assert.Equal(t, 0, tbl.BucketLen("A"))
	assert.Equal(t, 0, tbl.BucketLen("A"), "absent bucket keeps reporting 0")
	assert.Equal(t, 1, tbl.Len())
	assert.False(t, tbl.RemoveBucket("A"))
}

func TestTable_EmptyAndAbsentBucketsBothReportZero(t *testing.T) {
	tbl := New[string, int, string]()
	tbl.Put("empty", 1, "x")
	tbl.Remove("empty", 1)

	assert.Equal(t, 0, tbl.BucketLen("empty"))
	assert.Equal(t, 0, tbl.BucketLen("never"))
	assert.True(t, tbl.Has("empty"))
	assert.False(t, tbl.Has("never"))
}

func TestTable_ClearBucketKeepsOuterKey(t *testing.T) {
	tbl := New[string, int, string]()
	tbl.Put("A", 1, "x")
	tbl.Put("A", 2, "y")
	tbl.Put("B", 1, "z")

	tbl.ClearBucket("A")

	assert.True(t, tbl.Has("A"), "cleared bucket stays registered")
	assert.Equal(t, 0, tbl.BucketLen("A"))
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"A", "B"}, tbl.Keys(), "position of a cleared bucket is kept")

	tbl.ClearBucket("missing")
	assert.False(t, tbl.Has("missing"), "clearing an unknown key does not create it")

	tbl.Put("A", 3, "w")
	assert.Equal(t, []int{3}, tbl.BucketKeys("A"))
}

func TestTable_Clear(t *testing.T) {
	tbl := New[string, int, string]()
	tbl.Put("A", 1, "x")
	tbl.Put("B", 2, "y")

	tbl.Clear()
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Keys())
	_, ok := tbl.Get("A", 1)
	assert.False(t, ok)
}

func TestTable_InsertionOrder(t *testing.T) {
	tbl := New[string, string, int]()
	tbl.Put("973", "555", 1)
	tbl.Put("201", "556", 2)
	tbl.Put("973", "123", 3)
	tbl.Put("201", "100", 4)
	tbl.Put("973", "555", 5) // overwrite keeps position

	assert.Equal(t, []string{"973", "201"}, tbl.Keys())
	assert.Equal(t, []string{"555", "123"}, tbl.BucketKeys("973"))
	assert.Nil(t, tbl.BucketKeys("404"))

	type entry struct {
		outer, inner string
		v            int
	}
	var got []entry
	tbl.Each(func(o, i string, v int) bool {
		got = append(got, entry{o, i, v})
		return true
	})
	assert.Equal(t, []entry{
		{"973", "555", 5},
		{"973", "123", 3},
		{"201", "556", 2},
		{"201", "100", 4},
	}, got)

	n := 0
	tbl.Each(func(string, string, int) bool {
		n++
		return n < 2
	})
	assert.Equal(t, 2, n, "Each stops when fn returns false")
}

func TestTable_StructKeys(t *testing.T) {
	type code struct{ npa, nxx string }
	tbl := New[code, int, bool]()
	tbl.Put(code{"201", "555"}, 1, true)

	v, ok := tbl.Get(code{"201", "555"}, 1)
	require.True(t, ok, "keys compare by value")
	assert.True(t, v)
}

func TestGuarded_ConcurrentIncrement(t *testing.T) {
	g := NewGuarded[string, string, int](nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.Do(func(tbl *Table[string, string, int]) {
					n, _ := tbl.Get("hits", "total")
					tbl.Put("hits", "total", n+1)
				})
			}
		}()
	}
	wg.Wait()

	g.View(func(tbl *Table[string, string, int]) {
		n, ok := tbl.Get("hits", "total")
		require.True(t, ok)
		assert.Equal(t, 1600, n)
	})
}

func TestGuarded_Swap(t *testing.T) {
	first := New[string, string, int]()
	first.Put("a", "b", 1)
	g := NewGuarded(first)

	old := g.Swap(New[string, string, int]())
	assert.Same(t, first, old)
	g.View(func(tbl *Table[string, string, int]) {
		assert.Equal(t, 0, tbl.Len())
	})
}
