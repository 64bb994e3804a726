package memstore

import (
	"sync"
	"testing"

	"github.com/IDSolutions/ramdb/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	s := NewMemStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("k", `"v1"`)
	s.Set("k", `"v2"`)
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, `"v2"`, v)

	assert.Equal(t, int64(5), s.IncrBy("n", 5))
	assert.Equal(t, int64(2), s.IncrBy("n", -3))
	assert.Equal(t, int64(7), s.IncrBy("k", 7), "non numeric values count as 0")

	assert.InDelta(t, 1.5, s.IncrByFloat("f", 1.5), 1e-9)
	assert.InDelta(t, 1.75, s.IncrByFloat("f", 0.25), 1e-9)
	v, _ = s.Get("f")
	assert.Equal(t, "1.75", v)
}

func TestIncrByConcurrent(t *testing.T) {
	s := NewMemStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.IncrBy("ctr", 1)
				s.HIncrBy("h", "ctr", 1)
			}
		}()
	}
	wg.Wait()

	v, _ := s.Get("ctr")
	assert.Equal(t, "2000", v)
	hv, _ := s.HGet("h", "ctr")
	assert.Equal(t, "2000", hv)
}

// TestExistsAndDel checks keys are counted once per keyspace
func TestExistsAndDel(t *testing.T) {
	s := NewMemStore()
	s.Set("a", "1")
	s.HSet("a", "f", "1")
	s.RPush("b", "x")

	assert.Equal(t, 3, s.Exists("a", "b", "c"))
	assert.Equal(t, 2, s.Del("a"))
	assert.Equal(t, 1, s.Exists("a", "b"))
	assert.Equal(t, 0, s.Del("a", "missing"))
	assert.Equal(t, 1, s.Del("b"))
}

func TestHash(t *testing.T) {
	s := NewMemStore()

	assert.True(t, s.HSet("h", "b", "2"))
	assert.False(t, s.HSet("h", "b", "3"))
	assert.Equal(t, 2, s.HMSet("h", map[string]string{"a": "1", "b": "4", "c": "5"}))

	v, ok := s.HGet("h", "b")
	require.True(t, ok)
	assert.Equal(t, "4", v)
	_, ok = s.HGet("h", "zz")
	assert.False(t, ok)
	_, ok = s.HGet("nohash", "a")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "1", "b", "4", "c", "5"}, s.HGetAll("h"))
	assert.Equal(t, []string{"a", "b", "c"}, s.HKeys("h"))
	assert.Equal(t, []string{"1", "4", "5"}, s.HVals("h"))
	assert.Equal(t, 3, s.HLen("h"))
	assert.True(t, s.HExists("h", "a"))

	assert.Equal(t, 2, s.HDel("h", "a", "c", "zz"))
	assert.Equal(t, 1, s.HLen("h"))
	assert.Equal(t, 0, s.HDel("nohash", "a"))

	assert.Equal(t, int64(10), s.HIncrBy("h", "b", 6))
	assert.InDelta(t, 0.5, s.HIncrByFloat("h", "x", 0.5), 1e-9)

	assert.Equal(t, []string{}, s.HGetAll("nohash"))
	assert.Equal(t, 0, s.HLen("nohash"))
}

func TestListPushPop(t *testing.T) {
	s := NewMemStore()

	assert.Equal(t, 2, s.RPush("l", "c", "d"))
	assert.Equal(t, 4, s.LPush("l", "b", "a"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.LRange("l", 0, -1))

	v, ok := s.LPop("l", 1)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, v)

	v, ok = s.RPop("l", 2)
	require.True(t, ok)
	assert.Equal(t, []string{"d", "c"}, v)

	v, ok = s.LPop("l", 10)
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, v)

	_, ok = s.LPop("l", 1)
	assert.False(t, ok, "empty list")
	_, ok = s.RPop("missing", 1)
	assert.False(t, ok)
}

func TestListIndexing(t *testing.T) {
	s := NewMemStore()
	s.RPush("l", "a", "b", "c", "d", "e")

	tests := []struct {
		start, end int
		want       []string
	}{
		{0, -1, []string{"a", "b", "c", "d", "e"}},
		{1, 2, []string{"b", "c"}},
		{-2, -1, []string{"d", "e"}},
		{3, 100, []string{"d", "e"}},
		{4, 1, []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.LRange("l", tt.start, tt.end), "LRange(%d,%d)", tt.start, tt.end)
	}
	assert.Equal(t, []string{}, s.LRange("missing", 0, -1))

	v, ok := s.LIndex("l", -1)
	assert.True(t, ok)
	assert.Equal(t, "e", v)
	_, ok = s.LIndex("l", 5)
	assert.False(t, ok)

	assert.True(t, s.LSet("l", -2, "D"))
	assert.False(t, s.LSet("l", 9, "x"))
	assert.False(t, s.LSet("missing", 0, "x"))
	assert.Equal(t, 5, s.LLen("l"))
	assert.Equal(t, 0, s.LLen("missing"))
}

func TestListInsert(t *testing.T) {
	s := NewMemStore()
	assert.Equal(t, 0, s.LInsert("l", true, "a", "x"), "missing list")

	s.RPush("l", "a", "b")
	assert.Equal(t, 3, s.LInsert("l", true, "b", "x"))
	assert.Equal(t, 4, s.LInsert("l", false, "b", "y"))
	assert.Equal(t, -1, s.LInsert("l", false, "zz", "y"))
	assert.Equal(t, []string{"a", "x", "b", "y"}, s.LRange("l", 0, -1))
}

func TestListRem(t *testing.T) {
	tests := []struct {
		count   int
		removed int
		want    []string
	}{
		{0, 3, []string{"b", "c"}},
		{2, 2, []string{"b", "c", "a"}},
		{-2, 2, []string{"a", "b", "c"}},
		{-5, 3, []string{"b", "c"}},
	}
	for _, tt := range tests {
		s := NewMemStore()
		s.RPush("l", "a", "b", "a", "c", "a")
		assert.Equal(t, tt.removed, s.LRem("l", tt.count, "a"), "count %d", tt.count)
		assert.Equal(t, tt.want, s.LRange("l", 0, -1), "count %d", tt.count)
	}
}

func TestListTrim(t *testing.T) {
	s := NewMemStore()
	assert.False(t, s.LTrim("l", 0, 1))

	s.RPush("l", "a", "b", "c", "d")
	assert.True(t, s.LTrim("l", -3, -2))
	assert.Equal(t, []string{"b", "c"}, s.LRange("l", 0, -1))

	assert.True(t, s.LTrim("l", -100, 100), "out of range indices clamp")
	assert.Equal(t, []string{"b", "c"}, s.LRange("l", 0, -1))

	assert.True(t, s.LTrim("l", 1, 0))
	assert.Equal(t, 0, s.LLen("l"))
	assert.False(t, s.LTrim("l", 0, 1), "empty list")
}

func TestExportImport(t *testing.T) {
	s := NewMemStore()
	s.Set("k", "v")
	s.HSet("h", "f", "v")
	s.RPush("l", "1", "2")

	d := s.Export()
	assert.Equal(t, map[string]string{"k": "v"}, d.KV)
	assert.Equal(t, map[string]map[string]string{"h": {"f": "v"}}, d.Hashes)
	assert.Equal(t, map[string][]string{"l": {"1", "2"}}, d.Lists)

	// export is detached
	s.RPush("l", "3")
	assert.Len(t, d.Lists["l"], 2)

	other := NewMemStore()
	other.Set("stale", "x")
	other.Import(d)
	_, ok := other.Get("stale")
	assert.False(t, ok, "import replaces content")
	assert.Equal(t, store.Info{Keys: 1, Hashes: 1, Lists: 1}, other.Info())
	assert.Equal(t, []string{"1", "2"}, other.LRange("l", 0, -1))
}
