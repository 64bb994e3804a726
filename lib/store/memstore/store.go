package memstore

import (
	"sort"
	"strconv"
	"sync"

	"github.com/IDSolutions/ramdb/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
)

type hashMap = xsync.MapOf[string, string]

type list struct {
	mu    sync.Mutex
	items []string
}

type storeImpl struct {
	kv     *xsync.MapOf[string, string]
	hashes *xsync.MapOf[string, *hashMap]
	lists  *xsync.MapOf[string, *list]
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() store.IStore {
	return &storeImpl{
		kv:     xsync.NewMapOf[string, string](),
		hashes: xsync.NewMapOf[string, *hashMap](),
		lists:  xsync.NewMapOf[string, *list](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Exists(keys ...string) int {
	count := 0
	for _, key := range keys {
		if _, ok := s.kv.Load(key); ok {
			count++
		}
		if _, ok := s.hashes.Load(key); ok {
			count++
		}
		if _, ok := s.lists.Load(key); ok {
			count++
		}
	}
	return count
}

func (s *storeImpl) Del(keys ...string) int {
	count := 0
	for _, key := range keys {
		if _, ok := s.kv.LoadAndDelete(key); ok {
			count++
		}
		if _, ok := s.hashes.LoadAndDelete(key); ok {
			count++
		}
		if _, ok := s.lists.LoadAndDelete(key); ok {
			count++
		}
	}
	return count
}

// ---- key-value ----

func (s *storeImpl) Set(key, value string) {
	s.kv.Store(key, value)
}

func (s *storeImpl) Get(key string) (string, bool) {
	return s.kv.Load(key)
}

func (s *storeImpl) IncrBy(key string, delta int64) int64 {
	return incrInt(s.kv, key, delta)
}

func (s *storeImpl) IncrByFloat(key string, delta float64) float64 {
	return incrFloat(s.kv, key, delta)
}

// ---- hash ----

func (s *storeImpl) hash(key string) *hashMap {
	h, _ := s.hashes.LoadOrCompute(key, func() *hashMap {
		return xsync.NewMapOf[string, string]()
	})
	return h
}

func (s *storeImpl) HSet(key, field, value string) bool {
	_, loaded := s.hash(key).LoadAndStore(field, value)
	return !loaded
}

func (s *storeImpl) HMSet(key string, pairs map[string]string) int {
	h := s.hash(key)
	created := 0
	for f, v := range pairs {
		if _, loaded := h.LoadAndStore(f, v); !loaded {
			created++
		}
	}
	return created
}

func (s *storeImpl) HGet(key, field string) (string, bool) {
	h, ok := s.hashes.Load(key)
	if !ok {
		return "", false
	}
	return h.Load(field)
}

func (s *storeImpl) HGetAll(key string) []string {
	fields := s.HKeys(key)
	h, ok := s.hashes.Load(key)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, 2*len(fields))
	for _, f := range fields {
		if v, ok := h.Load(f); ok {
			out = append(out, f, v)
		}
	}
	return out
}

func (s *storeImpl) HDel(key string, fields ...string) int {
	h, ok := s.hashes.Load(key)
	if !ok {
		return 0
	}
	count := 0
	for _, f := range fields {
		if _, ok := h.LoadAndDelete(f); ok {
			count++
		}
	}
	return count
}

func (s *storeImpl) HExists(key, field string) bool {
	_, ok := s.HGet(key, field)
	return ok
}

func (s *storeImpl) HLen(key string) int {
	h, ok := s.hashes.Load(key)
	if !ok {
		return 0
	}
	return h.Size()
}

func (s *storeImpl) HKeys(key string) []string {
	h, ok := s.hashes.Load(key)
	if !ok {
		return []string{}
	}
	keys := make([]string, 0, h.Size())
	h.Range(func(f, _ string) bool {
		keys = append(keys, f)
		return true
	})
	sort.Strings(keys)
	return keys
}

func (s *storeImpl) HVals(key string) []string {
	all := s.HGetAll(key)
	vals := make([]string, 0, len(all)/2)
	for i := 1; i < len(all); i += 2 {
		vals = append(vals, all[i])
	}
	return vals
}

func (s *storeImpl) HIncrBy(key, field string, delta int64) int64 {
	return incrInt(s.hash(key), field, delta)
}

func (s *storeImpl) HIncrByFloat(key, field string, delta float64) float64 {
	return incrFloat(s.hash(key), field, delta)
}

// ---- list ----

func (s *storeImpl) list(key string) *list {
	l, _ := s.lists.LoadOrCompute(key, func() *list { return &list{} })
	return l
}

func (s *storeImpl) withList(key string, fn func(l *list)) bool {
	l, ok := s.lists.Load(key)
	if !ok {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l)
	return true
}

func (s *storeImpl) LPush(key string, values ...string) int {
	l := s.list(key)
	l.mu.Lock()
	defer l.mu.Unlock()

	head := make([]string, len(values), len(values)+len(l.items))
	for i, v := range values {
		head[len(values)-1-i] = v
	}
	l.items = append(head, l.items...)
	return len(l.items)
}

func (s *storeImpl) RPush(key string, values ...string) int {
	l := s.list(key)
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append(l.items, values...)
	return len(l.items)
}

func (s *storeImpl) LPop(key string, count int) (out []string, ok bool) {
	s.withList(key, func(l *list) {
		if len(l.items) == 0 {
			return
		}
		n := clamp(count, 1, len(l.items))
		out = append([]string(nil), l.items[:n]...)
		l.items = l.items[n:]
		ok = true
	})
	return out, ok
}

func (s *storeImpl) RPop(key string, count int) (out []string, ok bool) {
	s.withList(key, func(l *list) {
		if len(l.items) == 0 {
			return
		}
		n := clamp(count, 1, len(l.items))
		out = make([]string, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, l.items[len(l.items)-1-i])
		}
		l.items = l.items[:len(l.items)-n]
		ok = true
	})
	return out, ok
}

func (s *storeImpl) LRange(key string, start, end int) []string {
	out := []string{}
	s.withList(key, func(l *list) {
		n := len(l.items)
		start, end = normalize(start, n), normalize(end, n)
		start = max(start, 0)
		end = min(end, n-1)
		if start > end {
			return
		}
		out = append(out, l.items[start:end+1]...)
	})
	return out
}

func (s *storeImpl) LIndex(key string, index int) (v string, ok bool) {
	s.withList(key, func(l *list) {
		i := normalize(index, len(l.items))
		if i < 0 || i >= len(l.items) {
			return
		}
		v, ok = l.items[i], true
	})
	return v, ok
}

func (s *storeImpl) LLen(key string) (n int) {
	s.withList(key, func(l *list) { n = len(l.items) })
	return n
}

func (s *storeImpl) LInsert(key string, before bool, pivot, value string) (n int) {
	s.withList(key, func(l *list) {
		n = -1
		for i, v := range l.items {
			if v != pivot {
				continue
			}
			if !before {
				i++
			}
			l.items = append(l.items, "")
			copy(l.items[i+1:], l.items[i:])
			l.items[i] = value
			n = len(l.items)
			return
		}
	})
	return n
}

func (s *storeImpl) LRem(key string, count int, value string) (removed int) {
	s.withList(key, func(l *list) {
		limit := count
		if limit < 0 {
			limit = -limit
		}
		keep := make([]bool, len(l.items))
		for i := range keep {
			keep[i] = true
		}

		visit := func(i int) {
			if l.items[i] == value && (limit == 0 || removed < limit) {
				keep[i] = false
				removed++
			}
		}
		if count < 0 {
			for i := len(l.items) - 1; i >= 0; i-- {
				visit(i)
			}
		} else {
			for i := range l.items {
				visit(i)
			}
		}

		kept := l.items[:0]
		for i, v := range l.items {
			if keep[i] {
				kept = append(kept, v)
			}
		}
		l.items = kept
	})
	return removed
}

func (s *storeImpl) LSet(key string, index int, value string) (ok bool) {
	s.withList(key, func(l *list) {
		i := normalize(index, len(l.items))
		if i < 0 || i >= len(l.items) {
			return
		}
		l.items[i] = value
		ok = true
	})
	return ok
}

func (s *storeImpl) LTrim(key string, start, end int) (ok bool) {
	s.withList(key, func(l *list) {
		n := len(l.items)
		if n == 0 {
			return
		}
		ok = true
		start = max(normalize(start, n), 0)
		end = min(normalize(end, n), n-1)
		if start > end {
			l.items = nil
			return
		}
		l.items = append([]string(nil), l.items[start:end+1]...)
	})
	return ok
}

// ---- bulk ----

func (s *storeImpl) Export() *store.Data {
	d := store.NewData()
	s.kv.Range(func(k, v string) bool {
		d.KV[k] = v
		return true
	})
	s.hashes.Range(func(k string, h *hashMap) bool {
		m := make(map[string]string, h.Size())
		h.Range(func(f, v string) bool {
			m[f] = v
			return true
		})
		d.Hashes[k] = m
		return true
	})
	s.lists.Range(func(k string, l *list) bool {
		l.mu.Lock()
		d.Lists[k] = append([]string(nil), l.items...)
		l.mu.Unlock()
		return true
	})
	return d
}

func (s *storeImpl) Import(d *store.Data) {
	s.kv.Clear()
	s.hashes.Clear()
	s.lists.Clear()

	for k, v := range d.KV {
		s.kv.Store(k, v)
	}
	for k, m := range d.Hashes {
		h := xsync.NewMapOf[string, string]()
		for f, v := range m {
			h.Store(f, v)
		}
		s.hashes.Store(k, h)
	}
	for k, items := range d.Lists {
		s.lists.Store(k, &list{items: append([]string(nil), items...)})
	}
}

func (s *storeImpl) Info() store.Info {
	return store.Info{
		Keys:   s.kv.Size(),
		Hashes: s.hashes.Size(),
		Lists:  s.lists.Size(),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// incrInt atomically adds delta to the integer at key, treating garbage as 0
func incrInt(m *xsync.MapOf[string, string], key string, delta int64) int64 {
	var result int64
	m.Compute(key, func(old string, loaded bool) (string, bool) {
		cur, _ := strconv.ParseInt(old, 10, 64)
		result = cur + delta
		return strconv.FormatInt(result, 10), false
	})
	return result
}

// incrFloat atomically adds delta to the float at key, treating garbage as 0
func incrFloat(m *xsync.MapOf[string, string], key string, delta float64) float64 {
	var result float64
	m.Compute(key, func(old string, loaded bool) (string, bool) {
		cur, _ := strconv.ParseFloat(old, 64)
		result = cur + delta
		return FormatFloat(result), false
	})
	return result
}

// FormatFloat renders a float the way the store persists it.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// normalize turns a negative index into an offset from the end
func normalize(i, n int) int {
	if i < 0 {
		return i + n
	}
	return i
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
