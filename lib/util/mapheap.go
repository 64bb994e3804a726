package util

import (
	"container/heap"
	"strconv"
)

// Item is an entry of a MapHeap.
type Item struct {
	Key      string // Unique identifier for the item
	Priority int64  // Lower values are popped first
	index    int    // Index in the heap, maintained by heap package
}

func (i *Item) String() string {
	return "{Key: " + i.Key + ", Priority: " + strconv.FormatInt(i.Priority, 10) + "}"
}

// MapHeap is a min-heap of items ordered by priority with O(1) access by key.
//
// Typical use is expiry bookkeeping: the priority is a deadline in unix nanos,
// Peek yields the next entry to expire and RemoveByKey drops entries that
// completed on their own.
//
// MapHeap is not thread-safe. Callers synchronize externally.
type MapHeap struct {
	items    []*Item          // The actual heap slice
	itemsMap map[string]*Item // Map for O(1) access by key
}

// NewMapHeap creates an empty, initialized MapHeap
func NewMapHeap() *MapHeap {
	mh := &MapHeap{
		items:    make([]*Item, 0),
		itemsMap: make(map[string]*Item),
	}
	heap.Init(mh)
	return mh
}

// Len returns the number of items in the queue (part of heap.Interface)
func (mh *MapHeap) Len() int { return len(mh.items) }

// Less compares items by priority (part of heap.Interface)
func (mh *MapHeap) Less(i, j int) bool {
	return mh.items[i].Priority < mh.items[j].Priority
}

// Swap exchanges items at positions i and j (part of heap.Interface)
func (mh *MapHeap) Swap(i, j int) {
	mh.items[i], mh.items[j] = mh.items[j], mh.items[i]
	mh.items[i].index = i
	mh.items[j].index = j
}

// Push adds an item to the heap (part of heap.Interface). Use AddItem instead.
func (mh *MapHeap) Push(x interface{}) {
	it := x.(*Item)
	it.index = len(mh.items)
	mh.items = append(mh.items, it)
	mh.itemsMap[it.Key] = it
}

// Pop removes and returns the minimum item (part of heap.Interface). Use PopMin instead.
func (mh *MapHeap) Pop() interface{} {
	old := mh.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // Avoid memory leak
	it.index = -1
	mh.items = old[:n-1]
	delete(mh.itemsMap, it.Key)
	return it
}

// AddItem adds a new item or updates the priority of an existing one
func (mh *MapHeap) AddItem(key string, priority int64) {
	if it, exists := mh.itemsMap[key]; exists {
		it.Priority = priority
		heap.Fix(mh, it.index)
		return
	}
	heap.Push(mh, &Item{Key: key, Priority: priority})
}

// RemoveByKey removes an item by its key and returns its priority
func (mh *MapHeap) RemoveByKey(key string) (int64, bool) {
	it, exists := mh.itemsMap[key]
	if !exists {
		return 0, false
	}
	heap.Remove(mh, it.index)
	return it.Priority, true
}

// Peek returns the minimum item without removing it
func (mh *MapHeap) Peek() (*Item, bool) {
	if len(mh.items) == 0 {
		return nil, false
	}
	return mh.items[0], true
}

// PopMin removes and returns the minimum item
func (mh *MapHeap) PopMin() (*Item, bool) {
	if len(mh.items) == 0 {
		return nil, false
	}
	return heap.Pop(mh).(*Item), true
}

// PopExpired removes and returns the keys of all items whose priority is <= limit,
// lowest priority first.
func (mh *MapHeap) PopExpired(limit int64) []string {
	var keys []string
	for {
		it, ok := mh.Peek()
		if !ok || it.Priority > limit {
			return keys
		}
		heap.Pop(mh)
		keys = append(keys, it.Key)
	}
}

// Contains checks if a key exists in the queue
func (mh *MapHeap) Contains(key string) bool {
	_, exists := mh.itemsMap[key]
	return exists
}

// GetByKey retrieves an item by its key without removing it
func (mh *MapHeap) GetByKey(key string) (*Item, bool) {
	it, exists := mh.itemsMap[key]
	return it, exists
}
