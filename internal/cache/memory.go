// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import "container/list"

// memoryTier is the in-process LRU tier.
//
// It enforces two simultaneous bounds — entry count and total serialized byte
// cost — evicting from the least-recently-used end until both hold. Expiry is
// not checked here; the [Cache] owns validity and performs lazy eviction.
//
// Not safe for concurrent use on its own; the owning [Cache] serializes
// access with its mutex.
type memoryTier struct {
	countLimit int
	costLimit  int

	cost    int
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

// memoryItem is the list payload: key kept for reverse lookup on eviction.
type memoryItem struct {
	key   string
	entry *Entry
	cost  int
}

func newMemoryTier(countLimit, costLimit int) *memoryTier {
	return &memoryTier{
		countLimit: countLimit,
		costLimit:  costLimit,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// set upserts the entry and evicts until both bounds hold.
func (tier *memoryTier) set(key string, entry *Entry, cost int) {

	if element, ok := tier.entries[key]; ok {
		// Overwrite in place and refresh recency.
		item := element.Value.(*memoryItem)
		tier.cost += cost - item.cost
		item.entry = entry
		item.cost = cost
		tier.order.MoveToFront(element)
	} else {
		element := tier.order.PushFront(&memoryItem{key: key, entry: entry, cost: cost})
		tier.entries[key] = element
		tier.cost += cost
	}

	// Evict coldest entries until both the count and cost bounds hold.
	// The freshly-written key is at the front and survives unless it alone
	// exceeds the cost limit.
	for tier.order.Len() > 1 && (tier.order.Len() > tier.countLimit || tier.cost > tier.costLimit) {
		tier.evictOldest()
	}
}

// get returns the entry and marks it recently used.
func (tier *memoryTier) get(key string) (*Entry, bool) {
	element, ok := tier.entries[key]
	if !ok {
		return nil, false
	}

	tier.order.MoveToFront(element)
	return element.Value.(*memoryItem).entry, true
}

// delete removes the key if present.
func (tier *memoryTier) delete(key string) {
	element, ok := tier.entries[key]
	if !ok {
		return
	}

	item := element.Value.(*memoryItem)
	tier.order.Remove(element)
	delete(tier.entries, key)
	tier.cost -= item.cost
}

// evictOldest drops the least-recently-used entry.
func (tier *memoryTier) evictOldest() {
	element := tier.order.Back()
	if element == nil {
		return
	}
	tier.delete(element.Value.(*memoryItem).key)
}

// clear drops every entry.
func (tier *memoryTier) clear() {
	tier.order.Init()
	tier.entries = make(map[string]*list.Element)
	tier.cost = 0
}
