/*
 * Copyright 2026 Xous IPC Queue Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ring provides a GC-friendly fixed-capacity ring container.
//
// Items are allocated with a single slice allocation and never resized;
// the stored value at each index can be read and mutated in place. This
// makes it suitable as the backing storage for a kernel-style slot array
// where index stability across the element's lifetime matters as much as
// the ring topology itself.
package ring

// Ring is a fixed-capacity sequence of V addressable by stable index,
// with helpers for treating that sequence as a circular buffer.
//
// V should not contain pointers if GC pressure from a large ring matters.
type Ring[V any] struct {
	items []Item[V]
}

// Item is one slot in the Ring, carrying its own stable index.
type Item[V any] struct {
	value V
	idx   int
}

// New allocates a ring of n zero-valued items.
func New[V any](n int) *Ring[V] {
	r := &Ring[V]{items: make([]Item[V], n)}
	for i := range r.items {
		r.items[i].idx = i
	}
	return r
}

// NewFromSlice allocates a ring pre-populated from vv.
func NewFromSlice[V any](vv []V) *Ring[V] {
	r := &Ring[V]{items: make([]Item[V], len(vv))}
	for i := range vv {
		r.items[i].value = vv[i]
		r.items[i].idx = i
	}
	return r
}

// Len returns the number of items in the ring.
func (r *Ring[V]) Len() int {
	return len(r.items)
}

// Get returns the ith item, or false if i is out of range.
func (r *Ring[V]) Get(i int) (*Item[V], bool) {
	if i < 0 || i >= len(r.items) {
		return nil, false
	}
	return &r.items[i], true
}

// Next returns the item following the ith one, wrapping to index 0 after
// the last item.
func (r *Ring[V]) Next(i int) (*Item[V], bool) {
	if i < 0 || i >= len(r.items) {
		return nil, false
	}
	if i == len(r.items)-1 {
		return &r.items[0], true
	}
	return &r.items[i+1], true
}

// Prev returns the item preceding the ith one, wrapping to the last item
// before index 0.
func (r *Ring[V]) Prev(i int) (*Item[V], bool) {
	if i < 0 || i >= len(r.items) {
		return nil, false
	}
	if i == 0 {
		return &r.items[len(r.items)-1], true
	}
	return &r.items[i-1], true
}

// Do calls f on every item's value, in index order.
func (r *Ring[V]) Do(f func(v *V)) {
	for i := range r.items {
		f(&r.items[i].value)
	}
}

// Index returns the item's stable index within the ring.
func (it *Item[V]) Index() int {
	return it.idx
}

// Value returns a copy of the item's value.
func (it *Item[V]) Value() V {
	return it.value
}

// Pointer returns a pointer to the item's value for in-place mutation.
// Do not retain the pointer past the Ring's lifetime.
func (it *Item[V]) Pointer() *V {
	return &it.value
}
