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

package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingGetNextPrev(t *testing.T) {
	const n = 8
	r := New[int](n)
	for i := 0; i < n; i++ {
		it, ok := r.Get(i)
		assert.True(t, ok)
		*it.Pointer() = i * 10
	}

	it, ok := r.Get(n - 1)
	assert.True(t, ok)
	next, ok := r.Next(it.Index())
	assert.True(t, ok)
	assert.Equal(t, 0, next.Index())
	assert.Equal(t, 0, next.Value())

	it, ok = r.Get(0)
	assert.True(t, ok)
	prev, ok := r.Prev(it.Index())
	assert.True(t, ok)
	assert.Equal(t, n-1, prev.Index())
	assert.Equal(t, (n-1)*10, prev.Value())

	_, ok = r.Get(n)
	assert.False(t, ok)
	_, ok = r.Next(n)
	assert.False(t, ok)
	_, ok = r.Prev(-1)
	assert.False(t, ok)
}

func TestRingDo(t *testing.T) {
	r := NewFromSlice([]int{1, 2, 3, 4})
	total := 0
	r.Do(func(v *int) { total += *v })
	assert.Equal(t, 10, total)
}

func TestRingLen(t *testing.T) {
	r := New[int](5)
	assert.Equal(t, 5, r.Len())
}
