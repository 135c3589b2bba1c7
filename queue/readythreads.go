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

package queue

import "math/bits"

// MaxReadyThreads is the number of thread IDs the ready-thread bitset can
// track: one machine word. The spec leaves open whether a wider bitset
// should be supported; this implementation inherits the single-word
// limit and does not resolve that further (see SPEC_FULL.md §9).
const MaxReadyThreads = 64

// ReadyThreads is a fixed-width bitset of worker threads currently
// blocked awaiting a message. Bit k set means thread k is parked.
//
// take is lowest-bit-first: deterministic and cache-friendly, scanned a
// word at a time with math/bits rather than a manual rotate-and-test
// loop, the same style unsafex/malloc's bitmap allocator uses to find a
// free block.
type ReadyThreads struct {
	bits uint64
}

// ParkThread marks tid as idle and awaiting a message.
//
// Panics if tid is already parked: parking an already-parked thread
// indicates a scheduler bug, not a recoverable condition. Also panics if
// tid >= MaxReadyThreads, since the bitset has no bit for it.
func (srv *Server) ParkThread(tid uint8) {
	srv.ready.park(tid)
}

func (r *ReadyThreads) park(tid uint8) {
	if tid >= MaxReadyThreads {
		panic("queue: park_thread called with a thread ID beyond MaxReadyThreads")
	}
	mask := uint64(1) << tid
	if r.bits&mask != 0 {
		panic("queue: park_thread called on an already-parked thread")
	}
	r.bits |= mask
}

// TakeAvailableThread returns the lowest-numbered idle thread and clears
// its bit, or false if no thread is idle.
func (srv *Server) TakeAvailableThread() (uint8, bool) {
	return srv.ready.take()
}

func (r *ReadyThreads) take() (uint8, bool) {
	if r.bits == 0 {
		return 0, false
	}
	tid := bits.TrailingZeros64(r.bits)
	if tid >= MaxReadyThreads {
		// Unreachable: TrailingZeros64 on a nonzero value always finds a
		// bit below 64. Kept as a structural assertion per the spec's
		// intent ("reaching the end of the ready-thread scan after the
		// bitset reported non-empty" is a kernel-bug panic).
		panic("queue: ready-thread scan found no bit despite nonzero bitset")
	}
	r.bits &^= uint64(1) << tid
	return uint8(tid), true
}

// ReturnAvailableThread marks tid idle again after it was taken but could
// not be handed a message (e.g. the dispatcher raced and found nothing to
// deliver after all).
//
// Panics if tid is not currently taken: the thread must have come from a
// prior TakeAvailableThread.
func (srv *Server) ReturnAvailableThread(tid uint8) {
	srv.ready.returnThread(tid)
}

func (r *ReadyThreads) returnThread(tid uint8) {
	mask := uint64(1) << tid
	if r.bits&mask != 0 {
		panic("queue: return_available_thread called on a thread that was not taken")
	}
	r.bits |= mask
}
