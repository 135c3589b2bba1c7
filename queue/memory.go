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

// WaitingKind names the outcome of CompleteReply.
type WaitingKind uint8

const (
	// WaitingNone means there was nothing to complete: a double reply, or
	// a reply racing a teardown that already emptied the slot.
	WaitingNone WaitingKind = iota
	// WaitingBorrowedMemory means the memory subsystem must unmap the
	// region from the server and restore the client's mapping, then wake
	// the sending thread.
	WaitingBorrowedMemory
	// WaitingMovedMemory is a sentinel: the AwaitingReply slot recorded a
	// zero server address (a Scalar or Move admitted through
	// AdmitReplySlot), so there is nothing to return.
	WaitingMovedMemory
	// WaitingForgetMemory means the lender died; the memory subsystem
	// should reclaim the pages to the system allocator instead of
	// returning them.
	WaitingForgetMemory
)

// WaitingMessage is the memory-return obligation computed by
// CompleteReply. Only the fields relevant to Kind are populated.
type WaitingMessage struct {
	Kind WaitingKind

	SenderPID  uint16
	SenderTID  uint16
	ServerAddr uint64
	ClientAddr uint64
	Len        uint64
}

// DiscardMessagesFor rewrites every in-flight slot belonging to pid so
// that a later CompleteReply discards rather than returns its memory.
// Invoked by the process-teardown path for every server in the system.
//
// Live borrow slots (BorrowRO/BorrowRW) whose sender matches pid become
// their Terminated counterpart. AwaitingReply slots whose sender matches
// pid become AwaitingForget. Scalar, Move, and Empty slots are untouched:
// Scalar carries no memory, and Move already transferred ownership on
// admission. The rewrite is structural only; no memory is touched here —
// CompleteReply decides return-vs-forget later, once the kernel holds the
// mapping context.
func (srv *Server) DiscardMessagesFor(pid uint16) {
	for i := 0; i < srv.capacity; i++ {
		item, _ := srv.slots.Get(i)
		slot := item.Pointer()
		if slot.Pid() != pid {
			continue
		}
		switch slot.kind {
		case KindBorrowRO:
			slot.kind = KindBorrowROTerminated
		case KindBorrowRW:
			slot.kind = KindBorrowRWTerminated
		case KindAwaitingReply:
			slot.kind = KindAwaitingForget
		}
	}
}
