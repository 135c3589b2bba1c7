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

// Package queue implements the per-server bounded message queue of a
// microkernel IPC subsystem: the slot state machine, the ring of slots a
// server drains messages from, the memory-return bookkeeping triggered by
// replies and process teardown, and the ready-thread bitset a dispatcher
// consults to pair messages with idle workers.
package queue

import (
	"fmt"

	"github.com/betrusted-io/xous-ipcqueue/ring"
)

// SID is an opaque 128-bit server identifier.
type SID [16]byte

// Server is the bounded, fixed-capacity queue associated with a single
// server instance. It is a passive data structure: the caller (the
// syscall dispatcher) must guarantee serialized entry into all operations
// on a given Server; operations against distinct Servers may proceed in
// parallel. No operation here blocks — callers that cannot make progress
// get an explicit error and must re-queue at a higher level.
type Server struct {
	sid   SID
	owner uint16

	slots    *ring.Ring[Slot]
	capacity int
	head     int
	tail     int

	ready ReadyThreads

	trace func(event string, fields ...any)
}

// NewServer allocates a Server owned by pid, addressed by sid, with the
// given resource bounds. Capacity is Options.PageSize/SlotSize; every
// slot starts Empty.
func NewServer(pid uint16, sid SID, opts Options) *Server {
	cap := opts.capacity()
	return &Server{
		sid:      sid,
		owner:    pid,
		slots:    ring.New[Slot](cap),
		capacity: cap,
		trace:    opts.trace(),
	}
}

// Sid returns the server's identifier.
func (srv *Server) Sid() SID { return srv.sid }

// Owner returns the PID of the process hosting this server.
func (srv *Server) Owner() uint16 { return srv.owner }

// Capacity returns the number of slots in the ring.
func (srv *Server) Capacity() int { return srv.capacity }

// Head returns the index the next admission will write.
func (srv *Server) Head() int { return srv.head }

// Tail returns the index the next delivery will read.
func (srv *Server) Tail() int { return srv.tail }

// SlotKind returns the discriminant of slot i, for introspection and
// invariant checks. Panics if i is out of range.
func (srv *Server) SlotKind(i int) Kind {
	item, ok := srv.slots.Get(i)
	if !ok {
		panic(fmt.Sprintf("queue: slot index %d out of range [0,%d)", i, srv.capacity))
	}
	return item.Value().kind
}

// advance returns (i+1) mod capacity, reusing the ring's own wraparound
// rather than computing the modulus by hand.
func (srv *Server) advance(i int) int {
	item, ok := srv.slots.Next(i)
	if !ok {
		panic(fmt.Sprintf("queue: advance of out-of-range index %d", i))
	}
	return item.Index()
}

// AdmitMessage writes the slot variant corresponding to message's kind at
// head, returning the written index, or ErrQueueFull if slots[head] is
// not Empty. The returned index is stable: it names this message for its
// entire lifetime, even after the slot transitions to AwaitingReply.
//
// originAddr is the sender's own base address: recorded verbatim as
// Scalar's "origin" field, Move's reserved field, or a borrow's
// client-side address (the same positional slot across all four kinds,
// mirroring how the kernel threads this argument through uniformly).
func (srv *Server) AdmitMessage(senderPID, senderTID uint16, msg Message, originAddr uint64) (int, error) {
	item, _ := srv.slots.Get(srv.head)
	slot := item.Pointer()
	if slot.Kind() != KindEmpty {
		return 0, ErrQueueFull
	}

	switch msg.Kind {
	case MessageScalar:
		*slot = newScalar(senderPID, senderTID, originAddr, msg.ID, msg.Arg1, msg.Arg2, msg.Arg3, msg.Arg4)
	case MessageMove:
		*slot = newMemory(KindMove, senderPID, senderTID, originAddr, msg.ID, msg.BufPtr, msg.BufLen, msg.Offset, msg.Valid)
	case MessageBorrowRO:
		*slot = newMemory(KindBorrowRO, senderPID, senderTID, originAddr, msg.ID, msg.BufPtr, msg.BufLen, msg.Offset, msg.Valid)
	case MessageBorrowRW:
		*slot = newMemory(KindBorrowRW, senderPID, senderTID, originAddr, msg.ID, msg.BufPtr, msg.BufLen, msg.Offset, msg.Valid)
	default:
		return 0, fmt.Errorf("queue: unknown message kind %d", msg.Kind)
	}

	idx := srv.head
	srv.head = srv.advance(srv.head)
	srv.trace("admit_message", "index", idx, "kind", slot.Kind().String())
	return idx, nil
}

// AdmitReplySlot writes an AwaitingReply slot directly at head, for a
// server replying synchronously via the queue (the "queue an address"
// path). Scalar/Move messages yield a zero-length AwaitingReply, since
// there is no borrow to return. Same capacity rule and head advancement
// as AdmitMessage.
func (srv *Server) AdmitReplySlot(senderPID, senderTID uint16, msg Message, clientAddr uint64) (int, error) {
	item, _ := srv.slots.Get(srv.head)
	slot := item.Pointer()
	if slot.Kind() != KindEmpty {
		return 0, ErrQueueFull
	}

	var serverAddr, length uint64
	switch msg.Kind {
	case MessageBorrowRO, MessageBorrowRW:
		serverAddr, length = msg.BufPtr, msg.BufLen
	}

	*slot = newAwaiting(KindAwaitingReply, senderPID, senderTID, serverAddr, clientAddr, length)

	idx := srv.head
	srv.head = srv.advance(srv.head)
	srv.trace("admit_reply_slot", "index", idx)
	return idx, nil
}

// TakeNextMessage inspects the slot at tail. If it is Empty, AwaitingReply,
// or AwaitingForget, it returns (Envelope{}, false): there is nothing
// deliverable at the read cursor, and tail does not skip past a stuck
// slot. Scalar/Move slots clear to Empty and advance tail. Borrow
// (possibly Terminated) slots rewrite in place to AwaitingReply or
// AwaitingForget and do not advance tail — the slot stays addressable by
// its slot index (carried in the envelope's Sender token alongside
// serverIndex) for the eventual CompleteReply.
func (srv *Server) TakeNextMessage(serverIndex uint16) (Envelope, bool) {
	item, _ := srv.slots.Get(srv.tail)
	slot := item.Pointer()

	switch slot.Kind() {
	case KindEmpty, KindAwaitingReply, KindAwaitingForget:
		return Envelope{}, false

	case KindScalar:
		pid, tid := slot.Pid(), slot.Tid()
		_, id, a1, a2, a3, a4 := slot.scalarArgs()
		env := Envelope{
			Sender: uint32(pid)<<16 | uint32(tid),
			Message: DeliveredMessage{
				Kind: MessageScalar, ID: id,
				Arg1: a1, Arg2: a2, Arg3: a3, Arg4: a4,
			},
		}
		slot.Clear()
		srv.tail = srv.advance(srv.tail)
		srv.trace("take_next_message", "index", item.Index(), "kind", "Scalar")
		return env, true

	case KindMove:
		pid, tid := slot.Pid(), slot.Tid()
		_, id, bufPtr, bufLen, offset, valid := slot.memoryArgs()
		env := Envelope{
			Sender: uint32(pid)<<16 | uint32(tid),
			Message: DeliveredMessage{
				Kind: MessageMove, ID: id,
				BufPtr: bufPtr, BufLen: bufLen, Offset: offset, Valid: valid,
			},
		}
		slot.Clear()
		srv.tail = srv.advance(srv.tail)
		srv.trace("take_next_message", "index", item.Index(), "kind", "Move")
		return env, true

	case KindBorrowRO, KindBorrowRW, KindBorrowROTerminated, KindBorrowRWTerminated:
		pid, tid := slot.Pid(), slot.Tid()
		clientAddr, id, bufPtr, bufLen, offset, valid := slot.memoryArgs()

		deliveredKind := MessageBorrowRO
		if slot.kind == KindBorrowRW || slot.kind == KindBorrowRWTerminated {
			deliveredKind = MessageBorrowRW
		}
		env := Envelope{
			Sender: uint32(serverIndex)<<16 | uint32(item.Index()),
			Message: DeliveredMessage{
				Kind: deliveredKind, ID: id,
				BufPtr: bufPtr, BufLen: bufLen, Offset: offset, Valid: valid,
			},
		}

		newKind := KindAwaitingReply
		if slot.kind.IsTerminated() {
			newKind = KindAwaitingForget
		}
		// buf, once delivered, is mapped into the server's address space;
		// bufPtr is recorded as the server-side address the eventual
		// CompleteReply must match.
		*slot = newAwaiting(newKind, pid, tid, bufPtr, clientAddr, bufLen)
		// tail is intentionally not advanced: this slot lingers until
		// CompleteReply.
		srv.trace("take_next_message", "index", item.Index(), "kind", newKind.String())
		return env, true

	default:
		panic(fmt.Sprintf("queue: slot at tail has unexpected kind %v", slot.Kind()))
	}
}

// CompleteReply finalizes the slot at slotIndex and computes the
// memory-return obligation. slotIndex must be < capacity or this returns
// ErrBadAddress. If the slot is not AwaitingReply/AwaitingForget (Empty,
// or already completed by a racing reply), this returns
// WaitingMessage{Kind: WaitingNone} with no error: a benign race with
// teardown or a double reply, not a bug.
//
// For a matching AwaitingReply/AwaitingForget slot, buf's address and
// length must match what the slot recorded, or this returns
// ErrBadAddress. On success the slot becomes Empty and tail advances
// modulo capacity — even if slotIndex wasn't at tail, keeping the ring
// making forward progress when replies complete out of order.
func (srv *Server) CompleteReply(slotIndex int, buf Buffer) (WaitingMessage, error) {
	item, ok := srv.slots.Get(slotIndex)
	if !ok {
		return WaitingMessage{}, fmt.Errorf("%w: slot index %d out of range [0,%d)", ErrBadAddress, slotIndex, srv.capacity)
	}
	slot := item.Pointer()

	switch slot.Kind() {
	case KindAwaitingReply:
		serverAddr, clientAddr, length := slot.awaitingArgs()
		if buf.Addr != serverAddr || buf.Len != length {
			return WaitingMessage{}, fmt.Errorf("%w: buffer {%#x,%d} does not match slot %d's {%#x,%d}",
				ErrBadAddress, buf.Addr, buf.Len, slotIndex, serverAddr, length)
		}
		pid, tid := slot.Pid(), slot.Tid()
		slot.Clear()
		srv.tail = srv.advance(srv.tail)
		srv.trace("complete_reply", "index", slotIndex, "kind", "AwaitingReply")

		if serverAddr == 0 {
			// The slot was written by AdmitReplySlot for a Scalar/Move
			// message: there was never a borrow to return.
			return WaitingMessage{Kind: WaitingMovedMemory}, nil
		}
		return WaitingMessage{
			Kind: WaitingBorrowedMemory, SenderPID: pid, SenderTID: tid,
			ServerAddr: serverAddr, ClientAddr: clientAddr, Len: length,
		}, nil

	case KindAwaitingForget:
		serverAddr, _, length := slot.awaitingArgs()
		if buf.Addr != serverAddr || buf.Len != length {
			return WaitingMessage{}, fmt.Errorf("%w: buffer {%#x,%d} does not match slot %d's {%#x,%d}",
				ErrBadAddress, buf.Addr, buf.Len, slotIndex, serverAddr, length)
		}
		slot.Clear()
		srv.tail = srv.advance(srv.tail)
		srv.trace("complete_reply", "index", slotIndex, "kind", "AwaitingForget")
		return WaitingMessage{Kind: WaitingForgetMemory, ServerAddr: serverAddr, Len: length}, nil

	default:
		return WaitingMessage{Kind: WaitingNone}, nil
	}
}
