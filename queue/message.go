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

// MessageKind names the kind of message a sender is admitting.
type MessageKind uint8

const (
	// MessageScalar is a fire-and-forget message of four word arguments.
	MessageScalar MessageKind = iota
	// MessageMove transfers ownership of a memory region to the server.
	MessageMove
	// MessageBorrowRO loans a read-only memory region to the server.
	MessageBorrowRO
	// MessageBorrowRW loans a read/write memory region to the server.
	MessageBorrowRW
)

// Message is the caller-facing description of a message to admit. Only
// the fields relevant to Kind are read: ID and Arg1..Arg4 for Scalar;
// ID, BufPtr, BufLen, Offset, Valid for Move/BorrowRO/BorrowRW.
type Message struct {
	Kind MessageKind
	ID   uint64

	// Scalar arguments.
	Arg1, Arg2, Arg3, Arg4 uint64

	// Memory region, for Move/BorrowRO/BorrowRW.
	BufPtr, BufLen, Offset, Valid uint64
}

// Buffer names a memory region by address and length, as passed back to
// CompleteReply for verification against what the slot recorded.
type Buffer struct {
	Addr uint64
	Len  uint64
}

// Envelope is what TakeNextMessage delivers to a receiving worker.
type Envelope struct {
	// Sender is the composite routing token: (sender_pid<<16)|sender_tid
	// for Scalar/Move, or (server_index<<16)|slot_index for borrows (so
	// CompleteReply can route the eventual reply back to this slot).
	Sender uint32

	Message DeliveredMessage
}

// DeliveredMessage is the reconstructed message body handed to the
// server. Borrow-Terminated slots deliver identically to their live
// counterparts: the discriminant still reads BorrowRO/BorrowRW here, with
// the termination tracked only internally for CompleteReply's benefit.
type DeliveredMessage struct {
	Kind MessageKind
	ID   uint64

	Arg1, Arg2, Arg3, Arg4 uint64

	BufPtr, BufLen, Offset, Valid uint64
}
