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

// Package dispatch operationalizes the coupling contract between a
// queue.Server's admission path and its ready-thread set: "on admit, if
// a thread was previously taken, deliver now; else leave queued; on
// park, if a message was waiting, take and deliver now." The queue spec
// describes this contract but leaves which of the two paths a dispatcher
// implements first unspecified, only requiring that exactly one of them
// runs when the pairing becomes possible.
//
// Dispatcher is a reference implementation of that contract, in the
// style of concurrency/gopool's task-channel-plus-idle-worker pattern,
// retargeted from goroutine workers to kernel thread IDs. Unlike gopool,
// Dispatcher never spawns a goroutine: queue operations must run on the
// syscall handler's own call stack (the queue package assumes a single,
// serialized caller), so "delivery" here is a direct, synchronous
// callback invocation.
package dispatch

import "github.com/betrusted-io/xous-ipcqueue/queue"

// Deliver is invoked synchronously, on the caller's own goroutine, when
// a message has been paired with an idle thread.
type Deliver func(tid uint8, env queue.Envelope)

// Dispatcher pairs admissions into a queue.Server with threads parked on
// it, so that at most one of "admit finds an idle thread" and "park
// finds a waiting message" ever fires for a given pairing.
type Dispatcher struct {
	srv         *queue.Server
	serverIndex uint16
	deliver     Deliver
}

// New returns a Dispatcher for srv. serverIndex is the registry index
// threaded into the sender token of delivered borrow messages (see
// queue.Server.TakeNextMessage). deliver must not be nil.
func New(srv *queue.Server, serverIndex uint16, deliver Deliver) *Dispatcher {
	if deliver == nil {
		panic("dispatch: deliver must not be nil")
	}
	return &Dispatcher{srv: srv, serverIndex: serverIndex, deliver: deliver}
}

// AdmitMessage admits msg into the underlying queue, then attempts
// immediate delivery if a thread is idle.
func (d *Dispatcher) AdmitMessage(senderPID, senderTID uint16, msg queue.Message, originAddr uint64) (int, error) {
	idx, err := d.srv.AdmitMessage(senderPID, senderTID, msg, originAddr)
	if err != nil {
		return idx, err
	}
	d.tryDeliver()
	return idx, nil
}

// AdmitReplySlot admits a synchronous reply-address slot, then attempts
// immediate delivery if a thread is idle.
func (d *Dispatcher) AdmitReplySlot(senderPID, senderTID uint16, msg queue.Message, clientAddr uint64) (int, error) {
	idx, err := d.srv.AdmitReplySlot(senderPID, senderTID, msg, clientAddr)
	if err != nil {
		return idx, err
	}
	d.tryDeliver()
	return idx, nil
}

// tryDeliver implements the "on admit" half of the coupling contract: if
// a thread was idle, take it and the next deliverable message and
// deliver immediately; if TakeNextMessage finds nothing (the message
// that was just admitted sits behind a stuck AwaitingReply slot), return
// the thread to idle rather than leaving it wrongly consumed.
func (d *Dispatcher) tryDeliver() {
	tid, ok := d.srv.TakeAvailableThread()
	if !ok {
		return
	}
	env, ok := d.srv.TakeNextMessage(d.serverIndex)
	if !ok {
		d.srv.ReturnAvailableThread(tid)
		return
	}
	d.deliver(tid, env)
}

// Park implements the "on park" half of the coupling contract: if a
// message is already deliverable, take and deliver it immediately
// instead of parking tid.
func (d *Dispatcher) Park(tid uint8) {
	env, ok := d.srv.TakeNextMessage(d.serverIndex)
	if ok {
		d.deliver(tid, env)
		return
	}
	d.srv.ParkThread(tid)
}
