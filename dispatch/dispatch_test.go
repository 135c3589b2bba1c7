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

package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betrusted-io/xous-ipcqueue/queue"
)

func newServer(t *testing.T) *queue.Server {
	t.Helper()
	var sid queue.SID
	sid[0] = 1
	return queue.NewServer(1, sid, queue.Options{PageSize: queue.SlotSize * 8})
}

func TestDispatcher_ParkThenAdmitDeliversImmediately(t *testing.T) {
	srv := newServer(t)
	var delivered []uint8
	var envs []queue.Envelope
	d := New(srv, 0, func(tid uint8, env queue.Envelope) {
		delivered = append(delivered, tid)
		envs = append(envs, env)
	})

	d.Park(5)
	assert.Empty(t, delivered) // nothing queued yet: thread actually parks

	_, err := d.AdmitMessage(2, 1, queue.Message{Kind: queue.MessageScalar, ID: 1}, 0)
	require.NoError(t, err)

	require.Len(t, delivered, 1)
	assert.Equal(t, uint8(5), delivered[0])
	assert.Equal(t, uint64(1), envs[0].Message.ID)

	// thread was consumed by delivery, not left parked
	_, ok := srv.TakeAvailableThread()
	assert.False(t, ok)
}

func TestDispatcher_AdmitThenParkDeliversImmediately(t *testing.T) {
	srv := newServer(t)
	var delivered []uint8
	d := New(srv, 0, func(tid uint8, env queue.Envelope) {
		delivered = append(delivered, tid)
	})

	_, err := d.AdmitMessage(2, 1, queue.Message{Kind: queue.MessageScalar, ID: 1}, 0)
	require.NoError(t, err)
	assert.Empty(t, delivered) // no thread idle yet: message stays queued

	d.Park(9)
	require.Len(t, delivered, 1)
	assert.Equal(t, uint8(9), delivered[0])
}

func TestDispatcher_AdmitBorrowStuckBehindHeadOfLineReturnsThread(t *testing.T) {
	srv := newServer(t)
	var delivered int
	d := New(srv, 3, func(tid uint8, env queue.Envelope) { delivered++ })

	// Admit a borrow and deliver it so its slot is stuck in AwaitingReply
	// at tail.
	_, err := d.AdmitMessage(1, 1, queue.Message{Kind: queue.MessageBorrowRO, ID: 1, BufPtr: 0x10, BufLen: 4}, 0x20)
	require.NoError(t, err)
	d.Park(1)
	assert.Equal(t, 1, delivered)

	// Now a second message is admitted; tail is stuck on the AwaitingReply
	// slot, so even though a thread parks, nothing can be delivered yet.
	d.Park(2)
	_, err = d.AdmitMessage(1, 1, queue.Message{Kind: queue.MessageScalar, ID: 2}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered) // thread 2 returned to idle, not double-counted

	// Completing the reply frees tail; parking again now finds the scalar.
	_, err = srv.CompleteReply(0, queue.Buffer{Addr: 0x10, Len: 4})
	require.NoError(t, err)
	d.Park(2)
	assert.Equal(t, 2, delivered)
}
