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

package borrowarena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betrusted-io/xous-ipcqueue/queue"
)

func TestArena_BorrowRoundTripMovesRealBytes(t *testing.T) {
	arena := New(0x80000000)
	client := []byte("hello, server")

	serverAddr := arena.Lend(len(client), client)
	buf, ok := arena.Contents(serverAddr)
	require.True(t, ok)
	assert.Equal(t, client, buf)

	var sid queue.SID
	srv := queue.NewServer(1, sid, queue.Options{PageSize: queue.SlotSize * 8})

	_, err := srv.AdmitMessage(9, 1, queue.Message{
		Kind: queue.MessageBorrowRW, ID: 1, BufPtr: serverAddr, BufLen: uint64(len(client)),
	}, 0xC000)
	require.NoError(t, err)

	env, ok := srv.TakeNextMessage(0)
	require.True(t, ok)

	// Server mutates the page in place before replying.
	page, ok := arena.Contents(env.Message.BufPtr)
	require.True(t, ok)
	copy(page, []byte("HELLO, client"))

	wm, err := srv.CompleteReply(0, queue.Buffer{Addr: env.Message.BufPtr, Len: env.Message.BufLen})
	require.NoError(t, err)
	assert.Equal(t, queue.WaitingBorrowedMemory, wm.Kind)

	final, err := arena.ResolveReply(wm)
	require.NoError(t, err)
	assert.Equal(t, "HELLO, client", string(final))

	_, ok = arena.Contents(serverAddr)
	assert.False(t, ok, "page should be unmapped after resolving the reply")
}

func TestArena_TerminatedLenderReclaimsPage(t *testing.T) {
	arena := New(0x90000000)
	serverAddr := arena.Lend(16, nil)

	var sid queue.SID
	srv := queue.NewServer(1, sid, queue.Options{PageSize: queue.SlotSize * 8})

	_, err := srv.AdmitMessage(4, 2, queue.Message{
		Kind: queue.MessageBorrowRO, ID: 1, BufPtr: serverAddr, BufLen: 16,
	}, 0x1)
	require.NoError(t, err)

	srv.DiscardMessagesFor(4)
	_, ok := srv.TakeNextMessage(0)
	require.True(t, ok)

	wm, err := srv.CompleteReply(0, queue.Buffer{Addr: serverAddr, Len: 16})
	require.NoError(t, err)
	assert.Equal(t, queue.WaitingForgetMemory, wm.Kind)

	_, err = arena.ResolveReply(wm)
	require.NoError(t, err)

	_, ok = arena.Contents(serverAddr)
	assert.False(t, ok, "page should be reclaimed, not left mapped")
}

func TestArena_UnmapUnknownAddressErrors(t *testing.T) {
	arena := New(0xA0000000)
	_, err := arena.Unmap(0xDEAD, 0, 4, 1)
	assert.Error(t, err)
}
