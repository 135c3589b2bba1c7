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

// Package borrowarena is a fake memory subsystem for tests and examples:
// it implements the Unmap/Reclaim collaborator interfaces the queue
// package's CompleteReply result drives, backing each simulated page with
// a real, pooled byte buffer instead of a stub, so round-trip tests can
// assert on bytes actually moving between a simulated client and server
// address space.
//
// Pages are allocated through bytedance/gopkg's mcache, the same
// size-classed byte-slice pool cache/mempool and bufiox use elsewhere in
// this codebase's teacher lineage, rather than a bespoke allocator.
package borrowarena

import (
	"fmt"
	"sync"

	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/betrusted-io/xous-ipcqueue/queue"
)

// Arena tracks borrowed pages by their server-side address, as assigned
// by Lend.
type Arena struct {
	mu    sync.Mutex
	pages map[uint64][]byte
	next  uint64
}

// New returns an empty Arena. Simulated addresses start at base and
// increase monotonically as pages are lent.
func New(base uint64) *Arena {
	return &Arena{pages: make(map[uint64][]byte), next: base}
}

// Lend allocates a page of length bytes, copies in the client's current
// contents, and returns the server-side address it was mapped to — the
// value a caller should pass as a borrow message's BufPtr.
func (a *Arena) Lend(length int, clientContents []byte) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf := mcache.Malloc(length)
	copy(buf, clientContents)

	addr := a.next
	a.next += uint64(length)
	a.pages[addr] = buf
	return addr
}

// Contents returns the current bytes of the page mapped at serverAddr.
func (a *Arena) Contents(serverAddr uint64) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.pages[serverAddr]
	return buf, ok
}

// Unmap implements the §6 "Unmap-from-server-and-restore-to-client"
// collaborator: it removes the server-side mapping and returns the final
// page contents to the caller, who is responsible for writing them back
// at clientAddr in whatever address space that represents.
func (a *Arena) Unmap(serverAddr, clientAddr uint64, length uint32, pid uint16) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf, ok := a.pages[serverAddr]
	if !ok {
		return nil, fmt.Errorf("borrowarena: no page mapped at %#x", serverAddr)
	}
	if len(buf) != int(length) {
		return nil, fmt.Errorf("borrowarena: page at %#x is %d bytes, reply claims %d", serverAddr, len(buf), length)
	}
	delete(a.pages, serverAddr)

	out := make([]byte, len(buf))
	copy(out, buf)
	mcache.Free(buf)
	return out, nil
}

// Reclaim implements the §6 "Reclaim-to-system" collaborator: the lender
// died, so the page is simply freed rather than returned anywhere.
func (a *Arena) Reclaim(serverAddr uint64, length uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf, ok := a.pages[serverAddr]
	if !ok {
		return fmt.Errorf("borrowarena: no page mapped at %#x", serverAddr)
	}
	if len(buf) != int(length) {
		return fmt.Errorf("borrowarena: page at %#x is %d bytes, reclaim claims %d", serverAddr, len(buf), length)
	}
	delete(a.pages, serverAddr)
	mcache.Free(buf)
	return nil
}

// ResolveReply applies the outcome of a queue.Server.CompleteReply call
// against the arena: WaitingBorrowedMemory unmaps and returns the final
// page bytes, WaitingForgetMemory reclaims them, and WaitingNone /
// WaitingMovedMemory are no-ops (nothing was ever lent, or there's
// nothing to resolve).
func (a *Arena) ResolveReply(wm queue.WaitingMessage) ([]byte, error) {
	switch wm.Kind {
	case queue.WaitingBorrowedMemory:
		return a.Unmap(wm.ServerAddr, wm.ClientAddr, uint32(wm.Len), wm.SenderPID)
	case queue.WaitingForgetMemory:
		return nil, a.Reclaim(wm.ServerAddr, uint32(wm.Len))
	default:
		return nil, nil
	}
}
