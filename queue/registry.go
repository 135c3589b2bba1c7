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

// Registry is the sid -> *Server table implied by the syscall
// dispatcher's "Queue init"/"Queue destroy" interface; Init records the
// owning pid on the Server, but lookups are by sid alone. Like Server, it
// assumes a single-threaded caller: the kernel serializes syscall
// dispatch, so Registry carries no internal locking of its own.
type Registry struct {
	servers map[SID]*Server
}

// NewRegistry returns an empty server registry.
func NewRegistry() *Registry {
	return &Registry{servers: make(map[SID]*Server)}
}

// Init creates a new Server for (pid, sid) with the given options, or
// returns ErrMemoryInUse if sid is already registered.
func (reg *Registry) Init(pid uint16, sid SID, opts Options) (*Server, error) {
	if _, exists := reg.servers[sid]; exists {
		return nil, ErrMemoryInUse
	}
	srv := NewServer(pid, sid, opts)
	reg.servers[sid] = srv
	return srv, nil
}

// Lookup returns the server registered for sid, if any.
func (reg *Registry) Lookup(sid SID) (*Server, bool) {
	srv, ok := reg.servers[sid]
	return srv, ok
}

// Destroy empties the registry slot for sid. Outstanding borrows must
// already have been resolved by prior teardown hooks (DiscardMessagesFor
// followed by the replies it forces); Destroy does not itself walk the
// queue.
func (reg *Registry) Destroy(sid SID) {
	delete(reg.servers, sid)
}

// DiscardMessagesFor runs Server.DiscardMessagesFor for every registered
// server, mirroring the process-table's "for each server:
// discard_messages_for(dying_pid)" teardown hook.
func (reg *Registry) DiscardMessagesFor(pid uint16) {
	for _, srv := range reg.servers {
		srv.DiscardMessagesFor(pid)
	}
}
