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

import "errors"

// ErrMemoryInUse is returned by Registry.Init when a server with the given
// SID already exists.
var ErrMemoryInUse = errors.New("queue: server already exists")

// ErrQueueFull is returned by AdmitMessage/AdmitReplySlot when the slot at
// head is not Empty.
var ErrQueueFull = errors.New("queue: server queue full")

// ErrBadAddress is returned by CompleteReply for an out-of-range slot
// index, or for a buffer whose address/length doesn't match the one
// recorded in the slot.
var ErrBadAddress = errors.New("queue: bad address")
