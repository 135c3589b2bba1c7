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

// Options configures a Server's resource bounds. The design target is one
// page of 4096 bytes holding 128 32-byte slots; this implementation widens
// Slot to 64 bytes (SlotSize) and defaults PageSize up accordingly so the
// default capacity still lands on a round number, while still letting
// tests shrink both knobs for small queues.
type Options struct {
	// PageSize is the memory budget for the slot array, in bytes.
	// Capacity is PageSize/SlotSize.
	PageSize int

	// Trace, if non-nil, is called for notable state transitions
	// (admission, delivery, reply); the DiscardMessagesFor teardown sweep
	// emits no event. It follows the same
	// pluggable-callback shape as gopool's panic handler rather than
	// pulling in a logging framework: the default no-op keeps Server
	// silent, and callers that want visibility can wire in log.Printf or
	// anything else.
	Trace func(event string, fields ...any)
}

// DefaultOptions returns the design-target resource bounds: a queue that
// fits in SlotWords*8*128 bytes (128 slots at the widened 64-byte slot
// size), with tracing disabled.
func DefaultOptions() Options {
	return Options{
		PageSize: SlotSize * 128,
		Trace:    func(string, ...any) {},
	}
}

func (o Options) capacity() int {
	return o.PageSize / SlotSize
}

func (o Options) trace() func(event string, fields ...any) {
	if o.Trace != nil {
		return o.Trace
	}
	return func(string, ...any) {}
}
