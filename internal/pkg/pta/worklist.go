// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pta

// WLEntry is one pending propagation: newly added objects that still
// need to reach every successor of pointer in the PFG.
type WLEntry struct {
	Pointer Pointer
	Objs    []*Obj
}

// WorkList is the solver's FIFO queue (spec.md §4.6). FIFO order, not
// just "some order", is what makes two runs over the same program
// produce the same sequence of propagation steps (invariant 5).
type WorkList struct {
	entries []WLEntry
}

// NewWorkList returns an empty queue.
func NewWorkList() *WorkList { return &WorkList{} }

// Push enqueues an entry. A nil or empty Objs is a no-op.
func (w *WorkList) Push(p Pointer, objs []*Obj) {
	if len(objs) == 0 {
		return
	}
	w.entries = append(w.entries, WLEntry{Pointer: p, Objs: objs})
}

// Pop removes and returns the oldest entry, reporting whether the queue
// was non-empty.
func (w *WorkList) Pop() (WLEntry, bool) {
	if len(w.entries) == 0 {
		return WLEntry{}, false
	}
	e := w.entries[0]
	w.entries = w.entries[1:]
	return e, true
}

// Empty reports whether the queue has no pending entries.
func (w *WorkList) Empty() bool { return len(w.entries) == 0 }
