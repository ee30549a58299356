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

import "github.com/google/go-pta/internal/pkg/ir"

// HeapModel manufactures the abstract object for an allocation statement
// executed by a given CSMethod, applying the active Selector's heap
// context policy (spec.md §4.4) and interning the result through
// CSManager so repeated allocation of "the same" object under the same
// heap context returns the same *Obj (invariant 4).
type HeapModel struct {
	csm      *CSManager
	selector Selector
}

// NewHeapModel returns a HeapModel backed by csm and driven by selector.
func NewHeapModel(csm *CSManager, selector Selector) *HeapModel {
	return &HeapModel{csm: csm, selector: selector}
}

// Allocate returns the interned object for alloc executed under method.
func (h *HeapModel) Allocate(method *CSMethod, alloc *ir.New) *Obj {
	heapCtx := h.selector.SelectHeapContext(method, alloc)
	return h.csm.AllocObjOf(alloc, heapCtx)
}
