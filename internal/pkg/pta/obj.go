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

// Package pta implements the context-sensitive, Andersen-style,
// inclusion-based pointer analysis (spec.md §4.6) and the taint-tracking
// plugin layered over it (spec.md §4.9).
package pta

import (
	"fmt"

	"github.com/google/go-pta/internal/pkg/ir"
)

// Obj is an abstract heap object: either an allocation site under a heap
// context, or a taint object manufactured at a source call. Two regular
// objects are the same entity iff they share Alloc and HeapCtx; two taint
// objects are the same entity iff they share SourceCall and TaintType
// (spec.md §3, invariant 4). Obj values are never constructed directly;
// CSManager interns them so pointer equality implies entity equality.
type Obj struct {
	id int

	Alloc   *ir.New // nil for a taint object
	HeapCtx Context
	Type    *ir.Type

	taint      bool
	sourceCall *ir.Invoke
	taintType  string
}

// IsTaint reports whether o was manufactured by the taint plugin rather
// than by an allocation statement.
func (o *Obj) IsTaint() bool { return o.taint }

// SourceCall returns the call site that introduced a taint object, or nil
// for a regular allocation object.
func (o *Obj) SourceCall() *ir.Invoke {
	if !o.taint {
		return nil
	}
	return o.sourceCall
}

// TaintType returns the declared taint label of a taint object ("" for a
// regular allocation object).
func (o *Obj) TaintType() string { return o.taintType }

func (o *Obj) String() string {
	if o.taint {
		return fmt.Sprintf("taint#%d[%s@%s]", o.id, o.taintType, o.sourceCall)
	}
	return fmt.Sprintf("obj#%d[%s/%s]", o.id, o.Alloc.Type, o.HeapCtx)
}
