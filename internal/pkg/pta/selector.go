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

import (
	"strconv"
	"strings"

	"github.com/google/go-pta/internal/pkg/ir"
)

// Selector decides how the solver derives new contexts at call and
// allocation sites (spec.md §4.4). Swapping the Selector is the whole
// difference between context-insensitive, k-call-site-sensitive,
// k-object-sensitive, and type-sensitive analysis; the solver and every
// other component in this package are oblivious to which one is active.
type Selector interface {
	// SelectInstanceContext derives the callee's context for a virtual
	// or special call whose receiver object is recv, resolved from call
	// site call (itself under the caller's context).
	SelectInstanceContext(call *CSCallSite, recv *Obj, callee *ir.Method) Context
	// SelectStaticContext derives the callee's context for a static
	// call from call site call.
	SelectStaticContext(call *CSCallSite, callee *ir.Method) Context
	// SelectHeapContext derives the heap context for an allocation
	// statement executed by method.
	SelectHeapContext(method *CSMethod, alloc *ir.New) Context
}

// InsensitiveSelector implements context-insensitive analysis: every
// entity is interned under EmptyContext, collapsing this package's
// context-sensitive machinery to a classic whole-program Andersen
// analysis. internal/pkg/pta's exported context-insensitive pointer
// analysis (spec.md's secondary deliverable) is this engine run with
// this Selector.
type InsensitiveSelector struct{}

func (InsensitiveSelector) SelectInstanceContext(*CSCallSite, *Obj, *ir.Method) Context {
	return EmptyContext
}
func (InsensitiveSelector) SelectStaticContext(*CSCallSite, *ir.Method) Context {
	return EmptyContext
}
func (InsensitiveSelector) SelectHeapContext(*CSMethod, *ir.New) Context {
	return EmptyContext
}

// CallSiteSelector implements k-call-site sensitivity: a callee's
// context is the caller's context extended by the call site, truncated
// to the last K elements. Heap objects get a separate, usually shorter,
// HK-call-site context, the common "2-call-site, 1-heap" configuration.
type CallSiteSelector struct {
	K  int
	HK int
}

func (s CallSiteSelector) SelectInstanceContext(call *CSCallSite, _ *Obj, _ *ir.Method) Context {
	return extend(call.Ctx, strconv.Itoa(call.Invoke.ID()), s.K)
}

func (s CallSiteSelector) SelectStaticContext(call *CSCallSite, _ *ir.Method) Context {
	return extend(call.Ctx, strconv.Itoa(call.Invoke.ID()), s.K)
}

func (s CallSiteSelector) SelectHeapContext(method *CSMethod, _ *ir.New) Context {
	if method.Ctx.IsEmpty() || s.HK < 0 {
		return method.Ctx
	}
	elems := strings.Split(method.Ctx.key, ";")
	if len(elems) > s.HK {
		elems = elems[len(elems)-s.HK:]
	}
	return Context{key: strings.Join(elems, ";")}
}

// ObjectSelector implements k-object sensitivity: a callee's context
// for an instance call is the receiver object's own identity, chained
// onto the caller's context and truncated to K. Static calls fall back
// to the caller's own context, since there is no receiver object to key
// on (spec.md's object-sensitive variant inherits this from Tai-e/Soot).
type ObjectSelector struct {
	K  int
	HK int
}

func (s ObjectSelector) SelectInstanceContext(call *CSCallSite, recv *Obj, _ *ir.Method) Context {
	return extend(call.Ctx, objKeyString(recv), s.K)
}

func (s ObjectSelector) SelectStaticContext(call *CSCallSite, _ *ir.Method) Context {
	return call.Ctx
}

func (s ObjectSelector) SelectHeapContext(method *CSMethod, alloc *ir.New) Context {
	return extend(method.Ctx, alloc.Type.String(), s.HK)
}

// TypeSelector implements type sensitivity: like ObjectSelector, but
// keys on the receiver object's declared type rather than its identity,
// a coarser and cheaper approximation.
type TypeSelector struct {
	K  int
	HK int
}

func (s TypeSelector) SelectInstanceContext(call *CSCallSite, recv *Obj, _ *ir.Method) Context {
	return extend(call.Ctx, recv.Type.String(), s.K)
}

func (s TypeSelector) SelectStaticContext(call *CSCallSite, _ *ir.Method) Context {
	return call.Ctx
}

func (s TypeSelector) SelectHeapContext(method *CSMethod, alloc *ir.New) Context {
	return extend(method.Ctx, alloc.Type.String(), s.HK)
}

func objKeyString(o *Obj) string {
	if o.IsTaint() {
		return "t#" + strconv.Itoa(o.id)
	}
	return "o#" + strconv.Itoa(o.id)
}
