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

// CSManager interns every context-sensitive entity the core works with,
// so repeated lookups by the same key return the same pointer and
// invariant 2 (identity-implies-equality for these entities) holds by
// construction. This mirrors the teacher's pattern of caching derived
// objects behind a single owning struct rather than recomputing them
// (e.g. fieldtags.ResultCache in the source repo), generalized here to
// seven independent interning tables.
type CSManager struct {
	vars     map[varKey]*CSVar
	ifields  map[ifieldKey]*InstanceField
	arrays   map[*Obj]*ArrayIndex
	sfields  map[ir.FieldRef]*StaticField
	objs     map[objKey]*Obj
	methods  map[methodKey]*CSMethod
	callSites map[callSiteKey]*CSCallSite

	nextObjID int
}

type varKey struct {
	ctx Context
	v   *ir.Var
}

type ifieldKey struct {
	base  *Obj
	field ir.FieldRef
}

type objKey struct {
	alloc      *ir.New
	heapCtx    Context
	sourceCall *ir.Invoke
	taintType  string
}

type methodKey struct {
	ctx Context
	m   *ir.Method
}

type callSiteKey struct {
	ctx    Context
	invoke *ir.Invoke
}

// NewCSManager returns an empty manager.
func NewCSManager() *CSManager {
	return &CSManager{
		vars:      map[varKey]*CSVar{},
		ifields:   map[ifieldKey]*InstanceField{},
		arrays:    map[*Obj]*ArrayIndex{},
		sfields:   map[ir.FieldRef]*StaticField{},
		objs:      map[objKey]*Obj{},
		methods:   map[methodKey]*CSMethod{},
		callSites: map[callSiteKey]*CSCallSite{},
	}
}

// CSVarOf returns the interned (ctx, v) variable pointer.
func (m *CSManager) CSVarOf(ctx Context, v *ir.Var) *CSVar {
	k := varKey{ctx, v}
	if cv, ok := m.vars[k]; ok {
		return cv
	}
	cv := &CSVar{Ctx: ctx, Var: v}
	m.vars[k] = cv
	return cv
}

// InstanceFieldOf returns the interned field slot of base.
func (m *CSManager) InstanceFieldOf(base *Obj, field ir.FieldRef) *InstanceField {
	k := ifieldKey{base, field}
	if f, ok := m.ifields[k]; ok {
		return f
	}
	f := &InstanceField{Base: base, Field: field}
	m.ifields[k] = f
	return f
}

// ArrayIndexOf returns the interned array-element summary slot of base.
func (m *CSManager) ArrayIndexOf(base *Obj) *ArrayIndex {
	if a, ok := m.arrays[base]; ok {
		return a
	}
	a := &ArrayIndex{Base: base}
	m.arrays[base] = a
	return a
}

// StaticFieldOf returns the interned slot for a static field.
func (m *CSManager) StaticFieldOf(field ir.FieldRef) *StaticField {
	if f, ok := m.sfields[field]; ok {
		return f
	}
	f := &StaticField{Field: field}
	m.sfields[field] = f
	return f
}

// AllocObjOf returns the interned heap object for an allocation site
// under a heap context.
func (m *CSManager) AllocObjOf(alloc *ir.New, heapCtx Context) *Obj {
	k := objKey{alloc: alloc, heapCtx: heapCtx}
	if o, ok := m.objs[k]; ok {
		return o
	}
	o := &Obj{id: m.nextObjID, Alloc: alloc, HeapCtx: heapCtx, Type: alloc.Type}
	m.nextObjID++
	m.objs[k] = o
	return o
}

// TaintObjOf returns the interned taint object manufactured at call,
// carrying taintType.
func (m *CSManager) TaintObjOf(call *ir.Invoke, taintType string) *Obj {
	k := objKey{sourceCall: call, taintType: taintType}
	if o, ok := m.objs[k]; ok {
		return o
	}
	o := &Obj{id: m.nextObjID, HeapCtx: EmptyContext, taint: true, sourceCall: call, taintType: taintType}
	m.nextObjID++
	m.objs[k] = o
	return o
}

// CSMethodOf returns the interned (ctx, m) call-graph node.
func (m *CSManager) CSMethodOf(ctx Context, method *ir.Method) *CSMethod {
	k := methodKey{ctx, method}
	if cm, ok := m.methods[k]; ok {
		return cm
	}
	cm := &CSMethod{Ctx: ctx, Method: method}
	m.methods[k] = cm
	return cm
}

// CSCallSiteOf returns the interned (ctx, invoke) call site.
func (m *CSManager) CSCallSiteOf(ctx Context, invoke *ir.Invoke) *CSCallSite {
	k := callSiteKey{ctx, invoke}
	if cs, ok := m.callSites[k]; ok {
		return cs
	}
	cs := &CSCallSite{Ctx: ctx, Invoke: invoke}
	m.callSites[k] = cs
	return cs
}
