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

// Package ir defines the three-address intermediate representation that
// the pointer-analysis core in internal/pkg/pta consumes. Building this IR
// from a real program (see internal/pkg/ssafrontend) and constructing the
// class hierarchy (internal/pkg/classhierarchy) are collaborators external
// to the core.
package ir

import "fmt"

// Type is the declared type of a Var or Obj. A Type is either a Class
// (possibly an interface), an array type, or a primitive. Program does
// not intern types; the IR builder (e.g. internal/pkg/ssafrontend) keeps
// one *Type per source type so that equal types compare equal.
type Type struct {
	Name      string
	Class     *Class // non-nil for class/interface types
	ElemType  *Type  // non-nil for array types
	Primitive bool
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// IsReference reports whether values of this type can point to heap
// objects. Primitive types never do.
func (t *Type) IsReference() bool {
	return t != nil && !t.Primitive
}

// Class models a class or interface in the hierarchy.
type Class struct {
	Name       string
	Super      *Class
	Interfaces []*Class
	IsIface    bool
	Methods    map[string]*Method // declared (non-inherited) methods, by selector
	Type       *Type
}

func (c *Class) String() string { return c.Name }

// MethodRef names a method by its declaring selector, independent of
// which concrete class ends up implementing it. Dispatch resolves a
// MethodRef against a runtime class via the class hierarchy.
type MethodRef struct {
	Selector string // e.g. "m()V", kept opaque to the core
}

// Method is a declared method body: parameters, optional receiver,
// statements, and the per-Var use-site indices the solver needs to avoid
// rescanning statements on every points-to growth.
type Method struct {
	Name      string
	Class     *Class
	Selector  string
	IsStatic  bool
	IsAbstract bool
	Params    []*Var // for instance methods, Params[0] is the receiver ("this")
	Rets      []*Var
	stmts     []Stmt

	uses *useIndex
}

func (m *Method) String() string {
	if m.Class == nil {
		return m.Name
	}
	return m.Class.Name + "." + m.Name
}

// This returns the receiver variable of an instance method, or nil for a
// static method.
func (m *Method) This() *Var {
	if m.IsStatic || len(m.Params) == 0 {
		return nil
	}
	return m.Params[0]
}

// Stmts returns the method's statements in program order.
func (m *Method) Stmts() []Stmt { return m.stmts }

// SetStmts installs the method body and (re)builds the use-site indices.
// Building the IR (including calling SetStmts) is a collaborator
// responsibility, not the solver's.
func (m *Method) SetStmts(stmts []Stmt) {
	m.stmts = stmts
	m.uses = buildUseIndex(stmts)
}

// StoresOf returns every "v.f = y" statement with v as the base.
func (m *Method) StoresOf(v *Var) []*StoreField { return m.uses.storesByBase[v] }

// LoadsOf returns every "y = v.f" statement with v as the base.
func (m *Method) LoadsOf(v *Var) []*LoadField { return m.uses.loadsByBase[v] }

// ArrayStoresOf returns every "v[*] = y" statement with v as the base.
func (m *Method) ArrayStoresOf(v *Var) []*StoreArray { return m.uses.arrStoresByBase[v] }

// ArrayLoadsOf returns every "y = v[*]" statement with v as the base.
func (m *Method) ArrayLoadsOf(v *Var) []*LoadArray { return m.uses.arrLoadsByBase[v] }

// InvokesWithReceiver returns every instance-call statement that uses v as
// its receiver.
func (m *Method) InvokesWithReceiver(v *Var) []*Invoke { return m.uses.invokesByRecv[v] }

// InvokesWithArg returns every call statement that passes v as an
// argument (any position), used to trigger argument-based taint
// transfers when v acquires new taint.
func (m *Method) InvokesWithArg(v *Var) []*Invoke { return m.uses.invokesByArg[v] }

// Var is a local variable (register or parameter) of a Method.
type Var struct {
	Name   string
	Type   *Type
	Method *Method
}

func (v *Var) String() string {
	if v.Method == nil {
		return v.Name
	}
	return v.Method.String() + ":" + v.Name
}

// FieldRef names an instance or static field.
type FieldRef struct {
	Class *Class
	Name  string
}

func (f FieldRef) String() string { return f.Class.Name + "." + f.Name }

// InvokeKind distinguishes how a call site dispatches.
type InvokeKind int

const (
	// InvokeStatic calls a static method; Receiver is nil.
	InvokeStatic InvokeKind = iota
	// InvokeSpecial calls a fixed method without virtual dispatch
	// (constructors, private methods, super calls).
	InvokeSpecial
	// InvokeVirtual dispatches on the receiver's runtime class.
	InvokeVirtual
	// InvokeInterface dispatches on the receiver's runtime class through
	// an interface method table; treated identically to InvokeVirtual by
	// the core, which only cares about the declared type of the receiver
	// object at resolution time.
	InvokeInterface
)

// Invoke is both a statement (it may have no result) and an expression
// (it may assign Result). Call resolution treats Receiver == nil as a
// static dispatch regardless of Kind.
type Invoke struct {
	Kind     InvokeKind
	Ref      MethodRef
	Receiver *Var // nil for static calls
	Args     []*Var
	Result   *Var // nil if the call's value is discarded

	// Target is the statically-known callee for InvokeStatic and
	// InvokeSpecial call sites, resolved once by the IR builder.
	// InvokeVirtual and InvokeInterface leave this nil: the solver
	// resolves those against the runtime class of the receiver object
	// through the class hierarchy instead (spec.md §4.6 step 2).
	Target *Method

	id int // identity for interning CSCallSite; set by the IR builder
}

func (i *Invoke) ID() int { return i.id }

// SetID assigns the call site's interning identity. Builders must assign
// distinct ids to every *Invoke in a Program.
func (i *Invoke) SetID(id int) { i.id = id }

func (i *Invoke) String() string {
	return fmt.Sprintf("invoke#%d[%s]", i.id, i.Ref.Selector)
}

// Program is the whole analyzed unit: its class hierarchy view and its
// entry point. internal/pkg/classhierarchy builds the dispatch oracle
// from a Program's classes.
type Program struct {
	Classes []*Class
	main    *Method
}

// NewProgram creates an empty program.
func NewProgram() *Program { return &Program{} }

// SetMain designates the analysis entry point.
func (p *Program) SetMain(m *Method) { p.main = m }

// Main returns the entry method, if one was designated.
func (p *Program) Main() (*Method, bool) { return p.main, p.main != nil }
