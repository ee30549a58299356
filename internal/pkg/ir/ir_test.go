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

package ir_test

import (
	"testing"

	"github.com/google/go-pta/internal/pkg/ir"
)

func TestMethodUseIndices(t *testing.T) {
	class := &ir.Class{Name: "T"}
	typ := &ir.Type{Name: "T", Class: class}
	m := &ir.Method{Name: "m", Class: class}
	base := &ir.Var{Name: "base", Type: typ, Method: m}
	other := &ir.Var{Name: "other", Type: typ, Method: m}
	field := ir.FieldRef{Class: class, Name: "f"}

	store := &ir.StoreField{Base: base, Field: field, RHS: other}
	load := &ir.LoadField{LHS: other, Base: base, Field: field}
	arrStore := &ir.StoreArray{Base: base, RHS: other}
	arrLoad := &ir.LoadArray{LHS: other, Base: base}
	call := &ir.Invoke{Kind: ir.InvokeVirtual, Receiver: base, Args: []*ir.Var{other}}

	m.SetStmts([]ir.Stmt{store, load, arrStore, arrLoad, call})

	if got := m.StoresOf(base); len(got) != 1 || got[0] != store {
		t.Errorf("StoresOf(base) = %v, want [%v]", got, store)
	}
	if got := m.LoadsOf(base); len(got) != 1 || got[0] != load {
		t.Errorf("LoadsOf(base) = %v, want [%v]", got, load)
	}
	if got := m.ArrayStoresOf(base); len(got) != 1 || got[0] != arrStore {
		t.Errorf("ArrayStoresOf(base) = %v, want [%v]", got, arrStore)
	}
	if got := m.ArrayLoadsOf(base); len(got) != 1 || got[0] != arrLoad {
		t.Errorf("ArrayLoadsOf(base) = %v, want [%v]", got, arrLoad)
	}
	if got := m.InvokesWithReceiver(base); len(got) != 1 || got[0] != call {
		t.Errorf("InvokesWithReceiver(base) = %v, want [%v]", got, call)
	}
	if got := m.InvokesWithArg(other); len(got) != 1 || got[0] != call {
		t.Errorf("InvokesWithArg(other) = %v, want [%v]", got, call)
	}
	if got := m.StoresOf(other); len(got) != 0 {
		t.Errorf("StoresOf(other) = %v, want none", got)
	}
}

func TestMethodThisForStaticVsInstance(t *testing.T) {
	class := &ir.Class{Name: "T"}
	typ := &ir.Type{Name: "T", Class: class}

	static := &ir.Method{Name: "s", Class: class, IsStatic: true}
	if got := static.This(); got != nil {
		t.Errorf("static.This() = %v, want nil", got)
	}

	instance := &ir.Method{Name: "i", Class: class}
	recv := &ir.Var{Name: "this", Type: typ, Method: instance}
	instance.Params = []*ir.Var{recv}
	if got := instance.This(); got != recv {
		t.Errorf("instance.This() = %v, want %v", got, recv)
	}
}

func TestProgramMain(t *testing.T) {
	p := ir.NewProgram()
	if _, ok := p.Main(); ok {
		t.Fatalf("Main() ok = true on an empty program")
	}
	m := &ir.Method{Name: "main"}
	p.SetMain(m)
	got, ok := p.Main()
	if !ok || got != m {
		t.Errorf("Main() = (%v, %v), want (%v, true)", got, ok, m)
	}
}

func TestInvokeID(t *testing.T) {
	inv := &ir.Invoke{}
	inv.SetID(7)
	if got := inv.ID(); got != 7 {
		t.Errorf("ID() = %d, want 7", got)
	}
}
