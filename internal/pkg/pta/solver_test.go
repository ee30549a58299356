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

package pta_test

import (
	"context"
	"testing"

	"github.com/google/go-pta/internal/pkg/classhierarchy"
	"github.com/google/go-pta/internal/pkg/config"
	"github.com/google/go-pta/internal/pkg/ir"
	"github.com/google/go-pta/internal/pkg/pta"
)

func newVar(name string, typ *ir.Type, m *ir.Method) *ir.Var {
	return &ir.Var{Name: name, Type: typ, Method: m}
}

func TestCopyPropagatesAllocation(t *testing.T) {
	typeT := &ir.Type{Name: "T"}
	main := &ir.Method{Name: "main", Selector: "main()V", IsStatic: true}
	x := newVar("x", typeT, main)
	y := newVar("y", typeT, main)
	main.SetStmts([]ir.Stmt{
		&ir.New{LHS: x, Type: typeT},
		&ir.Copy{LHS: y, RHS: x},
	})

	program := ir.NewProgram()
	program.SetMain(main)

	s := pta.NewSolver(program, classhierarchy.New(nil), pta.InsensitiveSelector{}, nil)
	s.Solve(context.Background())
	res := pta.NewResult(s)

	xPts := res.PointsTo(pta.EmptyContext, x)
	yPts := res.PointsTo(pta.EmptyContext, y)
	if len(xPts) != 1 {
		t.Fatalf("len(PointsTo(x)) = %d, want 1", len(xPts))
	}
	if len(yPts) != 1 {
		t.Fatalf("len(PointsTo(y)) = %d, want 1", len(yPts))
	}
	if xPts[0] != yPts[0] {
		t.Errorf("PointsTo(x) = %v, PointsTo(y) = %v, want the same object", xPts, yPts)
	}
	if !res.MayAlias(pta.EmptyContext, x, pta.EmptyContext, y) {
		t.Errorf("MayAlias(x, y) = false, want true")
	}
}

func TestFieldStoreLoadRoundTrips(t *testing.T) {
	typeT := &ir.Type{Name: "T"}
	classT := &ir.Class{Name: "T", Type: typeT}
	typeT.Class = classT
	field := ir.FieldRef{Class: classT, Name: "f"}

	typeU := &ir.Type{Name: "U"}

	main := &ir.Method{Name: "main", Selector: "main()V", IsStatic: true}
	obj := newVar("obj", typeT, main)
	val := newVar("val", typeU, main)
	loaded := newVar("loaded", typeU, main)
	main.SetStmts([]ir.Stmt{
		&ir.New{LHS: obj, Type: typeT},
		&ir.New{LHS: val, Type: typeU},
		&ir.StoreField{Base: obj, Field: field, RHS: val},
		&ir.LoadField{LHS: loaded, Base: obj, Field: field},
	})

	program := ir.NewProgram()
	program.Classes = []*ir.Class{classT}
	program.SetMain(main)

	s := pta.NewSolver(program, classhierarchy.New(program.Classes), pta.InsensitiveSelector{}, nil)
	s.Solve(context.Background())
	res := pta.NewResult(s)

	valPts := res.PointsTo(pta.EmptyContext, val)
	loadedPts := res.PointsTo(pta.EmptyContext, loaded)
	if len(loadedPts) != 1 || len(valPts) != 1 || loadedPts[0] != valPts[0] {
		t.Fatalf("PointsTo(loaded) = %v, want exactly PointsTo(val) = %v", loadedPts, valPts)
	}
}

func TestVirtualDispatchReachesOverride(t *testing.T) {
	ref := ir.MethodRef{Selector: "foo()V"}

	derived := &ir.Class{Name: "Derived", Methods: map[string]*ir.Method{}}
	typeDerived := &ir.Type{Name: "Derived", Class: derived}
	derived.Type = typeDerived

	foo := &ir.Method{Name: "foo", Class: derived, Selector: ref.Selector}
	this := newVar("this", typeDerived, foo)
	foo.Params = []*ir.Var{this}
	foo.SetStmts(nil)
	derived.Methods[ref.Selector] = foo

	main := &ir.Method{Name: "main", Selector: "main()V", IsStatic: true}
	d := newVar("d", typeDerived, main)
	call := &ir.Invoke{Kind: ir.InvokeVirtual, Ref: ref, Receiver: d}
	call.SetID(0)
	main.SetStmts([]ir.Stmt{
		&ir.New{LHS: d, Type: typeDerived},
		call,
	})

	program := ir.NewProgram()
	program.Classes = []*ir.Class{derived}
	program.SetMain(main)

	s := pta.NewSolver(program, classhierarchy.New(program.Classes), pta.InsensitiveSelector{}, nil)
	s.Solve(context.Background())
	res := pta.NewResult(s)

	var reachedFoo bool
	for _, cm := range res.ReachableMethods() {
		if cm.Method == foo {
			reachedFoo = true
		}
	}
	if !reachedFoo {
		t.Errorf("ReachableMethods() did not include Derived.foo")
	}
}

// TestCallSiteSensitivityAvoidsMerging is the precision scenario this
// whole package exists for: an identity function called from two call
// sites with two different allocations must not let a context-sensitive
// analysis merge the two objects into the callee's parameter, the way a
// context-insensitive run necessarily does.
func TestCallSiteSensitivityAvoidsMerging(t *testing.T) {
	build := func(selector pta.Selector) (r1, r2 *ir.Var, res *pta.Result) {
		typeT := &ir.Type{Name: "T"}
		id := &ir.Method{Name: "id", Selector: "id(T)T", IsStatic: true}
		p := newVar("p", typeT, id)
		id.Params = []*ir.Var{p}
		id.Rets = []*ir.Var{p}
		id.SetStmts(nil)

		main := &ir.Method{Name: "main", Selector: "main()V", IsStatic: true}
		a := newVar("a", typeT, main)
		b := newVar("b", typeT, main)
		r1 = newVar("r1", typeT, main)
		r2 = newVar("r2", typeT, main)
		call1 := &ir.Invoke{Kind: ir.InvokeStatic, Target: id, Args: []*ir.Var{a}, Result: r1}
		call1.SetID(0)
		call2 := &ir.Invoke{Kind: ir.InvokeStatic, Target: id, Args: []*ir.Var{b}, Result: r2}
		call2.SetID(1)
		main.SetStmts([]ir.Stmt{
			&ir.New{LHS: a, Type: typeT},
			&ir.New{LHS: b, Type: typeT},
			call1,
			call2,
		})

		program := ir.NewProgram()
		program.SetMain(main)

		s := pta.NewSolver(program, classhierarchy.New(nil), selector, nil)
		s.Solve(context.Background())
		return r1, r2, pta.NewResult(s)
	}

	t.Run("insensitive merges both allocations into both results", func(t *testing.T) {
		r1, r2, res := build(pta.InsensitiveSelector{})
		if len(res.PointsTo(pta.EmptyContext, r1)) != 2 {
			t.Errorf("len(PointsTo(r1)) = %d, want 2 (spurious merge)", len(res.PointsTo(pta.EmptyContext, r1)))
		}
		if !res.MayAlias(pta.EmptyContext, r1, pta.EmptyContext, r2) {
			t.Errorf("MayAlias(r1, r2) = false, want true under a context-insensitive run")
		}
	})

	t.Run("call-site sensitivity keeps the two results disjoint", func(t *testing.T) {
		r1, r2, res := build(pta.CallSiteSelector{K: 1})
		if len(res.PointsTo(pta.EmptyContext, r1)) != 1 {
			t.Errorf("len(PointsTo(r1)) = %d, want 1", len(res.PointsTo(pta.EmptyContext, r1)))
		}
		if len(res.PointsTo(pta.EmptyContext, r2)) != 1 {
			t.Errorf("len(PointsTo(r2)) = %d, want 1", len(res.PointsTo(pta.EmptyContext, r2)))
		}
		if res.MayAlias(pta.EmptyContext, r1, pta.EmptyContext, r2) {
			t.Errorf("MayAlias(r1, r2) = true, want false under 1-call-site sensitivity")
		}
	})
}

func TestTaintFlowsFromSourceToSink(t *testing.T) {
	source := &ir.Class{Name: "pkg.Source"}
	get := &ir.Method{Name: "Get", Class: source, Selector: "Get()"}
	get.SetStmts(nil)

	sink := &ir.Class{Name: "pkg.Sink"}
	leak := &ir.Method{Name: "Leak", Class: sink, Selector: "Leak(T)V"}
	leak.SetStmts(nil)

	main := &ir.Method{Name: "main", Selector: "main()V", IsStatic: true}
	typeStr := &ir.Type{Name: "string"}
	tainted := newVar("tainted", typeStr, main)
	call1 := &ir.Invoke{Kind: ir.InvokeStatic, Target: get, Result: tainted}
	call1.SetID(0)
	call2 := &ir.Invoke{Kind: ir.InvokeStatic, Target: leak, Args: []*ir.Var{tainted}}
	call2.SetID(1)
	main.SetStmts([]ir.Stmt{call1, call2})

	program := ir.NewProgram()
	program.Classes = []*ir.Class{source, sink}
	program.SetMain(main)

	cfg, err := config.Parse([]byte(`
sources:
  - method: "pkg.Source.Get"
    type: "tainted"
sinks:
  - method: "pkg.Sink.Leak"
    index: 0
`))
	if err != nil {
		t.Fatalf("config.Parse() error = %v", err)
	}

	s := pta.NewSolver(program, classhierarchy.New(program.Classes), pta.InsensitiveSelector{}, cfg)
	s.Solve(context.Background())
	res := pta.NewResult(s)

	flows := res.TaintFlows()
	if len(flows) != 1 {
		t.Fatalf("len(TaintFlows()) = %d, want 1: %v", len(flows), flows)
	}
	if flows[0].Sink != call2 || flows[0].SinkIndex != 0 || flows[0].Type != "tainted" {
		t.Errorf("unexpected flow: %+v", flows[0])
	}
}

func TestTaintTransferRetypesAcrossCall(t *testing.T) {
	source := &ir.Class{Name: "pkg.Source"}
	get := &ir.Method{Name: "Get", Class: source, Selector: "Get()"}
	get.SetStmts(nil)

	str := &ir.Class{Name: "pkg.Str"}
	concat := &ir.Method{Name: "Concat", Class: str, Selector: "Concat(T,T)T"}
	concat.SetStmts(nil)

	sink := &ir.Class{Name: "pkg.Sink"}
	leak := &ir.Method{Name: "Leak", Class: sink, Selector: "Leak(T)V"}
	leak.SetStmts(nil)

	main := &ir.Method{Name: "main", Selector: "main()V", IsStatic: true}
	typeStr := &ir.Type{Name: "string"}
	tainted := newVar("tainted", typeStr, main)
	other := newVar("other", typeStr, main)
	combined := newVar("combined", typeStr, main)

	call1 := &ir.Invoke{Kind: ir.InvokeStatic, Target: get, Result: tainted}
	call1.SetID(0)
	call2 := &ir.Invoke{Kind: ir.InvokeStatic, Target: concat, Args: []*ir.Var{tainted, other}, Result: combined}
	call2.SetID(1)
	call3 := &ir.Invoke{Kind: ir.InvokeStatic, Target: leak, Args: []*ir.Var{combined}}
	call3.SetID(2)
	main.SetStmts([]ir.Stmt{
		&ir.New{LHS: other, Type: typeStr},
		call1, call2, call3,
	})

	program := ir.NewProgram()
	program.Classes = []*ir.Class{source, str, sink}
	program.SetMain(main)

	cfg, err := config.Parse([]byte(`
sources:
  - method: "pkg.Source.Get"
    type: "tainted"
sinks:
  - method: "pkg.Sink.Leak"
    index: 0
transfers:
  - method: "pkg.Str.Concat"
    from: "0"
    to: "result"
    type: "tainted2"
`))
	if err != nil {
		t.Fatalf("config.Parse() error = %v", err)
	}

	s := pta.NewSolver(program, classhierarchy.New(program.Classes), pta.InsensitiveSelector{}, cfg)
	s.Solve(context.Background())
	res := pta.NewResult(s)

	flows := res.TaintFlows()
	if len(flows) != 1 {
		t.Fatalf("len(TaintFlows()) = %d, want 1: %v", len(flows), flows)
	}
	if flows[0].Sink != call3 || flows[0].Type != "tainted2" {
		t.Errorf("unexpected flow: %+v, want type tainted2 flowing into call3", flows[0])
	}
	if flows[0].Source != call1 {
		t.Errorf("flows[0].Source = %v, want call1 (pkg.Source.Get) — a transfer must not change the flow's source call", flows[0].Source)
	}
}

func TestSolveHonorsContextCancellation(t *testing.T) {
	typeT := &ir.Type{Name: "T"}
	main := &ir.Method{Name: "main", Selector: "main()V", IsStatic: true}
	x := newVar("x", typeT, main)
	main.SetStmts([]ir.Stmt{&ir.New{LHS: x, Type: typeT}})

	program := ir.NewProgram()
	program.SetMain(main)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := pta.NewSolver(program, classhierarchy.New(nil), pta.InsensitiveSelector{}, nil)
	if err := s.Solve(ctx); err == nil {
		t.Fatalf("Solve(cancelled ctx) error = nil, want context.Canceled")
	}
}
