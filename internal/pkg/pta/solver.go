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
	"context"

	"github.com/google/go-pta/internal/pkg/classhierarchy"
	"github.com/google/go-pta/internal/pkg/config"
	"github.com/google/go-pta/internal/pkg/ir"
)

// Solver runs the fixpoint loop described in spec.md §4.6 over one
// ir.Program: a context-sensitive, Andersen-style, inclusion-based
// pointer analysis whose context policy is pluggable via Selector, with
// an optional taint-tracking plugin layered on top (spec.md §4.9).
type Solver struct {
	program   *ir.Program
	hierarchy *classhierarchy.Hierarchy
	selector  Selector

	csm  *CSManager
	heap *HeapModel
	pfg  *PFG
	cg   *CallGraph
	wl   *WorkList

	taint *TaintPlugin // nil disables taint tracking
}

// NewSolver builds a solver for program, dispatching virtual/interface
// calls against hierarchy and deriving contexts via selector. Passing a
// non-nil taintConfig enables the taint plugin; passing nil runs a pure
// pointer analysis.
func NewSolver(program *ir.Program, hierarchy *classhierarchy.Hierarchy, selector Selector, taintConfig *config.TaintConfig) *Solver {
	csm := NewCSManager()
	s := &Solver{
		program:   program,
		hierarchy: hierarchy,
		selector:  selector,
		csm:       csm,
		heap:      NewHeapModel(csm, selector),
		pfg:       NewPFG(),
		cg:        NewCallGraph(),
		wl:        NewWorkList(),
	}
	if taintConfig != nil {
		s.taint = newTaintPlugin(taintConfig)
	}
	return s
}

// CSManager exposes the solver's interning tables, for result reporting.
func (s *Solver) CSManager() *CSManager { return s.csm }

// CallGraph exposes the resolved call graph, for result reporting.
func (s *Solver) CallGraph() *CallGraph { return s.cg }

// Taint exposes the taint plugin's findings, or nil if taint tracking
// was not enabled.
func (s *Solver) Taint() *TaintPlugin { return s.taint }

// Solve runs the fixpoint loop to completion: seed the entry method,
// drain the worklist, and return. There is no time or iteration bound;
// termination follows from every PointsToSet and the PFG itself growing
// monotonically over a finite universe of objects and pointers
// (spec.md §5's single-goroutine, unbounded-iteration concurrency model).
//
// ctx is consulted purely for external cancellation, between
// worklist-drain steps only — never in the middle of applying a single
// entry's effects. A cancellation either runs to fixpoint or is
// discarded outright (spec.md §5): Solve returns ctx.Err() as soon as
// it is observed, and the caller must treat any Result built from s as
// invalid rather than partial.
func (s *Solver) Solve(ctx context.Context) error {
	if main, ok := s.program.Main(); ok {
		s.addReachable(s.csm.CSMethodOf(EmptyContext, main))
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		entry, ok := s.wl.Pop()
		if !ok {
			return nil
		}
		for _, succ := range s.pfg.SuccsOf(entry.Pointer) {
			s.addPointsTo(succ, entry.Objs)
		}
	}
}

// addReachable processes cm's statements exactly once, the first time it
// is discovered reachable.
func (s *Solver) addReachable(cm *CSMethod) {
	if !s.cg.AddReachable(cm) {
		return
	}
	for _, stmt := range cm.Method.Stmts() {
		s.processStmt(cm, stmt)
	}
}

func (s *Solver) processStmt(cm *CSMethod, stmt ir.Stmt) {
	switch st := stmt.(type) {
	case *ir.New:
		obj := s.heap.Allocate(cm, st)
		s.addPointsTo(s.csm.CSVarOf(cm.Ctx, st.LHS), []*Obj{obj})
	case *ir.Copy:
		s.addPFGEdge(s.csm.CSVarOf(cm.Ctx, st.RHS), s.csm.CSVarOf(cm.Ctx, st.LHS))
	case *ir.LoadField:
		if st.Base == nil {
			s.addPFGEdge(s.csm.StaticFieldOf(st.Field), s.csm.CSVarOf(cm.Ctx, st.LHS))
		}
		// Instance loads are resolved lazily, in handleNewObj, once the
		// base variable acquires a concrete object.
	case *ir.StoreField:
		if st.Base == nil {
			s.addPFGEdge(s.csm.CSVarOf(cm.Ctx, st.RHS), s.csm.StaticFieldOf(st.Field))
		}
	case *ir.LoadArray, *ir.StoreArray:
		// Also resolved lazily in handleNewObj.
	case *ir.Return:
		if st.Result != nil && len(cm.Method.Rets) > 0 {
			s.addPFGEdge(s.csm.CSVarOf(cm.Ctx, st.Result), s.csm.CSVarOf(cm.Ctx, cm.Method.Rets[0]))
		}
	case *ir.Invoke:
		s.processInvoke(cm, st)
	case *ir.Other:
		// No PFG effect: spec.md §4.6 only interprets the statement
		// shapes above.
	}
}

func (s *Solver) processInvoke(cm *CSMethod, inv *ir.Invoke) {
	if inv.Receiver != nil {
		// Instance dispatch depends on the receiver's runtime object and
		// is resolved lazily in handleNewObj.
		return
	}
	if inv.Target == nil {
		// Unresolvable static call: a no-op, per the core's
		// unresolvable-callee error-handling path (spec.md §7).
		return
	}
	s.resolveCall(cm, inv, inv.Target, nil)
}

// addPointsTo adds objs to p's points-to set, processes each newly added
// object's structural effects (field/array/dispatch/taint), and enqueues
// the delta for propagation along the PFG.
func (s *Solver) addPointsTo(p Pointer, objs []*Obj) {
	var delta []*Obj
	for _, o := range objs {
		if p.PTS().Add(o) {
			delta = append(delta, o)
		}
	}
	if len(delta) == 0 {
		return
	}
	for _, o := range delta {
		s.handleNewObj(p, o)
	}
	s.wl.Push(p, delta)
}

// addPFGEdge installs src -> dst and, if the edge is new, flushes src's
// current points-to set into dst (spec.md §4.6 step 1).
func (s *Solver) addPFGEdge(src, dst Pointer) {
	if !s.pfg.AddEdge(src, dst) {
		return
	}
	if !src.PTS().IsEmpty() {
		s.addPointsTo(dst, src.PTS().Objects())
	}
}

// handleNewObj applies the structural consequences of p acquiring obj:
// field/array store-load propagation, virtual/special dispatch off a
// receiver, and taint sink/transfer checks.
func (s *Solver) handleNewObj(p Pointer, obj *Obj) {
	cv, ok := p.(*CSVar)
	if !ok {
		return
	}
	v := cv.Var
	m := v.Method
	ctx := cv.Ctx

	for _, st := range m.StoresOf(v) {
		s.addPFGEdge(s.csm.CSVarOf(ctx, st.RHS), s.csm.InstanceFieldOf(obj, st.Field))
	}
	for _, st := range m.LoadsOf(v) {
		s.addPFGEdge(s.csm.InstanceFieldOf(obj, st.Field), s.csm.CSVarOf(ctx, st.LHS))
	}
	for _, st := range m.ArrayStoresOf(v) {
		s.addPFGEdge(s.csm.CSVarOf(ctx, st.RHS), s.csm.ArrayIndexOf(obj))
	}
	for _, st := range m.ArrayLoadsOf(v) {
		s.addPFGEdge(s.csm.ArrayIndexOf(obj), s.csm.CSVarOf(ctx, st.LHS))
	}

	if obj.Type != nil && obj.Type.Class != nil {
		for _, inv := range m.InvokesWithReceiver(v) {
			callerCM := s.csm.CSMethodOf(ctx, m)
			switch inv.Kind {
			case ir.InvokeVirtual, ir.InvokeInterface:
				if callee, ok := s.hierarchy.Dispatch(obj.Type.Class, inv.Ref); ok {
					s.resolveCall(callerCM, inv, callee, obj)
				}
			default:
				if inv.Target != nil {
					s.resolveCall(callerCM, inv, inv.Target, obj)
				}
			}
		}
	}

	if s.taint != nil && obj.IsTaint() {
		s.taint.onTaintGrowth(s, ctx, v, obj)
	}
}

// resolveCall wires caller arguments into callee parameters and the
// callee's return into the call's result, the first time (callSite,
// callee) resolves; recvObj, if non-nil, is additionally pushed into the
// callee's receiver parameter every time dispatch discovers it, even on
// an already-resolved edge, since a second object of the same declared
// type still needs to flow into the receiver (spec.md §4.6 step 3).
func (s *Solver) resolveCall(callerCM *CSMethod, inv *ir.Invoke, callee *ir.Method, recvObj *Obj) {
	callSite := s.csm.CSCallSiteOf(callerCM.Ctx, inv)

	var calleeCtx Context
	if recvObj != nil {
		calleeCtx = s.selector.SelectInstanceContext(callSite, recvObj, callee)
	} else {
		calleeCtx = s.selector.SelectStaticContext(callSite, callee)
	}
	calleeCM := s.csm.CSMethodOf(calleeCtx, callee)

	if s.cg.AddEdge(callSite, calleeCM) {
		s.addReachable(calleeCM)

		params := callee.Params
		if recvObj != nil && len(params) > 0 {
			params = params[1:]
		}
		n := len(params)
		if len(inv.Args) < n {
			n = len(inv.Args)
		}
		for i := 0; i < n; i++ {
			s.addPFGEdge(s.csm.CSVarOf(callerCM.Ctx, inv.Args[i]), s.csm.CSVarOf(calleeCtx, params[i]))
		}
		if inv.Result != nil && len(callee.Rets) > 0 {
			s.addPFGEdge(s.csm.CSVarOf(calleeCtx, callee.Rets[0]), s.csm.CSVarOf(callerCM.Ctx, inv.Result))
		}
		if s.taint != nil {
			s.taint.onCallResolved(s, callerCM.Ctx, inv, callee)
		}
	}

	if recvObj != nil && len(callee.Params) > 0 {
		s.addPointsTo(s.csm.CSVarOf(calleeCtx, callee.Params[0]), []*Obj{recvObj})
	}
}
