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
	"fmt"
	"sort"

	"github.com/google/go-pta/internal/pkg/ir"
)

// TaintFlow records one witnessed path from a source call to a sink
// argument (spec.md §6).
type TaintFlow struct {
	Source    *ir.Invoke // the call that manufactured the taint object
	Type      string
	Sink      *ir.Invoke // the call whose argument observed the taint
	SinkIndex int
}

func (f TaintFlow) String() string {
	return fmt.Sprintf("%s(%s) -> %s#%d", f.Source, f.Type, f.Sink, f.SinkIndex)
}

// Result is the read-only view over a completed Solver run (spec.md §6).
// It is built once, after Solve returns; nothing it exposes is mutated
// afterward, so it is safe to share across readers.
type Result struct {
	csm   *CSManager
	cg    *CallGraph
	flows []TaintFlow
}

// NewResult snapshots s's interning tables, call graph, and taint
// findings into a Result. Call this only after Solve has returned.
func NewResult(s *Solver) *Result {
	r := &Result{csm: s.csm, cg: s.cg}
	if s.taint != nil {
		r.flows = append([]TaintFlow(nil), s.taint.Flows...)
		sortTaintFlows(r.flows)
	}
	return r
}

// sortTaintFlows imposes the total order spec.md §6 requires: by
// source-call id, then sink-call id, then sink argument index.
func sortTaintFlows(flows []TaintFlow) {
	sort.Slice(flows, func(i, j int) bool {
		a, b := flows[i], flows[j]
		if a.Source.ID() != b.Source.ID() {
			return a.Source.ID() < b.Source.ID()
		}
		if a.Sink.ID() != b.Sink.ID() {
			return a.Sink.ID() < b.Sink.ID()
		}
		return a.SinkIndex < b.SinkIndex
	})
}

// PointsTo returns the objects v may refer to under ctx.
func (r *Result) PointsTo(ctx Context, v *ir.Var) []*Obj {
	return r.csm.CSVarOf(ctx, v).PTS().Objects()
}

// ReachableMethods returns every method context the call graph reached,
// in discovery order.
func (r *Result) ReachableMethods() []*CSMethod { return r.cg.ReachableMethods() }

// Callees returns the methods a call site resolved to under ctx, in
// resolution order.
func (r *Result) Callees(ctx Context, inv *ir.Invoke) []*CSMethod {
	return r.cg.CalleesOf(r.csm.CSCallSiteOf(ctx, inv))
}

// TaintFlows returns every witnessed source-to-sink flow, or nil if
// taint tracking was not enabled for this run.
func (r *Result) TaintFlows() []TaintFlow { return r.flows }

// MayAlias reports whether two variables, each under its own context,
// can refer to a common object: the inclusion-based analysis's
// fundamental query (spec.md §3).
func (r *Result) MayAlias(ctx1 Context, v1 *ir.Var, ctx2 Context, v2 *ir.Var) bool {
	pts1 := r.csm.CSVarOf(ctx1, v1).PTS()
	pts2 := r.csm.CSVarOf(ctx2, v2).PTS()
	if pts1.Len() > pts2.Len() {
		pts1, pts2 = pts2, pts1
	}
	for _, o := range pts1.Objects() {
		if pts2.Contains(o) {
			return true
		}
	}
	return false
}
