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
	"github.com/google/go-pta/internal/pkg/config"
	"github.com/google/go-pta/internal/pkg/ir"
)

// TaintPlugin layers source/sink/transfer tracking on top of the
// pointer-flow graph (spec.md §4.9). It manufactures a taint Obj at
// every call matching a source rule, flags every taint object that
// reaches a sink argument, and re-types taint as it crosses a transfer
// rule's declared method.
//
// A TaintPlugin never does its own fixpoint work: it only reacts to the
// two hooks the solver calls it at, addPointsTo for the new objects it
// manufactures, and the regular PFG for everything else.
type TaintPlugin struct {
	cfg   *config.TaintConfig
	Flows []TaintFlow
}

func newTaintPlugin(cfg *config.TaintConfig) *TaintPlugin {
	return &TaintPlugin{cfg: cfg}
}

// onCallResolved fires exactly once per (call site, callee) edge
// (resolveCall only calls this inside its "newEdge" branch), so a source
// method invoked many times under the same context manufactures exactly
// one taint object per edge rather than one per invocation (an explicit
// design choice recorded in DESIGN.md: duplicate taint objects for the
// same edge would not change the analysis result, only waste work).
func (p *TaintPlugin) onCallResolved(s *Solver, callerCtx Context, inv *ir.Invoke, callee *ir.Method) {
	if inv.Result == nil {
		return
	}
	sig := callee.String()
	for _, src := range p.cfg.SourcesFor(sig) {
		obj := s.csm.TaintObjOf(inv, src.Type)
		s.addPointsTo(s.csm.CSVarOf(callerCtx, inv.Result), []*Obj{obj})
	}
}

// onTaintGrowth fires whenever a CSVar for v gains a new taint object,
// whether v is used as a receiver or as an argument somewhere in its own
// method. It checks every invoke statement that uses v that way against
// the configured sink and transfer rules.
func (p *TaintPlugin) onTaintGrowth(s *Solver, ctx Context, v *ir.Var, obj *Obj) {
	m := v.Method
	for _, inv := range m.InvokesWithReceiver(v) {
		p.checkInvoke(s, ctx, inv, obj, true, 0)
	}
	for _, inv := range m.InvokesWithArg(v) {
		idx := argIndexOf(inv, v)
		if idx < 0 {
			continue
		}
		p.checkInvoke(s, ctx, inv, obj, false, idx)
	}
}

func argIndexOf(inv *ir.Invoke, v *ir.Var) int {
	for i, a := range inv.Args {
		if a == v {
			return i
		}
	}
	return -1
}

func (p *TaintPlugin) checkInvoke(s *Solver, ctx Context, inv *ir.Invoke, obj *Obj, isBase bool, argIdx int) {
	for _, sig := range calleeSignatures(s, ctx, inv) {
		if !isBase {
			for _, sink := range p.cfg.SinksFor(sig) {
				if sink.Index == argIdx {
					p.Flows = append(p.Flows, TaintFlow{
						Source:    obj.SourceCall(),
						Type:      obj.TaintType(),
						Sink:      inv,
						SinkIndex: argIdx,
					})
				}
			}
		}
		for _, tr := range p.cfg.TransfersFor(sig) {
			if !matchesFrom(tr.From, isBase, argIdx) {
				continue
			}
			toPtr := resolveKindPointer(s, ctx, inv, tr.To)
			if toPtr == nil {
				continue
			}
			// The produced taint inherits obj's original source call
			// (spec.md §4.9): a transfer retypes existing taint, it
			// never mints a new source invoke of its own.
			s.addPointsTo(toPtr, []*Obj{s.csm.TaintObjOf(obj.SourceCall(), tr.Type)})
		}
	}
}

func matchesFrom(k config.Kind, isBase bool, argIdx int) bool {
	if k.IsBase {
		return isBase
	}
	if k.IsResult {
		return false
	}
	return !isBase && k.ArgIndex == argIdx
}

func resolveKindPointer(s *Solver, ctx Context, inv *ir.Invoke, k config.Kind) Pointer {
	switch {
	case k.IsBase:
		if inv.Receiver == nil {
			return nil
		}
		return s.csm.CSVarOf(ctx, inv.Receiver)
	case k.IsResult:
		if inv.Result == nil {
			return nil
		}
		return s.csm.CSVarOf(ctx, inv.Result)
	default:
		if k.ArgIndex < 0 || k.ArgIndex >= len(inv.Args) {
			return nil
		}
		return s.csm.CSVarOf(ctx, inv.Args[k.ArgIndex])
	}
}

// calleeSignatures returns the fully-resolved signatures a call site is
// currently known to reach: the single statically-known target for a
// static/special call, or every callee dispatch has resolved so far for
// a virtual/interface call.
func calleeSignatures(s *Solver, ctx Context, inv *ir.Invoke) []string {
	if inv.Target != nil {
		return []string{inv.Target.String()}
	}
	callees := s.cg.CalleesOf(s.csm.CSCallSiteOf(ctx, inv))
	sigs := make([]string, 0, len(callees))
	for _, cm := range callees {
		sigs = append(sigs, cm.Method.String())
	}
	return sigs
}
