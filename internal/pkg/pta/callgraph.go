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

	"github.com/google/go-pta/internal/pkg/ir"
)

// CSMethod is a method under a calling context: one node of the
// context-sensitive call graph (spec.md §3).
type CSMethod struct {
	Ctx    Context
	Method *ir.Method
}

func (m *CSMethod) String() string { return fmt.Sprintf("%s:%s", m.Ctx, m.Method) }

// CSCallSite is a call statement under a calling context.
type CSCallSite struct {
	Ctx    Context
	Invoke *ir.Invoke
}

func (c *CSCallSite) String() string { return fmt.Sprintf("%s:%s", c.Ctx, c.Invoke) }

// CallGraph is the set of reachable CSMethods and the CSCallSite -> CSMethod
// edges resolved between them. Edges are added only once per (call site,
// callee) pair, and parameter/return wiring happens only on that first
// resolution, the way spec.md §4.6 step 3 describes: PFG edges for a
// call's arguments and return value are installed only once the call
// itself resolves for the first time. The receiver object is not wired
// through a PFG edge; Solver.resolveCall adds it to the callee's receiver
// on every resolution.
//
// Both reachable methods and per-call-site callees keep their discovery
// order alongside the membership map, so callers that need to iterate
// (result.go) see a deterministic order without re-sorting (invariant 5).
type CallGraph struct {
	reachable map[*CSMethod]bool
	order     []*CSMethod

	edgeSeen  map[*CSCallSite]map[*CSMethod]bool
	edgeOrder map[*CSCallSite][]*CSMethod
}

// NewCallGraph returns an empty call graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		reachable: map[*CSMethod]bool{},
		edgeSeen:  map[*CSCallSite]map[*CSMethod]bool{},
		edgeOrder: map[*CSCallSite][]*CSMethod{},
	}
}

// AddReachable marks m as reachable, reporting whether it was newly
// added.
func (g *CallGraph) AddReachable(m *CSMethod) bool {
	if g.reachable[m] {
		return false
	}
	g.reachable[m] = true
	g.order = append(g.order, m)
	return true
}

// IsReachable reports whether m has been marked reachable.
func (g *CallGraph) IsReachable(m *CSMethod) bool { return g.reachable[m] }

// ReachableMethods returns every reachable CSMethod in discovery order.
func (g *CallGraph) ReachableMethods() []*CSMethod { return g.order }

// AddEdge records that call site resolves to callee, reporting whether
// this (call site, callee) pair is new.
func (g *CallGraph) AddEdge(call *CSCallSite, callee *CSMethod) bool {
	seen, ok := g.edgeSeen[call]
	if !ok {
		seen = map[*CSMethod]bool{}
		g.edgeSeen[call] = seen
	}
	if seen[callee] {
		return false
	}
	seen[callee] = true
	g.edgeOrder[call] = append(g.edgeOrder[call], callee)
	return true
}

// CalleesOf returns the methods call site resolves to, in resolution
// order.
func (g *CallGraph) CalleesOf(call *CSCallSite) []*CSMethod { return g.edgeOrder[call] }
