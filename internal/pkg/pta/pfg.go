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

// PFG is the pointer-flow graph: an edge src -> dst means every object
// added to src's points-to set must also flow into dst's (spec.md §3,
// the subset-closure relation the solver maintains as a fixpoint).
//
// succs keeps insertion order per source so that re-processing a
// pointer's successors is deterministic (invariant 5); membership is
// checked through the parallel seen map rather than scanning succs.
type PFG struct {
	succs map[Pointer][]Pointer
	seen  map[Pointer]map[Pointer]bool
}

// NewPFG returns an empty pointer-flow graph.
func NewPFG() *PFG {
	return &PFG{
		succs: map[Pointer][]Pointer{},
		seen:  map[Pointer]map[Pointer]bool{},
	}
}

// AddEdge installs src -> dst, reporting whether the edge is new.
func (g *PFG) AddEdge(src, dst Pointer) bool {
	if src == dst {
		return false
	}
	set, ok := g.seen[src]
	if !ok {
		set = map[Pointer]bool{}
		g.seen[src] = set
	}
	if set[dst] {
		return false
	}
	set[dst] = true
	g.succs[src] = append(g.succs[src], dst)
	return true
}

// SuccsOf returns the pointers src flows into, in edge-insertion order.
func (g *PFG) SuccsOf(src Pointer) []Pointer { return g.succs[src] }
