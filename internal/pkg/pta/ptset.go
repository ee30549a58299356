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

// PointsToSet is the mutable set of abstract objects a Pointer may refer
// to. Growth is monotone for the lifetime of a solver run (spec.md §3,
// invariant 1): the solver only ever adds objects, never removes them.
//
// objs preserves insertion order so that Objects and Diff return members
// in the same order run-to-run, matching spec.md's determinism property
// (§8, invariant 5). The zero value is an empty, ready-to-use set.
type PointsToSet struct {
	objs  []*Obj
	index map[*Obj]bool
}

// NewPointsToSet returns an empty set.
func NewPointsToSet() *PointsToSet {
	return &PointsToSet{index: map[*Obj]bool{}}
}

// Add inserts o, reporting whether the set grew.
func (s *PointsToSet) Add(o *Obj) bool {
	if s.index[o] {
		return false
	}
	if s.index == nil {
		s.index = map[*Obj]bool{}
	}
	s.index[o] = true
	s.objs = append(s.objs, o)
	return true
}

// Contains reports whether o is a member.
func (s *PointsToSet) Contains(o *Obj) bool { return s.index[o] }

// IsEmpty reports whether the set has no members.
func (s *PointsToSet) IsEmpty() bool { return len(s.objs) == 0 }

// Len returns the number of members.
func (s *PointsToSet) Len() int { return len(s.objs) }

// Objects returns the set's members in insertion order. Callers must not
// mutate the returned slice.
func (s *PointsToSet) Objects() []*Obj { return s.objs }

// Diff returns the members of other not already in s, in other's
// insertion order. It does not mutate either set. The solver does not
// call it: addPointsTo derives its delta from Add's return value.
func (s *PointsToSet) Diff(other *PointsToSet) []*Obj {
	var out []*Obj
	for _, o := range other.objs {
		if !s.index[o] {
			out = append(out, o)
		}
	}
	return out
}

// AddAll adds every member of other to s, reporting whether s grew.
func (s *PointsToSet) AddAll(other *PointsToSet) bool {
	grew := false
	for _, o := range other.objs {
		if s.Add(o) {
			grew = true
		}
	}
	return grew
}
