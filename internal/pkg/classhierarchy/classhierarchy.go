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

// Package classhierarchy implements the minimal dispatch oracle the
// pointer-analysis core consults for virtual/interface calls. spec.md
// describes CHA construction as a collaborator the core requires but
// does not specify; this is deliberately small (see DESIGN.md).
package classhierarchy

import "github.com/google/go-pta/internal/pkg/ir"

// Hierarchy answers dispatch and subtype queries over a fixed set of
// classes, built once from an ir.Program.
type Hierarchy struct {
	classes map[string]*ir.Class
}

// New builds a Hierarchy from a program's classes.
func New(classes []*ir.Class) *Hierarchy {
	h := &Hierarchy{classes: make(map[string]*ir.Class, len(classes))}
	for _, c := range classes {
		h.classes[c.Name] = c
	}
	return h
}

// Dispatch resolves a virtual/interface call against the declared
// (runtime) class of the receiver object, per spec.md §4.6 step 2:
// walk declared upward through superclasses looking for a method whose
// selector matches ref; returns (nil, false) if unresolved or if the
// found method is abstract, matching the core's "unresolvable callee" /
// "abstract callee" no-op paths (spec.md §7).
func (h *Hierarchy) Dispatch(declared *ir.Class, ref ir.MethodRef) (*ir.Method, bool) {
	for c := declared; c != nil; c = c.Super {
		if m, ok := c.Methods[ref.Selector]; ok {
			if m.IsAbstract {
				return nil, false
			}
			return m, true
		}
	}
	return nil, false
}

// Subclasses returns every class (including c itself) reachable by
// following Super links downward. This is computed lazily by linear scan
// since call graphs in this repo's test programs are small; a production
// CHA would precompute a children index.
func (h *Hierarchy) Subclasses(c *ir.Class) []*ir.Class {
	var out []*ir.Class
	for _, candidate := range h.classes {
		for anc := candidate; anc != nil; anc = anc.Super {
			if anc == c {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

// Implementors returns every concrete class implementing interface
// iface, directly or via inheritance.
func (h *Hierarchy) Implementors(iface *ir.Class) []*ir.Class {
	var out []*ir.Class
	for _, candidate := range h.classes {
		if candidate.IsIface {
			continue
		}
		if implements(candidate, iface) {
			out = append(out, candidate)
		}
	}
	return out
}

func implements(c *ir.Class, iface *ir.Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		for _, i := range cur.Interfaces {
			if i == iface || implements(i, iface) {
				return true
			}
		}
	}
	return false
}

// Class looks up a class by name.
func (h *Hierarchy) Class(name string) (*ir.Class, bool) {
	c, ok := h.classes[name]
	return c, ok
}
