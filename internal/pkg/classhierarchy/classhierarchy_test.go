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

package classhierarchy_test

import (
	"testing"

	"github.com/google/go-pta/internal/pkg/classhierarchy"
	"github.com/google/go-pta/internal/pkg/ir"
)

func TestDispatchWalksUpToDeclaringSuperclass(t *testing.T) {
	ref := ir.MethodRef{Selector: "foo()V"}
	base := &ir.Class{Name: "Base", Methods: map[string]*ir.Method{
		ref.Selector: {Name: "foo"},
	}}
	derived := &ir.Class{Name: "Derived", Super: base, Methods: map[string]*ir.Method{}}

	h := classhierarchy.New([]*ir.Class{base, derived})

	m, ok := h.Dispatch(derived, ref)
	if !ok || m.Name != "foo" {
		t.Fatalf("Dispatch(derived, foo) = (%v, %v), want Base.foo", m, ok)
	}
}

func TestDispatchPrefersOverride(t *testing.T) {
	ref := ir.MethodRef{Selector: "foo()V"}
	baseFoo := &ir.Method{Name: "foo"}
	derivedFoo := &ir.Method{Name: "foo"}
	base := &ir.Class{Name: "Base", Methods: map[string]*ir.Method{ref.Selector: baseFoo}}
	derived := &ir.Class{Name: "Derived", Super: base, Methods: map[string]*ir.Method{ref.Selector: derivedFoo}}

	h := classhierarchy.New([]*ir.Class{base, derived})

	m, ok := h.Dispatch(derived, ref)
	if !ok || m != derivedFoo {
		t.Fatalf("Dispatch(derived, foo) = (%v, %v), want Derived.foo", m, ok)
	}
}

func TestDispatchUnresolvedReturnsFalse(t *testing.T) {
	ref := ir.MethodRef{Selector: "bar()V"}
	base := &ir.Class{Name: "Base", Methods: map[string]*ir.Method{}}
	h := classhierarchy.New([]*ir.Class{base})

	if _, ok := h.Dispatch(base, ref); ok {
		t.Fatal("Dispatch() ok = true for an undeclared selector")
	}
}

func TestDispatchAbstractMethodIsUnresolved(t *testing.T) {
	ref := ir.MethodRef{Selector: "foo()V"}
	base := &ir.Class{Name: "Base", Methods: map[string]*ir.Method{
		ref.Selector: {Name: "foo", IsAbstract: true},
	}}
	h := classhierarchy.New([]*ir.Class{base})

	if _, ok := h.Dispatch(base, ref); ok {
		t.Fatal("Dispatch() ok = true for an abstract method")
	}
}

func TestSubclassesAndImplementors(t *testing.T) {
	iface := &ir.Class{Name: "Iface", IsIface: true}
	base := &ir.Class{Name: "Base"}
	derived := &ir.Class{Name: "Derived", Super: base, Interfaces: []*ir.Class{iface}}
	unrelated := &ir.Class{Name: "Unrelated"}

	h := classhierarchy.New([]*ir.Class{iface, base, derived, unrelated})

	subs := h.Subclasses(base)
	if len(subs) != 2 {
		t.Fatalf("Subclasses(base) = %v, want base and derived", subs)
	}

	impls := h.Implementors(iface)
	if len(impls) != 1 || impls[0] != derived {
		t.Fatalf("Implementors(iface) = %v, want [derived]", impls)
	}
}

func TestClassLookup(t *testing.T) {
	base := &ir.Class{Name: "Base"}
	h := classhierarchy.New([]*ir.Class{base})

	if got, ok := h.Class("Base"); !ok || got != base {
		t.Errorf("Class(\"Base\") = (%v, %v), want (%v, true)", got, ok, base)
	}
	if _, ok := h.Class("Missing"); ok {
		t.Error("Class(\"Missing\") ok = true, want false")
	}
}
