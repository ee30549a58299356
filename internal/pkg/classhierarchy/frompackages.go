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

package classhierarchy

import (
	"go/types"

	"github.com/google/go-pta/internal/pkg/ir"
	"golang.org/x/tools/go/ssa"
)

// FromPackages derives a Hierarchy directly from real Go types, so a
// program built by internal/pkg/ssafrontend dispatches against the same
// *ir.Class/*ir.Method objects ssafrontend fills in with statements.
// It returns the classesByNamed lookup alongside the Hierarchy so the
// caller can find the right class/method stub for a given *types.Named
// while lowering SSA.
//
// Two passes mirror internal/pkg/utils' own type decomposition: the
// first allocates one Class (and its Type) per named type so Super and
// Interfaces links can resolve regardless of declaration order, the
// second fills those links in and stubs out the method set. Interface
// methods are stubbed IsAbstract, matching Dispatch's existing
// abstract-method rejection (spec.md §4.6 step 3) without any special
// casing here.
func FromPackages(pkgs []*ssa.Package) (*Hierarchy, map[*types.Named]*ir.Class, error) {
	classesByNamed := map[*types.Named]*ir.Class{}

	for _, pkg := range pkgs {
		if pkg == nil {
			continue
		}
		scope := pkg.Pkg.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok {
				continue
			}
			if _, ok := classesByNamed[named]; ok {
				continue
			}
			_, isIface := named.Underlying().(*types.Interface)
			class := &ir.Class{Name: tn.Name(), IsIface: isIface, Methods: map[string]*ir.Method{}}
			class.Type = &ir.Type{Name: tn.Name(), Class: class}
			classesByNamed[named] = class
		}
	}

	for named, class := range classesByNamed {
		switch underlying := named.Underlying().(type) {
		case *types.Struct:
			linkEmbeddedSuper(named, underlying, class, classesByNamed)
			linkImplementedInterfaces(named, class, classesByNamed)
			stubDeclaredMethods(named, class)
		case *types.Interface:
			for i := 0; i < underlying.NumMethods(); i++ {
				obj := underlying.Method(i)
				class.Methods[obj.Name()] = &ir.Method{
					Name:       obj.Name(),
					Class:      class,
					Selector:   obj.Name(),
					IsAbstract: true,
				}
			}
		}
	}

	classes := make([]*ir.Class, 0, len(classesByNamed))
	for _, c := range classesByNamed {
		classes = append(classes, c)
	}
	return New(classes), classesByNamed, nil
}

// linkEmbeddedSuper sets class.Super to the first embedded concrete
// struct type found among classesByNamed, the closest this repo's single
// inheritance model (ir.Class.Super) gets to Go's embedding.
func linkEmbeddedSuper(named *types.Named, st *types.Struct, class *ir.Class, classesByNamed map[*types.Named]*ir.Class) {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		superNamed, ok := dereferenceNamed(f.Type())
		if !ok || superNamed == named {
			continue
		}
		if super, ok := classesByNamed[superNamed]; ok && !super.IsIface {
			class.Super = super
			return
		}
	}
}

func linkImplementedInterfaces(named *types.Named, class *ir.Class, classesByNamed map[*types.Named]*ir.Class) {
	for otherNamed, otherClass := range classesByNamed {
		if !otherClass.IsIface || otherNamed == named {
			continue
		}
		ifaceType, ok := otherNamed.Underlying().(*types.Interface)
		if !ok {
			continue
		}
		if types.Implements(named, ifaceType) || types.Implements(types.NewPointer(named), ifaceType) {
			class.Interfaces = append(class.Interfaces, otherClass)
		}
	}
}

// stubDeclaredMethods populates class.Methods from named's method set
// (value and pointer receivers alike), leaving bodies to be filled in by
// ssafrontend via Method.SetStmts.
func stubDeclaredMethods(named *types.Named, class *ir.Class) {
	ms := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < ms.Len(); i++ {
		obj, ok := ms.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		if _, exists := class.Methods[obj.Name()]; exists {
			continue
		}
		class.Methods[obj.Name()] = &ir.Method{Name: obj.Name(), Class: class, Selector: obj.Name()}
	}
}

func dereferenceNamed(t types.Type) (*types.Named, bool) {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	n, ok := t.(*types.Named)
	return n, ok
}

// Classes returns every class the Hierarchy knows about, for callers
// assembling an ir.Program (e.g. internal/pkg/ssafrontend).
func (h *Hierarchy) Classes() []*ir.Class {
	classes := make([]*ir.Class, 0, len(h.classes))
	for _, c := range h.classes {
		classes = append(classes, c)
	}
	return classes
}
