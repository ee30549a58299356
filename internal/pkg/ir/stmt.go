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

package ir

// Stmt is the sum type over the statement shapes spec.md §4.6 dispatches
// on. The solver type-switches over Stmt the way the teacher's
// transformer.visitInstruction switches over ssa.Instruction.
type Stmt interface {
	isStmt()
}

// New is "x = new T()".
type New struct {
	LHS  *Var
	Type *Type
}

// Copy is "x = y".
type Copy struct {
	LHS *Var
	RHS *Var
}

// LoadField is "x = y.f" (y non-nil) or "x = T.f" (y nil, static load).
type LoadField struct {
	LHS   *Var
	Base  *Var // nil for a static field load
	Field FieldRef
}

// StoreField is "x.f = y" (x non-nil) or "T.f = y" (x nil, static store).
type StoreField struct {
	Base  *Var // nil for a static field store
	Field FieldRef
	RHS   *Var
}

// LoadArray is "x = v[*]" (index is summarized, field-insensitively).
type LoadArray struct {
	LHS  *Var
	Base *Var
}

// StoreArray is "v[*] = y".
type StoreArray struct {
	Base *Var
	RHS  *Var
}

// Return is "return x" (x nil for a void return).
type Return struct {
	Result *Var
}

// Other is a catch-all for statement shapes the core does not interpret
// (if/switch/etc.): spec.md §4.6 defers these, they are recorded as
// reachable but emit no PFG effects.
type Other struct {
	Kind string
}

func (*New) isStmt()        {}
func (*Copy) isStmt()       {}
func (*LoadField) isStmt()  {}
func (*StoreField) isStmt() {}
func (*LoadArray) isStmt()  {}
func (*StoreArray) isStmt() {}
func (*Invoke) isStmt()     {}
func (*Return) isStmt()     {}
func (*Other) isStmt()      {}

// useIndex precomputes, per Var, the statements that use it as a
// store-base, load-base, array-base, or invoke-receiver/argument. This
// mirrors golang.org/x/tools/go/ssa.Value.Referrers(): the solver
// consults it once per newly-grown object instead of rescanning the
// method body (spec.md §4.6's analyze() loop).
type useIndex struct {
	storesByBase    map[*Var][]*StoreField
	loadsByBase     map[*Var][]*LoadField
	arrStoresByBase map[*Var][]*StoreArray
	arrLoadsByBase  map[*Var][]*LoadArray
	invokesByRecv   map[*Var][]*Invoke
	invokesByArg    map[*Var][]*Invoke
}

func buildUseIndex(stmts []Stmt) *useIndex {
	idx := &useIndex{
		storesByBase:    map[*Var][]*StoreField{},
		loadsByBase:     map[*Var][]*LoadField{},
		arrStoresByBase: map[*Var][]*StoreArray{},
		arrLoadsByBase:  map[*Var][]*LoadArray{},
		invokesByRecv:   map[*Var][]*Invoke{},
		invokesByArg:    map[*Var][]*Invoke{},
	}
	for _, s := range stmts {
		switch st := s.(type) {
		case *StoreField:
			if st.Base != nil {
				idx.storesByBase[st.Base] = append(idx.storesByBase[st.Base], st)
			}
		case *LoadField:
			if st.Base != nil {
				idx.loadsByBase[st.Base] = append(idx.loadsByBase[st.Base], st)
			}
		case *StoreArray:
			idx.arrStoresByBase[st.Base] = append(idx.arrStoresByBase[st.Base], st)
		case *LoadArray:
			idx.arrLoadsByBase[st.Base] = append(idx.arrLoadsByBase[st.Base], st)
		case *Invoke:
			if st.Receiver != nil {
				idx.invokesByRecv[st.Receiver] = append(idx.invokesByRecv[st.Receiver], st)
			}
			for _, a := range st.Args {
				idx.invokesByArg[a] = append(idx.invokesByArg[a], st)
			}
		}
	}
	return idx
}
