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

// Pointer is a node of the pointer-flow graph: something that owns a
// PointsToSet. spec.md §3 lists four concrete shapes; CSManager interns
// each shape so that pointer identity implies entity identity
// (invariant 2).
type Pointer interface {
	PTS() *PointsToSet
	String() string
}

// CSVar is a local variable under a calling context.
type CSVar struct {
	Ctx Context
	Var *ir.Var
	pts PointsToSet
}

// PTS returns v's points-to set.
func (v *CSVar) PTS() *PointsToSet { return &v.pts }

func (v *CSVar) String() string { return fmt.Sprintf("%s:%s", v.Ctx, v.Var) }

// InstanceField is a field slot on one abstract object.
type InstanceField struct {
	Base  *Obj
	Field ir.FieldRef
	pts   PointsToSet
}

// PTS returns f's points-to set.
func (f *InstanceField) PTS() *PointsToSet { return &f.pts }

func (f *InstanceField) String() string { return fmt.Sprintf("%s.%s", f.Base, f.Field) }

// ArrayIndex is the field-insensitive summary slot for every element of
// one abstract array object.
type ArrayIndex struct {
	Base *Obj
	pts  PointsToSet
}

// PTS returns a's points-to set.
func (a *ArrayIndex) PTS() *PointsToSet { return &a.pts }

func (a *ArrayIndex) String() string { return fmt.Sprintf("%s[*]", a.Base) }

// StaticField is a field slot shared by every instance of a class,
// context-insensitive by construction (spec.md §3).
type StaticField struct {
	Field ir.FieldRef
	pts   PointsToSet
}

// PTS returns f's points-to set.
func (f *StaticField) PTS() *PointsToSet { return &f.pts }

func (f *StaticField) String() string { return f.Field.String() }
