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
	"context"
	"fmt"
	"reflect"

	"github.com/google/go-pta/internal/pkg/config"
	"github.com/google/go-pta/internal/pkg/ssafrontend"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/buildssa"
)

// Analyzer runs the context-sensitive, Andersen-style pointer analysis
// (spec.md §4) over a package's SSA form and, when -taint-config names a
// rule document, reports every source-to-sink flow the taint plugin
// witnesses (spec.md §4.9). It mirrors the shape of the teacher's own
// internal/pkg/levee.Analyzer: a Run function fed by buildssa.Analyzer
// and the config package's shared flag set.
var Analyzer = &analysis.Analyzer{
	Name:       "pta",
	Doc:        "reports data-flow paths from taint sources to sinks, found by a context-sensitive pointer analysis",
	Flags:      config.FlagSet,
	Run:        run,
	ResultType: reflect.TypeOf(new(Result)),
	Requires:   []*analysis.Analyzer{buildssa.Analyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	ssaInput := pass.ResultOf[buildssa.Analyzer].(*buildssa.SSA)

	program, hierarchy, positions, err := ssafrontend.Build(ssaInput)
	if err != nil {
		return nil, fmt.Errorf("building IR for %s: %w", pass.Pkg.Path(), err)
	}

	var taintCfg *config.TaintConfig
	if path := (config.Options{}).TaintConfigPath(); path != "" {
		taintCfg, err = config.LoadCached(path)
		if err != nil {
			return nil, err
		}
	}

	// 2-call-site/1-heap context sensitivity is this analyzer's fixed
	// precision/cost tradeoff; spec.md leaves the choice of Selector to
	// the host. pkg/pta re-exports only this Analyzer, so a Solver with
	// InsensitiveSelector can be built only by code inside this module.
	solver := NewSolver(program, hierarchy, CallSiteSelector{K: 2, HK: 1}, taintCfg)
	// go/analysis gives passes no context.Context of their own; Solve
	// still takes one so library callers that do have one (e.g. a
	// long-running server driving pta.NewSolver directly) can cancel it.
	if err := solver.Solve(context.Background()); err != nil {
		return nil, err
	}
	result := NewResult(solver)

	for _, flow := range result.TaintFlows() {
		pass.Reportf(positions[flow.Sink], "%s", flow)
	}

	return result, nil
}
