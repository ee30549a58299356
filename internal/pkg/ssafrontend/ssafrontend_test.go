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

package ssafrontend_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-pta/internal/pkg/config"
	"github.com/google/go-pta/internal/pkg/pta"
	"github.com/google/go-pta/internal/pkg/ssafrontend"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/analysistest"
	"golang.org/x/tools/go/analysis/passes/buildssa"
)

// flowAnalyzer wires ssafrontend.Build straight into a Solver, the same
// shape internal/pkg/pta/analyzer.go wires for real, so that this
// package's own lowering rules get exercised end to end against a real
// compiled Go snippet rather than hand-built ir.Stmt fixtures.
var flowAnalyzer = &analysis.Analyzer{
	Name:     "flowtest",
	Doc:      "test harness for ssafrontend.Build",
	Run:      runFlow,
	Requires: []*analysis.Analyzer{buildssa.Analyzer},
}

func runFlow(pass *analysis.Pass) (interface{}, error) {
	ssaInput := pass.ResultOf[buildssa.Analyzer].(*buildssa.SSA)

	program, hierarchy, positions, err := ssafrontend.Build(ssaInput)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(filepath.Join(analysistest.TestData(), "src/flow/taint-config.yaml"))
	if err != nil {
		return nil, err
	}

	solver := pta.NewSolver(program, hierarchy, pta.CallSiteSelector{K: 2, HK: 1}, cfg)
	if err := solver.Solve(context.Background()); err != nil {
		return nil, err
	}
	result := pta.NewResult(solver)

	for _, flow := range result.TaintFlows() {
		pass.Reportf(positions[flow.Sink], "tainted flow reaches sink")
	}
	return nil, nil
}

func TestBuildLowersAndSolvesTaintFlow(t *testing.T) {
	dir := analysistest.TestData()
	analysistest.Run(t, dir, flowAnalyzer, "flow")
}
