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

package pta_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-pta/internal/pkg/pta"
	"golang.org/x/tools/go/analysis/analysistest"
)

// TestAnalyzerReportsConfiguredTaintFlow exercises the whole wired
// pipeline (ssafrontend.Build -> Solver -> Result) through the real,
// flag-configured Analyzer, the same entry point cmd/pta drives.
func TestAnalyzerReportsConfiguredTaintFlow(t *testing.T) {
	dir := analysistest.TestData()
	cfgPath := filepath.Join(dir, "src/flow/taint-config.yaml")
	if err := pta.Analyzer.Flags.Set("taint-config", cfgPath); err != nil {
		t.Fatalf("setting -taint-config: %v", err)
	}

	analysistest.Run(t, dir, pta.Analyzer, "flow")
}
