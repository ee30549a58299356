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

// Package pta is the public entry point for the pointer-analysis
// checker, kept separate from internal/pkg/pta the way the teacher
// keeps pkg/levee separate from internal/pkg/levee: callers outside this
// module import this package; everything it re-exports is implemented
// in the internal package so the implementation can change shape freely.
package pta

import (
	internal "github.com/google/go-pta/internal/pkg/pta"
)

// Analyzer reports taint flows found by the context-sensitive pointer
// analysis.
var Analyzer = internal.Analyzer
