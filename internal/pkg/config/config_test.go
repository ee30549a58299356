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

package config

import "testing"

const validDoc = `
sources:
  - method: "example.com/pkg.Source.Get"
    type: "tainted"
sinks:
  - method: "example.com/pkg.Sink.Leak"
    index: 0
transfers:
  - method: "example.com/pkg.String.Concat"
    from: "0"
    to: "result"
    type: "tainted"
`

func TestParseValid(t *testing.T) {
	cfg, err := Parse([]byte(validDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Method != "example.com/pkg.Source.Get" {
		t.Errorf("unexpected sources: %+v", cfg.Sources)
	}
	if len(cfg.Sinks) != 1 || cfg.Sinks[0].Index != 0 {
		t.Errorf("unexpected sinks: %+v", cfg.Sinks)
	}
	transfers := cfg.Transfers()
	if len(transfers) != 1 {
		t.Fatalf("got %d transfers, want 1", len(transfers))
	}
	if transfers[0].From.ArgIndex != 0 || !transfers[0].To.IsResult {
		t.Errorf("unexpected transfer: %+v", transfers[0])
	}
}

func TestParseInvalidFromTo(t *testing.T) {
	doc := `
transfers:
  - method: "m"
    from: "not-a-kind"
    to: "result"
    type: "t"
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("Parse() error = nil, want error for invalid from/to")
	}
}

func TestParseMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("not: [valid")); err == nil {
		t.Fatal("Parse() error = nil, want error for malformed document")
	}
}

func TestSourcesSinksTransfersFor(t *testing.T) {
	cfg, err := Parse([]byte(validDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := cfg.SourcesFor("example.com/pkg.Source.Get"); len(got) != 1 {
		t.Errorf("SourcesFor() = %v, want 1 match", got)
	}
	if got := cfg.SinksFor("nope"); len(got) != 0 {
		t.Errorf("SinksFor(nope) = %v, want none", got)
	}
	if got := cfg.TransfersFor("example.com/pkg.String.Concat"); len(got) != 1 {
		t.Errorf("TransfersFor() = %v, want 1 match", got)
	}
}
