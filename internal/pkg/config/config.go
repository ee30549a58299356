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

// Package config reads the taint-plugin configuration document (sources,
// sinks, transfers) spec.md §6 and §4.9 describe, and the flat options
// map the core's Options collaborator exposes.
package config

import (
	"flag"
	"fmt"
	"io/ioutil"
	"strconv"
	"sync"

	"sigs.k8s.io/yaml"
)

// FlagSet is reused by command-line drivers the way the teacher's
// config.FlagSet is, registering the -taint-config flag once.
var FlagSet flag.FlagSet
var taintConfigPath string

func init() {
	FlagSet.StringVar(&taintConfigPath, "taint-config", "", "path to the taint-rule YAML document")
}

// Options is the flat key/value map spec.md §6 describes. At minimum it
// carries "taint-config" (path to the rule document) and "pta" (an
// opaque identifier of a prior pointer-analysis result; consumed
// entirely outside this repo, by the interprocedural constant-propagation
// collaborator spec.md references but does not ask this repo to build).
type Options map[string]string

// TaintConfigPath resolves the taint-config path from opts, falling back
// to the -taint-config flag.
func (o Options) TaintConfigPath() string {
	if p, ok := o["taint-config"]; ok && p != "" {
		return p
	}
	return taintConfigPath
}

// Kind is one of the from/to positions a Transfer rule can name.
type Kind struct {
	IsBase   bool
	IsResult bool
	ArgIndex int // valid only when !IsBase && !IsResult
}

func (k Kind) String() string {
	switch {
	case k.IsBase:
		return "base"
	case k.IsResult:
		return "result"
	default:
		return strconv.Itoa(k.ArgIndex)
	}
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "base":
		return Kind{IsBase: true}, nil
	case "result":
		return Kind{IsResult: true}, nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return Kind{}, fmt.Errorf("invalid from/to %q: want \"base\", \"result\", or a non-negative integer", s)
		}
		return Kind{ArgIndex: n}, nil
	}
}

// SourceRule names a method whose result introduces taint of Type.
type SourceRule struct {
	Method string `json:"method"`
	Type   string `json:"type"`
}

// SinkRule names a method and an argument position that must not carry
// taint.
type SinkRule struct {
	Method string `json:"method"`
	Index  int    `json:"index"`
}

// TransferRule names a method that moves taint from one position to
// another, possibly retyping it.
type TransferRule struct {
	Method string `json:"method"`
	From   string `json:"from"`
	To     string `json:"to"`
	Type   string `json:"type"`
}

// rawConfig mirrors the YAML document shape exactly (SPEC_FULL.md).
type rawConfig struct {
	Sources   []SourceRule   `json:"sources"`
	Sinks     []SinkRule     `json:"sinks"`
	Transfers []TransferRule `json:"transfers"`
}

// Transfer is a TransferRule with its From/To pre-parsed into Kind, so
// the taint plugin never re-parses strings during the fixpoint loop.
type Transfer struct {
	Method string
	From   Kind
	To     Kind
	Type   string
}

// TaintConfig is the taint plugin's resolved, validated rule set.
type TaintConfig struct {
	Sources   []SourceRule
	Sinks     []SinkRule
	transfers []Transfer
}

// Transfers returns the validated transfer rules.
func (c *TaintConfig) Transfers() []Transfer { return c.transfers }

// SourcesFor returns every source rule whose Method matches signature.
func (c *TaintConfig) SourcesFor(signature string) []SourceRule {
	var out []SourceRule
	for _, s := range c.Sources {
		if s.Method == signature {
			out = append(out, s)
		}
	}
	return out
}

// SinksFor returns every sink rule whose Method matches signature.
func (c *TaintConfig) SinksFor(signature string) []SinkRule {
	var out []SinkRule
	for _, s := range c.Sinks {
		if s.Method == signature {
			out = append(out, s)
		}
	}
	return out
}

// TransfersFor returns every transfer rule whose Method matches signature.
func (c *TaintConfig) TransfersFor(signature string) []Transfer {
	var out []Transfer
	for _, t := range c.transfers {
		if t.Method == signature {
			out = append(out, t)
		}
	}
	return out
}

var (
	loadOnce     sync.Once
	loadedCfg    *TaintConfig
	loadedCfgErr error
)

// Load reads and validates the taint-rule document at path. Malformed
// configuration is the one fatal path the core's error-handling design
// (spec.md §7) allows: it fails eagerly here, at initialization, rather
// than surfacing as a silent no-op mid-analysis.
func Load(path string) (*TaintConfig, error) {
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taint config: %w", err)
	}
	return Parse(bytes)
}

// Parse validates and builds a TaintConfig from raw YAML bytes.
func Parse(bytes []byte) (*TaintConfig, error) {
	var raw rawConfig
	if err := yaml.UnmarshalStrict(bytes, &raw); err != nil {
		return nil, fmt.Errorf("parsing taint config: %w", err)
	}
	cfg := &TaintConfig{Sources: raw.Sources, Sinks: raw.Sinks}
	for _, t := range raw.Transfers {
		from, err := parseKind(t.From)
		if err != nil {
			return nil, fmt.Errorf("transfer for %s: %w", t.Method, err)
		}
		to, err := parseKind(t.To)
		if err != nil {
			return nil, fmt.Errorf("transfer for %s: %w", t.Method, err)
		}
		cfg.transfers = append(cfg.transfers, Transfer{Method: t.Method, From: from, To: to, Type: t.Type})
	}
	return cfg, nil
}

// LoadCached loads and caches the taint config for the process lifetime,
// the way the teacher's config.ReadConfig caches via sync.Once.
func LoadCached(path string) (*TaintConfig, error) {
	loadOnce.Do(func() {
		loadedCfg, loadedCfgErr = Load(path)
	})
	return loadedCfg, loadedCfgErr
}
