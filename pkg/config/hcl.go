// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"math/big"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
//
//	workers   = 4
//	trash_dir = "/tmp/trash"
//
//	recipe "tidy" {
//	  handler = "FileRenameHandler"
//	  include = ["*.JPG"]
//
//	  step {
//	    handler = "CaseTransformHandler"
//	    Upper   = false
//	  }
//	}
//
// Attributes of a recipe or step other than handler, include and exclude
// are handler arguments.
type HCLParser struct{}

type hclConfig struct {
	Workers       int         `hcl:"workers,optional"`
	LogLevel      string      `hcl:"log_level,optional"`
	CaseSensitive bool        `hcl:"case_sensitive,optional"`
	Suffixes      []string    `hcl:"suffixes,optional"`
	TrashDir      string      `hcl:"trash_dir,optional"`
	Recipes       []hclRecipe `hcl:"recipe,block"`
}

type hclRecipe struct {
	Name    string    `hcl:"name,label"`
	Handler string    `hcl:"handler"`
	Include []string  `hcl:"include,optional"`
	Exclude []string  `hcl:"exclude,optional"`
	Steps   []hclStep `hcl:"step,block"`
	Args    hcl.Body  `hcl:",remain"`
}

type hclStep struct {
	Handler string    `hcl:"handler"`
	Steps   []hclStep `hcl:"step,block"`
	Args    hcl.Body  `hcl:",remain"`
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Workers:       hclCfg.Workers,
		LogLevel:      hclCfg.LogLevel,
		CaseSensitive: hclCfg.CaseSensitive,
		Suffixes:      hclCfg.Suffixes,
		TrashDir:      hclCfg.TrashDir,
	}
	for _, r := range hclCfg.Recipes {
		args, err := decodeArgs(r.Args, evalCtx)
		if err != nil {
			return nil, errors.Errorf("recipe %q: %w", r.Name, err)
		}
		steps, err := decodeSteps(r.Steps, evalCtx)
		if err != nil {
			return nil, errors.Errorf("recipe %q: %w", r.Name, err)
		}
		cfg.Recipes = append(cfg.Recipes, Recipe{
			Name:    r.Name,
			Handler: r.Handler,
			Args:    args,
			Steps:   steps,
			Include: r.Include,
			Exclude: r.Exclude,
		})
	}

	return cfg, nil
}

func decodeSteps(steps []hclStep, evalCtx *hcl.EvalContext) ([]Recipe, error) {
	var out []Recipe
	for i, s := range steps {
		args, err := decodeArgs(s.Args, evalCtx)
		if err != nil {
			return nil, errors.Errorf("step %d: %w", i+1, err)
		}
		nested, err := decodeSteps(s.Steps, evalCtx)
		if err != nil {
			return nil, errors.Errorf("step %d: %w", i+1, err)
		}
		out = append(out, Recipe{Handler: s.Handler, Args: args, Steps: nested})
	}
	return out, nil
}

// decodeArgs turns the leftover attributes of a block into handler
// arguments.
func decodeArgs(body hcl.Body, evalCtx *hcl.EvalContext) (map[string]any, error) {
	if body == nil {
		return nil, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Errorf("reading arguments: %s", diags.Error())
	}
	if len(attrs) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]any, len(attrs))
	for _, name := range names {
		val, diags := attrs[name].Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, errors.Errorf("argument %s: %s", name, diags.Error())
		}
		v, err := ctyToGo(val)
		if err != nil {
			return nil, errors.Errorf("argument %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, nil
	}
	switch val.Type() {
	case cty.String:
		return val.AsString(), nil
	case cty.Bool:
		return val.True(), nil
	case cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	default:
		return nil, errors.Errorf("unsupported value of type %s: %w", val.Type().FriendlyName(), ErrInvalidConfig)
	}
}
