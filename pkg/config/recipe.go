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
	"github.com/walteh/batchfx/pkg/filter"
	"github.com/walteh/batchfx/pkg/handler"
	"gitlab.com/tozd/go/errors"
)

// 🧾 Recipe is a named, preconfigured handler. Composite kinds (pipe,
// combine, rename) take their members from Steps, in order.
type Recipe struct {
	Name    string         `json:"name" yaml:"name"`
	Handler string         `json:"handler" yaml:"handler"`
	Args    map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
	Steps   []Recipe       `json:"steps,omitempty" yaml:"steps,omitempty"`
	// Include and Exclude are name globs applied to the input list before
	// the handler runs. An empty Include keeps everything.
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

type appender interface {
	Append(...handler.Handler)
}

// 🏗️ Build creates and configures a fresh handler from the recipe.
func (r Recipe) Build() (handler.Handler, error) {
	h, err := handler.New(r.Handler)
	if err != nil {
		return nil, errors.Errorf("building %q: %w", r.Handler, err)
	}

	if len(r.Steps) > 0 {
		a, ok := h.(appender)
		if !ok {
			return nil, errors.Errorf("%s takes no steps: %w", r.Handler, ErrInvalidConfig)
		}
		for i, step := range r.Steps {
			sh, err := step.Build()
			if err != nil {
				return nil, errors.Errorf("step %d: %w", i+1, err)
			}
			a.Append(sh)
		}
	}

	if err := handler.Configure(h, r.Args); err != nil {
		return nil, err
	}
	return h, nil
}

// Selector returns the predicate built from Include and Exclude.
func (r Recipe) Selector(caseSensitive bool) *filter.Predicate {
	var sel *filter.Predicate
	for _, p := range r.Include {
		w := filter.Wildcard(p, caseSensitive)
		if sel == nil {
			sel = w
		} else {
			sel = filter.Or(sel, w)
		}
	}
	if sel == nil {
		sel = filter.Always()
	}
	for _, p := range r.Exclude {
		sel = filter.And(sel, filter.Not(filter.Wildcard(p, caseSensitive)))
	}
	return sel
}

func (r Recipe) validate() error {
	if r.Handler == "" {
		return errors.Errorf("handler is required: %w", ErrInvalidConfig)
	}
	if err := validPatterns(r.Include); err != nil {
		return errors.Errorf("include: %w", err)
	}
	if err := validPatterns(r.Exclude); err != nil {
		return errors.Errorf("exclude: %w", err)
	}
	if _, err := r.Build(); err != nil {
		return err
	}
	return nil
}
