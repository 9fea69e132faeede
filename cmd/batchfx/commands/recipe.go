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

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/batchfx/cmd/batchfx/opts"
	"github.com/walteh/batchfx/pkg/handler"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates the run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "run <recipe> <path>...",
		Short: "Run a named recipe from the config file",
		Long: `Run builds the handler a recipe describes, narrows the inputs with the
recipe's include and exclude globs and runs it as one task.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := o.Config.Recipe(args[0])
			if !ok {
				names := o.Config.RecipeNames()
				if len(names) == 0 {
					return errors.Errorf("recipe %q not found: no recipes configured", args[0])
				}
				return errors.Errorf("recipe %q not found, have: %s", args[0], strings.Join(names, ", "))
			}
			h, err := r.Build()
			if err != nil {
				return err
			}

			files, err := inputs(args[1:])
			if err != nil {
				return err
			}
			selected := r.Selector(o.CaseSensitive()).Select(files)
			if len(selected) == 0 {
				o.Reporter.Warningf("recipe %s selects none of the %d inputs", r.Name, len(files))
				return nil
			}

			o.Reporter.Header(fmt.Sprintf("%s • %d files", r.Name, len(selected)))
			_, err = execute(cmd.Context(), o, selected, h)
			return err
		},
	}
}

// NewRecipesCmd creates the recipes command
func NewRecipesCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List the recipes of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(o.Config.Recipes) == 0 {
				o.Reporter.Info("no recipes configured")
				return nil
			}
			rows := make([][]string, 0, len(o.Config.Recipes))
			for _, r := range o.Config.Recipes {
				h, err := r.Build()
				if err != nil {
					return errors.Errorf("recipe %q: %w", r.Name, err)
				}
				rows = append(rows, []string{
					r.Name,
					fmt.Sprint(h),
					strings.Join(r.Include, " "),
					strings.Join(r.Exclude, " "),
				})
			}
			return o.Reporter.Table([]string{"NAME", "HANDLER", "INCLUDE", "EXCLUDE"}, rows)
		},
	}
}

// NewHandlersCmd creates the handlers command
func NewHandlersCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "handlers",
		Short: "List the handler kinds recipes can use, with their arguments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := handler.Registered()
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				h, err := handler.New(name)
				if err != nil {
					return err
				}
				var params []string
				for _, arg := range h.Args().Names() {
					a, _ := h.Args().Argument(arg)
					params = append(params, fmt.Sprintf("%s:%s", a.Name, a.Kind))
				}
				rows = append(rows, []string{name, h.Description(), strings.Join(params, " ")})
			}
			return o.Reporter.Table([]string{"HANDLER", "DESCRIPTION", "ARGUMENTS"}, rows)
		},
	}
}
