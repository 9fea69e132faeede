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
	"github.com/spf13/cobra"
	"github.com/walteh/batchfx/cmd/batchfx/opts"
	"github.com/walteh/batchfx/pkg/handler"
	"gitlab.com/tozd/go/errors"
)

// NewRenameCmd creates the rename command
func NewRenameCmd(o *opts.RootOpts) *cobra.Command {
	var (
		replace handler.ReplaceOptions
		regexp  bool
		upper   bool
		lower   bool
		dup     handler.DuplicateOptions
		fill    string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "rename <path>...",
		Short: "Rename files by pattern, case and duplicate numbering",
		Long: `Rename computes every new name first: the pattern replacement, then the
case change, then duplicate numbering so no two targets collide. Entries are
renamed deepest first.

  batchfx rename --pattern 'IMG_' --replace 'photo-' --lower *.JPG`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if upper && lower {
				return errors.Errorf("--upper and --lower are exclusive")
			}
			if replace.Pattern == "" && !upper && !lower && !cmd.Flags().Changed("template") {
				return errors.Errorf("nothing to rename: give --pattern, --upper, --lower or --template")
			}

			var steps []handler.Handler
			if replace.Pattern != "" {
				if regexp {
					replace.Syntax = handler.SyntaxRegexp
				}
				replace.CaseSensitive = o.CaseSensitive()
				steps = append(steps, handler.NewReplace(replace))
			}
			if upper || lower {
				steps = append(steps, handler.NewCaseTransform(upper, replace.SuffixInclude))
			}
			if fill != "" {
				dup.Fill = []rune(fill)[0]
			}
			steps = append(steps, handler.NewDuplicate(dup))

			h := handler.NewRename(steps...)
			if err := h.Args().Set("DryRun", dryRun); err != nil {
				return err
			}
			if err := h.Args().Validate(); err != nil {
				return err
			}

			files, err := inputs(args)
			if err != nil {
				return err
			}
			_, err = execute(ctx, o, files, h)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&replace.Pattern, "pattern", "p", "", "wildcard (or --regexp) matched against names")
	flags.StringVarP(&replace.After, "replace", "r", "", "text that replaces every match")
	flags.BoolVar(&regexp, "regexp", false, "treat --pattern as a regular expression")
	flags.BoolVar(&replace.SuffixInclude, "suffix", false, "match and transform the suffix too")
	flags.BoolVar(&upper, "upper", false, "upper case names")
	flags.BoolVar(&lower, "lower", false, "lower case names")
	flags.StringVar(&dup.Template, "template", handler.DefaultDuplicateTemplate, "duplicate counter template; N is the number")
	flags.IntVar(&dup.Width, "width", 0, "minimum counter digits")
	flags.StringVar(&fill, "fill", "0", "counter padding character")
	flags.IntVar(&dup.Base, "base", 10, "counter number base")
	flags.BoolVar(&dup.Before, "before", false, "put the counter before the name")
	flags.BoolVar(&dup.NumberFirst, "number-first", false, "number the first name of a colliding group too")
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "report new names without renaming")
	return cmd
}
