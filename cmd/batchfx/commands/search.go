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

	"github.com/spf13/cobra"
	"github.com/walteh/batchfx/cmd/batchfx/opts"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/filter"
	"github.com/walteh/batchfx/pkg/handler"
	"gitlab.com/tozd/go/errors"
)

// NewSearchCmd creates the search command
func NewSearchCmd(o *opts.RootOpts) *cobra.Command {
	var (
		files bool
		dirs  bool
	)
	cmd := &cobra.Command{
		Use:   "search <expression> <dir>...",
		Short: "Find files below directories by filter expression",
		Long: `Search walks every directory and prints the entries whose name matches the
filter expression. Operators are & (and), | (or) and ! (not), grouped with
parentheses; operands are wildcards such as *.go.

  batchfx search '*.go&!*_test.go' ./pkg`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pred, err := filter.Compile(args[0], o.CaseSensitive())
			if err != nil {
				return errors.Errorf("parsing expression: %w", err)
			}
			switch {
			case files && dirs:
				return errors.Errorf("--files and --dirs are exclusive")
			case files:
				pred = filter.And(pred, filter.IsFile())
			case dirs:
				pred = filter.And(pred, filter.IsDir())
			}

			roots, err := inputs(args[1:])
			if err != nil {
				return err
			}

			found, err := execute(ctx, o, roots, handler.NewSearchPredicate(pred))
			if err != nil {
				return err
			}
			if o.Quiet {
				o.Reporter.List(file.Paths(found))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&files, "files", false, "only report files")
	cmd.Flags().BoolVar(&dirs, "dirs", false, "only report directories")
	return cmd
}

// NewMatchCmd creates the match command
func NewMatchCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <expression> <name>...",
		Short: "Test names against a filter expression without touching the disk",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := filter.Compile(args[0], o.CaseSensitive())
			if err != nil {
				return errors.Errorf("parsing expression: %w", err)
			}
			o.Reporter.Infof("%s", pred)

			var misses int
			for _, name := range args[1:] {
				ok := pred.Match(file.NewFile(name))
				if !ok {
					misses++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-5t %s\n", ok, name)
			}
			if misses > 0 {
				return errors.Errorf("%d of %d names did not match", misses, len(args)-1)
			}
			return nil
		},
	}
	return cmd
}
