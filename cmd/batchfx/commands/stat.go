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
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/walteh/batchfx/cmd/batchfx/opts"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/handler"
)

// NewStatCmd creates the stat command
func NewStatCmd(o *opts.RootOpts) *cobra.Command {
	var (
		recursive bool
		table     bool
	)
	cmd := &cobra.Command{
		Use:   "stat <path>...",
		Short: "Count files, directories and bytes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			files, err := inputs(args)
			if err != nil {
				return err
			}
			if _, err := execute(ctx, o, files, handler.NewStat(recursive)); err != nil {
				return err
			}
			if !table {
				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, f := range files {
				s := handler.Collect(ctx, []file.File{f}, recursive)
				modified := "-"
				if !s.Newest.IsZero() {
					modified = humanize.Time(s.Newest)
				}
				rows = append(rows, []string{
					f.Path(),
					strconv.Itoa(s.Files),
					strconv.Itoa(s.Dirs),
					strconv.Itoa(s.Hidden),
					humanize.IBytes(s.Size),
					modified,
				})
			}
			return o.Reporter.Table([]string{"PATH", "FILES", "DIRS", "HIDDEN", "SIZE", "MODIFIED"}, rows)
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "include everything below directories")
	cmd.Flags().BoolVarP(&table, "table", "t", false, "print a per-path table")
	return cmd
}
