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
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd(o *opts.RootOpts) *cobra.Command {
	var dopts handler.DeleteOptions
	cmd := &cobra.Command{
		Use:   "delete <path>...",
		Short: "Move files to the trash, or delete them permanently with --force",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dopts.TrashDir == "" {
				dopts.TrashDir = o.Config.TrashDir
			}
			files, err := inputs(args)
			if err != nil {
				return err
			}
			_, err = execute(cmd.Context(), o, files, handler.NewDelete(dopts))
			return err
		},
	}
	cmd.Flags().BoolVarP(&dopts.Force, "force", "f", false, "delete permanently, clearing read-only permissions first")
	cmd.Flags().StringVar(&dopts.TrashDir, "trash-dir", "", "trash directory (default: trash_dir from the config, then the desktop trash)")
	return cmd
}
