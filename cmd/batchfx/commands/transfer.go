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

// NewCopyCmd creates the copy command
func NewCopyCmd(o *opts.RootOpts) *cobra.Command {
	return newTransferCmd(o, "copy", "Copy files and directory trees into a directory", handler.NewCopy)
}

// NewMoveCmd creates the move command
func NewMoveCmd(o *opts.RootOpts) *cobra.Command {
	return newTransferCmd(o, "move", "Move files and directory trees into a directory", handler.NewMove)
}

func newTransferCmd(o *opts.RootOpts, use, short string, build func(handler.TransferOptions) *handler.Transfer) *cobra.Command {
	var topts handler.TransferOptions
	cmd := &cobra.Command{
		Use:   use + " <target-dir> <path>...",
		Short: short,
		Long: short + `. When a destination already exists the --on-duplicate
policy decides: rename numbers the new entry, overwrite replaces it and skip
leaves it alone.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			topts.Target = args[0]
			h := build(topts)
			if err := h.Args().Validate(); err != nil {
				return err
			}

			files, err := inputs(args[1:])
			if err != nil {
				return err
			}
			_, err = execute(cmd.Context(), o, files, h)
			return err
		},
	}
	cmd.Flags().StringVar(&topts.DupMode, "on-duplicate", handler.DupRename, "rename, overwrite or skip")
	cmd.Flags().StringVar(&topts.DupTemplate, "template", handler.DefaultDuplicateTemplate, "counter template used by the rename policy")
	cmd.Flags().IntVar(&topts.Numbering.Width, "width", 0, "minimum digits of the rename policy counter")
	cmd.Flags().IntVar(&topts.Numbering.Base, "base", 10, "number base of the rename policy counter")
	return cmd
}
