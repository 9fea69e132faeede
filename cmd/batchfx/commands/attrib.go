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

// NewAttribCmd creates the attrib command
func NewAttribCmd(o *opts.RootOpts) *cobra.Command {
	var aopts handler.AttributeOptions
	cmd := &cobra.Command{
		Use:   "attrib <path>...",
		Short: "Set or clear the read-only and hidden attributes",
		Long: `Attrib changes write permission (--readonly) and the leading dot of the
name (--hidden). Each takes set, clear or unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if aopts.ReadOnly == handler.AttrUnchanged && aopts.Hidden == handler.AttrUnchanged {
				return errors.Errorf("nothing to change: give --readonly or --hidden")
			}
			h := handler.NewAttribute(aopts)
			if err := h.Args().Validate(); err != nil {
				return err
			}
			files, err := inputs(args)
			if err != nil {
				return err
			}
			_, err = execute(cmd.Context(), o, files, h)
			return err
		},
	}
	cmd.Flags().StringVar(&aopts.ReadOnly, "readonly", handler.AttrUnchanged, "set, clear or unchanged")
	cmd.Flags().StringVar(&aopts.Hidden, "hidden", handler.AttrUnchanged, "set, clear or unchanged")
	cmd.Flags().BoolVarP(&aopts.Recursive, "recursive", "r", false, "apply below directories too")
	return cmd
}
