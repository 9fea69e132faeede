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

// NewClearCmd creates the clear command
func NewClearCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <dir>...",
		Short: "Delete every file inside directories, keeping the directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := inputs(args)
			if err != nil {
				return err
			}
			_, err = execute(cmd.Context(), o, files, handler.NewClearFolder())
			return err
		},
	}
}

// NewEnvelopeCmd creates the envelope command
func NewEnvelopeCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "envelope <file>...",
		Short: "Move every file into a directory named after it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := inputs(args)
			if err != nil {
				return err
			}
			_, err = execute(cmd.Context(), o, files, handler.NewEnvelope())
			return err
		},
	}
}
