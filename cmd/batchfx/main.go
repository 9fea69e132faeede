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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/walteh/batchfx/cmd/batchfx/commands"
	"github.com/walteh/batchfx/cmd/batchfx/opts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := &opts.RootOpts{}
	rootCmd := newRootCmd(o)
	rootCmd.AddCommand(
		commands.NewSearchCmd(o),
		commands.NewMatchCmd(o),
		commands.NewRenameCmd(o),
		commands.NewCopyCmd(o),
		commands.NewMoveCmd(o),
		commands.NewDeleteCmd(o),
		commands.NewStatCmd(o),
		commands.NewAttribCmd(o),
		commands.NewClearCmd(o),
		commands.NewEnvelopeCmd(o),
		commands.NewRunCmd(o),
		commands.NewRecipesCmd(o),
		commands.NewHandlersCmd(o),
		commands.NewVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if o.Reporter != nil {
			o.Reporter.Error(err.Error())
		} else {
			os.Stderr.WriteString("❌ " + err.Error() + "\n")
		}
		stop()
		os.Exit(1)
	}
}
